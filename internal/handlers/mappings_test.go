package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingCreateDefaultsAndDuplicateRejection(t *testing.T) {
	router, _ := setupTestRouter(t)
	token, _, _ := registerAndLogin(t, router, "staff@example.com", "longpass1", "Staff")

	patientID := createPatient(t, router, token)
	doctorID := createDoctor(t, router, token, "grace@clinic.com", "LIC-1001")

	w := performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": patientID,
		"doctor_id":  doctorID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataField(t, w)
	assert.Equal(t, "ACTIVE", data["status"])
	assert.Equal(t, "Active", data["status_display"])
	assert.NotEmpty(t, data["assignment_date"])

	// The same pair cannot be mapped twice.
	w = performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": patientID,
		"doctor_id":  doctorID,
		"notes":      "second try",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// A different doctor for the same patient is fine.
	otherDoctor := createDoctor(t, router, token, "other@clinic.com", "LIC-2002")
	w = performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": patientID,
		"doctor_id":  otherDoctor,
	}, token)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestMappingCreateUnknownReferences(t *testing.T) {
	router, _ := setupTestRouter(t)
	token, _, _ := registerAndLogin(t, router, "staff@example.com", "longpass1", "Staff")

	w := performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": "00000000-0000-0000-0000-000000000000",
		"doctor_id":  "00000000-0000-0000-0000-000000000001",
	}, token)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	fieldErrors := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, fieldErrors, "patient_id")
	assert.Contains(t, fieldErrors, "doctor_id")
}

func TestMappingStatusLifecycle(t *testing.T) {
	router, _ := setupTestRouter(t)
	token, _, _ := registerAndLogin(t, router, "staff@example.com", "longpass1", "Staff")

	patientID := createPatient(t, router, token)
	doctorID := createDoctor(t, router, token, "grace@clinic.com", "LIC-1001")

	w := performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": patientID,
		"doctor_id":  doctorID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	mappingID, _ := dataField(t, w)["id"].(string)

	// Any status may move to any other.
	w = performRequest(t, router, http.MethodPatch, "/mappings/"+mappingID, gin.H{
		"status": "SUSPENDED",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "SUSPENDED", dataField(t, w)["status"])

	w = performRequest(t, router, http.MethodPut, "/mappings/"+mappingID, gin.H{
		"status": "INACTIVE",
		"notes":  "rotated off service",
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataField(t, w)
	assert.Equal(t, "INACTIVE", data["status"])
	assert.Equal(t, "rotated off service", data["notes"])

	// Membership is still enforced.
	w = performRequest(t, router, http.MethodPatch, "/mappings/"+mappingID, gin.H{
		"status": "ARCHIVED",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMappingParticipantsImmutableOnUpdate(t *testing.T) {
	router, _ := setupTestRouter(t)
	token, _, _ := registerAndLogin(t, router, "staff@example.com", "longpass1", "Staff")

	patientID := createPatient(t, router, token)
	doctorID := createDoctor(t, router, token, "grace@clinic.com", "LIC-1001")
	otherDoctor := createDoctor(t, router, token, "other@clinic.com", "LIC-2002")

	w := performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": patientID,
		"doctor_id":  doctorID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	mappingID, _ := dataField(t, w)["id"].(string)

	// Participant fields in the body are read-only and silently ignored.
	w = performRequest(t, router, http.MethodPut, "/mappings/"+mappingID, gin.H{
		"status":    "ACTIVE",
		"doctor_id": otherDoctor,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, doctorID, dataField(t, w)["doctor_id"])
}

func TestMappingListFilters(t *testing.T) {
	router, _ := setupTestRouter(t)
	token, _, _ := registerAndLogin(t, router, "staff@example.com", "longpass1", "Staff")

	patientID := createPatient(t, router, token)
	doctorA := createDoctor(t, router, token, "a@clinic.com", "LIC-A")
	doctorB := createDoctor(t, router, token, "b@clinic.com", "LIC-B")

	w := performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": patientID, "doctor_id": doctorA,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	w = performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": patientID, "doctor_id": doctorB, "status": "INACTIVE",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(t, router, http.MethodGet, "/mappings", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decodeBody(t, w)["count"])

	w = performRequest(t, router, http.MethodGet, "/mappings?status=INACTIVE", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["count"])

	w = performRequest(t, router, http.MethodGet, "/mappings?doctor="+doctorA, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])

	w = performRequest(t, router, http.MethodGet, "/mappings?search=Jonas", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decodeBody(t, w)
	assert.EqualValues(t, 2, body["count"])

	// Searched rows must carry mapping columns, not columns of the
	// joined patient or doctor rows.
	mappings := body["mappings"].([]interface{})
	require.Len(t, mappings, 2)
	first := mappings[0].(map[string]interface{})
	assert.Equal(t, patientID, first["patient_id"])
	assert.NotEqual(t, patientID, first["id"])

	w = performRequest(t, router, http.MethodGet, "/mappings?search=Nobody", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, decodeBody(t, w)["count"])
}

func TestMappingListRejectsUnknownStatusFilter(t *testing.T) {
	router, _ := setupTestRouter(t)
	token, _, _ := registerAndLogin(t, router, "staff@example.com", "longpass1", "Staff")

	w := performRequest(t, router, http.MethodGet, "/mappings?status=ARCHIVED", nil, token)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	errs := decodeBody(t, w)["errors"].(map[string]interface{})
	assert.Contains(t, errs, "status")
}

func TestMappingListByPatient(t *testing.T) {
	router, _ := setupTestRouter(t)
	token, _, _ := registerAndLogin(t, router, "staff@example.com", "longpass1", "Staff")

	patientID := createPatient(t, router, token)
	doctorID := createDoctor(t, router, token, "grace@clinic.com", "LIC-1001")

	w := performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": patientID, "doctor_id": doctorID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("missing patient_id", func(t *testing.T) {
		w := performRequest(t, router, http.MethodGet, "/mappings/by_patient", nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown patient", func(t *testing.T) {
		w := performRequest(t, router, http.MethodGet, "/mappings/by_patient?patient_id=00000000-0000-0000-0000-000000000000", nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("existing patient", func(t *testing.T) {
		w := performRequest(t, router, http.MethodGet, "/mappings/by_patient?patient_id="+patientID, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, patientID, body["patient_id"])
		assert.EqualValues(t, 1, body["doctor_count"])
	})
}

func TestMappingRetrieveAndDelete(t *testing.T) {
	router, _ := setupTestRouter(t)
	token, _, _ := registerAndLogin(t, router, "staff@example.com", "longpass1", "Staff")

	patientID := createPatient(t, router, token)
	doctorID := createDoctor(t, router, token, "grace@clinic.com", "LIC-1001")

	w := performRequest(t, router, http.MethodPost, "/mappings", gin.H{
		"patient_id": patientID, "doctor_id": doctorID,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	mappingID, _ := dataField(t, w)["id"].(string)

	w = performRequest(t, router, http.MethodGet, "/mappings/"+mappingID, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	patient, ok := body["patient"].(map[string]interface{})
	require.True(t, ok, "mapping detail embeds the patient")
	assert.Equal(t, patientID, patient["id"])
	doctor, ok := body["doctor"].(map[string]interface{})
	require.True(t, ok, "mapping detail embeds the doctor")
	assert.Equal(t, doctorID, doctor["id"])

	w = performRequest(t, router, http.MethodDelete, "/mappings/"+mappingID, nil, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(t, router, http.MethodGet, "/mappings/"+mappingID, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMappingNotFound(t *testing.T) {
	router, _ := setupTestRouter(t)
	token, _, _ := registerAndLogin(t, router, "staff@example.com", "longpass1", "Staff")

	w := performRequest(t, router, http.MethodGet, "/mappings/00000000-0000-0000-0000-000000000000", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMappingsRequireAuth(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := performRequest(t, router, http.MethodGet, "/mappings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(t, router, http.MethodGet, "/mappings/statuses", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
