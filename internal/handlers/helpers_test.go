package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clinic-api-server/internal/config"
	"clinic-api-server/internal/models"
	"clinic-api-server/internal/routes"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and shared.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		Port:                      "8000",
		Environment:               "test",
		JWTSecret:                 "test-jwt-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}

	router := gin.New()
	routes.SetupRoutes(router, db, cfg)
	return router, db
}

func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	var body []interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

// registerAndLogin creates an account through the API and returns an access
// token, a refresh token, and the new user's ID.
func registerAndLogin(t *testing.T, router *gin.Engine, email, password, name string) (accessToken, refreshToken, userID string) {
	t.Helper()

	w := performRequest(t, router, http.MethodPost, "/auth/register", gin.H{
		"name":             name,
		"email":            email,
		"password":         password,
		"password_confirm": password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(t, router, http.MethodPost, "/auth/login", gin.H{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := dataField(t, w)
	accessToken, _ = data["access_token"].(string)
	refreshToken, _ = data["refresh_token"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)

	user, ok := data["user"].(map[string]interface{})
	require.True(t, ok)
	userID, _ = user["id"].(string)
	require.NotEmpty(t, userID)
	return accessToken, refreshToken, userID
}

func doctorPayload(email, license string) gin.H {
	return gin.H{
		"first_name":     "Grace",
		"last_name":      "Osei",
		"email":          email,
		"phone":          "+1-555-0100",
		"gender":         "F",
		"specialization": "CARD",
		"license_number": license,
	}
}

func patientPayload() gin.H {
	return gin.H{
		"first_name":    "Jonas",
		"last_name":     "Berg",
		"email":         "jonas@example.com",
		"phone":         "555-0101",
		"date_of_birth": "1990-04-12",
		"gender":        "M",
		"blood_type":    "O+",
		"address":       "12 Elm Street",
		"city":          "Springfield",
		"state":         "IL",
		"postal_code":   "62704",
	}
}

// createDoctor creates a doctor through the API and returns its ID.
func createDoctor(t *testing.T, router *gin.Engine, token, email, license string) string {
	t.Helper()
	w := performRequest(t, router, http.MethodPost, "/doctors", doctorPayload(email, license), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := dataField(t, w)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// createPatient creates a patient through the API and returns its ID.
func createPatient(t *testing.T, router *gin.Engine, token string) string {
	t.Helper()
	w := performRequest(t, router, http.MethodPost, "/patients", patientPayload(), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := dataField(t, w)["id"].(string)
	require.NotEmpty(t, id)
	return id
}
