package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-api-server/internal/logger"
	"clinic-api-server/internal/middleware"
	"clinic-api-server/internal/models"
	"clinic-api-server/internal/utils"
)

// MappingHandler handles patient-doctor assignment requests. Like the
// doctor directory, mutation is open to any authenticated caller.
type MappingHandler struct {
	DB    *gorm.DB
	Authz middleware.Authorizer
}

// NewMappingHandler creates a new MappingHandler.
func NewMappingHandler(db *gorm.DB) *MappingHandler {
	return &MappingHandler{DB: db, Authz: middleware.AuthenticatedOnly{}}
}

func (h *MappingHandler) authorize(c *gin.Context) bool {
	callerID, _ := middleware.GetUserIDFromContext(c)
	if !h.Authz.Authorize(callerID, nil) {
		utils.Unauthorized(c, "User not authenticated")
		return false
	}
	return true
}

// MappingResponse decorates a mapping row with its status display label.
type MappingResponse struct {
	models.PatientDoctorMapping
	StatusDisplay string `json:"status_display"`
}

func newMappingResponse(m models.PatientDoctorMapping) MappingResponse {
	return MappingResponse{
		PatientDoctorMapping: m,
		StatusDisplay:        models.StatusDisplay(m.Status),
	}
}

func newMappingResponses(mappings []models.PatientDoctorMapping) []MappingResponse {
	responses := make([]MappingResponse, 0, len(mappings))
	for _, m := range mappings {
		responses = append(responses, newMappingResponse(m))
	}
	return responses
}

// CreateMappingRequest represents the request body for assigning a doctor
// to a patient.
type CreateMappingRequest struct {
	PatientID string `json:"patient_id" validate:"required"`
	DoctorID  string `json:"doctor_id" validate:"required"`
	Status    string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
	Notes     string `json:"notes"`
}

// CreateMapping assigns a doctor to a patient. Both sides must exist and
// the pair must not already be mapped.
func (h *MappingHandler) CreateMapping(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var req CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	fieldErrors := utils.Validate(&req)

	if req.PatientID != "" {
		var patient models.Patient
		if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fieldErrors.Add("patient_id", "Patient not found.")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
				return
			}
		}
	}
	if req.DoctorID != "" {
		var doctor models.Doctor
		if err := h.DB.First(&doctor, "id = ?", req.DoctorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fieldErrors.Add("doctor_id", "Doctor not found.")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
				return
			}
		}
	}
	if req.PatientID != "" && req.DoctorID != "" {
		var count int64
		if err := h.DB.Model(&models.PatientDoctorMapping{}).
			Where("patient_id = ? AND doctor_id = ?", req.PatientID, req.DoctorID).
			Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if count > 0 {
			fieldErrors.Add("non_field_errors", "This patient is already assigned to this doctor.")
		}
	}
	if fieldErrors.HasErrors() {
		utils.ValidationFailed(c, fieldErrors)
		return
	}

	status := models.MappingActive
	if req.Status != "" {
		status = models.MappingStatus(req.Status)
	}

	mapping := models.PatientDoctorMapping{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Status:    status,
		Notes:     req.Notes,
	}

	if err := h.DB.Create(&mapping).Error; err != nil {
		// Advisory pre-check lost the race; the composite unique index is
		// the source of truth.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "This patient is already assigned to this doctor.")
			return
		}
		utils.InternalServerError(c, "Failed to create mapping: "+err.Error())
		return
	}

	if err := h.DB.Preload("Patient").Preload("Doctor").First(&mapping, "id = ?", mapping.ID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	logger.WithFields(map[string]interface{}{
		"mapping_id": mapping.ID,
		"patient_id": mapping.PatientID,
		"doctor_id":  mapping.DoctorID,
	}).Info("doctor assigned to patient")
	utils.Created(c, "Doctor assigned to patient successfully", newMappingResponse(mapping))
}

var mappingOrderings = map[string]string{
	"assignment_date": "assignment_date",
	"status":          "status",
}

// ListMappings lists mappings with filtering, search, ordering and pagination.
func (h *MappingHandler) ListMappings(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	query := h.DB.Model(&models.PatientDoctorMapping{})

	if status := c.Query("status"); status != "" {
		if !models.ValidMappingStatus(models.MappingStatus(status)) {
			fieldErrors := utils.FieldErrors{}
			fieldErrors.Add("status", "Select a valid status choice.")
			utils.ValidationFailed(c, fieldErrors)
			return
		}
		query = query.Where("patient_doctor_mappings.status = ?", status)
	}
	if patientID := c.Query("patient"); patientID != "" {
		query = query.Where("patient_doctor_mappings.patient_id = ?", patientID)
	}
	if doctorID := c.Query("doctor"); doctorID != "" {
		query = query.Where("patient_doctor_mappings.doctor_id = ?", doctorID)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.
			Joins("JOIN patients ON patients.id = patient_doctor_mappings.patient_id").
			Joins("JOIN doctors ON doctors.id = patient_doctor_mappings.doctor_id").
			Where("patients.first_name LIKE ? OR patients.last_name LIKE ? OR doctors.first_name LIKE ? OR doctors.last_name LIKE ?",
				pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	// The joined tables share column names with the mapping table, so the
	// scan must be limited to mapping columns. Applied after the count,
	// which needs a bare COUNT(*).
	query = query.Select("patient_doctor_mappings.*")

	query = applyOrdering(query, c.Query("ordering"), mappingOrderings, "assignment_date DESC")
	query, pageErrors := applyPagination(query, c)
	if pageErrors.HasErrors() {
		utils.ValidationFailed(c, pageErrors)
		return
	}

	var mappings []models.PatientDoctorMapping
	if err := query.Preload("Patient").Preload("Doctor").Find(&mappings).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.OK(c, gin.H{
		"count":    total,
		"mappings": newMappingResponses(mappings),
	})
}

// GetMapping retrieves a specific mapping.
func (h *MappingHandler) GetMapping(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var mapping models.PatientDoctorMapping
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&mapping, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Mapping not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.OK(c, newMappingResponse(mapping))
}

// UpdateMappingRequest represents the request body for updating a mapping.
// The patient and doctor links are immutable after creation; only status
// and notes may change.
type UpdateMappingRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE SUSPENDED"`
	Notes  string `json:"notes"`
}

// UpdateMapping fully updates a mapping's mutable fields.
func (h *MappingHandler) UpdateMapping(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var mapping models.PatientDoctorMapping
	if err := h.DB.First(&mapping, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Mapping not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req UpdateMappingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// Any status may transition to any other; membership is the only guard.
	mapping.Status = models.MappingStatus(req.Status)
	mapping.Notes = req.Notes

	if err := h.DB.Save(&mapping).Error; err != nil {
		utils.InternalServerError(c, "Failed to update mapping: "+err.Error())
		return
	}

	if err := h.DB.Preload("Patient").Preload("Doctor").First(&mapping, "id = ?", mapping.ID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.Success(c, "Mapping updated successfully", newMappingResponse(mapping))
}

// MappingPatchRequest represents a partial update; only present fields change.
type MappingPatchRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
	Notes  *string `json:"notes"`
}

// PartialUpdateMapping updates only the fields present in the request.
func (h *MappingHandler) PartialUpdateMapping(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var mapping models.PatientDoctorMapping
	if err := h.DB.First(&mapping, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Mapping not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req MappingPatchRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.Status != nil {
		mapping.Status = models.MappingStatus(*req.Status)
	}
	if req.Notes != nil {
		mapping.Notes = *req.Notes
	}

	if err := h.DB.Save(&mapping).Error; err != nil {
		utils.InternalServerError(c, "Failed to update mapping: "+err.Error())
		return
	}

	if err := h.DB.Preload("Patient").Preload("Doctor").First(&mapping, "id = ?", mapping.ID).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.Success(c, "Mapping updated successfully", newMappingResponse(mapping))
}

// DeleteMapping hard-deletes a mapping.
func (h *MappingHandler) DeleteMapping(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var mapping models.PatientDoctorMapping
	if err := h.DB.First(&mapping, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Mapping not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&mapping).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete mapping: "+err.Error())
		return
	}

	logger.WithField("mapping_id", mapping.ID).Info("mapping deleted")
	utils.NoContent(c)
}

// ListByPatient returns all mappings for one patient.
func (h *MappingHandler) ListByPatient(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	patientID := c.Query("patient_id")
	if patientID == "" {
		utils.ValidationFailed(c, utils.FieldErrors{"patient_id": "This query parameter is required."})
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var mappings []models.PatientDoctorMapping
	if err := h.DB.Preload("Patient").Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("assignment_date DESC").
		Find(&mappings).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.OK(c, gin.H{
		"patient_id":   patientID,
		"doctor_count": len(mappings),
		"doctors":      newMappingResponses(mappings),
	})
}

// ListStatuses returns the static mapping status choices.
func (h *MappingHandler) ListStatuses(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	utils.OK(c, models.StatusChoices())
}
