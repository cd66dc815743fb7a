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

// PatientHandler handles patient directory requests. Every operation is
// scoped to rows owned by the caller's identity, derived from the access
// token and never from a request parameter.
type PatientHandler struct {
	DB    *gorm.DB
	Authz middleware.Authorizer
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db, Authz: middleware.OwnerOnly{}}
}

// PatientRequest represents the request body for creating or fully updating a patient.
type PatientRequest struct {
	FirstName        string `json:"first_name" validate:"required,max=100"`
	LastName         string `json:"last_name" validate:"required,max=100"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,max=15"`
	DateOfBirth      string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender           string `json:"gender" validate:"required,oneof=M F O"`
	BloodType        string `json:"blood_type" validate:"omitempty,oneof=O+ O- A+ A- B+ B- AB+ AB-"`
	Address          string `json:"address" validate:"required"`
	City             string `json:"city" validate:"required,max=100"`
	State            string `json:"state" validate:"required,max=100"`
	PostalCode       string `json:"postal_code" validate:"required,max=10"`
	MedicalHistory   string `json:"medical_history"`
	Allergies        string `json:"allergies"`
	EmergencyContact string `json:"emergency_contact" validate:"omitempty,max=150"`
	EmergencyPhone   string `json:"emergency_phone" validate:"omitempty,max=15"`
	IsActive         *bool  `json:"is_active"`
}

func validatePatient(req *PatientRequest) utils.FieldErrors {
	fieldErrors := utils.Validate(req)
	if req.Phone != "" && !utils.ValidPhone(req.Phone) {
		fieldErrors.Add("phone", "Phone number must contain only digits and optional + or - characters.")
	}
	if req.EmergencyPhone != "" && !utils.ValidPhone(req.EmergencyPhone) {
		fieldErrors.Add("emergency_phone", "Phone number must contain only digits and optional + or - characters.")
	}
	if req.PostalCode != "" && !utils.ValidPostalCode(req.PostalCode) {
		fieldErrors.Add("postal_code", "Postal code must contain only alphanumeric characters and optional hyphens.")
	}
	return fieldErrors
}

func (req *PatientRequest) apply(patient *models.Patient) {
	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.Email = req.Email
	patient.Phone = req.Phone
	patient.DateOfBirth = req.DateOfBirth
	patient.Gender = models.Gender(req.Gender)
	patient.BloodType = models.BloodType(req.BloodType)
	patient.Address = req.Address
	patient.City = req.City
	patient.State = req.State
	patient.PostalCode = req.PostalCode
	patient.MedicalHistory = req.MedicalHistory
	patient.Allergies = req.Allergies
	patient.EmergencyContact = req.EmergencyContact
	patient.EmergencyPhone = req.EmergencyPhone
	if req.IsActive != nil {
		patient.IsActive = *req.IsActive
	}
}

// ownedPatient fetches a patient row restricted to the caller's own rows.
// A row owned by someone else is indistinguishable from a missing row.
func (h *PatientHandler) ownedPatient(c *gin.Context, callerID string) (*models.Patient, bool) {
	var patient models.Patient
	if err := h.DB.Where("user_id = ?", callerID).First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	if !h.Authz.Authorize(callerID, &patient) {
		utils.NotFound(c, "Patient not found")
		return nil, false
	}
	return &patient, true
}

// CreatePatient creates a patient owned by the caller. Any owner value in
// the request body is ignored.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	callerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if fieldErrors := validatePatient(&req); fieldErrors.HasErrors() {
		utils.ValidationFailed(c, fieldErrors)
		return
	}

	patient := models.Patient{
		UserID:   callerID,
		IsActive: true,
	}
	req.apply(&patient)

	if err := h.DB.Create(&patient).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "A patient profile already exists for this account.")
			return
		}
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	logger.WithFields(map[string]interface{}{"patient_id": patient.ID, "user_id": callerID}).Info("patient created")
	utils.Created(c, "Patient created successfully", patient)
}

// ListPatients lists the caller's own patients.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	callerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var patients []models.Patient
	if err := h.DB.Where("user_id = ?", callerID).Order("created_at DESC").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.OK(c, gin.H{
		"count":    len(patients),
		"patients": patients,
	})
}

// GetPatient retrieves one of the caller's own patients.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	callerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	patient, ok := h.ownedPatient(c, callerID)
	if !ok {
		return
	}

	utils.OK(c, patient)
}

// UpdatePatient fully updates one of the caller's own patients.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	callerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	patient, ok := h.ownedPatient(c, callerID)
	if !ok {
		return
	}

	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if fieldErrors := validatePatient(&req); fieldErrors.HasErrors() {
		utils.ValidationFailed(c, fieldErrors)
		return
	}

	req.apply(patient)

	if err := h.DB.Save(patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// PatientPatchRequest represents a partial update; only present fields change.
type PatientPatchRequest struct {
	FirstName        *string `json:"first_name" validate:"omitempty,max=100"`
	LastName         *string `json:"last_name" validate:"omitempty,max=100"`
	Email            *string `json:"email" validate:"omitempty,email"`
	Phone            *string `json:"phone" validate:"omitempty,max=15"`
	DateOfBirth      *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender           *string `json:"gender" validate:"omitempty,oneof=M F O"`
	BloodType        *string `json:"blood_type" validate:"omitempty,oneof=O+ O- A+ A- B+ B- AB+ AB-"`
	Address          *string `json:"address"`
	City             *string `json:"city" validate:"omitempty,max=100"`
	State            *string `json:"state" validate:"omitempty,max=100"`
	PostalCode       *string `json:"postal_code" validate:"omitempty,max=10"`
	MedicalHistory   *string `json:"medical_history"`
	Allergies        *string `json:"allergies"`
	EmergencyContact *string `json:"emergency_contact" validate:"omitempty,max=150"`
	EmergencyPhone   *string `json:"emergency_phone" validate:"omitempty,max=15"`
	IsActive         *bool   `json:"is_active"`
}

// PartialUpdatePatient updates only the fields present in the request.
func (h *PatientHandler) PartialUpdatePatient(c *gin.Context) {
	callerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	patient, ok := h.ownedPatient(c, callerID)
	if !ok {
		return
	}

	var req PatientPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	fieldErrors := utils.Validate(&req)
	if req.Phone != nil && !utils.ValidPhone(*req.Phone) {
		fieldErrors.Add("phone", "Phone number must contain only digits and optional + or - characters.")
	}
	if req.EmergencyPhone != nil && *req.EmergencyPhone != "" && !utils.ValidPhone(*req.EmergencyPhone) {
		fieldErrors.Add("emergency_phone", "Phone number must contain only digits and optional + or - characters.")
	}
	if req.PostalCode != nil && !utils.ValidPostalCode(*req.PostalCode) {
		fieldErrors.Add("postal_code", "Postal code must contain only alphanumeric characters and optional hyphens.")
	}
	if fieldErrors.HasErrors() {
		utils.ValidationFailed(c, fieldErrors)
		return
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = models.Gender(*req.Gender)
	}
	if req.BloodType != nil {
		patient.BloodType = models.BloodType(*req.BloodType)
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.City != nil {
		patient.City = *req.City
	}
	if req.State != nil {
		patient.State = *req.State
	}
	if req.PostalCode != nil {
		patient.PostalCode = *req.PostalCode
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}
	if req.Allergies != nil {
		patient.Allergies = *req.Allergies
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = *req.EmergencyContact
	}
	if req.EmergencyPhone != nil {
		patient.EmergencyPhone = *req.EmergencyPhone
	}
	if req.IsActive != nil {
		patient.IsActive = *req.IsActive
	}

	if err := h.DB.Save(patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// DeletePatient hard-deletes one of the caller's own patients.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	callerID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	patient, ok := h.ownedPatient(c, callerID)
	if !ok {
		return
	}

	if err := h.DB.Delete(patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete patient: "+err.Error())
		return
	}

	logger.WithField("patient_id", patient.ID).Info("patient deleted")
	utils.NoContent(c)
}
