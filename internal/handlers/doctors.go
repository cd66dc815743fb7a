package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-api-server/internal/logger"
	"clinic-api-server/internal/middleware"
	"clinic-api-server/internal/models"
	"clinic-api-server/internal/utils"
)

// DoctorHandler handles doctor directory requests.
type DoctorHandler struct {
	DB    *gorm.DB
	Authz middleware.Authorizer
}

// NewDoctorHandler creates a new DoctorHandler. Doctor mutation is open to
// any authenticated caller: there is no ownership restriction on this
// directory.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db, Authz: middleware.AuthenticatedOnly{}}
}

func (h *DoctorHandler) authorize(c *gin.Context) bool {
	callerID, _ := middleware.GetUserIDFromContext(c)
	if !h.Authz.Authorize(callerID, nil) {
		utils.Unauthorized(c, "User not authenticated")
		return false
	}
	return true
}

// DoctorRequest represents the request body for creating or fully updating a doctor.
type DoctorRequest struct {
	FirstName           string   `json:"first_name" validate:"required,max=100"`
	LastName            string   `json:"last_name" validate:"required,max=100"`
	Email               string   `json:"email" validate:"required,email"`
	Phone               string   `json:"phone" validate:"required,max=15"`
	Gender              string   `json:"gender" validate:"required,oneof=M F O"`
	Specialization      string   `json:"specialization" validate:"required,oneof=GP CARD DERM NEURO ORTHO PEDI OB-GYN ENT ONCO PSY OTHER"`
	LicenseNumber       string   `json:"license_number" validate:"required,max=50"`
	HospitalAffiliation string   `json:"hospital_affiliation" validate:"omitempty,max=200"`
	ExperienceYears     uint     `json:"experience_years"`
	ConsultationFee     *float64 `json:"consultation_fee"`
	Bio                 string   `json:"bio"`
	OfficeAddress       string   `json:"office_address"`
	OfficePhone         string   `json:"office_phone" validate:"omitempty,max=15"`
	AvailableDays       string   `json:"available_days" validate:"omitempty,max=100"`
	AvailableHours      string   `json:"available_hours" validate:"omitempty,max=100"`
	IsActive            *bool    `json:"is_active"`
	UserID              *string  `json:"user_id"`
}

// DoctorResponse decorates a doctor row with enum display labels.
type DoctorResponse struct {
	models.Doctor
	GenderDisplay         string `json:"gender_display"`
	SpecializationDisplay string `json:"specialization_display"`
}

func newDoctorResponse(d models.Doctor) DoctorResponse {
	return DoctorResponse{
		Doctor:                d,
		GenderDisplay:         models.GenderDisplay(d.Gender),
		SpecializationDisplay: models.SpecializationDisplay(d.Specialization),
	}
}

func newDoctorResponses(doctors []models.Doctor) []DoctorResponse {
	responses := make([]DoctorResponse, 0, len(doctors))
	for _, d := range doctors {
		responses = append(responses, newDoctorResponse(d))
	}
	return responses
}

// validateDoctor collects every field error for a doctor payload.
// excludeID skips the row being updated in the uniqueness checks.
func (h *DoctorHandler) validateDoctor(req *DoctorRequest, excludeID string) (utils.FieldErrors, error) {
	fieldErrors := utils.Validate(req)

	if req.Phone != "" && !utils.ValidPhone(req.Phone) {
		fieldErrors.Add("phone", "Phone number must contain only digits and optional + or - characters.")
	}
	if req.OfficePhone != "" && !utils.ValidPhone(req.OfficePhone) {
		fieldErrors.Add("office_phone", "Phone number must contain only digits and optional + or - characters.")
	}

	if req.Email != "" {
		var count int64
		query := h.DB.Model(&models.Doctor{}).Where("email = ?", req.Email)
		if excludeID != "" {
			query = query.Where("id <> ?", excludeID)
		}
		if err := query.Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			fieldErrors.Add("email", "A doctor with this email already exists.")
		}
	}

	if req.LicenseNumber != "" {
		var count int64
		query := h.DB.Model(&models.Doctor{}).Where("license_number = ?", req.LicenseNumber)
		if excludeID != "" {
			query = query.Where("id <> ?", excludeID)
		}
		if err := query.Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			fieldErrors.Add("license_number", "A doctor with this license number already exists.")
		}
	}

	return fieldErrors, nil
}

func (req *DoctorRequest) apply(doctor *models.Doctor) {
	doctor.FirstName = req.FirstName
	doctor.LastName = req.LastName
	doctor.Email = req.Email
	doctor.Phone = req.Phone
	doctor.Gender = models.Gender(req.Gender)
	doctor.Specialization = models.Specialization(req.Specialization)
	doctor.LicenseNumber = req.LicenseNumber
	doctor.HospitalAffiliation = req.HospitalAffiliation
	doctor.ExperienceYears = req.ExperienceYears
	doctor.ConsultationFee = req.ConsultationFee
	doctor.Bio = req.Bio
	doctor.OfficeAddress = req.OfficeAddress
	doctor.OfficePhone = req.OfficePhone
	doctor.AvailableDays = req.AvailableDays
	doctor.AvailableHours = req.AvailableHours
	doctor.UserID = req.UserID
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}
}

// CreateDoctor creates a new doctor.
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var req DoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	fieldErrors, err := h.validateDoctor(&req, "")
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if fieldErrors.HasErrors() {
		utils.ValidationFailed(c, fieldErrors)
		return
	}

	doctor := models.Doctor{IsActive: true}
	req.apply(&doctor)

	if err := h.DB.Create(&doctor).Error; err != nil {
		// The pre-checks are advisory: two concurrent creates can both pass
		// them and one loses at the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "A doctor with this email or license number already exists.")
			return
		}
		utils.InternalServerError(c, "Failed to create doctor: "+err.Error())
		return
	}

	logger.WithField("doctor_id", doctor.ID).Info("doctor created")
	utils.Created(c, "Doctor created successfully", newDoctorResponse(doctor))
}

var doctorOrderings = map[string]string{
	"first_name":       "first_name",
	"last_name":        "last_name",
	"experience_years": "experience_years",
	"created_at":       "created_at",
}

// ListDoctors lists doctors with filtering, search, ordering and pagination.
func (h *DoctorHandler) ListDoctors(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	query := h.DB.Model(&models.Doctor{})

	if specialization := c.Query("specialization"); specialization != "" {
		query = query.Where("specialization = ?", specialization)
	}
	if isActive := c.Query("is_active"); isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err != nil {
			utils.ValidationFailed(c, utils.FieldErrors{"is_active": "Must be a boolean value."})
			return
		}
		query = query.Where("is_active = ?", active)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR specialization LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	query = applyOrdering(query, c.Query("ordering"), doctorOrderings, "created_at DESC")
	query, pageErrors := applyPagination(query, c)
	if pageErrors.HasErrors() {
		utils.ValidationFailed(c, pageErrors)
		return
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.OK(c, gin.H{
		"count":   total,
		"doctors": newDoctorResponses(doctors),
	})
}

// GetDoctor retrieves a specific doctor.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.OK(c, newDoctorResponse(doctor))
}

// UpdateDoctor fully updates a doctor.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req DoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	fieldErrors, err := h.validateDoctor(&req, doctor.ID)
	if err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if fieldErrors.HasErrors() {
		utils.ValidationFailed(c, fieldErrors)
		return
	}

	req.apply(&doctor)

	if err := h.DB.Save(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "A doctor with this email or license number already exists.")
			return
		}
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor updated successfully", newDoctorResponse(doctor))
}

// DoctorPatchRequest represents a partial update; only present fields change.
type DoctorPatchRequest struct {
	FirstName           *string  `json:"first_name" validate:"omitempty,max=100"`
	LastName            *string  `json:"last_name" validate:"omitempty,max=100"`
	Email               *string  `json:"email" validate:"omitempty,email"`
	Phone               *string  `json:"phone" validate:"omitempty,max=15"`
	Gender              *string  `json:"gender" validate:"omitempty,oneof=M F O"`
	Specialization      *string  `json:"specialization" validate:"omitempty,oneof=GP CARD DERM NEURO ORTHO PEDI OB-GYN ENT ONCO PSY OTHER"`
	LicenseNumber       *string  `json:"license_number" validate:"omitempty,max=50"`
	HospitalAffiliation *string  `json:"hospital_affiliation" validate:"omitempty,max=200"`
	ExperienceYears     *uint    `json:"experience_years"`
	ConsultationFee     *float64 `json:"consultation_fee"`
	Bio                 *string  `json:"bio"`
	OfficeAddress       *string  `json:"office_address"`
	OfficePhone         *string  `json:"office_phone" validate:"omitempty,max=15"`
	AvailableDays       *string  `json:"available_days" validate:"omitempty,max=100"`
	AvailableHours      *string  `json:"available_hours" validate:"omitempty,max=100"`
	IsActive            *bool    `json:"is_active"`
}

// PartialUpdateDoctor updates only the fields present in the request.
func (h *DoctorHandler) PartialUpdateDoctor(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req DoctorPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	fieldErrors := utils.Validate(&req)
	if req.Phone != nil && !utils.ValidPhone(*req.Phone) {
		fieldErrors.Add("phone", "Phone number must contain only digits and optional + or - characters.")
	}
	if req.OfficePhone != nil && *req.OfficePhone != "" && !utils.ValidPhone(*req.OfficePhone) {
		fieldErrors.Add("office_phone", "Phone number must contain only digits and optional + or - characters.")
	}
	if req.Email != nil {
		var count int64
		if err := h.DB.Model(&models.Doctor{}).Where("email = ? AND id <> ?", *req.Email, doctor.ID).Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if count > 0 {
			fieldErrors.Add("email", "A doctor with this email already exists.")
		}
	}
	if req.LicenseNumber != nil {
		var count int64
		if err := h.DB.Model(&models.Doctor{}).Where("license_number = ? AND id <> ?", *req.LicenseNumber, doctor.ID).Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if count > 0 {
			fieldErrors.Add("license_number", "A doctor with this license number already exists.")
		}
	}
	if fieldErrors.HasErrors() {
		utils.ValidationFailed(c, fieldErrors)
		return
	}

	if req.FirstName != nil {
		doctor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		doctor.LastName = *req.LastName
	}
	if req.Email != nil {
		doctor.Email = *req.Email
	}
	if req.Phone != nil {
		doctor.Phone = *req.Phone
	}
	if req.Gender != nil {
		doctor.Gender = models.Gender(*req.Gender)
	}
	if req.Specialization != nil {
		doctor.Specialization = models.Specialization(*req.Specialization)
	}
	if req.LicenseNumber != nil {
		doctor.LicenseNumber = *req.LicenseNumber
	}
	if req.HospitalAffiliation != nil {
		doctor.HospitalAffiliation = *req.HospitalAffiliation
	}
	if req.ExperienceYears != nil {
		doctor.ExperienceYears = *req.ExperienceYears
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = req.ConsultationFee
	}
	if req.Bio != nil {
		doctor.Bio = *req.Bio
	}
	if req.OfficeAddress != nil {
		doctor.OfficeAddress = *req.OfficeAddress
	}
	if req.OfficePhone != nil {
		doctor.OfficePhone = *req.OfficePhone
	}
	if req.AvailableDays != nil {
		doctor.AvailableDays = *req.AvailableDays
	}
	if req.AvailableHours != nil {
		doctor.AvailableHours = *req.AvailableHours
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Conflict(c, "A doctor with this email or license number already exists.")
			return
		}
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor updated successfully", newDoctorResponse(doctor))
}

// DeleteDoctor hard-deletes a doctor.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete doctor: "+err.Error())
		return
	}

	logger.WithField("doctor_id", doctor.ID).Info("doctor deleted")
	utils.NoContent(c)
}

// ListSpecializations returns the static specialization choices.
func (h *DoctorHandler) ListSpecializations(c *gin.Context) {
	if !h.authorize(c) {
		return
	}

	utils.OK(c, models.SpecializationChoices())
}

// applyOrdering translates an ordering query parameter ("field" or "-field")
// into an ORDER BY clause, falling back to the default for unknown fields.
func applyOrdering(query *gorm.DB, ordering string, allowed map[string]string, fallback string) *gorm.DB {
	if ordering == "" {
		return query.Order(fallback)
	}
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	column, ok := allowed[field]
	if !ok {
		return query.Order(fallback)
	}
	if desc {
		return query.Order(column + " DESC")
	}
	return query.Order(column + " ASC")
}

// applyPagination applies page/page_size query parameters.
func applyPagination(query *gorm.DB, c *gin.Context) (*gorm.DB, utils.FieldErrors) {
	fieldErrors := utils.FieldErrors{}

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			fieldErrors.Add("page", "Must be a positive integer.")
		} else {
			page = parsed
		}
	}

	pageSize := 10
	if raw := c.Query("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			fieldErrors.Add("page_size", "Must be an integer between 1 and 100.")
		} else {
			pageSize = parsed
		}
	}

	if fieldErrors.HasErrors() {
		return query, fieldErrors
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize), fieldErrors
}
