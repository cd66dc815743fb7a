package models

import "time"

// MappingStatus enum
type MappingStatus string

const (
	MappingActive    MappingStatus = "ACTIVE"
	MappingInactive  MappingStatus = "INACTIVE"
	MappingSuspended MappingStatus = "SUSPENDED"
)

// StatusChoices lists every selectable mapping status with its display label.
func StatusChoices() []Choice {
	return []Choice{
		{ID: string(MappingActive), Name: "Active"},
		{ID: string(MappingInactive), Name: "Inactive"},
		{ID: string(MappingSuspended), Name: "Suspended"},
	}
}

// ValidMappingStatus reports whether s is a member of the status enum.
func ValidMappingStatus(s MappingStatus) bool {
	switch s {
	case MappingActive, MappingInactive, MappingSuspended:
		return true
	}
	return false
}

// StatusDisplay maps a status code to its label.
func StatusDisplay(s MappingStatus) string {
	for _, c := range StatusChoices() {
		if c.ID == string(s) {
			return c.Name
		}
	}
	return string(s)
}

// PatientDoctorMapping joins one patient to one doctor.
// The (patient, doctor) pair is unique: a patient cannot be assigned
// to the same doctor twice.
type PatientDoctorMapping struct {
	BaseModel
	PatientID      string        `gorm:"size:36;not null;uniqueIndex:idx_patient_doctor;index" json:"patient_id"`
	DoctorID       string        `gorm:"size:36;not null;uniqueIndex:idx_patient_doctor;index" json:"doctor_id"`
	AssignmentDate time.Time     `gorm:"autoCreateTime" json:"assignment_date"`
	Status         MappingStatus `gorm:"size:20;default:'ACTIVE';index" json:"status"`
	Notes          string        `gorm:"type:text" json:"notes,omitempty"`

	Patient Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"patient"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"doctor"`
}
