package models

// BloodType enum
type BloodType string

const (
	BloodOPos  BloodType = "O+"
	BloodONeg  BloodType = "O-"
	BloodAPos  BloodType = "A+"
	BloodANeg  BloodType = "A-"
	BloodBPos  BloodType = "B+"
	BloodBNeg  BloodType = "B-"
	BloodABPos BloodType = "AB+"
	BloodABNeg BloodType = "AB-"
)

// Patient represents a patient record owned by exactly one user.
type Patient struct {
	BaseModel
	UserID           string    `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	FirstName        string    `gorm:"size:100;not null" json:"first_name"`
	LastName         string    `gorm:"size:100;not null" json:"last_name"`
	Email            string    `gorm:"size:255;index" json:"email"`
	Phone            string    `gorm:"size:15" json:"phone"`
	DateOfBirth      string    `gorm:"size:10" json:"date_of_birth"`
	Gender           Gender    `gorm:"size:1" json:"gender"`
	BloodType        BloodType `gorm:"size:3" json:"blood_type,omitempty"`
	Address          string    `gorm:"type:text" json:"address"`
	City             string    `gorm:"size:100" json:"city"`
	State            string    `gorm:"size:100" json:"state"`
	PostalCode       string    `gorm:"size:10" json:"postal_code"`
	MedicalHistory   string    `gorm:"type:text" json:"medical_history,omitempty"`
	Allergies        string    `gorm:"type:text" json:"allergies,omitempty"`
	EmergencyContact string    `gorm:"size:150" json:"emergency_contact,omitempty"`
	EmergencyPhone   string    `gorm:"size:15" json:"emergency_phone,omitempty"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// OwnerID reports the identity that owns this record.
func (p *Patient) OwnerID() string {
	return p.UserID
}
