package models

// Gender enum
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// Specialization enum
type Specialization string

const (
	SpecGeneralPractitioner Specialization = "GP"
	SpecCardiologist        Specialization = "CARD"
	SpecDermatologist       Specialization = "DERM"
	SpecNeurologist         Specialization = "NEURO"
	SpecOrthopedic          Specialization = "ORTHO"
	SpecPediatrician        Specialization = "PEDI"
	SpecObGyn               Specialization = "OB-GYN"
	SpecENT                 Specialization = "ENT"
	SpecOncologist          Specialization = "ONCO"
	SpecPsychiatrist        Specialization = "PSY"
	SpecOther               Specialization = "OTHER"
)

// Choice is a (code, label) pair used to drive client-side choice lists.
type Choice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpecializationChoices lists every selectable specialization with its display label.
func SpecializationChoices() []Choice {
	return []Choice{
		{ID: string(SpecGeneralPractitioner), Name: "General Practitioner"},
		{ID: string(SpecCardiologist), Name: "Cardiologist"},
		{ID: string(SpecDermatologist), Name: "Dermatologist"},
		{ID: string(SpecNeurologist), Name: "Neurologist"},
		{ID: string(SpecOrthopedic), Name: "Orthopedic"},
		{ID: string(SpecPediatrician), Name: "Pediatrician"},
		{ID: string(SpecObGyn), Name: "Obstetrics & Gynecology"},
		{ID: string(SpecENT), Name: "ENT Specialist"},
		{ID: string(SpecOncologist), Name: "Oncologist"},
		{ID: string(SpecPsychiatrist), Name: "Psychiatrist"},
		{ID: string(SpecOther), Name: "Other"},
	}
}

// GenderDisplay maps a gender code to its label.
func GenderDisplay(g Gender) string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	case GenderOther:
		return "Other"
	}
	return string(g)
}

// SpecializationDisplay maps a specialization code to its label.
func SpecializationDisplay(s Specialization) string {
	for _, c := range SpecializationChoices() {
		if c.ID == string(s) {
			return c.Name
		}
	}
	return string(s)
}

// Doctor represents a practitioner in the directory.
type Doctor struct {
	BaseModel
	UserID              *string        `gorm:"size:36;uniqueIndex" json:"user_id,omitempty"`
	FirstName           string         `gorm:"size:100;not null" json:"first_name"`
	LastName            string         `gorm:"size:100;not null" json:"last_name"`
	Email               string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone               string         `gorm:"size:15" json:"phone"`
	Gender              Gender         `gorm:"size:1" json:"gender"`
	Specialization      Specialization `gorm:"size:20;index" json:"specialization"`
	LicenseNumber       string         `gorm:"uniqueIndex;size:50;not null" json:"license_number"`
	HospitalAffiliation string         `gorm:"size:200" json:"hospital_affiliation,omitempty"`
	ExperienceYears     uint           `gorm:"default:0" json:"experience_years"`
	ConsultationFee     *float64       `json:"consultation_fee,omitempty"`
	Bio                 string         `gorm:"type:text" json:"bio,omitempty"`
	OfficeAddress       string         `gorm:"type:text" json:"office_address,omitempty"`
	OfficePhone         string         `gorm:"size:15" json:"office_phone,omitempty"`
	AvailableDays       string         `gorm:"size:100" json:"available_days,omitempty"`
	AvailableHours      string         `gorm:"size:100" json:"available_hours,omitempty"`
	IsActive            bool           `gorm:"default:true" json:"is_active"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
