package patients

import (
	"strings"
	"time"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type BloodType string

const (
	BloodAPositive  BloodType = "A_POSITIVE"
	BloodANegative  BloodType = "A_NEGATIVE"
	BloodBPositive  BloodType = "B_POSITIVE"
	BloodBNegative  BloodType = "B_NEGATIVE"
	BloodABPositive BloodType = "AB_POSITIVE"
	BloodABNegative BloodType = "AB_NEGATIVE"
	BloodOPositive  BloodType = "O_POSITIVE"
	BloodONegative  BloodType = "O_NEGATIVE"
)

var bloodTypes = map[BloodType]struct{}{
	BloodAPositive: {}, BloodANegative: {},
	BloodBPositive: {}, BloodBNegative: {},
	BloodABPositive: {}, BloodABNegative: {},
	BloodOPositive: {}, BloodONegative: {},
}

type Patient struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Gender           Gender    `json:"gender"`
	DateOfBirth      string    `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	Address          string    `json:"address,omitempty"`
	EmergencyContact string    `json:"emergencyContact,omitempty"`
	BloodType        BloodType `json:"bloodType,omitempty"`
	Allergies        []string  `json:"allergies,omitempty"`
	MedicalHistory   string    `json:"medicalHistory,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Active           bool      `json:"isActive"`
	CreatedBy        string    `json:"createdBy,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Input is the create/update payload for a patient.
type Input struct {
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Gender           Gender    `json:"gender"`
	DateOfBirth      string    `json:"dateOfBirth,omitempty"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email,omitempty"`
	Address          string    `json:"address,omitempty"`
	EmergencyContact string    `json:"emergencyContact,omitempty"`
	BloodType        BloodType `json:"bloodType,omitempty"`
	Allergies        []string  `json:"allergies,omitempty"`
	MedicalHistory   string    `json:"medicalHistory,omitempty"`
	Notes            string    `json:"notes,omitempty"`
}

// Validate normalises enum casing and checks required fields.
func (in *Input) Validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return clinicerrors.Validation("firstName", "first name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		return clinicerrors.Validation("lastName", "last name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return clinicerrors.Validation("phone", "phone is required")
	}
	in.Gender = Gender(strings.ToUpper(string(in.Gender)))
	switch in.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return clinicerrors.Validation("gender", "gender must be MALE, FEMALE or OTHER")
	}
	if in.BloodType != "" {
		in.BloodType = BloodType(strings.ToUpper(string(in.BloodType)))
		if _, ok := bloodTypes[in.BloodType]; !ok {
			return clinicerrors.Validation("bloodType", "unknown blood type")
		}
	}
	if in.DateOfBirth != "" {
		if _, err := time.Parse(time.DateOnly, in.DateOfBirth); err != nil {
			return clinicerrors.Validation("dateOfBirth", "date of birth must be YYYY-MM-DD")
		}
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return clinicerrors.Validation("email", "email is not valid")
	}
	return nil
}

// Apply copies the input onto p.
func (in Input) Apply(p *Patient) {
	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.Gender = in.Gender
	p.DateOfBirth = in.DateOfBirth
	p.Phone = in.Phone
	p.Email = in.Email
	p.Address = in.Address
	p.EmergencyContact = in.EmergencyContact
	p.BloodType = in.BloodType
	p.Allergies = in.Allergies
	p.MedicalHistory = in.MedicalHistory
	p.Notes = in.Notes
}

type ListParams struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Search string `json:"search,omitempty"`
}

func (p ListParams) Normalise() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	return p
}

type List struct {
	Patients []*Patient `json:"patients"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
	Pages    int        `json:"totalPages"`
}

type Repo interface {
	Create(p *Patient) error
	Get(id string) (*Patient, error)
	Update(id string, in Input) (*Patient, error)
	Delete(id string) error
	List(params ListParams) (List, error)
}
