package patients_test

import (
	"testing"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/patients"
	"github.com/stretchr/testify/require"
)

func validInput() patients.Input {
	return patients.Input{
		FirstName:   "Aziz",
		LastName:    "Rahimov",
		Gender:      "male",
		Phone:       "+998901234567",
		DateOfBirth: "1987-04-12",
		BloodType:   "o_positive",
	}
}

func TestInputValidateNormalisesEnums(t *testing.T) {
	in := validInput()
	require.NoError(t, in.Validate())
	require.Equal(t, patients.GenderMale, in.Gender)
	require.Equal(t, patients.BloodOPositive, in.BloodType)
}

func TestInputValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*patients.Input)
		field  string
	}{
		{"missing first name", func(in *patients.Input) { in.FirstName = " " }, "firstName"},
		{"missing phone", func(in *patients.Input) { in.Phone = "" }, "phone"},
		{"bad gender", func(in *patients.Input) { in.Gender = "unknown" }, "gender"},
		{"bad blood type", func(in *patients.Input) { in.BloodType = "C_POSITIVE" }, "bloodType"},
		{"bad date", func(in *patients.Input) { in.DateOfBirth = "12/04/1987" }, "dateOfBirth"},
		{"bad email", func(in *patients.Input) { in.Email = "nobody" }, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			var vErr *clinicerrors.ValidationError
			require.ErrorAs(t, in.Validate(), &vErr)
			require.Equal(t, tt.field, vErr.Field)
		})
	}
}
