package devapi

import (
	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/users"
)

// Seeded staff accounts, all sharing the seed password.
const (
	SeedAdminEmail     = "admin@clinic.test"
	SeedDoctorEmail    = "doctor@clinic.test"
	SeedReceptionEmail = "reception@clinic.test"
)

// Seed creates the admin, doctor and reception accounts unless they exist.
func Seed(accounts users.AccountRepo, password string) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return clinicerrors.Wrapf(err, "[devapi.Seed] hash")
	}

	seeds := []users.Account{
		{Email: SeedAdminEmail, FirstName: "Aziza", LastName: "Karimova", Role: users.AccountRoleAdmin},
		{Email: SeedDoctorEmail, FirstName: "Bekzod", LastName: "Rahimov", Role: users.AccountRoleDoctor, Specialization: "General practice"},
		{Email: SeedReceptionEmail, FirstName: "Dilnoza", LastName: "Yusupova", Role: users.AccountRoleReception},
	}
	for _, seed := range seeds {
		if _, err := accounts.GetByEmail(seed.Email); err == nil {
			continue
		}
		account := seed
		account.Status = users.StatusActive
		account.PasswordHash = hash
		if err := accounts.Upsert(&account); err != nil {
			return clinicerrors.Wrapf(err, "[devapi.Seed] %s", seed.Email)
		}
	}
	return nil
}
