package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-clinic-console/devapi"
	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/patients"
	fakepatientrepo "github.com/jrsteele09/go-clinic-console/patients/repofake"
	"github.com/jrsteele09/go-clinic-console/users"
	fakeuserrepo "github.com/jrsteele09/go-clinic-console/users/repofake"
	"github.com/stretchr/testify/require"
)

const seedPassword = "Password123"

type cli struct {
	api  string
	data string
}

func newCLI(t *testing.T) cli {
	t.Helper()
	t.Setenv("SESSION_STORE", "memory")
	accounts := fakeuserrepo.NewFakeAccountRepo()
	require.NoError(t, devapi.Seed(accounts, seedPassword))
	srv := httptest.NewServer(devapi.New(accounts, fakepatientrepo.NewFakePatientRepo(), devapi.NewTokens("cli-key", time.Hour)))
	t.Cleanup(srv.Close)
	return cli{api: srv.URL, data: t.TempDir()}
}

func (c cli) run(stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	args = append([]string{"--api", c.api, "--data", c.data, "--log-level", "error"}, args...)
	err := execute(args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "login", "--email", devapi.SeedDoctorEmail, "--password", seedPassword)
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as")
	require.Contains(t, out, "doctor")

	out, err = c.run("", "--json", "whoami")
	require.NoError(t, err)
	var info struct {
		User      users.User `json:"user"`
		ExpiresAt *time.Time `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, devapi.SeedDoctorEmail, info.User.Email)
	require.Equal(t, users.RoleDoctor, info.User.Role)
	require.NotNil(t, info.ExpiresAt)
	require.True(t, info.ExpiresAt.After(time.Now()))

	out, err = c.run("", "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")

	_, err = c.run("", "whoami")
	require.ErrorIs(t, err, clinicerrors.ErrNotAuthenticated)
}

func TestLoginPromptsForPassword(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(seedPassword+"\n", "login", "--email", devapi.SeedReceptionEmail)
	require.NoError(t, err)
	require.Contains(t, out, "Password: ")
	require.Contains(t, out, "reception")
}

func TestLoginFailureShowsMessage(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "login", "--email", devapi.SeedAdminEmail, "--password", "WrongPass1")
	require.EqualError(t, err, "Invalid email or password")
}

func TestAdminManagesUsers(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "login", "--email", devapi.SeedAdminEmail, "--password", seedPassword)
	require.NoError(t, err)

	out, err := c.run("", "--json", "users", "create",
		"--email", "nurse@clinic.test", "--first-name", "Nora", "--last-name", "Nurse",
		"--role", "reception", "--temp-password", "TempPass123")
	require.NoError(t, err)
	var created users.Account
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.Equal(t, users.AccountRoleReception, created.Role)

	out, err = c.run("", "users", "role", created.ID, "doctor")
	require.NoError(t, err)
	require.Contains(t, out, "nurse@clinic.test")
	require.Contains(t, out, string(users.AccountRoleDoctor))

	_, err = c.run("", "users", "status", created.ID, "banned")
	require.NoError(t, err)

	out, err = c.run("", "--json", "users", "list", "--status", "banned")
	require.NoError(t, err)
	var list users.AccountList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Users, 1)
	require.Equal(t, created.ID, list.Users[0].ID)

	out, err = c.run("", "users", "list")
	require.NoError(t, err)
	require.Contains(t, out, "EMAIL")
	require.Contains(t, out, devapi.SeedAdminEmail)
}

func TestUsersForbiddenForDoctor(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "login", "--email", devapi.SeedDoctorEmail, "--password", seedPassword)
	require.NoError(t, err)

	_, err = c.run("", "users", "list")
	var authErr *clinicerrors.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, clinicerrors.KindForbidden, authErr.Kind)
}

func TestPatientCommands(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "login", "--email", devapi.SeedReceptionEmail, "--password", seedPassword)
	require.NoError(t, err)

	out, err := c.run("", "--json", "patients", "create",
		"--first-name", "Ali", "--last-name", "Valiyev", "--gender", "male",
		"--phone", "+998901234567", "--dob", "1990-04-12", "--blood-type", "o_positive")
	require.NoError(t, err)
	var p patients.Patient
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	require.Equal(t, patients.GenderMale, p.Gender)
	require.Equal(t, patients.BloodOPositive, p.BloodType)

	out, err = c.run("", "patients", "list", "--search", "Ali")
	require.NoError(t, err)
	require.Contains(t, out, "Valiyev")

	out, err = c.run("", "patients", "delete", p.ID)
	require.NoError(t, err)
	require.Contains(t, out, "Deleted "+p.ID)

	out, err = c.run("", "--json", "patients", "list")
	require.NoError(t, err)
	var list patients.List
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Zero(t, list.Total)
}

func TestPasswdChangesPassword(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "login", "--email", devapi.SeedDoctorEmail, "--password", seedPassword)
	require.NoError(t, err)

	_, err = c.run("", "passwd", "--current", seedPassword, "--new", "weak")
	var validationErr *clinicerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = c.run("", "passwd", "--current", seedPassword, "--new", "Changed123")
	require.NoError(t, err)

	_, err = c.run("", "logout")
	require.NoError(t, err)
	_, err = c.run("", "login", "--email", devapi.SeedDoctorEmail, "--password", "Changed123")
	require.NoError(t, err)
}

func TestProfileKeepsUnsetFields(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "login", "--email", devapi.SeedDoctorEmail, "--password", seedPassword)
	require.NoError(t, err)

	_, err = c.run("", "profile", "--email", devapi.SeedAdminEmail)
	var validationErr *clinicerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)

	out, err := c.run("", "profile", "--first", "Greg", "--avatar", "https://img.clinic.test/greg.png")
	require.NoError(t, err)
	require.Contains(t, out, "Profile updated")
	require.Contains(t, out, devapi.SeedDoctorEmail)

	out, err = c.run("", "--json", "whoami")
	require.NoError(t, err)
	var info struct {
		User users.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, "Greg", info.User.FirstName)
	require.Equal(t, "https://img.clinic.test/greg.png", info.User.Avatar)
	require.Equal(t, users.RoleDoctor, info.User.Role)
}
