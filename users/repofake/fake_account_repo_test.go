package fakeuserrepo_test

import (
	"fmt"
	"testing"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/users"
	fakeuserrepo "github.com/jrsteele09/go-clinic-console/users/repofake"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *fakeuserrepo.FakeAccountRepo, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		role := users.AccountRoleDoctor
		if i%2 == 1 {
			role = users.AccountRoleReception
		}
		require.NoError(t, repo.Upsert(&users.Account{
			Email:     fmt.Sprintf("staff%02d@clinic.test", i),
			FirstName: "Staff",
			LastName:  fmt.Sprintf("%02d", i),
			Role:      role,
			Status:    users.StatusActive,
		}))
	}
}

func TestUpsertAssignsIDAndRejectsDuplicateEmail(t *testing.T) {
	repo := fakeuserrepo.NewFakeAccountRepo()
	a := &users.Account{Email: "Doc@Clinic.test", Role: users.AccountRoleDoctor}
	require.NoError(t, repo.Upsert(a))
	require.NotEmpty(t, a.ID)

	got, err := repo.GetByEmail("doc@clinic.test")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	err = repo.Upsert(&users.Account{Email: "doc@clinic.test"})
	require.ErrorIs(t, err, clinicerrors.ErrInvalidRequest)
}

func TestListPagesAndFilters(t *testing.T) {
	repo := fakeuserrepo.NewFakeAccountRepo()
	seed(t, repo, 25)

	page, err := repo.List(users.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 25, page.Total)
	require.Len(t, page.Users, 10)
	require.Equal(t, 1, page.Page)

	last, err := repo.List(users.ListParams{Page: 3, Limit: 10})
	require.NoError(t, err)
	require.Len(t, last.Users, 5)

	beyond, err := repo.List(users.ListParams{Page: 9, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, beyond.Users)

	doctors, err := repo.List(users.ListParams{Role: "doctor", Limit: 100})
	require.NoError(t, err)
	require.Equal(t, 13, doctors.Total)

	search, err := repo.List(users.ListParams{Search: "staff07"})
	require.NoError(t, err)
	require.Equal(t, 1, search.Total)
}

func TestSetRoleAndStatus(t *testing.T) {
	repo := fakeuserrepo.NewFakeAccountRepo()
	a := &users.Account{Email: "r@clinic.test", Role: users.AccountRoleReception, Status: users.StatusActive}
	require.NoError(t, repo.Upsert(a))

	updated, err := repo.SetRole(a.ID, users.AccountRoleAdmin)
	require.NoError(t, err)
	require.Equal(t, users.AccountRoleAdmin, updated.Role)

	updated, err = repo.SetStatus(a.ID, users.StatusBanned)
	require.NoError(t, err)
	require.Equal(t, users.StatusBanned, updated.Status)

	_, err = repo.SetStatus("missing", users.StatusActive)
	require.ErrorIs(t, err, clinicerrors.ErrNotFound)
}

func TestUpdateProfileMovesEmailIndex(t *testing.T) {
	repo := fakeuserrepo.NewFakeAccountRepo()
	a := &users.Account{Email: "old@clinic.test", Role: users.AccountRoleDoctor, Status: users.StatusActive}
	require.NoError(t, repo.Upsert(a))
	other := &users.Account{Email: "taken@clinic.test", Role: users.AccountRoleReception}
	require.NoError(t, repo.Upsert(other))

	_, err := repo.UpdateProfile(a.ID, users.UpdateProfile{FirstName: "A", LastName: "B", Email: "Taken@clinic.test"})
	require.ErrorIs(t, err, clinicerrors.ErrInvalidRequest)

	updated, err := repo.UpdateProfile(a.ID, users.UpdateProfile{
		FirstName: "Gregory",
		LastName:  "House",
		Email:     "new@clinic.test",
		Phone:     "555-0100",
		Avatar:    "https://img.clinic.test/house.png",
	})
	require.NoError(t, err)
	require.Equal(t, "Gregory", updated.FirstName)
	require.Equal(t, "https://img.clinic.test/house.png", updated.Avatar)

	_, err = repo.GetByEmail("old@clinic.test")
	require.ErrorIs(t, err, clinicerrors.ErrNotFound)
	got, err := repo.GetByEmail("NEW@clinic.test")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	// Keeping the same email is not a conflict.
	_, err = repo.UpdateProfile(a.ID, users.UpdateProfile{FirstName: "G", LastName: "H", Email: "new@clinic.test"})
	require.NoError(t, err)

	_, err = repo.UpdateProfile("missing", users.UpdateProfile{Email: "x@clinic.test"})
	require.ErrorIs(t, err, clinicerrors.ErrNotFound)
}
