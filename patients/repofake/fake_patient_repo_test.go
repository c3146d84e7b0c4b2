package fakepatientrepo_test

import (
	"fmt"
	"testing"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/patients"
	fakepatientrepo "github.com/jrsteele09/go-clinic-console/patients/repofake"
	"github.com/stretchr/testify/require"
)

func TestCreateUpdateDelete(t *testing.T) {
	repo := fakepatientrepo.NewFakePatientRepo()
	p := &patients.Patient{FirstName: "Lola", LastName: "Yusupova", Gender: patients.GenderFemale, Phone: "555"}
	require.NoError(t, repo.Create(p))
	require.NotEmpty(t, p.ID)
	require.True(t, p.Active)

	updated, err := repo.Update(p.ID, patients.Input{FirstName: "Lola", LastName: "Yusupova", Gender: patients.GenderFemale, Phone: "777"})
	require.NoError(t, err)
	require.Equal(t, "777", updated.Phone)

	require.NoError(t, repo.Delete(p.ID))
	_, err = repo.Get(p.ID)
	require.ErrorIs(t, err, clinicerrors.ErrNotFound)
	require.ErrorIs(t, repo.Delete(p.ID), clinicerrors.ErrNotFound)
}

func TestListPages(t *testing.T) {
	repo := fakepatientrepo.NewFakePatientRepo()
	for i := 0; i < 12; i++ {
		require.NoError(t, repo.Create(&patients.Patient{FirstName: "P", LastName: fmt.Sprintf("L%02d", i), Phone: fmt.Sprintf("90%02d", i)}))
	}

	first, err := repo.List(patients.ListParams{Limit: 5})
	require.NoError(t, err)
	require.Equal(t, 12, first.Total)
	require.Equal(t, 3, first.Pages)
	require.Len(t, first.Patients, 5)
	require.Equal(t, "L00", first.Patients[0].LastName)

	third, err := repo.List(patients.ListParams{Page: 3, Limit: 5})
	require.NoError(t, err)
	require.Len(t, third.Patients, 2)

	search, err := repo.List(patients.ListParams{Search: "l11"})
	require.NoError(t, err)
	require.Equal(t, 1, search.Total)
}
