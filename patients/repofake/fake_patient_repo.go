package fakepatientrepo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/patients"
)

var _ patients.Repo = (*FakePatientRepo)(nil)

type FakePatientRepo struct {
	patients map[string]*patients.Patient
	lock     sync.RWMutex
	nowTime  func() time.Time
}

func NewFakePatientRepo() *FakePatientRepo {
	return &FakePatientRepo{
		patients: make(map[string]*patients.Patient),
		nowTime:  time.Now,
	}
}

func (pr *FakePatientRepo) Create(p *patients.Patient) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := pr.nowTime()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Active = true
	pr.patients[p.ID] = p
	return nil
}

func (pr *FakePatientRepo) Get(id string) (*patients.Patient, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	p, ok := pr.patients[id]
	if !ok {
		return nil, clinicerrors.ErrNotFound
	}
	return p, nil
}

func (pr *FakePatientRepo) Update(id string, in patients.Input) (*patients.Patient, error) {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	p, ok := pr.patients[id]
	if !ok {
		return nil, clinicerrors.ErrNotFound
	}
	in.Apply(p)
	p.UpdatedAt = pr.nowTime()
	return p, nil
}

func (pr *FakePatientRepo) Delete(id string) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if _, ok := pr.patients[id]; !ok {
		return clinicerrors.ErrNotFound
	}
	delete(pr.patients, id)
	return nil
}

func (pr *FakePatientRepo) List(params patients.ListParams) (patients.List, error) {
	params = params.Normalise()

	pr.lock.RLock()
	defer pr.lock.RUnlock()

	search := strings.ToLower(params.Search)
	list := make([]*patients.Patient, 0, len(pr.patients))
	for _, p := range pr.patients {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FirstName+" "+p.LastName), search) &&
			!strings.Contains(p.Phone, search) {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].LastName != list[j].LastName {
			return list[i].LastName < list[j].LastName
		}
		return list[i].ID < list[j].ID
	})

	result := patients.List{
		Total: len(list),
		Page:  params.Page,
		Limit: params.Limit,
		Pages: (len(list) + params.Limit - 1) / params.Limit,
	}
	start := (params.Page - 1) * params.Limit
	if start >= len(list) {
		result.Patients = []*patients.Patient{}
		return result, nil
	}
	result.Patients = list[start:min(start+params.Limit, len(list))]
	return result, nil
}
