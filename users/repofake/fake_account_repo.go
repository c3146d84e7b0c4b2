package fakeuserrepo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/users"
)

var _ users.AccountRepo = (*FakeAccountRepo)(nil)

type FakeAccountRepo struct {
	accounts map[string]*users.Account
	emailIds map[string]string // email to account id
	lock     sync.RWMutex
	nowTime  func() time.Time
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts: make(map[string]*users.Account),
		emailIds: make(map[string]string),
		nowTime:  time.Now,
	}
}

func (ar *FakeAccountRepo) Upsert(account *users.Account) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	email := strings.ToLower(account.Email)
	if existingID, ok := ar.emailIds[email]; ok && existingID != account.ID && account.ID != "" {
		return clinicerrors.Wrapf(clinicerrors.ErrInvalidRequest, "email %s already registered", account.Email)
	}
	if account.ID == "" {
		if _, ok := ar.emailIds[email]; ok {
			return clinicerrors.Wrapf(clinicerrors.ErrInvalidRequest, "email %s already registered", account.Email)
		}
		account.ID = uuid.New().String()
		account.CreatedAt = ar.nowTime()
	}
	account.UpdatedAt = ar.nowTime()
	ar.accounts[account.ID] = account
	ar.emailIds[email] = account.ID
	return nil
}

func (ar *FakeAccountRepo) GetByEmail(email string) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	id, ok := ar.emailIds[strings.ToLower(email)]
	if !ok {
		return nil, clinicerrors.ErrNotFound
	}
	return ar.accounts[id], nil
}

func (ar *FakeAccountRepo) GetByID(id string) (*users.Account, error) {
	ar.lock.RLock()
	defer ar.lock.RUnlock()

	account, ok := ar.accounts[id]
	if !ok {
		return nil, clinicerrors.ErrNotFound
	}
	return account, nil
}

func (ar *FakeAccountRepo) List(params users.ListParams) (users.AccountList, error) {
	params = params.Normalise()

	ar.lock.RLock()
	defer ar.lock.RUnlock()

	search := strings.ToLower(params.Search)
	list := make([]*users.Account, 0)
	for _, a := range ar.accounts {
		if params.Role != "" && !strings.EqualFold(string(a.Role), params.Role) {
			continue
		}
		if params.Status != "" && !strings.EqualFold(string(a.Status), params.Status) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Email), search) &&
			!strings.Contains(strings.ToLower(a.FirstName+" "+a.LastName), search) {
			continue
		}
		list = append(list, a)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Email < list[j].Email
	})

	result := users.AccountList{Total: len(list), Page: params.Page, Limit: params.Limit}
	start := (params.Page - 1) * params.Limit
	if start >= len(list) {
		result.Users = []*users.Account{}
		return result, nil
	}
	end := min(start+params.Limit, len(list))
	result.Users = list[start:end]
	return result, nil
}

func (ar *FakeAccountRepo) SetRole(id string, role users.AccountRole) (*users.Account, error) {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	account, ok := ar.accounts[id]
	if !ok {
		return nil, clinicerrors.ErrNotFound
	}
	account.Role = role
	account.UpdatedAt = ar.nowTime()
	return account, nil
}

func (ar *FakeAccountRepo) SetStatus(id string, status users.Status) (*users.Account, error) {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	account, ok := ar.accounts[id]
	if !ok {
		return nil, clinicerrors.ErrNotFound
	}
	account.Status = status
	account.UpdatedAt = ar.nowTime()
	return account, nil
}

func (ar *FakeAccountRepo) SetPasswordHash(id, hash string) error {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	account, ok := ar.accounts[id]
	if !ok {
		return clinicerrors.ErrNotFound
	}
	account.PasswordHash = hash
	account.TemporaryPassword = ""
	account.UpdatedAt = ar.nowTime()
	return nil
}

func (ar *FakeAccountRepo) UpdateProfile(id string, p users.UpdateProfile) (*users.Account, error) {
	ar.lock.Lock()
	defer ar.lock.Unlock()

	account, ok := ar.accounts[id]
	if !ok {
		return nil, clinicerrors.ErrNotFound
	}
	email := strings.ToLower(p.Email)
	if existingID, taken := ar.emailIds[email]; taken && existingID != id {
		return nil, clinicerrors.Wrapf(clinicerrors.ErrInvalidRequest, "email %s already registered", p.Email)
	}

	delete(ar.emailIds, strings.ToLower(account.Email))
	ar.emailIds[email] = id
	account.FirstName = p.FirstName
	account.LastName = p.LastName
	account.Email = p.Email
	account.Phone = p.Phone
	account.Avatar = p.Avatar
	account.UpdatedAt = ar.nowTime()
	return account, nil
}
