package users

// AccountRepo stores user-management records.
type AccountRepo interface {
	Upsert(account *Account) error
	GetByEmail(email string) (*Account, error)
	GetByID(id string) (*Account, error)
	List(params ListParams) (AccountList, error)
	SetRole(id string, role AccountRole) (*Account, error)
	SetStatus(id string, status Status) (*Account, error)
	SetPasswordHash(id, hash string) error
	// UpdateProfile applies p to the account. A taken email is ErrInvalidRequest.
	UpdateProfile(id string, p UpdateProfile) (*Account, error)
}
