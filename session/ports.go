package session

import (
	"context"

	"github.com/jrsteele09/go-clinic-console/users"
)

// Authenticator is the remote authentication collaborator. Implementations
// report failures as *errors.AuthError.
type Authenticator interface {
	// Authenticate exchanges credentials for the user and a bearer credential.
	Authenticate(ctx context.Context, email, password string) (users.User, string, error)

	// FetchCurrentProfile returns the user the credential belongs to.
	FetchCurrentProfile(ctx context.Context, credential string) (users.User, error)
}

// Storage is durable key/value persistence for the session entry.
// Get returns errors.ErrNotFound when key is absent.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Recorder receives operation outcomes, e.g. for metrics.
type Recorder interface {
	LoginCompleted(outcome string)
	CheckAuthCompleted(outcome string)
}

// Outcomes passed to Recorder.
const (
	OutcomeSuccess      = "success"
	OutcomeValidation   = "validation"
	OutcomeInProgress   = "in_progress"
	OutcomeRejected     = "rejected"
	OutcomeNetwork      = "network"
	OutcomeSuperseded   = "superseded"
	OutcomeNoCredential = "no_credential"
)

type nopRecorder struct{}

func (nopRecorder) LoginCompleted(string)     {}
func (nopRecorder) CheckAuthCompleted(string) {}
