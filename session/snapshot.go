package session

import (
	"encoding/json"
	"strings"

	"github.com/jrsteele09/go-clinic-console/users"
)

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	User            *users.User `json:"user,omitempty"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsLoading       bool        `json:"isLoading"`
	LastError       string      `json:"lastError,omitempty"`
	HasCredential   bool        `json:"-"`
	// Seq increases with every mutation so consumers can drop stale copies.
	Seq uint64 `json:"-"`
}

// Persisted is the subset of the session written to durable storage.
type Persisted struct {
	Credential      string      `json:"token"`
	User            *users.User `json:"user,omitempty"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

func encodePersisted(p Persisted) ([]byte, error) {
	return json.Marshal(p)
}

func decodePersisted(data []byte) (Persisted, error) {
	var p Persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return Persisted{}, err
	}
	p.Credential = strings.TrimSpace(p.Credential)
	// A credential without its user, or a user without a credential, is not a session.
	if p.Credential == "" || p.User == nil {
		return Persisted{}, nil
	}
	return p, nil
}
