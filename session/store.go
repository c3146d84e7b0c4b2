package session

import (
	"context"
	"strings"
	"sync"
	"time"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/users"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultStorageKey     = "clinic.session"
	DefaultRequestTimeout = 10 * time.Second
	// DefaultStorageTimeout bounds each write to or removal from storage.
	DefaultStorageTimeout = 5 * time.Second
)

// Store is the single source of truth for who is logged in. It is the only
// component that mutates session fields. Safe for concurrent use.
type Store struct {
	auth      Authenticator
	storage   Storage
	key       string
	timeout   time.Duration
	ioTimeout time.Duration
	logger    zerolog.Logger
	recorder  Recorder

	mu            sync.Mutex
	user          *users.User
	credential    string
	authenticated bool
	lastError     string
	loginInFlight bool
	checks        int
	generation    uint64 // bumped by every logout; late results from an older generation are dropped
	seq           uint64

	listenersMu  sync.Mutex
	listeners    map[uint64]func(Snapshot)
	nextListener uint64

	checkFlight singleflight.Group
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithStorageKey sets the namespaced key the session is persisted under.
func WithStorageKey(key string) StoreOption {
	return func(s *Store) {
		s.key = key
	}
}

// WithRequestTimeout bounds every collaborator call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.timeout = d
	}
}

// WithStorageTimeout bounds every storage write and removal.
func WithStorageTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.ioTimeout = d
		}
	}
}

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics reports login and check-auth outcomes to r.
func WithMetrics(r Recorder) StoreOption {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewStore creates a cold, empty store. Call Restore to rehydrate a persisted session.
func NewStore(auth Authenticator, storage Storage, options ...StoreOption) (*Store, error) {
	if auth == nil {
		return nil, clinicerrors.New("[session.NewStore] authenticator is required")
	}
	if storage == nil {
		return nil, clinicerrors.New("[session.NewStore] storage is required")
	}

	s := &Store{
		auth:      auth,
		storage:   storage,
		key:       DefaultStorageKey,
		timeout:   DefaultRequestTimeout,
		ioTimeout: DefaultStorageTimeout,
		logger:    zerolog.Nop(),
		recorder:  nopRecorder{},
		listeners: make(map[uint64]func(Snapshot)),
	}
	for _, opt := range options {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "session").Str("key", s.key).Logger()
	return s, nil
}

// Restore reads the persisted session once. A missing entry leaves the store
// empty; an unreadable one is also removed.
func (s *Store) Restore(ctx context.Context) error {
	data, err := s.storage.Get(ctx, s.key)
	if clinicerrors.Is(err, clinicerrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return clinicerrors.Wrapf(err, "[Store.Restore] storage.Get")
	}
	persisted, err := decodePersisted(data)
	if err != nil || persisted.Credential == "" {
		s.logger.Warn().Err(err).Msg("Discarding unreadable persisted session")
		ioCtx, cancel := s.storageContext(ctx)
		defer cancel()
		if err := s.storage.Remove(ioCtx, s.key); err != nil && !clinicerrors.Is(err, clinicerrors.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("Failed to purge persisted session")
		}
		return nil
	}

	s.mu.Lock()
	s.user = persisted.User
	s.credential = persisted.Credential
	s.authenticated = persisted.IsAuthenticated
	snap := s.mutatedLocked()
	s.mu.Unlock()

	s.logger.Debug().Str("user_id", persisted.User.ID).Msg("Session restored")
	s.notify(snap)
	return nil
}

// Login authenticates with email and password. Failures are recorded in
// LastError and returned; a failed login leaves any existing session as it was.
// A login is refused with ErrLoginInProgress while another operation is loading.
func (s *Store) Login(ctx context.Context, email, password string) (*users.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		s.recorder.LoginCompleted(OutcomeValidation)
		return nil, clinicerrors.Validation("email", "Email is required")
	}
	if password == "" {
		s.recorder.LoginCompleted(OutcomeValidation)
		return nil, clinicerrors.Validation("password", "Password is required")
	}

	s.mu.Lock()
	if s.loginInFlight || s.checks > 0 {
		s.mu.Unlock()
		s.recorder.LoginCompleted(OutcomeInProgress)
		return nil, clinicerrors.ErrLoginInProgress
	}
	s.loginInFlight = true
	s.lastError = ""
	generation := s.generation
	snap := s.mutatedLocked()
	s.mu.Unlock()
	s.notify(snap)

	callCtx, cancel := s.callContext(ctx)
	user, credential, err := s.auth.Authenticate(callCtx, email, password)
	cancel()
	if err == nil {
		err = checkIdentity(user, credential)
	}
	err = classify(err)

	s.mu.Lock()
	s.loginInFlight = false

	if err != nil {
		s.lastError = clinicerrors.DisplayMessage(err, clinicerrors.MessageLoginFailed)
		snap := s.mutatedLocked()
		s.mu.Unlock()
		s.notify(snap)
		s.recorder.LoginCompleted(outcomeOf(err))
		s.logger.Info().Err(err).Str("email", email).Msg("Login failed")
		return nil, err
	}

	if generation != s.generation {
		snap := s.mutatedLocked()
		s.mu.Unlock()
		s.notify(snap)
		s.recorder.LoginCompleted(OutcomeSuperseded)
		return nil, clinicerrors.Wrapf(clinicerrors.ErrNotAuthenticated, "[Store.Login] logged out while logging in")
	}

	s.user = &user
	s.credential = credential
	s.authenticated = true
	s.persistLocked(ctx)
	snap = s.mutatedLocked()
	s.mu.Unlock()
	s.notify(snap)

	s.recorder.LoginCompleted(OutcomeSuccess)
	s.logger.Info().Str("user_id", user.ID).Stringer("role", user.Role).Msg("Login succeeded")
	result := user
	return &result, nil
}

// Logout clears the session and purges the persisted entry. It cannot fail;
// storage errors are logged.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.logoutLocked(ctx)
	snap := s.mutatedLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store) logoutLocked(ctx context.Context) {
	s.user = nil
	s.credential = ""
	s.authenticated = false
	s.lastError = ""
	s.generation++

	ioCtx, cancel := s.storageContext(ctx)
	defer cancel()
	if err := s.storage.Remove(ioCtx, s.key); err != nil && !clinicerrors.Is(err, clinicerrors.ErrNotFound) {
		s.logger.Warn().Err(err).Msg("Failed to purge persisted session")
	}
}

// CheckAuth re-validates the stored credential. Without a credential it marks
// the session unauthenticated and makes no call. Any validation failure logs
// the session out. Concurrent calls for the same credential share one request.
func (s *Store) CheckAuth(ctx context.Context) error {
	s.mu.Lock()
	credential := s.credential
	if credential == "" {
		s.authenticated = false
		snap := s.mutatedLocked()
		s.mu.Unlock()
		s.notify(snap)
		s.recorder.CheckAuthCompleted(OutcomeNoCredential)
		return nil
	}
	s.mu.Unlock()

	// The shared validation outlives any one caller; a caller that gives up
	// gets its own context error and leaves the session alone.
	result := s.checkFlight.DoChan(credential, func() (any, error) {
		return nil, s.validate(context.WithoutCancel(ctx), credential)
	})
	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) validate(ctx context.Context, credential string) error {
	s.mu.Lock()
	s.checks++
	generation := s.generation
	snap := s.mutatedLocked()
	s.mu.Unlock()
	s.notify(snap)

	callCtx, cancel := s.callContext(ctx)
	user, err := s.auth.FetchCurrentProfile(callCtx, credential)
	cancel()
	if err == nil {
		err = checkIdentity(user, credential)
	}
	err = classify(err)

	s.mu.Lock()
	s.checks--

	if generation != s.generation || credential != s.credential {
		snap := s.mutatedLocked()
		s.mu.Unlock()
		s.notify(snap)
		s.recorder.CheckAuthCompleted(OutcomeSuperseded)
		return nil
	}

	if err != nil {
		s.logoutLocked(ctx)
		s.lastError = clinicerrors.DisplayMessage(err, clinicerrors.MessageSessionExpired)
		snap := s.mutatedLocked()
		s.mu.Unlock()
		s.notify(snap)
		s.recorder.CheckAuthCompleted(outcomeOf(err))
		s.logger.Info().Err(err).Msg("Session re-validation failed, logged out")
		return err
	}

	s.user = &user
	s.authenticated = true
	s.persistLocked(ctx)
	snap = s.mutatedLocked()
	s.mu.Unlock()
	s.notify(snap)
	s.recorder.CheckAuthCompleted(OutcomeSuccess)
	return nil
}

// ClearError drops LastError.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.lastError = ""
	snap := s.mutatedLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Token makes the store an oauth2.TokenSource for authorised API calls.
func (s *Store) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credential == "" {
		return nil, clinicerrors.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: s.credential, TokenType: "Bearer"}, nil
}

var _ oauth2.TokenSource = (*Store)(nil)

// Subscribe registers fn to receive a snapshot after every mutation. fn runs
// outside the store's state lock and must not call Subscribe or a cancel func.
// The returned func unsubscribes; no snapshot is delivered once it has returned.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) notify(snap Snapshot) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	for _, fn := range s.listeners {
		fn(snap)
	}
}

func (s *Store) mutatedLocked() Snapshot {
	s.seq++
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	var user *users.User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return Snapshot{
		User:            user,
		IsAuthenticated: s.authenticated && s.credential != "",
		IsLoading:       s.loginInFlight || s.checks > 0,
		LastError:       s.lastError,
		HasCredential:   s.credential != "",
		Seq:             s.seq,
	}
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := encodePersisted(Persisted{
		Credential:      s.credential,
		User:            s.user,
		IsAuthenticated: s.authenticated,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode session")
		return
	}
	ioCtx, cancel := s.storageContext(ctx)
	defer cancel()
	if err := s.storage.Set(ioCtx, s.key, data); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist session")
	}
}

// storageContext detaches storage I/O from the caller so a cancelled request
// cannot leave a stale entry behind. Writes stay under s.mu to keep their order
// with logins and logouts; the bound keeps that wait short.
func (s *Store) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.ioTimeout)
}

func (s *Store) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func checkIdentity(user users.User, credential string) error {
	if strings.TrimSpace(credential) == "" {
		return &clinicerrors.AuthError{Kind: clinicerrors.KindInvalidCredentials, Message: clinicerrors.MessageLoginFailed}
	}
	if !user.Role.Valid() {
		return &clinicerrors.AuthError{Kind: clinicerrors.KindForbidden, Message: "This account cannot sign in to the clinic console."}
	}
	return nil
}

// classify turns context expiry and unclassified failures into AuthErrors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var authErr *clinicerrors.AuthError
	if clinicerrors.As(err, &authErr) {
		return err
	}
	if clinicerrors.Is(err, context.DeadlineExceeded) || clinicerrors.Is(err, context.Canceled) {
		return clinicerrors.Network(err)
	}
	return &clinicerrors.AuthError{Kind: clinicerrors.KindInvalidCredentials, Err: err}
}

func outcomeOf(err error) string {
	var authErr *clinicerrors.AuthError
	if clinicerrors.As(err, &authErr) && authErr.Kind == clinicerrors.KindNetwork {
		return OutcomeNetwork
	}
	return OutcomeRejected
}
