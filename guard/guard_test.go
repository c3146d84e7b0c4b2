package guard_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-clinic-console/guard"
	"github.com/jrsteele09/go-clinic-console/internal/config"
	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
	"github.com/jrsteele09/go-clinic-console/session"
	"github.com/jrsteele09/go-clinic-console/session/storage/memstore"
	"github.com/jrsteele09/go-clinic-console/users"
	"github.com/stretchr/testify/require"
)

func authenticated(role users.Role) session.Snapshot {
	return session.Snapshot{User: &users.User{ID: "u-1", Role: role}, IsAuthenticated: true, HasCredential: true}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		snap     session.Snapshot
		required *users.Role
		policy   guard.Policy
		want     guard.Decision
	}{
		{
			name: "loading while logged out is pending",
			snap: session.Snapshot{IsLoading: true},
			want: guard.Decision{State: guard.Pending},
		},
		{
			name:     "loading while authenticated is pending",
			snap:     func() session.Snapshot { s := authenticated(users.RoleReception); s.IsLoading = true; return s }(),
			required: guard.Require(users.RoleDoctor),
			want:     guard.Decision{State: guard.Pending},
		},
		{
			name: "unauthenticated goes to login",
			snap: session.Snapshot{},
			want: guard.Decision{State: guard.Denied, Redirect: guard.RouteLogin},
		},
		{
			name:     "wrong role goes to own landing page",
			snap:     authenticated(users.RoleReception),
			required: guard.Require(users.RoleDoctor),
			want:     guard.Decision{State: guard.Denied, Redirect: guard.RouteReception},
		},
		{
			name:     "wrong role with root fallback",
			snap:     authenticated(users.RoleReception),
			required: guard.Require(users.RoleDoctor),
			policy:   guard.FallbackRoot,
			want:     guard.Decision{State: guard.Denied, Redirect: guard.RouteRoot},
		},
		{
			name:     "doctor on admin route goes to doctor home",
			snap:     authenticated(users.RoleDoctor),
			required: guard.Require(users.RoleAdmin),
			want:     guard.Decision{State: guard.Denied, Redirect: guard.RouteDoctor},
		},
		{
			name:     "matching role is allowed",
			snap:     authenticated(users.RoleDoctor),
			required: guard.Require(users.RoleDoctor),
			want:     guard.Decision{State: guard.Allowed},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, guard.Evaluate(tt.snap, tt.required, tt.policy))
		})
	}
}

func TestEvaluateNoRequiredRoleAllowsEveryRole(t *testing.T) {
	for _, role := range users.Roles {
		require.Equal(t, guard.Allowed, guard.Evaluate(authenticated(role), nil, guard.FallbackRoleHome).State, role.String())
	}
}

func TestHomeRouteAndPolicy(t *testing.T) {
	require.Equal(t, guard.RouteDashboard, guard.HomeRoute(users.RoleAdmin))
	require.Equal(t, guard.RouteDoctor, guard.HomeRoute(users.RoleDoctor))
	require.Equal(t, guard.RouteReception, guard.HomeRoute(users.RoleReception))

	require.Equal(t, guard.FallbackRoot, guard.ParsePolicy("root"))
	require.Equal(t, guard.FallbackRoleHome, guard.ParsePolicy("role-home"))
	require.Equal(t, guard.FallbackRoleHome, guard.ParsePolicy(""))
	require.Equal(t, "root", guard.FallbackRoot.String())

	// The configured names parse to the matching policies.
	require.Equal(t, guard.FallbackRoot, guard.ParsePolicy(config.FallbackRoot))
	require.Equal(t, guard.FallbackRoleHome, guard.ParsePolicy(config.FallbackRoleHome))
	require.Equal(t, "denied", guard.Denied.String())
}

type blockingAuth struct {
	release chan struct{}
	user    users.User
	reject  bool
}

func (b *blockingAuth) Authenticate(context.Context, string, string) (users.User, string, error) {
	return b.user, "token", nil
}

func (b *blockingAuth) FetchCurrentProfile(context.Context, string) (users.User, error) {
	<-b.release
	if b.reject {
		return users.User{}, &clinicerrors.AuthError{Kind: clinicerrors.KindExpired}
	}
	return b.user, nil
}

func loggedInStore(t *testing.T, auth *blockingAuth) *session.Store {
	t.Helper()
	store, err := session.NewStore(auth, memstore.New())
	require.NoError(t, err)
	_, err = store.Login(context.Background(), auth.user.Email, "pw")
	require.NoError(t, err)
	return store
}

func TestActivationPendingUntilCheckCompletes(t *testing.T) {
	auth := &blockingAuth{release: make(chan struct{}), user: users.User{ID: "u-1", Email: "r@clinic.test", Role: users.RoleReception}}
	store := loggedInStore(t, auth)

	a := guard.Activate(context.Background(), store, guard.Require(users.RoleReception), guard.FallbackRoleHome)
	defer a.Close()
	require.Equal(t, guard.Pending, a.Current().State)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := a.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(auth.release)
	d, err := a.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, guard.Allowed, d.State)
}

func TestActivationRejectedCredentialRedirectsToLogin(t *testing.T) {
	auth := &blockingAuth{release: make(chan struct{}), user: users.User{ID: "u-1", Email: "d@clinic.test", Role: users.RoleDoctor}, reject: true}
	store := loggedInStore(t, auth)

	a := guard.Activate(context.Background(), store, nil, guard.FallbackRoleHome)
	defer a.Close()
	close(auth.release)

	d, err := a.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, guard.Decision{State: guard.Denied, Redirect: guard.RouteLogin}, d)
	require.False(t, store.Snapshot().IsAuthenticated)
}

func TestActivationReactsToLogout(t *testing.T) {
	auth := &blockingAuth{release: make(chan struct{}), user: users.User{ID: "u-1", Email: "a@clinic.test", Role: users.RoleAdmin}}
	close(auth.release)
	store := loggedInStore(t, auth)

	a := guard.Activate(context.Background(), store, guard.Require(users.RoleAdmin), guard.FallbackRoleHome)
	defer a.Close()
	d, err := a.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, guard.Allowed, d.State)

	store.Logout(context.Background())
	require.Eventually(t, func() bool {
		return a.Current() == guard.Decision{State: guard.Denied, Redirect: guard.RouteLogin}
	}, time.Second, time.Millisecond)
}

func TestActivationDeliversNothingAfterClose(t *testing.T) {
	auth := &blockingAuth{release: make(chan struct{}), user: users.User{ID: "u-1", Email: "a@clinic.test", Role: users.RoleAdmin}}
	store := loggedInStore(t, auth)

	a := guard.Activate(context.Background(), store, nil, guard.FallbackRoleHome)
	a.Close()
	a.Close()
	close(auth.release)

	for d := range a.Decisions() {
		t.Fatalf("unexpected decision after close: %+v", d)
	}
	require.Eventually(t, func() bool { return !store.Snapshot().IsLoading }, time.Second, time.Millisecond)
	require.Equal(t, guard.Pending, a.Current().State)
}
