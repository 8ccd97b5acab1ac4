package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/acahill/ragchat/internal/api"
	"github.com/acahill/ragchat/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = api.Identity{Token: "tok-1", UserID: "user-1", Email: "a@b.com"}

// fakeExchanger scripts the credential exchange outcomes per test
type fakeExchanger struct {
	login            func(ctx context.Context, email, password string) (api.Identity, error)
	signup           func(ctx context.Context, email, password string) (api.Identity, error)
	loginWithIDToken func(ctx context.Context, idToken string) (api.Identity, error)
	logout           func(ctx context.Context) error
}

func (f *fakeExchanger) Login(ctx context.Context, email, password string) (api.Identity, error) {
	return f.login(ctx, email, password)
}

func (f *fakeExchanger) Signup(ctx context.Context, email, password string) (api.Identity, error) {
	return f.signup(ctx, email, password)
}

func (f *fakeExchanger) LoginWithIDToken(ctx context.Context, idToken string) (api.Identity, error) {
	return f.loginWithIDToken(ctx, idToken)
}

func (f *fakeExchanger) Logout(ctx context.Context) error {
	if f.logout == nil {
		return nil
	}
	return f.logout(ctx)
}

// recordingNavigator records view-change signals in order
type recordingNavigator struct {
	views []string
}

func (n *recordingNavigator) ShowConversation() { n.views = append(n.views, "conversation") }
func (n *recordingNavigator) ShowLanding()      { n.views = append(n.views, "landing") }

func newTestStore(t *testing.T) session.Store {
	t.Helper()
	store, err := session.NewStore(session.StoreTypeMemory)
	require.NoError(t, err)
	return store
}

func storedIdentity(t *testing.T, store session.Store) (token, userID, email string) {
	t.Helper()
	ctx := context.Background()
	token, err := store.Get(ctx, session.KeyToken)
	require.NoError(t, err)
	userID, err = store.Get(ctx, session.KeyUserID)
	require.NoError(t, err)
	email, err = store.Get(ctx, session.KeyEmail)
	require.NoError(t, err)
	return token, userID, email
}

func TestNewManager_StartsUninitialized(t *testing.T) {
	m := NewManager(&fakeExchanger{}, newTestStore(t), nil)

	assert.Equal(t, StateUninitialized, m.State())
	assert.True(t, m.IsInitializing())
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.CurrentUser())
}

func TestRestore_FullIdentityAuthenticates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, session.KeyToken, "tok-1"))
	require.NoError(t, store.Set(ctx, session.KeyUserID, "user-1"))
	require.NoError(t, store.Set(ctx, session.KeyEmail, "a@b.com"))

	m := NewManager(&fakeExchanger{}, store, nil)
	require.NoError(t, m.Restore(ctx))

	assert.Equal(t, StateAuthenticated, m.State())
	assert.False(t, m.IsInitializing())
	require.NotNil(t, m.CurrentUser())
	assert.Equal(t, User{ID: "user-1", Email: "a@b.com"}, *m.CurrentUser())
}

func TestRestore_EmptyStoreIsAnonymous(t *testing.T) {
	m := NewManager(&fakeExchanger{}, newTestStore(t), nil)

	require.NoError(t, m.Restore(context.Background()))

	assert.Equal(t, StateAnonymous, m.State())
	assert.False(t, m.IsInitializing())
	assert.Nil(t, m.CurrentUser())
}

func TestRestore_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, session.KeyToken, "tok-1"))
	require.NoError(t, store.Set(ctx, session.KeyUserID, "user-1"))
	require.NoError(t, store.Set(ctx, session.KeyEmail, "a@b.com"))

	m := NewManager(&fakeExchanger{}, store, nil)

	require.NoError(t, m.Restore(ctx))
	firstState, firstUser := m.State(), *m.CurrentUser()

	require.NoError(t, m.Restore(ctx))

	assert.Equal(t, firstState, m.State())
	assert.Equal(t, firstUser, *m.CurrentUser())
}

func TestRestore_PartialIdentityIsDestroyed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, session.KeyToken, "tok-1"))
	// user_id and email missing: stale partial data

	m := NewManager(&fakeExchanger{}, store, nil)
	require.NoError(t, m.Restore(ctx))

	assert.Equal(t, StateAnonymous, m.State())
	token, userID, email := storedIdentity(t, store)
	assert.Empty(t, token)
	assert.Empty(t, userID)
	assert.Empty(t, email)
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	nav := &recordingNavigator{}
	exchanger := &fakeExchanger{
		login: func(ctx context.Context, email, password string) (api.Identity, error) {
			assert.Equal(t, "a@b.com", email)
			assert.Equal(t, "pw", password)
			return testIdentity, nil
		},
	}

	m := NewManager(exchanger, store, nav)
	require.NoError(t, m.Login(ctx, "a@b.com", "pw"))

	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, User{ID: "user-1", Email: "a@b.com"}, *m.CurrentUser())

	token, userID, email := storedIdentity(t, store)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "a@b.com", email)

	assert.Equal(t, []string{"conversation"}, nav.views)
}

func TestLogin_FailureIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	nav := &recordingNavigator{}
	exchanger := &fakeExchanger{
		login: func(ctx context.Context, email, password string) (api.Identity, error) {
			return api.Identity{}, fmt.Errorf("invalid email or password")
		},
	}

	m := NewManager(exchanger, store, nav)
	require.NoError(t, m.Restore(ctx))

	err := m.Login(ctx, "a@b.com", "wrong")

	require.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.False(t, m.IsAuthenticated())
	token, userID, email := storedIdentity(t, store)
	assert.Empty(t, token)
	assert.Empty(t, userID)
	assert.Empty(t, email)
	assert.Empty(t, nav.views)
}

func TestLogin_MalformedResponseFails(t *testing.T) {
	exchanger := &fakeExchanger{
		login: func(ctx context.Context, email, password string) (api.Identity, error) {
			return api.Identity{Token: "tok-1", UserID: "user-1"}, nil // email missing
		},
	}
	store := newTestStore(t)

	m := NewManager(exchanger, store, nil)
	err := m.Login(context.Background(), "a@b.com", "pw")

	require.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.False(t, m.IsAuthenticated())
	token, _, _ := storedIdentity(t, store)
	assert.Empty(t, token)
}

// failingStore wraps a Store and fails writes to one key, to exercise the
// partial-persist rollback
type failingStore struct {
	session.Store
	failKey string
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return fmt.Errorf("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func TestLogin_PersistFailureRollsBack(t *testing.T) {
	inner := newTestStore(t)
	store := &failingStore{Store: inner, failKey: session.KeyEmail}
	exchanger := &fakeExchanger{
		login: func(ctx context.Context, email, password string) (api.Identity, error) {
			return testIdentity, nil
		},
	}

	m := NewManager(exchanger, store, nil)
	err := m.Login(context.Background(), "a@b.com", "pw")

	require.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.False(t, m.IsAuthenticated())
	token, userID, email := storedIdentity(t, inner)
	assert.Empty(t, token)
	assert.Empty(t, userID)
	assert.Empty(t, email)
}

func TestSignup_Success(t *testing.T) {
	exchanger := &fakeExchanger{
		signup: func(ctx context.Context, email, password string) (api.Identity, error) {
			return testIdentity, nil
		},
	}

	m := NewManager(exchanger, newTestStore(t), nil)
	require.NoError(t, m.Signup(context.Background(), "a@b.com", "pw"))

	assert.True(t, m.IsAuthenticated())
}

func TestLoginWithIDToken_Success(t *testing.T) {
	exchanger := &fakeExchanger{
		loginWithIDToken: func(ctx context.Context, idToken string) (api.Identity, error) {
			assert.Equal(t, "google-id-token", idToken)
			return testIdentity, nil
		},
	}

	m := NewManager(exchanger, newTestStore(t), nil)
	require.NoError(t, m.LoginWithIDToken(context.Background(), "google-id-token"))

	assert.True(t, m.IsAuthenticated())
}

func TestLogout_ClearsSessionAndSignalsLanding(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	nav := &recordingNavigator{}
	exchanger := &fakeExchanger{
		login: func(ctx context.Context, email, password string) (api.Identity, error) {
			return testIdentity, nil
		},
	}

	m := NewManager(exchanger, store, nav)
	require.NoError(t, m.Login(ctx, "a@b.com", "pw"))

	m.Logout(ctx)

	assert.Equal(t, StateAnonymous, m.State())
	assert.Nil(t, m.CurrentUser())
	token, userID, email := storedIdentity(t, store)
	assert.Empty(t, token)
	assert.Empty(t, userID)
	assert.Empty(t, email)
	assert.Equal(t, []string{"conversation", "landing"}, nav.views)
}

func TestLogout_ServerInvalidationFailureNotSurfaced(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	exchanger := &fakeExchanger{
		login: func(ctx context.Context, email, password string) (api.Identity, error) {
			return testIdentity, nil
		},
		logout: func(ctx context.Context) error {
			return fmt.Errorf("server unreachable")
		},
	}

	m := NewManager(exchanger, store, nil)
	require.NoError(t, m.Login(ctx, "a@b.com", "pw"))

	// Logout has no error return: it always succeeds locally
	m.Logout(ctx)

	assert.Equal(t, StateAnonymous, m.State())
	token, _, _ := storedIdentity(t, store)
	assert.Empty(t, token)
}
