// Package auth owns the client's authentication state machine.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/acahill/ragchat/internal/api"
	"github.com/acahill/ragchat/internal/session"
)

// State is the authentication lifecycle state. Consumers must not treat the
// identity as settled until the manager has left the initializing states.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateRestoring     State = "restoring"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
)

// ErrAuthenticationFailed is the single failure kind for credential exchanges:
// invalid credentials, network failure, and malformed identity responses are
// not distinguished beyond the wrapped message.
var ErrAuthenticationFailed = errors.New("authentication failed")

// User is the authenticated identity visible to consumers.
type User struct {
	ID    string
	Email string
}

// CredentialExchanger performs the network credential exchanges. Logout is the
// best-effort server-side session invalidation.
type CredentialExchanger interface {
	Login(ctx context.Context, email string, password string) (api.Identity, error)
	Signup(ctx context.Context, email string, password string) (api.Identity, error)
	LoginWithIDToken(ctx context.Context, idToken string) (api.Identity, error)
	Logout(ctx context.Context) error
}

// Navigator receives view-change side effects from the identity lifecycle.
type Navigator interface {
	// ShowConversation is signalled after a successful credential exchange
	ShowConversation()
	// ShowLanding is signalled after logout
	ShowLanding()
}

type noopNavigator struct{}

func (noopNavigator) ShowConversation() {}
func (noopNavigator) ShowLanding()      {}

// Manager holds the authentication state machine. Identity is all-or-nothing:
// either all three fields (token, user id, email) are present and consistent,
// in memory and in the session store, or none are.
type Manager struct {
	exchanger CredentialExchanger
	store     session.Store
	nav       Navigator

	state State
	user  *User
}

func NewManager(exchanger CredentialExchanger, store session.Store, nav Navigator) *Manager {
	if nav == nil {
		nav = noopNavigator{}
	}
	return &Manager{
		exchanger: exchanger,
		store:     store,
		nav:       nav,
		state:     StateUninitialized,
	}
}

func (m *Manager) State() State {
	return m.state
}

// CurrentUser returns the authenticated user, or nil when anonymous.
func (m *Manager) CurrentUser() *User {
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) IsAuthenticated() bool {
	return m.state == StateAuthenticated
}

// IsInitializing reports whether Restore has not yet completed. It is the
// synchronization point that prevents premature redirects on startup.
func (m *Manager) IsInitializing() bool {
	return m.state == StateUninitialized || m.state == StateRestoring
}

// Restore rebuilds the authentication state from the session store. It never
// performs a network call. A partial stored identity is destroyed rather than
// surfaced, so consumers only ever observe a full identity or none.
func (m *Manager) Restore(ctx context.Context) error {
	m.state = StateRestoring
	m.user = nil

	token, err := m.store.Get(ctx, session.KeyToken)
	if err != nil {
		m.state = StateAnonymous
		return fmt.Errorf("failed to read stored session: %w", err)
	}
	userID, err := m.store.Get(ctx, session.KeyUserID)
	if err != nil {
		m.state = StateAnonymous
		return fmt.Errorf("failed to read stored session: %w", err)
	}
	email, err := m.store.Get(ctx, session.KeyEmail)
	if err != nil {
		m.state = StateAnonymous
		return fmt.Errorf("failed to read stored session: %w", err)
	}

	if token == "" || userID == "" || email == "" {
		m.clearStoredIdentity(ctx)
		m.state = StateAnonymous
		return nil
	}

	m.user = &User{ID: userID, Email: email}
	m.state = StateAuthenticated
	return nil
}

// Login exchanges an email and password for a session. On failure the state is
// left unchanged and nothing is persisted.
func (m *Manager) Login(ctx context.Context, email string, password string) error {
	identity, err := m.exchanger.Login(ctx, email, password)
	return m.completeExchange(ctx, identity, err)
}

// Signup creates an account and logs in with it.
func (m *Manager) Signup(ctx context.Context, email string, password string) error {
	identity, err := m.exchanger.Signup(ctx, email, password)
	return m.completeExchange(ctx, identity, err)
}

// LoginWithIDToken logs in with a federated ID token obtained from the
// external identity provider.
func (m *Manager) LoginWithIDToken(ctx context.Context, idToken string) error {
	identity, err := m.exchanger.LoginWithIDToken(ctx, idToken)
	return m.completeExchange(ctx, identity, err)
}

func (m *Manager) completeExchange(ctx context.Context, identity api.Identity, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if identity.Token == "" || identity.UserID == "" || identity.Email == "" {
		return fmt.Errorf("%w: server response is missing identity fields", ErrAuthenticationFailed)
	}
	if err := m.persistIdentity(ctx, identity); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	m.user = &User{ID: identity.UserID, Email: identity.Email}
	m.state = StateAuthenticated
	m.nav.ShowConversation()
	return nil
}

func (m *Manager) persistIdentity(ctx context.Context, identity api.Identity) error {
	writes := []struct {
		key   string
		value string
	}{
		{session.KeyToken, identity.Token},
		{session.KeyUserID, identity.UserID},
		{session.KeyEmail, identity.Email},
	}
	for _, w := range writes {
		if err := m.store.Set(ctx, w.key, w.value); err != nil {
			// Roll back whatever was written so no partial identity survives
			m.clearStoredIdentity(ctx)
			return fmt.Errorf("failed to persist identity: %w", err)
		}
	}
	return nil
}

func (m *Manager) clearStoredIdentity(ctx context.Context) {
	for _, key := range []string{session.KeyToken, session.KeyUserID, session.KeyEmail} {
		if err := m.store.Remove(ctx, key); err != nil {
			log.Printf("Failed to remove stored %s: %v", key, err)
		}
	}
}

// Logout clears the session and transitions to anonymous. It always succeeds
// locally; the server-side invalidation is fire-and-forget and its failure is
// logged, never surfaced.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.exchanger.Logout(ctx); err != nil {
		log.Printf("Server-side session invalidation failed: %v", err)
	}
	m.clearStoredIdentity(ctx)
	m.user = nil
	m.state = StateAnonymous
	m.nav.ShowLanding()
}
