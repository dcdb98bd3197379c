// Package session holds the login state of the client: the access token, the
// refresh token and the logged-in flag, kept in local session storage.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/sadopc/taskr/internal/errors"
	"github.com/sadopc/taskr/internal/logging"
)

// Storage keys.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyLogged       = "logged"
)

// Storage is the key/value store backing a session.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	SetItems(items map[string]string) error
	Clear() error
}

// Revoker notifies the server that a refresh token is no longer used.
type Revoker interface {
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

// Tokens is the credential pair issued at login.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Manager owns the session. It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	storage Storage
	log     *log.Logger
}

func NewManager(storage Storage, logger *log.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{storage: storage, log: logger}
}

// Login stores both tokens and marks the session logged in.
func (m *Manager) Login(t Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.storage.SetItems(map[string]string{
		KeyAccessToken:  t.AccessToken,
		KeyRefreshToken: t.RefreshToken,
		KeyLogged:       "true",
	})
	if err != nil {
		return apperrors.NewStorageError("store session", err)
	}
	m.log.Info("logged in")
	return nil
}

// Logout revokes the refresh token on the server when one is held, then clears
// every session key whatever the server said. The server error, if any, is
// returned after the clear.
func (m *Manager) Logout(ctx context.Context, revoker Revoker) error {
	refresh := m.RefreshToken()

	var serverErr error
	if revoker != nil && refresh != "" {
		if serverErr = revoker.RevokeRefreshToken(ctx, refresh); serverErr != nil {
			m.log.Error("error during logout", "err", serverErr)
		}
	}

	if err := m.Clear(); err != nil {
		return err
	}
	m.log.Info("logged out")
	return serverErr
}

// Clear drops all session data.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.Clear(); err != nil {
		return apperrors.NewStorageError("clear session", err)
	}
	return nil
}

func (m *Manager) LoggedIn() bool {
	return m.get(KeyLogged) == "true"
}

func (m *Manager) AccessToken() string {
	return m.get(KeyAccessToken)
}

func (m *Manager) RefreshToken() string {
	return m.get(KeyRefreshToken)
}

// SetAccessToken replaces the held access token.
func (m *Manager) SetAccessToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.SetItem(KeyAccessToken, token); err != nil {
		return apperrors.NewStorageError("store access token", err)
	}
	return nil
}

// Expiry reports the exp claim of the access token when it is a JWT. The
// signature is not checked; the value is only shown to the user.
func (m *Manager) Expiry() (time.Time, bool) {
	tok := m.AccessToken()
	if tok == "" {
		return time.Time{}, false
	}
	return tokenExpiry(tok)
}

func tokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (m *Manager) get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, _, err := m.storage.GetItem(key)
	if err != nil {
		m.log.Warn("read session storage", "key", key, "err", err)
		return ""
	}
	return v
}
