package app

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/admin/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

const defaultSessionTTL = 12 * time.Hour

// Auth gates the admin panel with one configured username and password.
type Auth struct {
	username string
	password string
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]domain.Session
}

func NewAuth(username, password string) *Auth {
	return &Auth{
		username: username,
		password: password,
		ttl:      defaultSessionTTL,
		now:      time.Now,
		sessions: make(map[string]domain.Session),
	}
}

// Login returns a new session token. Both a wrong username and a wrong password yield
// ErrInvalidCredentials.
func (a *Auth) Login(username, password string) (domain.Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK || a.username == "" {
		return domain.Session{}, ErrInvalidCredentials
	}

	now := a.now()
	s := domain.Session{Token: uuid.NewString(), Username: username, ExpiresAt: now.Add(a.ttl)}

	a.mu.Lock()
	defer a.mu.Unlock()
	for tok, old := range a.sessions {
		if !now.Before(old.ExpiresAt) {
			delete(a.sessions, tok)
		}
	}
	a.sessions[s.Token] = s
	return s, nil
}

func (a *Auth) Logout(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, token)
}

func (a *Auth) Check(token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, ErrUnauthorized
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.sessions[token]
	if !ok {
		return domain.Session{}, ErrUnauthorized
	}
	if !a.now().Before(s.ExpiresAt) {
		delete(a.sessions, token)
		return domain.Session{}, ErrUnauthorized
	}
	return s, nil
}
