package api

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MemoryTokenStore keeps the token in memory. Tests use it directly; the
// browser build wraps it with a localStorage-backed store.
type MemoryTokenStore struct {
	mu  sync.Mutex
	tok string
}

func (m *MemoryTokenStore) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok
}

func (m *MemoryTokenStore) SetToken(tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = tok
	return nil
}

func (m *MemoryTokenStore) ClearToken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = ""
}

// TokenAlive reports whether tok looks like a usable access token: present
// and not past its exp claim. The signature is not verified here; the server
// is the authority, this only avoids round trips with a token known dead.
func TokenAlive(tok string) bool {
	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		// opaque token, let the server judge it
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Now().Before(exp.Time)
}
