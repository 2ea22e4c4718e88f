// Package session owns the current identity and bearer credential: who
// is logged in, in memory and across restarts. It performs no network
// calls; authorization decisions belong to the backend and to the
// guard, which only reads this store.
package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"fundtracker.org/internal/workflow"
)

// Persisted entry keys. The three are written and cleared together,
// never individually.
const (
	keyToken = "token"
	keyUser  = "user"
	keyRole  = "role"
)

// Identity is the logged-in user as reported by the backend.
type Identity struct {
	ID       int64         `json:"id"`
	Username string        `json:"username"`
	Email    string        `json:"email,omitempty"`
	Role     workflow.Role `json:"role"`
}

// Store holds session state. Construct one at process start and pass it
// by reference; consumers must not reach for globals.
type Store struct {
	mu    sync.Mutex
	state *StateFile
	log   *zap.Logger

	identity *Identity
	token    string
}

// New builds a store backed by the given state file.
func New(state *StateFile, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{state: state, log: log}
}

// Restore loads the persisted session, if any. All three entries must
// be present and well-formed; anything partial or corrupt is treated as
// no session at all, never as a half-authenticated state.
func (s *Store) Restore() error {
	entries, err := s.state.Read()
	if err != nil {
		return err
	}
	token := entries[keyToken]
	rawUser := entries[keyUser]
	rawRole := entries[keyRole]
	if token == "" || rawUser == "" || rawRole == "" {
		return nil
	}
	var ident Identity
	if err := json.Unmarshal([]byte(rawUser), &ident); err != nil {
		s.log.Warn("discarding corrupt persisted identity", zap.Error(err))
		return nil
	}
	role, ok := workflow.ParseRole(rawRole)
	if !ok {
		s.log.Warn("discarding persisted session with unknown role", zap.String("role", rawRole))
		return nil
	}
	// The dedicated role entry gates routes; it wins over whatever the
	// serialized identity carries.
	ident.Role = role

	s.mu.Lock()
	s.identity = &ident
	s.token = token
	s.mu.Unlock()

	if exp, ok := TokenExpiry(token); ok && time.Now().After(exp) {
		s.log.Warn("restored credential is already expired; backend will reject it",
			zap.Time("expires_at", exp))
	}
	return nil
}

// Login replaces the in-memory and persisted session. The three entries
// hit storage in one atomic write; on storage failure memory is left
// untouched.
func (s *Store) Login(ident Identity, token string) error {
	if token == "" {
		return errors.New("session: credential is required")
	}
	role, ok := workflow.ParseRole(string(ident.Role))
	if !ok {
		return errors.New("session: identity has no usable role")
	}
	ident.Role = role

	rawUser, err := json.Marshal(ident)
	if err != nil {
		return err
	}
	entries := map[string]string{
		keyToken: token,
		keyUser:  string(rawUser),
		keyRole:  string(role),
	}
	if err := s.state.Write(entries); err != nil {
		return err
	}

	s.mu.Lock()
	s.identity = &ident
	s.token = token
	s.mu.Unlock()

	s.log.Info("session established",
		zap.String("username", ident.Username),
		zap.String("role", string(role)))
	return nil
}

// Logout clears memory and storage together. Calling it when already
// logged out is a no-op.
func (s *Store) Logout() error {
	if err := s.state.Clear(); err != nil {
		return err
	}
	s.mu.Lock()
	wasAuthenticated := s.token != ""
	s.identity = nil
	s.token = ""
	s.mu.Unlock()

	if wasAuthenticated {
		s.log.Info("session cleared")
	}
	return nil
}

// IsAuthenticated reports whether a credential is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Identity returns the current identity, if logged in.
func (s *Store) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Role returns the current role, if logged in.
func (s *Store) Role() (workflow.Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return "", false
	}
	return s.identity.Role, true
}

// Token exposes the bearer credential for outgoing requests. It
// satisfies the API client's token source.
func (s *Store) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", false
	}
	return s.token, true
}

// TokenExpiry decodes the credential's expiry claim without verifying
// the signature. Display-side only: the session never invalidates
// itself on this, the backend remains the authority.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
