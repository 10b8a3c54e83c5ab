package client

import (
	"encoding/json"
	"fmt"

	"tareas/internal/domain/models"
)

// Keys under which the session survives restarts.
const (
	KeyToken = "authToken"
	KeyUser  = "currentUser"
)

// Store is a durable key-value store. Get returns nil for a missing key.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Session is the signed-in identity of the client: the token and the public
// user it was issued for, mirrored into a Store.
type Session struct {
	store Store
	token string
	user  *models.PublicUser
}

func NewSession(store Store) *Session {
	return &Session{store: store}
}

// Restore loads a previously persisted session. Both keys must be present;
// a half-written or corrupt session is wiped.
func (s *Session) Restore() (bool, error) {
	token, err := s.store.Get(KeyToken)
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	raw, err := s.store.Get(KeyUser)
	if err != nil {
		return false, fmt.Errorf("restore session: %w", err)
	}
	if len(token) == 0 || len(raw) == 0 {
		return false, s.End()
	}

	var user models.PublicUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return false, s.End()
	}
	s.token = string(token)
	s.user = &user
	return true, nil
}

func (s *Session) Begin(token string, user models.PublicUser) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	if err := s.store.Put(KeyToken, []byte(token)); err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	if err := s.store.Put(KeyUser, raw); err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	s.token = token
	s.user = &user
	return nil
}

// End forgets the session in memory first, so a failing store never leaves
// the client authenticated.
func (s *Session) End() error {
	s.token = ""
	s.user = nil
	if err := s.store.Delete(KeyToken); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if err := s.store.Delete(KeyUser); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (s *Session) Token() string { return s.token }

func (s *Session) User() (models.PublicUser, bool) {
	if s.user == nil {
		return models.PublicUser{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool { return s.token != "" && s.user != nil }
