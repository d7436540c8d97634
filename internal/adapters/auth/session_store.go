package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
)

// FileSessionStore keeps the session in a JSON file readable only by the
// current user.
type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

// NewFileSessionStore creates a store backed by path
func NewFileSessionStore(path string) providers.SessionStore {
	return &FileSessionStore{path: path}
}

// Load returns the stored session, or nil when none is stored
func (s *FileSessionStore) Load(ctx context.Context) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", s.path, err)
	}
	if session.Token == "" {
		return nil, nil
	}
	return &session, nil
}

// Save writes the session atomically
func (s *FileSessionStore) Save(ctx context.Context, session *entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Clear removes the stored session
func (s *FileSessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// MemorySessionStore keeps the session in memory
type MemorySessionStore struct {
	mu      sync.Mutex
	session *entities.Session
}

// NewMemorySessionStore creates an empty in-memory store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load(ctx context.Context) (*entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, nil
	}
	cp := *s.session
	return &cp, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, session *entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.session = &cp
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
