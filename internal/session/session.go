// Package session persists the brokerage access token across dashboard
// runs. The token is an opaque credential stored as a single file; its
// presence is the sole signal of "logged in". No expiry is tracked.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store holds at most one access token, backed by a file on disk. It is an
// explicit object handed to the consumers that need the token, rather than
// ambient global state; registered listeners are notified on every change.
type Store struct {
	path string

	mu        sync.Mutex
	token     string
	listeners []func(token string)
}

// DefaultPath returns the per-user token file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(dir, "upfolio", "token"), nil
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the token from disk. A missing file is not an error; it just
// means no session exists yet.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading token file: %w", err)
	}

	s.mu.Lock()
	s.token = strings.TrimSpace(string(data))
	s.mu.Unlock()
	return nil
}

// Token returns the current token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Save persists the token and notifies listeners. The file is written 0600
// since it holds a live credential.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	s.set(token)
	return nil
}

// Clear removes the token file and notifies listeners with an empty token.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	s.set("")
	return nil
}

// OnChange registers a listener called with the new token after every Save
// or Clear. Listeners run synchronously on the mutating goroutine.
func (s *Store) OnChange(fn func(token string)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) set(token string) {
	s.mu.Lock()
	s.token = token
	listeners := make([]func(string), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(token)
	}
}
