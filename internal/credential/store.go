// Package credential holds the access key used to authorize calls to the
// generation service.
package credential

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	// ErrCredentialMissing is returned when no key has been provided.
	ErrCredentialMissing = errors.New("credential: API key not found, please select an API key")
	// ErrEmptyKey is returned when Set is called with a blank key.
	ErrEmptyKey = errors.New("credential: API key is required")
)

// Provider exposes the current access key.
type Provider interface {
	// HasCredential reports whether a key is available.
	HasCredential(ctx context.Context) bool
	// Credential returns the current key or ErrCredentialMissing.
	Credential(ctx context.Context) (string, error)
	// PromptForCredential asks the user to supply a key.
	PromptForCredential(ctx context.Context)
}

// Status is a read-only view of the store.
type Status struct {
	Present        bool `json:"present"`
	PromptRequired bool `json:"prompt_required"`
}

// Compile-time check that Store implements Provider.
var _ Provider = (*Store)(nil)

// Store is an in-memory Provider. The key is read on every call so a change
// takes effect on the next submission.
type Store struct {
	mu     sync.RWMutex
	key    string
	prompt bool
}

// NewStore creates a Store seeded with key, which may be empty.
func NewStore(key string) *Store {
	key = strings.TrimSpace(key)
	return &Store{key: key, prompt: key == ""}
}

// HasCredential reports whether a key is held.
func (s *Store) HasCredential(_ context.Context) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != ""
}

// Credential returns the current key.
func (s *Store) Credential(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.key == "" {
		return "", ErrCredentialMissing
	}
	return s.key, nil
}

// PromptForCredential raises the prompt flag until a key is set.
func (s *Store) PromptForCredential(_ context.Context) {
	s.mu.Lock()
	s.prompt = true
	s.mu.Unlock()
}

// Set replaces the key and clears the prompt flag.
func (s *Store) Set(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	s.prompt = false
	return nil
}

// Reset drops the key so the next submission prompts again.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
	s.prompt = true
}

// Status returns the current presence and prompt state.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{Present: s.key != "", PromptRequired: s.prompt}
}
