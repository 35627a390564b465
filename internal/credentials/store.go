// Package credentials provides the injectable store for the bearer
// credential. A missing credential is a normal, not exceptional, state:
// Token returns (nil, nil) when nothing is stored.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
)

// Store is the credential store consumed by the API transport and
// written only by the session manager.
type Store interface {
	// Token returns the stored credential, or (nil, nil) when absent.
	Token() (*oauth2.Token, error)

	// SetToken persists the credential.
	SetToken(tok *oauth2.Token) error

	// Clear removes the credential. Clearing an empty store is a no-op.
	Clear() error
}

// FileStore persists the credential as a JSON file with mode 0600.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Token implements Store.
func (s *FileStore) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid credential file: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, nil
	}
	return &tok, nil
}

// SetToken implements Store.
func (s *FileStore) SetToken(tok *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu  sync.Mutex
	tok *oauth2.Token

	// Error injection for testing
	TokenErr error
	SetErr   error
	ClearErr error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Token implements Store.
func (s *MemStore) Token() (*oauth2.Token, error) {
	if s.TokenErr != nil {
		return nil, s.TokenErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok, nil
}

// SetToken implements Store.
func (s *MemStore) SetToken(tok *oauth2.Token) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = tok
	return nil
}

// Clear implements Store.
func (s *MemStore) Clear() error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = nil
	return nil
}
