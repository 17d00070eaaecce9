package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/noah-isme/sma-dashboard/pkg/storage"
)

const credentialFile = "credentials.json"

// FileStore persists the token as {"auth_token": "..."} in a private file.
type FileStore struct {
	mu      sync.Mutex
	storage *storage.LocalStorage
}

// NewFileStore stores credentials under dir.
func NewFileStore(dir string) (*FileStore, error) {
	st, err := storage.NewLocalStorage(dir)
	if err != nil {
		return nil, err
	}
	return &FileStore{storage: st}, nil
}

func (s *FileStore) Get(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.storage.Read(credentialFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("decode %s: %w", credentialFile, err)
	}
	return doc[TokenKey], nil
}

func (s *FileStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(map[string]string{TokenKey: token})
	if err != nil {
		return err
	}
	_, err = s.storage.SavePrivate(credentialFile, data)
	return err
}

func (s *FileStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage.Delete(credentialFile)
}

// Path returns where the token file lives.
func (s *FileStore) Path() string {
	return s.storage.Path(credentialFile)
}
