package client

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Keystore persists the long-lived refresh token between application runs.
// The access token is never written anywhere.
type Keystore interface {
	SaveRefreshToken(token string) error
	RefreshToken() (string, bool)
	Clear() error
}

// FileKeystore stores the refresh token in a 0600 file under the app data
// directory. A platform keyring would slot in behind the same interface.
type FileKeystore struct {
	path string
}

// NewFileKeystore creates a keystore rooted in dir, which is created if absent.
func NewFileKeystore(dir string) (*FileKeystore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileKeystore{path: filepath.Join(dir, "refresh_token")}, nil
}

// SaveRefreshToken writes the token, replacing any previous one.
func (k *FileKeystore) SaveRefreshToken(token string) error {
	if token == "" {
		return errors.New("refresh token is empty")
	}
	return os.WriteFile(k.path, []byte(token), 0o600)
}

// RefreshToken returns the stored token, if any.
func (k *FileKeystore) RefreshToken() (string, bool) {
	b, err := os.ReadFile(k.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(b))
	return token, token != ""
}

// Clear removes the stored token. Removing an absent token is not an error.
func (k *FileKeystore) Clear() error {
	err := os.Remove(k.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DefaultAppDir returns the per-user application data directory.
func DefaultAppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".postdeck"), nil
}
