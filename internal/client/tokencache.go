package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/config"
)

// TokenCacheName is the file holding the cached session inside the
// per-user config directory.
const TokenCacheName = "token.json"

// CachedToken is the session a client keeps between invocations.
type CachedToken struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// DefaultTokenCachePath returns ~/.equipment-visualizer/token.json,
// creating the directory if needed.
func DefaultTokenCachePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, TokenCacheName), nil
}

// SaveCachedToken writes the session to path, defaulting to the
// per-user cache. The file holds a credential, so it is written
// user-readable only.
func SaveCachedToken(path string, ct CachedToken) error {
	p, err := cachePath(path)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(ct, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token cache: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	return nil
}

// LoadCachedToken reads the cached session. A missing file is not an
// error; it yields nil.
func LoadCachedToken(path string) (*CachedToken, error) {
	p, err := cachePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token cache: %w", err)
	}
	ct := &CachedToken{}
	if err := json.Unmarshal(data, ct); err != nil {
		return nil, fmt.Errorf("decode token cache %s: %w", p, err)
	}
	return ct, nil
}

// ClearCachedToken removes the cached session if present.
func ClearCachedToken(path string) error {
	p, err := cachePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token cache: %w", err)
	}
	return nil
}

func cachePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return DefaultTokenCachePath()
}
