// Package visitor holds the anonymous visitor token and the optimistic like toggle
// used by the command-line client.
package visitor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const fileName = "visitor-id"

// DefaultPath is the identity file under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("visitor: locate config dir: %w", err)
	}
	return filepath.Join(dir, "portfolio", fileName), nil
}

// LoadOrCreate returns the token stored at path, creating a random one on first use.
// The token only deduplicates likes. Anyone can send any token, so it is not an identity.
func LoadOrCreate(path string) (string, error) {
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("visitor: read %s: %w", path, err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("visitor: create dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("visitor: write %s: %w", path, err)
	}
	return id, nil
}
