package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type localStorage struct {
	root string
}

// NewLocalStorage creates a disk-backed FileStorage rooted at dir.
// The directory is created if it does not exist.
func NewLocalStorage(dir string) (FileStorage, error) {
	if dir == "" {
		dir = "uploads"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	return &localStorage{root: abs}, nil
}

func (s *localStorage) Save(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	name := SanitizeFilename(fileName)
	if name == "" {
		return "", fmt.Errorf("invalid file name: %q", fileName)
	}

	dir := s.root
	if folder != "" {
		dir = filepath.Join(s.root, filepath.Base(folder))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}

	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", err
	}

	return dst, nil
}

func (s *localStorage) Delete(ctx context.Context, location string) error {
	resolved, err := s.Resolve(filepath.Base(location))
	if err != nil {
		return err
	}
	return os.Remove(resolved)
}

// Resolve maps a bare filename to its absolute path under the storage root,
// rejecting anything that would escape it.
func (s *localStorage) Resolve(fileName string) (string, error) {
	name := SanitizeFilename(fileName)
	if name == "" {
		return "", fmt.Errorf("invalid file name: %q", fileName)
	}

	matches, err := filepath.Glob(filepath.Join(s.root, "*", name))
	if err != nil {
		return "", err
	}
	if len(matches) > 0 {
		return matches[0], nil
	}

	path := filepath.Join(s.root, name)
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("file name escapes storage root: %q", fileName)
	}
	return path, nil
}

// SanitizeFilename strips path components and characters that have no
// business in a stored filename. Returns "" when nothing safe remains.
func SanitizeFilename(fileName string) string {
	name := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	name = strings.TrimSpace(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return ""
	}
	return cleaned
}
