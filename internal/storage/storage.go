package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/natefinch/atomic"
)

// ErrNotFound is returned when no snapshot has been stored under a key yet.
var ErrNotFound = errors.New("snapshot not found")

// KV is a local key-value storage of opaque snapshot blobs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

var validKey = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid snapshot key %q", key)
	}
	return nil
}

// FileKV stores each key as a JSON file under a base directory. Files are
// replaced atomically so a crash never leaves a half-written snapshot.
type FileKV struct {
	basePath string
}

// NewFileKV creates a new FileKV and ensures the base directory exists.
func NewFileKV(basePath string) (*FileKV, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &FileKV{basePath: basePath}, nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.basePath, key+".json")
}

// Get reads the snapshot stored under key.
func (s *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

// Put replaces the snapshot stored under key.
func (s *FileKV) Put(_ context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := atomic.WriteFile(s.path(key), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}
