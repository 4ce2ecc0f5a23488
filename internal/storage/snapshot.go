package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Snapshot is a JSON-encoded value of type T kept under a single KV key.
// It is rewritten wholesale on every Save.
type Snapshot[T any] struct {
	kv  KV
	key string
}

// NewSnapshot binds a key in kv to values of type T.
func NewSnapshot[T any](kv KV, key string) *Snapshot[T] {
	return &Snapshot[T]{kv: kv, key: key}
}

// Load decodes the stored value. It returns ErrNotFound if nothing was saved yet.
func (s *Snapshot[T]) Load(ctx context.Context) (T, error) {
	var v T
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("failed to unmarshal snapshot %s: %w", s.key, err)
	}
	return v, nil
}

// Save encodes v and replaces the stored value.
func (s *Snapshot[T]) Save(ctx context.Context, v T) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", s.key, err)
	}
	return s.kv.Put(ctx, s.key, data)
}
