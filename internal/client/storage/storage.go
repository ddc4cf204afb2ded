// Package storage is the namespaced key-value layer over the local metadata
// table. Values are JSON documents; reads never fail, they fall back.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/ideaboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/ideaboard/internal/common"
)

// Well-known key names.
const (
	KeyItems        = "items"
	KeyMarks        = "marks"
	KeyHasOnboarded = "hasOnboarded"
	KeySessionToken = "sessionToken"
	KeySessionUser  = "sessionUser"
)

type Store struct {
	repo   metadata.Repository
	prefix string
}

// New returns a Store keeping its keys under "<namespace>:".
func New(repo metadata.Repository, namespace string) *Store {
	if namespace == "" {
		namespace = common.StorageNamespace
	}
	return &Store{repo: repo, prefix: namespace + ":"}
}

// Key returns the full stored key for name.
func (s *Store) Key(name string) string {
	return s.prefix + name
}

// GetJSON decodes the value stored under name into v and reports whether it
// did. Missing keys, read failures and malformed JSON all leave v untouched
// and return false.
func (s *Store) GetJSON(ctx context.Context, name string, v any) bool {
	raw, ok, err := s.repo.Get(ctx, s.Key(name))
	if err != nil || !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false
	}
	return true
}

// SetJSON encodes v and stores it under name.
func (s *Store) SetJSON(ctx context.Context, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.repo.Set(ctx, s.Key(name), string(b))
}

// Remove deletes the given names.
func (s *Store) Remove(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = s.Key(n)
	}
	return s.repo.Delete(ctx, keys...)
}

// GetBool reads a flag stored as "1"/"0". Any stored value other than "1"
// is false; fallback applies only when nothing can be read.
func (s *Store) GetBool(ctx context.Context, name string, fallback bool) bool {
	raw, ok, err := s.repo.Get(ctx, s.Key(name))
	if err != nil || !ok {
		return fallback
	}
	return raw == "1"
}

func (s *Store) SetBool(ctx context.Context, name string, v bool) error {
	raw := "0"
	if v {
		raw = "1"
	}
	return s.repo.Set(ctx, s.Key(name), raw)
}

// Reset removes every key of this namespace.
func (s *Store) Reset(ctx context.Context) error {
	return s.repo.Clear(ctx, s.prefix)
}
