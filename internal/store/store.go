// Package store persists StoryNest state in a bolt-speaking graph
// database. All writes that carry uniqueness invariants (one analysis
// per story, one relation per unordered user pair) go through Cypher
// MERGE so the guarantee lives in the storage layer, not in
// read-then-write application code.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrDuplicatePair = errors.New("store: relation already exists for this user pair")
)

type Store struct {
	driver GraphDriver
}

func New(driver GraphDriver) *Store {
	return &Store{driver: driver}
}

func (s *Store) BuildIndices(ctx context.Context) error {
	return s.driver.BuildIndices(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Record helpers. Property values come back as any; absent properties
// fall back to zero values rather than erroring, matching how loosely
// typed documents are read everywhere else in this codebase.

func recordString(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func recordBool(rec *neo4j.Record, key string) bool {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

func recordStrings(rec *neo4j.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return []string{}
	}
	raw, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Timestamps are stored as RFC3339 strings so records round-trip the
// same way through real servers and the test mock.
func recordTime(rec *neo4j.Record, key string) time.Time {
	s := recordString(rec, key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
