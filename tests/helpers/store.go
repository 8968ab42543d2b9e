// Package helpers provides shared test fixtures.
package helpers

import (
	"testing"

	"github.com/Li-Yueting/agentbeats-tutorial/internal/repository"
)

// NewTestSQLiteStore creates an in-memory store that is closed with the test.
func NewTestSQLiteStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()

	s, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
