package testutils

import (
	"os"
	"testing"
)

// SkipWithoutSurreal skips integration tests that need a running SurrealDB.
func SkipWithoutSurreal(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping SurrealDB integration test in short mode")
	}
	if os.Getenv("SURREAL_URL") == "" {
		t.Skip("SURREAL_URL not set; skipping SurrealDB integration test")
	}
}
