package server_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nfrund/eventdesk/internal/app"
	"github.com/nfrund/eventdesk/internal/pubsub"
	"github.com/nfrund/eventdesk/internal/testutils"
	"github.com/stretchr/testify/require"
)

const adminToken = "integration-token"

// setupIntegrationTest wires the full application, exactly as the server
// command does, behind an httptest server. The returned cleanup shuts the
// application down and reports any shutdown error.
func setupIntegrationTest(t *testing.T) (*app.App, *httptest.Server, func() error) {
	t.Helper()

	cfg := testutils.MemoryConfig(adminToken)
	a, err := app.New(context.Background(), cfg, app.Options{
		TracingConfig: &pubsub.TracingConfig{},
	})
	require.NoError(t, err)

	testServer := httptest.NewServer(a.Server.E)

	var done bool
	cleanup := func() error {
		if done {
			return nil
		}
		done = true
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := a.Shutdown(ctx)
		testServer.Close()
		return err
	}
	t.Cleanup(func() { _ = cleanup() })

	return a, testServer, cleanup
}

// TestSetupIntegrationTest verifies that the entire server setup and teardown
// process can complete without errors.
func TestSetupIntegrationTest(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	require.NoError(t, cleanup())
}
