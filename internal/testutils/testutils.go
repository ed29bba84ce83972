package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/nfrund/eventdesk/internal/config"
	"github.com/nfrund/eventdesk/internal/domain"
)

// ConfigForTests loads the optional .env.test file from the project root and
// returns a config built from the resulting environment. Without STORE_DRIVER
// in the environment the in-memory store is used.
func ConfigForTests(t *testing.T) *config.Config {
	t.Helper()

	if root, ok := projectRoot(); ok {
		if env, err := godotenv.Read(filepath.Join(root, ".env.test")); err == nil {
			// t.Setenv restores the previous values when the test ends.
			for key, value := range env {
				t.Setenv(key, value)
			}
		}
	}
	if os.Getenv("STORE_DRIVER") == "" {
		t.Setenv("STORE_DRIVER", config.StoreMemory)
	}
	return config.FromEnv()
}

// MemoryConfig returns a valid in-memory configuration that ignores the
// environment.
func MemoryConfig(adminToken string) *config.Config {
	return &config.Config{
		ServerAddr:       "127.0.0.1:0",
		AdminToken:       adminToken,
		CORSAllowOrigins: []string{"*"},
		ContactRateLimit: 1000,
		StoreDriver:      config.StoreMemory,
		DBQueryTimeout:   5 * time.Second,
		DBExecuteTimeout: 5 * time.Second,
		WSSendBuffer:     16,
		WSWriteTimeout:   2 * time.Second,
		PubSubBuffer:     16,
	}
}

// ScenarioSubmission is the fixed submission used across end-to-end tests.
func ScenarioSubmission() domain.ContactSubmission {
	return domain.ContactSubmission{
		Name:      "Socket Test",
		Email:     "test@socket.com",
		Subject:   "Socket Routing",
		Message:   "Checking the link payload",
		IPAddress: "127.0.0.1",
	}
}

// WebSocketURL turns an httptest server URL into a ws:// URL for path.
func WebSocketURL(serverURL, path string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + path
}

func projectRoot() (string, bool) {
	path, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path, true
		}
		if path == filepath.Dir(path) {
			return "", false
		}
		path = filepath.Dir(path)
	}
}
