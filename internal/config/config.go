package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by the application.
const (
	StoreMemory  = "memory"
	StoreSQLite  = "sqlite"
	StoreSurreal = "surreal"
)

// Provider exposes configuration values to the rest of the application.
// Packages depend on this interface rather than on *Config so tests can
// substitute their own values.
type Provider interface {
	GetServerAddr() string
	GetAdminToken() string
	GetCORSAllowOrigins() []string
	GetContactRateLimit() int

	GetStoreDriver() string
	GetSQLitePath() string
	GetDBUrl() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetWSSendBuffer() int
	GetWSWriteTimeout() time.Duration

	GetPubSubBuffer() int

	GetTracingEnabled() bool
	GetTracingServiceName() string
	GetTracingZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	ServerAddr       string
	AdminToken       string
	CORSAllowOrigins []string
	ContactRateLimit int

	StoreDriver      string
	SQLitePath       string
	DBUrl            string
	DBNs             string
	DBDb             string
	DBUser           string
	DBPass           string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration

	WSSendBuffer   int
	WSWriteTimeout time.Duration

	// PubSubBuffer is the per-subscription queue of the in-process bus.
	PubSubBuffer int

	TracingEnabled     bool
	TracingServiceName string
	TracingZipkinURL   string
}

// Compile-time interface compliance check
var _ Provider = (*Config)(nil)

// New loads configuration from environment variables, reading a .env file
// first when one is present.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		ServerAddr:       getEnv("SERVER_ADDR", ":8080"),
		AdminToken:       os.Getenv("ADMIN_API_TOKEN"),
		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		ContactRateLimit: getEnvInt("CONTACT_RATE_LIMIT", 10),

		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		SQLitePath:       getEnv("SQLITE_PATH", "eventdesk.db"),
		DBUrl:            os.Getenv("SURREAL_URL"),
		DBNs:             os.Getenv("SURREAL_NS"),
		DBDb:             os.Getenv("SURREAL_DB"),
		DBUser:           os.Getenv("SURREAL_USER"),
		DBPass:           os.Getenv("SURREAL_PASS"),
		DBQueryTimeout:   getEnvDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		DBExecuteTimeout: getEnvDuration("DB_EXECUTE_TIMEOUT", 10*time.Second),

		WSSendBuffer:   getEnvInt("WS_SEND_BUFFER", 256),
		WSWriteTimeout: getEnvDuration("WS_WRITE_TIMEOUT", 10*time.Second),

		PubSubBuffer: getEnvInt("PUBSUB_BUFFER", 64),

		TracingEnabled:     getEnvBool("PUBSUB_TRACING_ENABLED", false),
		TracingServiceName: getEnv("PUBSUB_TRACING_SERVICE_NAME", "eventdesk"),
		TracingZipkinURL:   getEnv("PUBSUB_TRACING_ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}
}

// Validate reports settings that are required by the selected store driver
// or that are out of range.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=%s", StoreSQLite)
		}
	case StoreSurreal:
		if c.DBUrl == "" || c.DBNs == "" || c.DBDb == "" {
			return fmt.Errorf("SURREAL_URL, SURREAL_NS and SURREAL_DB are required when STORE_DRIVER=%s", StoreSurreal)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.WSSendBuffer <= 0 {
		return fmt.Errorf("WS_SEND_BUFFER must be positive, got %d", c.WSSendBuffer)
	}
	if c.PubSubBuffer < 0 {
		return fmt.Errorf("PUBSUB_BUFFER cannot be negative, got %d", c.PubSubBuffer)
	}
	if c.DBQueryTimeout <= 0 || c.DBExecuteTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT and DB_EXECUTE_TIMEOUT must be positive durations")
	}
	return nil
}

func (c *Config) GetServerAddr() string              { return c.ServerAddr }
func (c *Config) GetAdminToken() string              { return c.AdminToken }
func (c *Config) GetCORSAllowOrigins() []string      { return c.CORSAllowOrigins }
func (c *Config) GetContactRateLimit() int           { return c.ContactRateLimit }
func (c *Config) GetStoreDriver() string             { return c.StoreDriver }
func (c *Config) GetSQLitePath() string              { return c.SQLitePath }
func (c *Config) GetDBUrl() string                   { return c.DBUrl }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetWSSendBuffer() int               { return c.WSSendBuffer }
func (c *Config) GetWSWriteTimeout() time.Duration   { return c.WSWriteTimeout }
func (c *Config) GetPubSubBuffer() int               { return c.PubSubBuffer }
func (c *Config) GetTracingEnabled() bool            { return c.TracingEnabled }
func (c *Config) GetTracingServiceName() string      { return c.TracingServiceName }
func (c *Config) GetTracingZipkinURL() string        { return c.TracingZipkinURL }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Invalid boolean for %s=%q, using default %t", key, v, fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
