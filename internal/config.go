package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/moodlog/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Storage   StorageConfig     `yaml:"storage"`
	Auth      AuthConfig        `yaml:"auth"`
	Dashboard DashboardConfig   `yaml:"dashboard"`
	Events    EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Dashboard.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"MOODLOG_LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"MOODLOG_HTTP_PORT"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects where the mood log is persisted.
//
// Driver is one of "file" (Path is a directory), "sqlite" (Path is a database
// file), "postgres" (DSN is required) or "memory" (nothing persists).
type StorageConfig struct {
	Driver string `yaml:"driver" env:"MOODLOG_STORAGE_DRIVER"`
	Path   string `yaml:"path" env:"MOODLOG_STORAGE_PATH"`
	DSN    string `yaml:"dsn" env:"MOODLOG_STORAGE_DSN"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	needsPath := c.Driver == storage.DriverFile || c.Driver == storage.DriverSQLite
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(
			storage.DriverFile, storage.DriverSQLite, storage.DriverPostgres, storage.DriverMemory)),
		validation.Field(&c.Path, validation.When(needsPath, validation.Required)),
		validation.Field(&c.DSN, validation.When(c.Driver == storage.DriverPostgres, validation.Required)),
	)
}

// Options converts the configuration to storage.Options.
func (c *StorageConfig) Options() storage.Options {
	return storage.Options{Driver: c.Driver, Path: c.Path, DSN: c.DSN}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" env:"MOODLOG_AUTH_MODE"`
	Token string `yaml:"token" env:"MOODLOG_AUTH_TOKEN"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// DashboardConfig tunes the dashboard view.
type DashboardConfig struct {
	TrendDays int `yaml:"trend_days" env:"MOODLOG_TREND_DAYS"`
}

// Validate validates the dashboard configuration.
func (c *DashboardConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TrendDays, validation.Min(1), validation.Max(366)),
	)
}

// EventsConfig tunes the SSE broker and the storage watcher.
type EventsConfig struct {
	Throttle time.Duration `yaml:"throttle" env:"MOODLOG_EVENTS_THROTTLE"`
	Debounce time.Duration `yaml:"debounce" env:"MOODLOG_WATCH_DEBOUNCE"`
	Watch    bool          `yaml:"watch" env:"MOODLOG_WATCH"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Driver: storage.DriverFile,
			Path:   "./data",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Dashboard: DashboardConfig{
			TrendDays: 7,
		},
		Events: EventsConfig{
			Throttle: 2 * time.Second,
			Debounce: 200 * time.Millisecond,
			Watch:    true,
		},
	}
}
