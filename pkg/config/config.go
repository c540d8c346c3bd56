package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvironmentLocal      = "local"
	EnvironmentProduction = "production"
)

var ErrUnknownEnvironment = errors.New("unknown environment")

// Settings is the full application configuration. Treat it as a value:
// callers that need a variation (tests overriding the database name) copy it.
type Settings struct {
	Application ApplicationSettings `yaml:"application"`
	Database    DatabaseSettings    `yaml:"database"`
	Log         LogSettings         `yaml:"log"`
	Telemetry   TelemetrySettings   `yaml:"telemetry"`
}

type ApplicationSettings struct {
	Host           string        `yaml:"host"`
	Port           uint16        `yaml:"port"`
	Environment    string        `yaml:"environment"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Address returns host:port suitable for net.Listen.
func (a ApplicationSettings) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

type DatabaseSettings struct {
	Username     string `yaml:"username"`
	Password     Secret `yaml:"password"`
	Host         string `yaml:"host"`
	Port         uint16 `yaml:"port"`
	DatabaseName string `yaml:"database_name"`
	RequireSSL   bool   `yaml:"require_ssl"`
	MaxConns     int32  `yaml:"max_conns"`
}

// ConnectionString returns a postgres URL scoped to DatabaseName.
func (d DatabaseSettings) ConnectionString() string {
	u := d.serverURL()
	u.Path = "/" + d.DatabaseName

	return u.String()
}

// ConnectionStringWithoutDB returns a postgres URL that selects no database,
// used to create or drop a database that does not exist yet.
func (d DatabaseSettings) ConnectionStringWithoutDB() string {
	u := d.serverURL()

	return u.String()
}

func (d DatabaseSettings) serverURL() *url.URL {
	sslMode := "disable"

	if d.RequireSSL {
		sslMode = "require"
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)

	return &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password.Expose()),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(int(d.Port))),
		RawQuery: query.Encode(),
	}
}

type LogSettings struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type TelemetrySettings struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	OTLPEndpoint   string `yaml:"otlp_endpoint"`
	MetricsPort    string `yaml:"metrics_port"`
}

// GetDefaultSettings returns the values used when a layer leaves a field unset.
func GetDefaultSettings() Settings {
	return Settings{
		Application: ApplicationSettings{
			Host:         "127.0.0.1",
			Port:         8000,
			Environment:  EnvironmentLocal,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseSettings{
			Username:     "postgres",
			Password:     "password",
			Host:         "127.0.0.1",
			Port:         5432,
			DatabaseName: "newsletter",
		},
		Log: LogSettings{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Telemetry: TelemetrySettings{
			ServiceName:    "newsletter",
			ServiceVersion: "0.1.0",
		},
	}
}

// Load builds Settings from, in order: defaults, <dir>/base.yaml,
// <dir>/<APP_ENVIRONMENT>.yaml, a .env file and APP_* environment variables.
// An empty dir resolves to the "configuration" directory at the project root.
func Load(dir string) (Settings, error) {
	_ = godotenv.Load()

	if dir == "" {
		dir = os.Getenv("APP_CONFIG_DIR")
	}

	if dir == "" {
		dir = filepath.Join(FindProjectRoot(), "configuration")
	}

	settings := GetDefaultSettings()

	if err := mergeFile(&settings, filepath.Join(dir, "base.yaml")); err != nil {
		return Settings{}, err
	}

	environment, err := ParseEnvironment(getEnv("APP_ENVIRONMENT", EnvironmentLocal))

	if err != nil {
		return Settings{}, err
	}

	if err := mergeFile(&settings, filepath.Join(dir, environment+".yaml")); err != nil {
		return Settings{}, err
	}

	settings.Application.Environment = environment

	if err := applyEnv(&settings); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func ParseEnvironment(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case EnvironmentLocal:
		return EnvironmentLocal, nil
	case EnvironmentProduction:
		return EnvironmentProduction, nil
	}

	return "", fmt.Errorf("%w %q: use either %q or %q", ErrUnknownEnvironment, value, EnvironmentLocal, EnvironmentProduction)
}

func mergeFile(settings *Settings, path string) error {
	data, err := os.ReadFile(path)

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	return nil
}

func applyEnv(settings *Settings) error {
	if v := os.Getenv("APP_APPLICATION__HOST"); v != "" {
		settings.Application.Host = v
	}

	if v := os.Getenv("APP_APPLICATION__PORT"); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)

		if err != nil {
			return fmt.Errorf("APP_APPLICATION__PORT: %w", err)
		}

		settings.Application.Port = uint16(port)
	}

	if v := os.Getenv("APP_APPLICATION__MIGRATE_ON_START"); v != "" {
		migrate, err := strconv.ParseBool(v)

		if err != nil {
			return fmt.Errorf("APP_APPLICATION__MIGRATE_ON_START: %w", err)
		}

		settings.Application.MigrateOnStart = migrate
	}

	if v := os.Getenv("APP_DATABASE__USERNAME"); v != "" {
		settings.Database.Username = v
	}

	if v := os.Getenv("APP_DATABASE__PASSWORD"); v != "" {
		settings.Database.Password = Secret(v)
	}

	if v := os.Getenv("APP_DATABASE__HOST"); v != "" {
		settings.Database.Host = v
	}

	if v := os.Getenv("APP_DATABASE__PORT"); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)

		if err != nil {
			return fmt.Errorf("APP_DATABASE__PORT: %w", err)
		}

		settings.Database.Port = uint16(port)
	}

	if v := os.Getenv("APP_DATABASE__DATABASE_NAME"); v != "" {
		settings.Database.DatabaseName = v
	}

	if v := os.Getenv("APP_DATABASE__REQUIRE_SSL"); v != "" {
		requireSSL, err := strconv.ParseBool(v)

		if err != nil {
			return fmt.Errorf("APP_DATABASE__REQUIRE_SSL: %w", err)
		}

		settings.Database.RequireSSL = requireSSL
	}

	if v := os.Getenv("APP_LOG__LEVEL"); v != "" {
		settings.Log.Level = v
	}

	if v := os.Getenv("APP_LOG__FILE"); v != "" {
		settings.Log.File = v
	}

	if v := os.Getenv("APP_TELEMETRY__OTLP_ENDPOINT"); v != "" {
		settings.Telemetry.OTLPEndpoint = v
	}

	if v := os.Getenv("APP_TELEMETRY__METRICS_PORT"); v != "" {
		settings.Telemetry.MetricsPort = v
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// FindProjectRoot walks up from this source file until it finds go.mod.
func FindProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)

		if parent == dir {
			break
		}

		dir = parent
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return "."
}
