package test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	database "newsletter/internal/adapter/database/postgres"
	api "newsletter/internal/adapter/http"
	"newsletter/internal/adapter/logger"
	"newsletter/pkg/config"
)

var (
	loggingOnce sync.Once
	testLogger  *logger.Logger
)

// TestLogger returns the logger shared by every test in the process. It is
// built once; output goes to stdout only when TEST_LOG is set.
func TestLogger() *logger.Logger {
	loggingOnce.Do(func() {
		gin.SetMode(gin.TestMode)

		var sink io.Writer = io.Discard

		if os.Getenv("TEST_LOG") != "" {
			sink = os.Stdout
		}

		log, err := logger.New(logger.Options{ServiceName: "test", Level: "info", Sink: sink})

		if err != nil {
			panic(err)
		}

		log.ReplaceGlobals()
		testLogger = log
	})

	return testLogger
}

type TestApp struct {
	Address  string
	DB       *database.DB
	Settings config.Settings
	Client   *http.Client
}

// SpawnApp starts the application on an OS-assigned port against a freshly
// created and migrated database. Nothing is shared with other TestApps
// except the database server.
func SpawnApp(t *testing.T) *TestApp {
	t.Helper()

	log := TestLogger()

	listener := bindListener(t)

	settings := LoadTestSettings(t)
	db := ConfigureDatabase(t, settings.Database)

	server, err := api.NewServer(listener, db, log,
		api.WithTimeouts(settings.Application.ReadTimeout, settings.Application.WriteTimeout),
		api.WithRequestTimeout(settings.Application.RequestTimeout),
	)

	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		if err := server.Run(); err != nil {
			t.Errorf("server stopped: %v", err)
		}
	}()

	// Registered after ConfigureDatabase's cleanup, so it runs first: the
	// server stops before its pool is closed and its database dropped.
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			t.Logf("server shutdown: %v", err)
		}

		<-done
	})

	return &TestApp{
		Address:  "http://" + server.Addr(),
		DB:       db,
		Settings: settings,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// bindListener binds an OS-assigned local port that is closed when the test
// ends, including when setup fails after binding. Closing again after
// Shutdown is a no-op.
func bindListener(t *testing.T) net.Listener {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")

	if err != nil {
		t.Fatalf("failed to bind to random port: %v", err)
	}

	t.Cleanup(func() { listener.Close() })

	return listener
}

// LoadTestSettings loads the configuration and replaces the database name
// with a fresh UUID. Every other setting is shared across tests.
func LoadTestSettings(t *testing.T) config.Settings {
	t.Helper()

	settings, err := config.Load("")

	if err != nil {
		t.Fatalf("failed to read configuration: %v", err)
	}

	settings.Database.DatabaseName = uuid.NewString()

	return settings
}

// ConfigureDatabase creates settings.DatabaseName, applies every migration
// to it and returns a pool scoped to it. The database is dropped when the
// test ends unless TEST_KEEP_DATABASE is set.
func ConfigureDatabase(t *testing.T, settings config.DatabaseSettings) *database.DB {
	t.Helper()

	ctx := context.Background()

	if err := database.CreateDatabase(ctx, settings); err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if os.Getenv("TEST_KEEP_DATABASE") == "" {
		t.Cleanup(func() {
			if err := database.DropDatabase(context.Background(), settings); err != nil {
				t.Logf("failed to drop database %s: %v", settings.DatabaseName, err)
			}
		})
	}

	if err := database.RunMigrations(settings, TestLogger()); err != nil {
		t.Fatalf("failed to migrate the database: %v", err)
	}

	db, err := database.NewDB(ctx, settings)

	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	t.Cleanup(db.Close)

	return db
}

// PostSubscriptions sends body as a form-encoded POST /subscriptions.
func (a *TestApp) PostSubscriptions(body string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, a.Address+"/subscriptions", strings.NewReader(body))

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return a.Client.Do(req)
}

func (a *TestApp) GetHealthCheck() (*http.Response, error) {
	return a.Client.Get(a.Address + "/health_check")
}

// FormBody encodes name and email the way a browser form would.
func FormBody(name, email string) string {
	values := url.Values{}
	values.Set("name", name)
	values.Set("email", email)

	return values.Encode()
}

func SkipWithoutDatabase(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skipf("skipping %s: needs a postgres server", t.Name())
	}
}
