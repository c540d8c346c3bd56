package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"newsletter/db/migrations"
	"newsletter/internal/adapter/logger"
	"newsletter/pkg/config"
)

const connectTimeout = 10 * time.Second

// DB is the process-wide connection pool. It is shared by every request
// handler; only its owner closes it.
type DB struct {
	*pgxpool.Pool
	QueryBuilder *squirrel.StatementBuilderType
}

// NewDB opens a pool scoped to settings.DatabaseName and verifies it with a ping.
func NewDB(ctx context.Context, settings config.DatabaseSettings) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(settings.ConnectionString())

	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	if settings.MaxConns > 0 {
		poolConfig.MaxConns = settings.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)

	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to %s: %w", settings.DatabaseName, err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	return &DB{
		Pool:         pool,
		QueryBuilder: &psql,
	}, nil
}

// CreateDatabase connects without selecting a database and issues
// CREATE DATABASE for settings.DatabaseName.
func CreateDatabase(ctx context.Context, settings config.DatabaseSettings) error {
	return execOnServer(ctx, settings, fmt.Sprintf("CREATE DATABASE %s", quoteIdent(settings.DatabaseName)))
}

// DropDatabase removes settings.DatabaseName, terminating any remaining sessions.
func DropDatabase(ctx context.Context, settings config.DatabaseSettings) error {
	return execOnServer(ctx, settings, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", quoteIdent(settings.DatabaseName)))
}

func execOnServer(ctx context.Context, settings config.DatabaseSettings, stmt string) error {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	conn, err := pgx.Connect(connectCtx, settings.ConnectionStringWithoutDB())

	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}

	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("executing %q: %w", stmt, err)
	}

	return nil
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// RunMigrations applies every pending migration embedded in db/migrations,
// in order, to settings.DatabaseName. Statements are traced through otelsql
// and logged through log.SQL.
func RunMigrations(settings config.DatabaseSettings, log *logger.Logger) error {
	dsn := settings.ConnectionString()

	tracedDB, err := otelsql.Open("pgx", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(settings.DatabaseName),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}

	defer tracedDB.Close()

	sqlDB := sqldblogger.OpenDriver(dsn, tracedDB.Driver(), zerologadapter.New(log.SQL))
	defer sqlDB.Close()

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})

	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")

	if err != nil {
		driver.Close()
		return fmt.Errorf("reading migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)

	if err != nil {
		source.Close()
		driver.Close()
		return fmt.Errorf("creating migrator: %w", err)
	}

	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}
