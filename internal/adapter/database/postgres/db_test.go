package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "newsletter/pkg/test"

	database "newsletter/internal/adapter/database/postgres"
	"newsletter/pkg/config"
)

func TestNewDB_FailsForUnknownDatabase(t *testing.T) {
	SkipWithoutDatabase(t)

	settings := LoadTestSettings(t).Database

	_, err := database.NewDB(context.Background(), settings)

	assert.Error(t, err)
}

func TestNewDB_FailsWhenServerIsUnreachable(t *testing.T) {
	settings := config.GetDefaultSettings().Database
	settings.Host = "127.0.0.1"
	settings.Port = 1

	_, err := database.NewDB(context.Background(), settings)

	assert.Error(t, err)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	SkipWithoutDatabase(t)

	settings := LoadTestSettings(t).Database
	db := ConfigureDatabase(t, settings)

	require.NoError(t, database.RunMigrations(settings, TestLogger()))

	var columns []string

	rows, err := db.Query(context.Background(),
		"SELECT column_name FROM information_schema.columns WHERE table_name = 'subscriptions' ORDER BY ordinal_position")
	require.NoError(t, err)
	defer rows.Close()

	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		columns = append(columns, name)
	}

	assert.Equal(t, []string{"id", "email", "name", "subscribed_at"}, columns)
}

func TestDropDatabase_RemovesDatabase(t *testing.T) {
	SkipWithoutDatabase(t)

	ctx := context.Background()
	settings := LoadTestSettings(t).Database
	settings.DatabaseName = "drop-" + uuid.NewString()

	require.NoError(t, database.CreateDatabase(ctx, settings))
	require.NoError(t, database.DropDatabase(ctx, settings))

	_, err := database.NewDB(ctx, settings)
	assert.Error(t, err)

	assert.NoError(t, database.DropDatabase(ctx, settings))
}
