package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter/internal/adapter/logger"
	"newsletter/internal/adapter/telemetry"
	"newsletter/pkg/config"
)

func TestConfigFromSettings(t *testing.T) {
	settings := config.GetDefaultSettings()
	settings.Application.Environment = "production"
	settings.Telemetry.MetricsPort = "9091"

	cfg := telemetry.ConfigFromSettings(settings)

	assert.Equal(t, "newsletter", cfg.ServiceName)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "9091", cfg.MetricsPort)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestNewContainer_WithoutExporters(t *testing.T) {
	container, err := telemetry.NewContainer(context.Background(), telemetry.Config{
		ServiceName: "test",
		Environment: "local",
	}, logger.Nop())
	require.NoError(t, err)

	assert.Nil(t, container.MetricsServer)
	assert.NotNil(t, container.AppMetrics)

	families, err := container.PrometheusRegistry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	assert.NoError(t, container.Shutdown(context.Background()))
}

func TestNewContainer_ServesMetricsOnOwnListener(t *testing.T) {
	container, err := telemetry.NewContainer(context.Background(), telemetry.Config{
		ServiceName: "test",
		MetricsPort: "0",
	}, logger.Nop())
	require.NoError(t, err)

	assert.NotNil(t, container.MetricsServer)
	assert.NoError(t, container.Shutdown(context.Background()))
}
