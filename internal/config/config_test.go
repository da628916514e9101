package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "STOCK_BACKEND", "HTTP_ADDR", "GRPC_ADDR", "REQUEST_TIMEOUT", "POSTGRES_DSN", "OTEL_EXPORTER_OTLP_ENDPOINT")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.StockBackend)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":50051", cfg.GRPCAddr)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.TelemetryEnabled())
}

func TestLoad_EmptyBackend(t *testing.T) {
	t.Setenv("STOCK_BACKEND", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STOCK_BACKEND", BackendMySQL)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("SHUTDOWN_GRACE", "10")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendMySQL, cfg.StockBackend)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownGrace)
	assert.True(t, cfg.TelemetryEnabled())
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("STOCK_BACKEND", "dynamo")

	_, err := Load()
	assert.ErrorContains(t, err, "STOCK_BACKEND")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("STOCK_BACKEND", BackendMemory)
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
}
