package main

import (
	"context"
	"testing"
	"time"

	"github.com/shopping-cart-api/internal/config"
	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second},
		Database: config.DatabaseConfig{Driver: config.DriverMemory},
		JWT:      config.JWTConfig{Secret: "main-secret"},
		Catalog:  config.CatalogConfig{MergePolicy: config.MergeRefresh, LowStockThreshold: 2},
		Jobs:     config.JobsConfig{StockReportSchedule: "@hourly"},
	}
}

// trackStores replaces openStores with memory stores that count closes.
func trackStores(t *testing.T) *int {
	t.Helper()
	closed := 0
	orig := openStores
	openStores = func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*stores, error) {
		items := memory.NewItemStore()
		return &stores{
			items:  items,
			users:  memory.NewUserStore(),
			health: items,
			close: func() error {
				closed++
				return nil
			},
		}, nil
	}
	t.Cleanup(func() { openStores = orig })
	return &closed
}

func TestRun_InvalidConfigOpensNothing(t *testing.T) {
	closed := trackStores(t)
	cfg := testConfig()
	cfg.JWT.Secret = ""

	err := run(context.Background(), cfg, logging.Discard())

	require.ErrorIs(t, err, config.ErrMissingJWTSecret)
	assert.Equal(t, 0, *closed)
}

func TestRun_SetupFailureClosesStore(t *testing.T) {
	closed := trackStores(t)
	cfg := testConfig()
	cfg.Jobs.StockReportSchedule = "not a schedule"

	err := run(context.Background(), cfg, logging.Discard())

	require.ErrorContains(t, err, "failed to schedule job")
	assert.Equal(t, 1, *closed)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	closed := trackStores(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, testConfig(), logging.Discard())

	require.NoError(t, err)
	assert.Equal(t, 1, *closed)
}
