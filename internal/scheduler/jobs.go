package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/model"
)

const (
	StockReportJob  = "stock-report"
	CatalogResetJob = "catalog-reset"
)

type LowStockReporter interface {
	LowStock(ctx context.Context, threshold int) ([]model.Item, error)
}

type CatalogSeeder interface {
	Catalog(ctx context.Context) error
}

// NewStockReport logs every item whose quantity is at or below threshold.
func NewStockReport(schedule string, items LowStockReporter, threshold int, log logging.Logger) Job {
	return Job{
		Name:     StockReportJob,
		Schedule: schedule,
		Timeout:  time.Minute,
		Run: func(ctx context.Context) error {
			low, err := items.LowStock(ctx, threshold)
			if err != nil {
				return fmt.Errorf("failed to load low stock items: %w", err)
			}
			for _, item := range low {
				log.Warn(ctx, "low stock", "id", item.ID, "title", item.Title, "quantity", item.Quantity)
			}
			log.Info(ctx, "stock report", "threshold", threshold, "low_stock", len(low))
			return nil
		},
	}
}

// NewCatalogReset restores the demo catalog.
func NewCatalogReset(schedule string, seeder CatalogSeeder) Job {
	return Job{
		Name:     CatalogResetJob,
		Schedule: schedule,
		Timeout:  time.Minute,
		Run:      seeder.Catalog,
	}
}
