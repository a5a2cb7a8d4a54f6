package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopping-cart-api/internal/api"
	"github.com/shopping-cart-api/internal/auth"
	"github.com/shopping-cart-api/internal/config"
	"github.com/shopping-cart-api/internal/logging"
	"github.com/shopping-cart-api/internal/middleware"
	"github.com/shopping-cart-api/internal/model"
	"github.com/shopping-cart-api/internal/scheduler"
	"github.com/shopping-cart-api/internal/seed"
	"github.com/shopping-cart-api/internal/service"
	"github.com/shopping-cart-api/internal/storage"
	"github.com/shopping-cart-api/internal/storage/memory"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/shopping-cart-api/docs" // swagger docs
)

// @title Shopping Cart API
// @version 1.0
// @description REST backend for an online store: catalog items, users and bearer-token authentication.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3001
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your JWT token with the `Bearer ` prefix, e.g. "Bearer eyJhbGci..."

type stores struct {
	items  service.ItemStore
	users  service.UserStore
	health api.Pinger
	close  func() error
}

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server exited", "error", err)
		stop()
		os.Exit(1)
	}
}

// run wires the service and serves until ctx is cancelled or the listener
// fails. Everything opened here is released before it returns.
func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Warn(context.Background(), "store close failed", "error", err)
		}
	}()

	tokens, err := auth.NewTokenIssuer(cfg.JWT.Secret)
	if err != nil {
		return fmt.Errorf("failed to initialise token issuer: %w", err)
	}

	catalog := service.NewCatalog(st.items, model.MergePolicy(cfg.Catalog.MergePolicy), logger)
	accounts := service.NewAccounts(st.users, auth.NewBcryptHasher(bcrypt.DefaultCost), tokens, logger)
	logger.Info(ctx, "catalog ready", "merge_policy", string(catalog.Policy()))

	seeder := seed.New(catalog, accounts, logger)
	if cfg.Seed.OnStart {
		if err := seeder.Catalog(ctx); err != nil {
			return err
		}
	}
	if err := seeder.Admin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		logger.Warn(ctx, "admin account not created", "error", err)
	}

	sched := scheduler.NewScheduler(logger)
	jobs := []scheduler.Job{
		scheduler.NewStockReport(cfg.Jobs.StockReportSchedule, catalog, cfg.Catalog.LowStockThreshold, logger),
		scheduler.NewCatalogReset(cfg.Jobs.CatalogResetSchedule, seeder),
	}
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("failed to schedule job: %w", err)
		}
	}
	sched.Start(ctx)
	defer sched.Stop()

	authMiddleware := middleware.NewAuthMiddleware(tokens, accounts, logger)
	handler := api.NewHandler(catalog, accounts, st.health, sched, logger)
	router := api.NewRouter(handler, authMiddleware, cfg.Server.AllowedOrigin, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "addr", server.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server shutdown error", "error", err)
	}

	logger.Info(ctx, "server stopped")
	return nil
}

// openStores is swapped out in tests.
var openStores = func(ctx context.Context, cfg *config.Config, logger logging.Logger) (*stores, error) {
	if cfg.Database.Driver == config.DriverMemory {
		items := memory.NewItemStore()
		logger.Info(ctx, "using in-memory store")
		return &stores{
			items:  items,
			users:  memory.NewUserStore(),
			health: items,
			close:  func() error { return nil },
		}, nil
	}

	logger.Info(ctx, "connecting to database", "host", cfg.Database.Host, "db", cfg.Database.Database)
	db, err := storage.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "running migrations")
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &stores{
		items:  storage.NewItemRepository(db),
		users:  storage.NewUserRepository(db),
		health: db,
		close:  db.Close,
	}, nil
}
