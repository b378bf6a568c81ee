package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"

	"github.com/dukerupert/njord/internal"
	"github.com/dukerupert/njord/internal/events"
	"github.com/dukerupert/njord/internal/handler/api"
	"github.com/dukerupert/njord/internal/middleware"
	"github.com/dukerupert/njord/internal/payment"
	"github.com/dukerupert/njord/internal/postgres"
	"github.com/dukerupert/njord/internal/service"
	"github.com/dukerupert/njord/internal/totals"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	logger.Info().Str("env", cfg.Env).Msg("starting server")

	// Run migrations over database/sql, then open the pgx pool for serving
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrationDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := internal.RunMigrations(migrationDB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := migrationDB.Close(); err != nil {
		return fmt.Errorf("failed to close migration connection: %w", err)
	}
	logger.Info().Msg("migrations applied")

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Stores
	orderStore := postgres.NewOrderStore(pool)
	couponStore := postgres.NewCouponStore(pool)
	customerStore := postgres.NewCustomerStore(pool)

	// Optional event publisher
	var observers []service.OrderObserver
	if cfg.NatsURL != "" {
		pub, err := events.Connect(cfg.NatsURL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to nats: %w", err)
		}
		defer pub.Close()
		observers = append(observers, pub.OrderSaved)
		logger.Info().Str("url", cfg.NatsURL).Msg("event publisher connected")
	}

	// Services
	orderService, err := service.NewOrderService(
		logger,
		orderStore,
		totals.NewStandardCalculator(),
		payment.NewStandardCompleter(),
		service.OrderConfig{
			Currency:         cfg.Currency,
			Precision:        cfg.PriceDecimals,
			PricesIncludeTax: cfg.PricesIncludeTax,
			Location:         cfg.Location(),
		},
		nil,
		observers,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize order service: %w", err)
	}

	couponService, err := service.NewCouponService(logger, couponStore)
	if err != nil {
		return fmt.Errorf("failed to initialize coupon service: %w", err)
	}

	customerService, err := service.NewCustomerService(logger, customerStore)
	if err != nil {
		return fmt.Errorf("failed to initialize customer service: %w", err)
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()

	metrics := middleware.NewMetrics(cfg.MetricsNamespace)
	e.Use(middleware.RequestLogger(logger))
	e.Use(metrics.Middleware())
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	opts := service.ResponseOptions{
		Precision: cfg.PriceDecimals,
		Location:  cfg.Location(),
	}
	v1 := e.Group("/api/v1")
	api.NewOrderHandler(orderService, opts, logger).Register(v1)
	api.NewCouponHandler(couponService, opts, logger).Register(v1)
	api.NewCustomerHandler(customerService, opts, logger).Register(v1)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info().Str("address", addr).Msg("listening")
	if err := e.Start(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
