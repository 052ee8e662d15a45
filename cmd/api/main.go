package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cmms_backend/internal/calls"
	"cmms_backend/internal/equipment"
	"cmms_backend/internal/events"
	apphttp "cmms_backend/internal/http"
	"cmms_backend/internal/http/router"
	"cmms_backend/internal/inventory"
	"cmms_backend/internal/notification"
	"cmms_backend/internal/orders"
	"cmms_backend/internal/plans"
	"cmms_backend/platform/config"
	"cmms_backend/platform/db"
	"cmms_backend/platform/logger"
	"cmms_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(log)
	notificationModule.RegisterHandlers(eventBus)

	equipmentModule := equipment.NewModule(pool, val, log)
	plansModule := plans.NewModule(pool, eventBus, val, log)
	ordersModule := orders.NewModule(pool, eventBus, val, log)
	callsModule := calls.NewModule(pool, eventBus, val, log)
	inventoryModule := inventory.NewModule(pool, eventBus, val, log)

	// Generated orders push the next occurrence onto the equipment card
	plansModule.Service().SetEquipmentScheduler(equipmentModule.Service())

	// Completing an order deducts parts, stamps the equipment and
	// materializes the plan's next occurrence
	ordersModule.Service().SetReconciler(inventoryModule.Service())
	ordersModule.Service().SetFollowUpGenerator(plansModule.Service())
	ordersModule.Service().SetEquipmentRecorder(equipmentModule.Service())

	// Completing a call deducts parts and stamps the corrective marker
	callsModule.Service().SetReconciler(inventoryModule.Service())
	callsModule.Service().SetEquipmentRecorder(equipmentModule.Service())

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			equipmentModule,
			plansModule,
			ordersModule,
			callsModule,
			inventoryModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
