package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ledgerapp "github.com/academia/backend/internal/application/ledger"
	"github.com/academia/backend/internal/infrastructure/cache"
	"github.com/academia/backend/internal/infrastructure/config"
	"github.com/academia/backend/internal/infrastructure/logger"
	"github.com/academia/backend/internal/infrastructure/persistence"
	"github.com/academia/backend/internal/interfaces/http/dto"
	"github.com/academia/backend/internal/interfaces/http/handler"
	"github.com/academia/backend/internal/interfaces/http/middleware"
	"github.com/academia/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("timezone", cfg.App.Timezone),
	)

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	loc := cfg.Location()

	store := persistence.NewGormLedgerStore(db.DB, loc)
	reportRepo := persistence.NewGormLedgerReportRepository(db.DB)

	reportCache := cache.NewReportCache(cfg.Redis, log)
	defer func() {
		if err := reportCache.Close(); err != nil {
			log.Error("Failed to close report cache", zap.Error(err))
		}
	}()

	defaultCourseID := uuid.Nil
	if cfg.Ledger.DefaultCourseID != "" {
		defaultCourseID, err = uuid.Parse(cfg.Ledger.DefaultCourseID)
		if err != nil {
			log.Fatal("Invalid ledger.default_course_id",
				zap.String("value", cfg.Ledger.DefaultCourseID),
				zap.Error(err),
			)
		}
	}
	fallbackCost, err := decimal.NewFromString(cfg.Ledger.FallbackCourseCost)
	if err != nil {
		log.Fatal("Invalid ledger.fallback_course_cost",
			zap.String("value", cfg.Ledger.FallbackCourseCost),
			zap.Error(err),
		)
	}

	balanceService := ledgerapp.NewBalanceService(store, reportCache, loc, log)
	migrationService := ledgerapp.NewMigrationService(store, reportCache, defaultCourseID, fallbackCost, loc, log)
	reportingService := ledgerapp.NewReportingService(reportRepo, reportCache, cfg.Ledger.SummaryCacheTTL, loc, log)

	ledgerHandler := handler.NewLedgerHandler(balanceService)
	reportHandler := handler.NewReportHandler(reportingService)
	migrationHandler := handler.NewMigrationHandler(migrationService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := dto.RegisterCustomValidations(); err != nil {
		log.Fatal("Failed to register custom validations", zap.Error(err))
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.StaffIdentity())

	router.NewRouter(engine).
		Register(ledgerHandler).
		Register(reportHandler).
		Register(migrationHandler).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
