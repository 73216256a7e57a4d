package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"fleet-service/internal/auth"
	"fleet-service/internal/cache"
	"fleet-service/internal/config"
	"fleet-service/internal/db"
	httphandler "fleet-service/internal/http"
	"fleet-service/internal/http/middleware"
	"fleet-service/internal/logger"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.New(cfg.Environment, cfg.LogLevel)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Error().Err(err).Msg("failed to connect database")
		return err
	}

	counterCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		appLogger.Warn().Err(err).Msg("counter cache disabled")
		counterCache = nil
	}
	if counterCache != nil {
		defer counterCache.Close()
	}

	services := buildServices(database, counterCache, cfg, appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		services.shifts,
		services.jobs,
		services.invoices,
		services.references,
		services.codes,
		appLogger,
	)
	router := httphandler.NewRouter(handler, middleware.Auth(tokenParser), cfg.Environment, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info().Str("addr", addr).Msg("starting fleet service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	return nil
}

type serviceSet struct {
	codes      *service.CodeService
	shifts     *service.ShiftService
	jobs       *service.JobService
	invoices   *service.InvoiceService
	references *service.ReferenceService
}

func buildServices(database *gorm.DB, counterCache *cache.RedisCache, cfg *config.Config, log zerolog.Logger) serviceSet {
	driverRepo := repository.NewDriverRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	trailerRepo := repository.NewTrailerRepository(database)
	clientRepo := repository.NewClientRepository(database)
	productRepo := repository.NewProductRepository(database)
	shiftRepo := repository.NewShiftRepository(database)
	jobRepo := repository.NewJobRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)
	counterRepo := repository.NewCounterRepository(database)

	var opts []service.CodeServiceOption
	if counterCache != nil {
		opts = append(opts, service.WithCounterCache(counterCache, cfg.Redis.CounterCacheTTL))
	}
	codes := service.NewCodeService(database, counterRepo, log, opts...)
	guard := service.NewConflictGuard(shiftRepo, jobRepo)

	return serviceSet{
		codes:  codes,
		shifts: service.NewShiftService(database, shiftRepo, driverRepo, guard, codes, log),
		jobs: service.NewJobService(database, jobRepo, shiftRepo, clientRepo, driverRepo,
			vehicleRepo, trailerRepo, productRepo, guard, codes, log),
		invoices:   service.NewInvoiceService(database, invoiceRepo, jobRepo, productRepo, codes, log),
		references: service.NewReferenceService(database, driverRepo, vehicleRepo, trailerRepo, clientRepo, productRepo, codes, log),
	}
}
