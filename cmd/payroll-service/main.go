package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/medflow/payroll-backend/internal/overtime/consumers"
	"github.com/medflow/payroll-backend/internal/overtime/events"
	"github.com/medflow/payroll-backend/internal/overtime/handler"
	"github.com/medflow/payroll-backend/internal/overtime/service"
	"github.com/medflow/payroll-backend/pkg/config"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/httputil"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/messaging"
)

const serviceName = "payroll-service"

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Payroll Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}
	if err := db.RequireSchema(ctx, cfg.Database.SchemaVersion); err != nil {
		log.Fatal().Err(err).Msg("database schema is older than this binary requires")
	}

	// Messaging is optional; without it events are dropped and no consumer runs
	var (
		rmq       *messaging.RabbitMQ
		publisher *events.OvertimeEventPublisher
	)
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(ctx, &cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()

		if err := rmq.DeclareDeadLetterQueue(serviceName); err != nil {
			log.Fatal().Err(err).Msg("failed to declare dead letter queue")
		}

		publisher, err = events.NewRabbitPublisher(rmq, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	} else {
		log.Warn().Msg("RabbitMQ disabled, overtime events will not be published")
		publisher = events.NewOvertimeEventPublisher(messaging.NewNopPublisher(log), log)
	}

	repos := service.NewRepositories(db)
	calculationService := service.NewCalculationService(db, repos, publisher, log.WithComponent("calculation"))
	approvalService := service.NewApprovalService(db, repos, publisher, log.WithComponent("approval"))
	queryService := service.NewQueryService(repos)
	reportService := service.NewReportService(repos, log.WithComponent("report"))

	overtimeHandler := handler.NewOvertimeHandler(calculationService, approvalService, queryService, reportService, log)

	if rmq != nil {
		attendanceConsumer, err := consumers.NewAttendanceEventConsumer(rmq, calculationService, log.WithComponent("attendance-consumer"))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create attendance event consumer")
		}
		if err := attendanceConsumer.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to start attendance event consumer")
		}
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":   "healthy",
			"service":  serviceName,
			"database": db.Health(r.Context()),
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		} else {
			health["rabbitmq"] = map[string]string{"status": "disabled"}
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.Authenticate(cfg.JWT, log))
		overtimeHandler.Routes(r)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stops the consumer loop
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
