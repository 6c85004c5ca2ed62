package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/config"
	"github.com/jwalitptl/hospital-api/internal/handler"
	appointmentHandler "github.com/jwalitptl/hospital-api/internal/handler/appointment"
	authHandler "github.com/jwalitptl/hospital-api/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/hospital-api/internal/handler/dashboard"
	doctorHandler "github.com/jwalitptl/hospital-api/internal/handler/doctor"
	examinationHandler "github.com/jwalitptl/hospital-api/internal/handler/examination"
	"github.com/jwalitptl/hospital-api/internal/handler/health"
	hospitalizationHandler "github.com/jwalitptl/hospital-api/internal/handler/hospitalization"
	invoiceHandler "github.com/jwalitptl/hospital-api/internal/handler/invoice"
	medicationHandler "github.com/jwalitptl/hospital-api/internal/handler/medication"
	notificationHandler "github.com/jwalitptl/hospital-api/internal/handler/notification"
	patientHandler "github.com/jwalitptl/hospital-api/internal/handler/patient"
	"github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/hospital-api/internal/handler/user"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	"github.com/jwalitptl/hospital-api/internal/router"
	appointmentService "github.com/jwalitptl/hospital-api/internal/service/appointment"
	auditService "github.com/jwalitptl/hospital-api/internal/service/audit"
	authService "github.com/jwalitptl/hospital-api/internal/service/auth"
	billingService "github.com/jwalitptl/hospital-api/internal/service/billing"
	dashboardService "github.com/jwalitptl/hospital-api/internal/service/dashboard"
	doctorService "github.com/jwalitptl/hospital-api/internal/service/doctor"
	examinationService "github.com/jwalitptl/hospital-api/internal/service/examination"
	hospitalizationService "github.com/jwalitptl/hospital-api/internal/service/hospitalization"
	medicationService "github.com/jwalitptl/hospital-api/internal/service/medication"
	notificationService "github.com/jwalitptl/hospital-api/internal/service/notification"
	patientService "github.com/jwalitptl/hospital-api/internal/service/patient"
	userService "github.com/jwalitptl/hospital-api/internal/service/user"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/security"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	auditLogger, err := auditService.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to build audit logger: %w", err)
	}
	auditSvc := auditService.NewService(auditLogger)
	defer auditSvc.Sync()

	revocations := auth.NewRevocationList(cfg.JWT.Expiry)
	if cfg.JWT.SharedRevocation {
		client, err := redis.NewClient(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return fmt.Errorf("failed to connect token store: %w", err)
		}
		defer client.Close()
		revocations.WithStore(auth.NewRedisTokenStore(client))
	} else {
		log.Warn().Msg("token revocation is local to this process")
	}

	engine := buildRouter(cfg, db, auditSvc, revocations)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

func buildRouter(cfg *config.Config, db *sqlx.DB, auditSvc *auditService.Service, revocations *auth.RevocationList) http.Handler {
	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	examinationRepo := postgres.NewExaminationRepository(db)
	hospitalizationRepo := postgres.NewHospitalizationRepository(db)
	medicationRepo := postgres.NewMedicationRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	dashboardRepo := postgres.NewDashboardRepository(db)

	// Security
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		Expiry: cfg.JWT.Expiry,
	})

	// Services
	authSvc := authService.NewService(userRepo, hasher, jwtSvc, revocations)
	userSvc := userService.NewService(userRepo, hasher)
	patientSvc := patientService.NewService(patientRepo)
	doctorSvc := doctorService.NewService(doctorRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, cfg.Scheduling)
	examinationSvc := examinationService.NewService(examinationRepo)
	hospitalizationSvc := hospitalizationService.NewService(hospitalizationRepo)
	medicationSvc := medicationService.NewService(medicationRepo)
	billingSvc := billingService.NewService(invoiceRepo)
	notificationSvc := notificationService.NewService(notificationRepo)
	dashboardSvc := dashboardService.NewService(dashboardRepo)

	// Handlers
	base := handler.NewBaseHandler(validator.New(), cfg.Pagination.MaxLimit)
	metricsHandler := prometheus.New(cfg.Metrics.Namespace)

	handlers := router.Handlers{
		Auth:            authHandler.NewHandler(base, authSvc),
		User:            userHandler.NewHandler(base, userSvc),
		Patient:         patientHandler.NewHandler(base, patientSvc),
		Doctor:          doctorHandler.NewHandler(base, doctorSvc, appointmentSvc),
		Appointment:     appointmentHandler.NewHandler(base, appointmentSvc),
		Examination:     examinationHandler.NewHandler(base, examinationSvc),
		Hospitalization: hospitalizationHandler.NewHandler(base, hospitalizationSvc),
		Medication:      medicationHandler.NewHandler(base, medicationSvc),
		Invoice:         invoiceHandler.NewHandler(base, billingSvc),
		Notification:    notificationHandler.NewHandler(base, notificationSvc),
		Dashboard:       dashboardHandler.NewHandler(dashboardSvc),
		Health:          health.NewHandler(db),
		Metrics:         metricsHandler,
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc, revocations),
		middleware.NewAuditMiddleware(auditSvc),
		handlers,
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       middleware.NewCORSConfig(cfg.CORS),
			MaxBodyBytes:     cfg.Server.MaxBodyBytes,
			Release:          true,
		},
	)
	r.Setup()

	return r.Engine()
}
