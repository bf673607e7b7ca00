package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/medcabinet/api/internal/cache"
	"github.com/medcabinet/api/internal/config"
	"github.com/medcabinet/api/internal/email"
	"github.com/medcabinet/api/internal/handler"
	appointmentHandler "github.com/medcabinet/api/internal/handler/appointment"
	authHandler "github.com/medcabinet/api/internal/handler/auth"
	billingHandler "github.com/medcabinet/api/internal/handler/billing"
	consultationHandler "github.com/medcabinet/api/internal/handler/consultation"
	doctorHandler "github.com/medcabinet/api/internal/handler/doctor"
	insurerHandler "github.com/medcabinet/api/internal/handler/insurer"
	patientHandler "github.com/medcabinet/api/internal/handler/patient"
	prescriptionHandler "github.com/medcabinet/api/internal/handler/prescription"
	recordHandler "github.com/medcabinet/api/internal/handler/record"
	schedulingHandler "github.com/medcabinet/api/internal/handler/scheduling"
	"github.com/medcabinet/api/internal/middleware"
	"github.com/medcabinet/api/internal/model"
	"github.com/medcabinet/api/internal/repository/postgres"
	"github.com/medcabinet/api/internal/router"
	appointmentService "github.com/medcabinet/api/internal/service/appointment"
	authService "github.com/medcabinet/api/internal/service/auth"
	billingService "github.com/medcabinet/api/internal/service/billing"
	consultationService "github.com/medcabinet/api/internal/service/consultation"
	doctorService "github.com/medcabinet/api/internal/service/doctor"
	insurerService "github.com/medcabinet/api/internal/service/insurer"
	patientService "github.com/medcabinet/api/internal/service/patient"
	prescriptionService "github.com/medcabinet/api/internal/service/prescription"
	recordService "github.com/medcabinet/api/internal/service/record"
	schedulingService "github.com/medcabinet/api/internal/service/scheduling"
	"github.com/medcabinet/api/pkg/auth"
	"github.com/medcabinet/api/pkg/logger"
	"github.com/medcabinet/api/pkg/security"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	schedulingRepo := postgres.NewSchedulingRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	consultationRepo := postgres.NewConsultationRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	recordRepo := postgres.NewRecordRepository(db)
	prescriptionRepo := postgres.NewPrescriptionRepository(db)
	insurerRepo := postgres.NewInsurerRepository(db)

	// Shared infrastructure
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:             cfg.JWT.Secret,
		RefreshSecret:      cfg.JWT.RefreshSecret,
		ExpiryHours:        cfg.JWT.ExpiryHours,
		RefreshExpiryHours: cfg.JWT.RefreshExpiryHours,
	})
	hasher := security.NewBcryptHasher(0)
	emailSvc := email.NewService(cfg.SMTP)

	schedulingOpts := []schedulingService.Option{
		schedulingService.WithSlotDuration(time.Duration(cfg.Scheduling.SlotDurationMinutes) * time.Minute),
		schedulingService.WithRemovalPolicy(model.RemovalPolicy(cfg.Scheduling.RemovalPolicy)),
	}
	if cfg.Redis.URL != "" {
		slotCache, err := cache.NewSlotCache(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer slotCache.Close()
		schedulingOpts = append(schedulingOpts, schedulingService.WithSlotCache(slotCache))
	}

	// Services
	schedulingSvc := schedulingService.NewService(schedulingRepo, doctorRepo, schedulingOpts...)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo, schedulingRepo, patientRepo, doctorRepo,
		emailSvc, schedulingSvc, appLogger,
	)
	authSvc := authService.NewService(userRepo, patientRepo, doctorRepo, recordRepo, hasher, jwtSvc)
	patientSvc := patientService.NewService(patientRepo, recordRepo, insurerRepo)
	doctorSvc := doctorService.NewService(doctorRepo)
	consultationSvc := consultationService.NewService(consultationRepo, appointmentRepo)
	billingSvc := billingService.NewService(invoiceRepo, consultationRepo, appointmentRepo)
	recordSvc := recordService.NewService(recordRepo)
	prescriptionSvc := prescriptionService.NewService(prescriptionRepo, consultationRepo)
	insurerSvc := insurerService.NewService(insurerRepo)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, userRepo)
	h := handler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(patientSvc),
		doctorHandler.NewHandler(doctorSvc),
		schedulingHandler.NewHandler(schedulingSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		consultationHandler.NewHandler(consultationSvc),
		billingHandler.NewHandler(billingSvc),
		recordHandler.NewHandler(recordSvc),
		prescriptionHandler.NewHandler(prescriptionSvc),
		insurerHandler.NewHandler(insurerSvc),
		h,
		router.DefaultConfig(),
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
