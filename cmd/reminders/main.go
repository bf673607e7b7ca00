package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/medcabinet/api/internal/config"
	"github.com/medcabinet/api/internal/email"
	"github.com/medcabinet/api/internal/repository/postgres"
	"github.com/medcabinet/api/internal/worker"
)

type workerConfig struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"medcabinet"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	SMTPHost     string `envconfig:"SMTP_HOST" default:"localhost"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"noreply@medcabinet.local"`

	Interval time.Duration `envconfig:"REMINDER_INTERVAL" default:"1h"`
}

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	emailSvc := email.NewService(config.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	reminder := worker.NewReminder(
		postgres.NewAppointmentRepository(db),
		postgres.NewPatientRepository(db),
		postgres.NewDoctorRepository(db),
		postgres.NewSchedulingRepository(db),
		emailSvc,
		log,
		cfg.Interval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down reminder worker")
		cancel()
	}()

	log.Info("starting reminder worker", zap.Duration("interval", cfg.Interval))
	if err := reminder.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal("reminder worker stopped", zap.Error(err))
	}
}
