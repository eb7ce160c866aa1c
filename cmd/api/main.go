package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/chachabrian/mooveit-parcels/internal/config"
	"github.com/chachabrian/mooveit-parcels/internal/database"
	"github.com/chachabrian/mooveit-parcels/internal/delivery"
	"github.com/chachabrian/mooveit-parcels/internal/events"
	"github.com/chachabrian/mooveit-parcels/internal/handlers"
	"github.com/chachabrian/mooveit-parcels/internal/logging"
	"github.com/chachabrian/mooveit-parcels/internal/middleware"
	"github.com/chachabrian/mooveit-parcels/internal/payments"
	"github.com/chachabrian/mooveit-parcels/internal/repository"
	"github.com/chachabrian/mooveit-parcels/internal/services"
	"github.com/chachabrian/mooveit-parcels/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "mooveit-parcels:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		envFile string
		migrate bool
	)
	flagSet := pflag.NewFlagSet("mooveit-parcels", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flagSet.BoolVar(&migrate, "migrate", false, "run database migrations before serving (also MIGRATE=true)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(log)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if migrate || cfg.RunMigrations {
		if err := database.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations applied")
	}
	store := repository.New(db)

	hub := services.NewHub(log)
	go hub.Run(ctx)
	fanout := events.NewFanout(log, hub).WithTimeout(cfg.EventPublishTimeout)

	var verifiers middleware.Verifiers
	if cfg.JWTSecret != "" {
		verifiers = append(verifiers, utils.NewJWTVerifier(cfg.JWTSecret))
	}
	if cfg.FirebaseServiceAccount != "" {
		fb, err := services.NewFirebase(ctx, cfg.FirebaseServiceAccount)
		if err != nil {
			return err
		}
		verifiers = append(verifiers, services.NewFirebaseVerifier(fb.Auth))
		fanout.Add(services.NewFCMPublisher(fb.Messaging))
		log.Info("firebase initialized")
	}

	if cfg.RedisURL != "" {
		rdb, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		fanout.Add(services.NewRedisPublisher(rdb))
		log.Info("redis publisher enabled", "channel", services.ParcelUpdatesChannel)
	}

	if len(cfg.KafkaBrokers) > 0 {
		kp := services.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		fanout.Add(kp)
		log.Info("kafka publisher enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	var codes delivery.CodeSender
	if cfg.SMTP.Enabled() {
		mailer := services.NewEmailPublisher(cfg.SMTP, cfg.Storage.BaseURL)
		fanout.Add(mailer)
		codes = mailer
		log.Info("delivery emails enabled", "smtp_host", cfg.SMTP.Host)
	} else {
		log.Warn("SMTP not configured, password login setup is disabled")
	}

	if cfg.SMS.Enabled() {
		fanout.Add(services.NewSMSPublisher(cfg.SMS))
		log.Info("receiver SMS enabled")
	}

	storage, err := services.NewStorage(cfg.Storage, log)
	if err != nil {
		return err
	}
	uploadDir := cfg.Storage.UploadDir
	if storage.UsingS3() {
		uploadDir = ""
	}

	var (
		gateway   payments.Gateway
		confirmer delivery.PaymentConfirmer
	)
	if cfg.StripeSecretKey != "" {
		stripeClient := payments.NewStripeClient(cfg.StripeSecretKey)
		gateway = stripeClient
		confirmer = stripeClient
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payment intents are disabled")
	}

	deps := delivery.Deps{
		Store:     store,
		Publisher: fanout,
		Uploader:  storage,
		Confirmer: confirmer,
		Log:       log,
	}
	accounts := delivery.NewAccounts(deps, cfg.AdminEmails, codes)

	router := handlers.NewRouter(handlers.RouterDeps{
		Store:        store,
		Accounts:     accounts,
		Lifecycle:    delivery.NewLifecycle(deps),
		Riders:       delivery.NewRiders(deps),
		Cashouts:     delivery.NewCashouts(deps),
		Tracking:     delivery.NewTracking(deps),
		Gateway:      gateway,
		Hub:          hub,
		Verifier:     verifiers,
		Log:          log,
		AllowOrigins: cfg.AllowOrigins,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTTTL,
		Currency:     cfg.Currency,
		UploadDir:    uploadDir,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	fanout.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
