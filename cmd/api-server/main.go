package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"franchisehub-api/internal/common/aws"
	"franchisehub-api/internal/common/config"
	"franchisehub-api/internal/common/database"
	"franchisehub-api/internal/common/logger"
	"franchisehub-api/internal/common/observability"
	"franchisehub-api/internal/mailer"
	"franchisehub-api/internal/server"
	"franchisehub-api/internal/services/auth"
	"franchisehub-api/internal/services/registration"
	"franchisehub-api/internal/services/review"
	"franchisehub-api/internal/services/search"
	"franchisehub-api/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	log.Info("starting api server", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// Postgres is mandatory; keep retrying through transient startup races.
	var pg *database.PostgresClient
	err = retryWithBackoff(5, 2*time.Second, func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return pg.Ping(ctx)
	})
	if err != nil {
		zapLogger.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pg.Close()

	var rdb *database.RedisClient
	err = retryWithBackoff(5, 2*time.Second, func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return rdb.Ping(ctx)
	})
	if err != nil {
		zapLogger.Fatal("redis unavailable", zap.Error(err))
	}
	defer rdb.Close()

	// Elasticsearch is optional; the workflow runs without the directory index.
	var searchService *search.Service
	if cfg.Search.Enabled {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			log.Warn("elasticsearch client init failed, search disabled", map[string]interface{}{
				"error": err,
			})
		} else {
			if err := es.Ping(); err != nil {
				log.Warn("elasticsearch unreachable at startup", map[string]interface{}{
					"error": err,
				})
			}
			searchService = search.NewService(es.Client, cfg.Database.Elasticsearch.Index, log)
		}
	}

	var dispatcher *mailer.Dispatcher
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(context.Background(), cfg.Notifications.AWS.Region)
		if err != nil {
			zapLogger.Fatal("ses client init failed", zap.Error(err))
		}
		sender := mailer.NewSESSender(sesClient, cfg.Notifications.Email.FromEmail)
		dispatcher = mailer.NewDispatcher(
			sender,
			log,
			cfg.Notifications.QueueSize,
			cfg.Notifications.MaxRetries,
			time.Duration(cfg.Notifications.SendTimeout)*time.Second,
		)
		dispatcher.Start()
		defer dispatcher.Stop()
	} else {
		log.Warn("email delivery disabled, decisions will not notify businesses", nil)
	}

	files, err := storage.NewFileStore(cfg.Uploads.Directory, cfg.Uploads.PublicPath, cfg.Uploads.MaxSizeMB, log)
	if err != nil {
		zapLogger.Fatal("upload store init failed", zap.Error(err))
	}

	var indexer registration.BusinessIndexer
	if searchService != nil {
		indexer = searchService
	}
	var mail review.MailEnqueuer
	if dispatcher != nil {
		mail = dispatcher
	}

	registrationService := registration.NewService(registration.LoadConfig(), pg.DB, files, indexer, log)
	reviewService := review.NewService(pg.DB, mail, log)

	authConfig := &auth.Config{
		JWTSecret:    cfg.Auth.JWTSecret,
		Issuer:       cfg.Auth.Issuer,
		TokenTTL:     time.Duration(cfg.Auth.TokenTTL) * time.Minute,
		ResetCodeTTL: time.Duration(cfg.Auth.ResetCodeTTL) * time.Minute,
		AdminEmails:  cfg.Auth.AdminEmails,
	}
	var authMail auth.MailEnqueuer
	if dispatcher != nil {
		authMail = dispatcher
	}
	authService := auth.NewService(authConfig, pg.DB, rdb.Client, authMail, log)

	deps := server.Deps{
		Registration:  registrationService,
		Review:        reviewService,
		Auth:          authService,
		DB:            pg.DB,
		Redis:         rdb.Client,
		Observability: obs,
		Logger:        log,
	}
	if searchService != nil {
		deps.Search = searchService
	}

	srv := server.New(cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	case err := <-errCh:
		if err != nil {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", map[string]interface{}{
			"error": err,
		})
	}

	log.Info("server stopped", nil)
}

// retryWithBackoff retries fn with doubling delays until it succeeds or the
// attempts run out.
func retryWithBackoff(attempts int, initialDelay time.Duration, fn func() error) error {
	var err error
	delay := initialDelay
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
