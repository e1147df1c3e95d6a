package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/reelhub/backend/internal/ai"
	"github.com/reelhub/backend/internal/cache"
	"github.com/reelhub/backend/internal/handlers"
	"github.com/reelhub/backend/internal/messaging"
	"github.com/reelhub/backend/internal/middleware"
	"github.com/reelhub/backend/internal/repositories"
	"github.com/reelhub/backend/internal/router"
	"github.com/reelhub/backend/internal/services"
	"github.com/reelhub/backend/internal/storage"
	"github.com/reelhub/backend/internal/validators"
	"github.com/reelhub/backend/pkg/config"
	"github.com/reelhub/backend/pkg/firebase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Run auto-migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger, migrate bool) error {
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB() // Ensure database connections are closed when serve exits

	if migrate {
		if err := config.AutoMigrate(db.SQL); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("Auto-migrations completed")
	}

	e, cleanup, err := buildServer(ctx, cfg, db, log)
	if err != nil {
		return err
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// buildServer wires the configured backends into an echo instance. The
// returned cleanup releases every connection opened here.
func buildServer(ctx context.Context, cfg *config.Config, db *config.DB, log *logrus.Logger) (*echo.Echo, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*echo.Echo, func(), error) {
		cleanup()
		return nil, nil, err
	}

	var fbApp *firebase.App
	if cfg.UsesFirebase() {
		var err error
		fbApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket, log)
		if err != nil {
			return fail(err)
		}
	}

	gateway, err := newGateway(cfg, fbApp)
	if err != nil {
		return fail(err)
	}

	reels, err := newReelRepository(ctx, cfg, db)
	if err != nil {
		return fail(err)
	}

	var users repositories.UserRepository = repositories.NewPostgresUserRepository(db.SQL)
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fail(err)
		}
		cleanups = append(cleanups, func() { _ = client.Close() })
		users = cache.NewUserDirectory(users, cache.NewRedisStore(client, "reels:"), cfg.UserCacheTTL, log)
		log.WithField("addr", cfg.RedisAddr).Info("User cache enabled")
	}

	var events messaging.Publisher = messaging.NopPublisher{}
	if cfg.NatsURL != "" {
		conn, err := messaging.Connect(cfg.NatsURL)
		if err != nil {
			return fail(err)
		}
		cleanups = append(cleanups, func() { _ = conn.Drain() })
		events = messaging.NewNatsPublisher(conn)
		log.WithField("url", cfg.NatsURL).Info("Reel events enabled")
	}

	generator, err := ai.New(ai.Config{
		CaptionAPIURL: cfg.CaptionAPIURL,
		CaptionAPIKey: cfg.CaptionAPIKey,
		Timeout:       cfg.CaptionAPITimeout,
	}, ai.WithLogger(log))
	if err != nil {
		return fail(err)
	}

	service := services.NewReelService(reels, users, gateway, generator, events, log)

	var verifier middleware.TokenVerifier
	requireAuth := middleware.JWTAuthMiddleware(cfg.JWTSecret)
	if fbApp != nil {
		verifier = fbApp.AuthClient
		if cfg.AuthProvider == "firebase" {
			requireAuth = middleware.FirebaseAuthMiddleware(fbApp.AuthClient, users)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(log)
	config.SetupMiddleware(e, cfg, log)

	router.SetupRoutes(e, router.Dependencies{
		Reels:        service,
		Users:        users,
		Generator:    generator,
		RequireAuth:  requireAuth,
		FirebaseAuth: verifier,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTTTL,
		Log:          log,
	})
	return e, cleanup, nil
}

func newGateway(cfg *config.Config, fbApp *firebase.App) (storage.Gateway, error) {
	switch cfg.StorageDriver {
	case "firebase":
		if fbApp == nil || fbApp.Storage == nil {
			return nil, errors.New("firebase storage requested but not initialized")
		}
		return storage.NewFirebaseGateway(fbApp.Storage, cfg.FirebaseStorageBucket)
	case "oss":
		return storage.NewOSSGateway(storage.OSSConfig{
			Endpoint:        cfg.OSSEndpoint,
			AccessKeyID:     cfg.OSSAccessKeyID,
			AccessKeySecret: cfg.OSSAccessKeySecret,
			Bucket:          cfg.OSSBucket,
		})
	default:
		return storage.NewMockGateway(), nil
	}
}

func newReelRepository(ctx context.Context, cfg *config.Config, db *config.DB) (repositories.ReelRepository, error) {
	if cfg.ReelStore != "mongo" {
		return repositories.NewPostgresReelRepository(db.SQL), nil
	}
	repo := repositories.NewMongoReelRepository(db.Mongo.Database(cfg.MongoDatabase))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("create reel indexes: %w", err)
	}
	return repo, nil
}
