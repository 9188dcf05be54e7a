// Package server initializes and runs the profilekeeper server process.
// It opens and migrates the database, selects the avatar storage variant,
// wires the account service into the HTTP API and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/filex"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/avatars"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/profilekeeper/internal/server/passwords"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	tokens      *auth.TokenManager
	userService *services.UserService
}

// NewApp connects to the database, applies migrations and builds the
// service graph. The returned App owns the DB handle.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogLevel, c.LogFormat, os.Stdout)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, repomanager.DriverName, c.DatabaseDSN, c.DatabaseConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	pipeline, err := NewAvatarPipeline(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens := auth.NewTokenManager([]byte(c.SecretKey))
	us := services.NewUserService(db, rm, passwords.NewBcryptHasher(c.BcryptCost), tokens,
		pipeline, c.TokenValidityDuration, logger)

	logger.Info(ctx, "App initialized", "avatar_storage", pipeline.StoreName(), "avatar_dir", c.AvatarDir)

	return &App{config: c, logger: logger, db: db, tokens: tokens, userService: us}, nil
}

// NewAvatarPipeline builds the store selected by AvatarStorage together with
// the disk and memory caches.
func NewAvatarPipeline(ctx context.Context, c *config.Config, logger logging.Logger) (*avatars.Pipeline, error) {
	dir, err := filex.EnsureDir(c.AvatarDir)
	if err != nil {
		return nil, fmt.Errorf("avatar dir: %w", err)
	}

	var store avatars.Store
	switch c.AvatarStorage {
	case config.AvatarStorageInline:
		store = avatars.NewInlineStore()
	case config.AvatarStorageFile:
		store = avatars.NewFileStore(dir)
	case config.AvatarStorageS3:
		store, err = avatars.NewS3StoreFromConfig(ctx, avatars.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 avatar store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown avatar storage %q", c.AvatarStorage)
	}

	memory := avatars.NewMemoryCache(c.AvatarMemoryCacheSize, c.AvatarMemoryCacheTTL)
	return avatars.NewPipeline(store, avatars.NewDiskCache(dir), memory, logger), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives,
// then closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	api := httpapi.NewAPI(app.userService, app.tokens, app.db, app.logger, httpapi.Options{
		MaxUploadBytes:     app.config.AvatarMaxUploadBytes,
		CORSAllowedOrigins: app.config.CORSAllowedOrigins,
	})
	s := httpapi.NewHTTPServer(app.config.HTTPAddr, api.Routes(), app.logger, app.config.ShutdownTimeout)

	runErr := s.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "HTTP server stopped", "error", runErr)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "DB close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")

	return runErr
}
