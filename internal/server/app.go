// Package server wires configuration, storage, services and the HTTP
// adapter together and runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/coursevault/internal/logging"
	"github.com/dmitrijs2005/coursevault/internal/server/config"
	"github.com/dmitrijs2005/coursevault/internal/server/csrf"
	"github.com/dmitrijs2005/coursevault/internal/server/httpapi"
	"github.com/dmitrijs2005/coursevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/coursevault/internal/server/services"
	"github.com/dmitrijs2005/coursevault/internal/server/storage"
	"github.com/dmitrijs2005/coursevault/internal/server/upload"
	goredis "github.com/redis/go-redis/v9"
)

const startupTimeout = 30 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	redis   *goredis.Client
	http    *httpapi.Server
	closers []func() error
}

// newLogger picks the logger implementation named by format.
func newLogger(format string) (logging.Logger, func() error, error) {
	switch format {
	case "zap":
		z, err := logging.NewZapProduction()
		if err != nil {
			return nil, nil, err
		}
		return z, z.Sync, nil
	case "text":
		return logging.NewText(os.Stdout, slog.LevelInfo), func() error { return nil }, nil
	default:
		return logging.NewJSON(os.Stdout, slog.LevelInfo), func() error { return nil }, nil
	}
}

// newCSRFStore shares tokens through Redis when an address is configured.
func newCSRFStore(ctx context.Context, c *config.Config) (csrf.Store, *goredis.Client, error) {
	if c.RedisAddr == "" {
		return csrf.NewMemoryStore(), nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: c.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return csrf.NewRedisStore(rdb, c.SessionValidityDuration), rdb, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, syncLog, err := newLogger(c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	app := &App{config: c, logger: logger, closers: []func() error{syncLog}}

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db.Close)

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	alloc, err := storage.NewAllocator(c.StorageRoot)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	store, err := storage.NewStore(alloc, c.MaxUploadSize)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	tokens, rdb, err := newCSRFStore(ctx, c)
	if err != nil {
		app.Close()
		return nil, err
	}
	if rdb != nil {
		app.redis = rdb
		app.closers = append(app.closers, rdb.Close)
	}

	deps := httpapi.Deps{
		Materials: services.NewMaterialService(db, rm, store, upload.NewValidator(c.AllowedExtensions), logger, c),
		Likes:     services.NewLikeService(db, rm, logger),
		Comments:  services.NewCommentService(db, rm, logger),
		Users:     services.NewUserService(db, rm, c.ListLimit),
		Guard:     csrf.NewGuard(tokens, logger),
	}
	app.http = httpapi.NewServer(httpapi.Options{
		Address:       c.EndpointAddrHTTP,
		SecretKey:     []byte(c.SecretKey),
		MaxUploadSize: c.MaxUploadSize,
	}, logger, deps)

	return app, nil
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

// Run serves HTTP until a termination signal or ctx cancellation.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...", "storage_root", app.config.StorageRoot, "shared_csrf", app.redis != nil)

	app.initSignalHandler(cancelFunc)

	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}

// Close releases resources in reverse order of acquisition.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		_ = app.closers[i]()
	}
	app.closers = nil
}
