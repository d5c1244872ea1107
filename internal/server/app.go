// Package server wires the assetvault process: it connects the metadata and
// blob stores, builds the services and runs the HTTP API next to the gRPC
// health endpoint until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/dmitrijs2005/assetvault/internal/filex"
	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/blobstore"
	"github.com/dmitrijs2005/assetvault/internal/server/cleanup"
	"github.com/dmitrijs2005/assetvault/internal/server/config"
	"github.com/dmitrijs2005/assetvault/internal/server/httpapi"
	"github.com/dmitrijs2005/assetvault/internal/server/mailer"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetvault/internal/server/services"

	gs "github.com/dmitrijs2005/assetvault/internal/server/grpc"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repos        repomanager.RepositoryManager
	queue        *asynq.Client
	assetService *services.AssetService
	userService  *services.UserService
	uploadDir    string
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	rm, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close(ctx)
		return nil, err
	}

	blobs, err := blobstore.New(ctx, c)
	if err != nil {
		_ = rm.Close(ctx)
		return nil, fmt.Errorf("blob store init error: %w", err)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		logger.Warn(ctx, "bucket check failed", "bucket", c.S3Bucket, "error", err)
	}

	app := &App{config: c, logger: logger, repos: rm}

	var opts []services.AssetOption
	if c.RedisAddr != "" {
		app.queue = asynq.NewClient(asynq.RedisClientOpt{Addr: c.RedisAddr})
		opts = append(opts, services.WithCleanupScheduler(cleanup.NewScheduler(app.queue)))
	}

	as, err := services.NewAssetService(blobs, rm, c, logger, opts...)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("asset service init error: %w", err)
	}
	app.assetService = as
	app.userService = services.NewUserService(rm, mailer.New(c.ResendAPIKey, c.MailFrom, logger), c, logger)

	dir, err := filex.EnsureSubdDir(c.UploadDir)
	if err != nil {
		app.close(ctx)
		return nil, fmt.Errorf("upload dir error: %w", err)
	}
	app.uploadDir = dir

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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.assetService, app.userService, httpapi.Limits{
		MaxUploadSize:      app.config.MaxUploadSize,
		MaxFilesPerRequest: app.config.MaxFilesPerRequest,
		UploadDir:          app.uploadDir,
	}, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.repos)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) close(ctx context.Context) {
	if app.queue != nil {
		if err := app.queue.Close(); err != nil {
			app.logger.Warn(ctx, "queue close error", "error", err)
		}
	}
	if err := app.repos.Close(ctx); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err)
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(context.WithoutCancel(ctx))
	app.logger.Info(ctx, "App stopped")
}
