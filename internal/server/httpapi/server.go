// Package httpapi is the HTTP boundary of assetvault. It authenticates the
// owner, stages multipart uploads on local disk and maps service errors to
// status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

// AssetAPI is the part of services.AssetService the handlers use.
type AssetAPI interface {
	Upload(ctx context.Context, owner string, files []models.LocalFile) (*models.UploadResult, error)
	Delete(ctx context.Context, owner string, reqs []models.DeleteRequest) (*models.DeletionResult, error)
	Purge(ctx context.Context, owner string) (*models.PurgeResult, error)
	List(ctx context.Context, owner string, page, pageSize int64) (*models.AssetPage, error)
}

// UserAPI is the part of services.UserService the handlers use.
type UserAPI interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	UpdatePassword(ctx context.Context, email, current, next string) error
	RequestEmailVerification(ctx context.Context, email string) (string, error)
	VerifyEmail(ctx context.Context, challenge, code string) error
	Authenticate(token string) (string, error)
}

// Limits bounds what one upload request may carry.
type Limits struct {
	MaxUploadSize      int64
	MaxFilesPerRequest int
	UploadDir          string
}

type Server struct {
	addr   string
	echo   *echo.Echo
	assets AssetAPI
	users  UserAPI
	limits Limits
	logger logging.Logger
}

const shutdownTimeout = 10 * time.Second

func NewServer(addr string, assets AssetAPI, users UserAPI, limits Limits, logger logging.Logger) *Server {
	s := &Server{
		addr:   addr,
		echo:   echo.New(),
		assets: assets,
		users:  users,
		limits: limits,
		logger: logger.With("module", "http"),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	e.Use(s.requestLogger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	api.POST("/users/register", s.handleRegister)
	api.POST("/users/login", s.handleLogin)
	api.POST("/users/verification/confirm", s.handleConfirmVerification)

	owner := api.Group("", s.authMiddleware)
	owner.PUT("/users/password", s.handleUpdatePassword)
	owner.POST("/users/verification", s.handleRequestVerification)
	owner.DELETE("/users/me", s.handlePurge)
	owner.GET("/assets", s.handleList)
	owner.POST("/assets", s.handleUpload)
	owner.DELETE("/assets", s.handleDelete)
}

// newRequestID returns 32 hex characters, falling back to a fixed marker
// when the system RNG fails.
func newRequestID() string {
	id, err := common.MakeRandHexString(16)
	if err != nil {
		return "unknown"
	}
	return id
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "http server stopping")
	return s.echo.Shutdown(shutdownCtx)
}
