// Package httpapi is the JSON/HTTP adapter over the material, like,
// comment and user services.
package httpapi

import (
	"context"
	"errors"
	"io"
	"iter"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/coursevault/internal/logging"
	"github.com/dmitrijs2005/coursevault/internal/server/csrf"
	"github.com/dmitrijs2005/coursevault/internal/server/models"
)

const shutdownTimeout = 10 * time.Second

type MaterialService interface {
	Upload(ctx context.Context, req models.Requester, in models.NewMaterial, filename string, r io.Reader) (int64, error)
	Delete(ctx context.Context, req models.Requester, id int64) error
	Get(ctx context.Context, id int64) (*models.MaterialView, error)
	List(ctx context.Context, c models.ListCriteria) iter.Seq2[*models.MaterialView, error]
	ListCourses(ctx context.Context, search string, limit int) ([]*models.CourseView, error)
	FilePath(v *models.MaterialView) string
}

type LikeService interface {
	Like(ctx context.Context, req models.Requester, materialID int64) (models.LikeResult, error)
	LikedBy(ctx context.Context, userID int64) ([]int64, error)
}

type CommentService interface {
	Add(ctx context.Context, req models.Requester, materialID int64, content string) (int64, error)
	List(ctx context.Context, materialID int64) ([]*models.CommentView, error)
}

type UserService interface {
	Top(ctx context.Context, search string, limit int) ([]*models.User, error)
}

// Deps bundles what the handlers call into.
type Deps struct {
	Materials MaterialService
	Likes     LikeService
	Comments  CommentService
	Users     UserService
	Guard     *csrf.Guard
}

// Options configures the adapter.
type Options struct {
	Address       string
	SecretKey     []byte
	MaxUploadSize int64
}

type Server struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewServer(opts Options, l logging.Logger, d Deps) *Server {
	l = l.With("module", "http_server")
	return &Server{
		address: opts.Address,
		handler: newRouter(opts, l, d),
		logger:  l,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
