// Package httpapi exposes the REST surface of the task manager: account and
// session management, profile avatars, and owner-scoped task CRUD.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/taskkeeper/internal/server/mail"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// Server carries the wiring of the REST endpoint.
type Server struct {
	address          string
	logger           logging.Logger
	users            *services.UserService
	tasks            *services.TaskService
	avatars          avatars.Store
	mailer           mail.Mailer
	avatarMaxBytes   int64
	reqBodySizeLimit int64
}

func NewServer(a string, l logging.Logger, us *services.UserService, ts *services.TaskService, av avatars.Store, m mail.Mailer, avatarMaxBytes, reqBodySizeLimit int64) *Server {
	return &Server{
		address:          a,
		logger:           l.With("module", "httpapi"),
		users:            us,
		tasks:            ts,
		avatars:          av,
		mailer:           m,
		avatarMaxBytes:   avatarMaxBytes,
		reqBodySizeLimit: reqBodySizeLimit,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
