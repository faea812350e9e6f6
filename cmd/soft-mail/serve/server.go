package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/charmbracelet/soft-mail/pkg/cron"
	"github.com/charmbracelet/soft-mail/pkg/jobs"
	"github.com/charmbracelet/soft-mail/pkg/stats"
	"github.com/charmbracelet/soft-mail/pkg/web"
	"golang.org/x/sync/errgroup"
)

// Server is the Soft Mail server.
type Server struct {
	HTTPServer  *web.HTTPServer
	StatsServer *stats.StatsServer
	Cron        *cron.Scheduler
	Config      *config.Config
	Backend     *backend.Backend

	logger *log.Logger
	ctx    context.Context
}

// NewServer returns a new *Server configured to serve Soft Mail.
// It expects a context with *backend.Backend, *db.DB, *log.Logger, and
// *config.Config attached.
func NewServer(ctx context.Context) (*Server, error) {
	var err error
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("server")
	srv := &Server{
		Config:  cfg,
		Backend: backend.FromContext(ctx),
		logger:  logger,
		ctx:     ctx,
	}

	// Add cron jobs.
	sched := cron.NewScheduler(ctx)
	for _, j := range jobs.List() {
		id, err := sched.AddFunc(j.Name, j.Runner.Spec(ctx), j.Runner.Func(ctx))
		if err != nil {
			logger.Warn("error adding cron job", "job", j.Name, "err", err)
		}

		j.ID = id
	}

	srv.Cron = sched

	srv.HTTPServer, err = web.NewHTTPServer(ctx)
	if err != nil {
		return nil, fmt.Errorf("create http server: %w", err)
	}

	if cfg.Stats.Enabled {
		srv.StatsServer, err = stats.NewStatsServer(ctx)
		if err != nil {
			return nil, fmt.Errorf("create stats server: %w", err)
		}
	}

	return srv, nil
}

// Start starts the HTTP server, the stats server, and the scheduler.
func (s *Server) Start() error {
	errg, _ := errgroup.WithContext(s.ctx)

	errg.Go(func() error {
		s.logger.Print("Starting HTTP server", "addr", s.Config.HTTP.ListenAddr)
		if err := s.HTTPServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// optionally start the Stats server
	if s.StatsServer != nil {
		errg.Go(func() error {
			s.logger.Print("Starting Stats server", "addr", s.Config.Stats.ListenAddr)
			if err := s.StatsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	errg.Go(func() error {
		s.Cron.Start()
		return nil
	})
	return errg.Wait()
}

// Shutdown lets the server gracefully shutdown.
func (s *Server) Shutdown(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		return s.HTTPServer.Shutdown(ctx)
	})
	if s.StatsServer != nil {
		errg.Go(func() error {
			return s.StatsServer.Shutdown(ctx)
		})
	}
	errg.Go(func() error {
		for _, j := range jobs.List() {
			s.Cron.Remove(j.ID)
		}
		s.Cron.Shutdown()
		return nil
	})
	return errg.Wait()
}

// Close closes the servers immediately.
func (s *Server) Close() error {
	var errg errgroup.Group
	errg.Go(s.HTTPServer.Close)
	if s.StatsServer != nil {
		errg.Go(s.StatsServer.Close)
	}
	errg.Go(func() error {
		s.Cron.Stop()
		return nil
	})
	return errg.Wait()
}
