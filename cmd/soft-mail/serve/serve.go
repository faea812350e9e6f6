package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/soft-mail/cmd"
	"github.com/spf13/cobra"
)

// Command is the serve command.
var Command = &cobra.Command{
	Use:                "serve",
	Short:              "Start the server",
	Args:               cobra.NoArgs,
	PersistentPreRunE:  cmd.InitBackendContext,
	PersistentPostRunE: cmd.CloseDBContext,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(c.Context())
		defer cancel()

		s, err := NewServer(ctx)
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}

		lch := make(chan error, 1)
		done := make(chan os.Signal, 1)
		doneOnce := sync.OnceFunc(func() { close(done) })

		signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

		// This endpoint is added for testing purposes
		// It allows us to stop the server from the test suite.
		// This is needed since Windows doesn't support signals.
		if testRun, _ := strconv.ParseBool(os.Getenv("SOFT_MAIL_TESTRUN")); testRun {
			h := s.HTTPServer.Server.Handler
			s.HTTPServer.Server.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/__stop" && r.Method == http.MethodHead {
					doneOnce()
					return
				}
				h.ServeHTTP(w, r)
			})
		}

		go func() {
			lch <- s.Start()
			doneOnce()
		}()

		select {
		case err := <-lch:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		case <-done:
		}

		sctx, scancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer scancel()
		return s.Shutdown(sctx)
	},
}
