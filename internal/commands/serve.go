package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"taskpro/internal/api"
	"taskpro/internal/app"
	"taskpro/internal/backend"
	"taskpro/internal/config"
	"taskpro/internal/exitcode"
	"taskpro/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func init() {
	Register(&ServeCmd{})
}

// ServeCmd exposes the configured database over HTTP for remote clients.
type ServeCmd struct {
	listen string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the task database over HTTP" }
func (c *ServeCmd) Usage() string     { return "taskpro serve [--listen <addr>]" }
func (c *ServeCmd) Access() Access    { return AccessNone }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listen, "listen", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	addr := c.listen
	if addr == "" {
		addr = cfg.Listen
	}
	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	logger := logging.NewJSON(out, level)

	store, err := backend.OpenSQL(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	defer store.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(errOut, "error: listen %s: %v\n", addr, err)
		return exitcode.UserError
	}

	srv := &http.Server{
		Handler:      api.NewRouter(store, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", ln.Addr().String(), "backend", cfg.Backend)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(errOut, "error: server: %v\n", err)
			return exitcode.BackendError
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}

	logger.Info("server stopped")
	return exitcode.Success
}
