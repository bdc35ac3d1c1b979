package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pable/rlstats/internal/api"
)

var (
	serveAddr     string
	serveLogLevel string
	serveLogJSON  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the views as a JSON API",
	Long: `Start a local HTTP server exposing:

  GET /health
  GET /api/views
  GET /api/views/{view}?<encoded state>[&expand=<key>...]
  GET /api/state/{view}
  PUT /api/state/{view}

A view requested without a query uses its saved state.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	defaultAddr := os.Getenv("RLSTATS_ADDR")
	if defaultAddr == "" {
		defaultAddr = ":8080"
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address (falls back to $RLSTATS_ADDR)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	serveCmd.Flags().BoolVar(&serveLogJSON, "log-json", false, "emit logs as JSON")
}

func newLogger() (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	lvl, err := logrus.ParseLevel(serveLogLevel)
	if err != nil {
		return nil, err
	}
	log.SetLevel(lvl)
	if serveLogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	db, store, closeAll, err := openStores()
	if err != nil {
		return err
	}
	defer closeAll()

	srv := api.NewServer(db, store, log.WithField("component", "api"))
	httpSrv := &http.Server{
		Addr:              serveAddr,
		Handler:           handlers.LoggingHandler(os.Stdout, srv.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": serveAddr, "db": dbPath, "state": stateSpec}).Info("rlstats API listening")
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
