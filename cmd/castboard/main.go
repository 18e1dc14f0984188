package main

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/castboard/castboard/pkg/agency"
	"github.com/castboard/castboard/pkg/api"
	"github.com/castboard/castboard/pkg/auth"
	"github.com/castboard/castboard/pkg/config"
	"github.com/castboard/castboard/pkg/observability"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return err
	}
	logger.Info("database connection established")

	if err := agency.RunMigrations(ctx, db); err != nil {
		return err
	}
	logger.Info("migrations applied")

	verifier, err := auth.NewOIDCVerifier(ctx, cfg.Auth.IssuerURL, cfg.Auth.Audience)
	if err != nil {
		return err
	}
	logger.WithField("issuer", cfg.Auth.IssuerURL).Info("identity provider discovered")

	opts := api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
	}

	if cfg.Auth.ClientID != "" {
		opts.Exchanger = auth.NewExchanger(
			auth.ProviderEndpoint(cfg.Auth.IssuerURL),
			cfg.Auth.ClientID,
			cfg.Auth.ClientSecret,
			cfg.Auth.RedirectURL,
		)
	}

	if cfg.Observability.MetricsEnabled {
		opts.Metrics = observability.NewMetrics(prometheus.NewRegistry())
		go pollDBStats(ctx, db, opts.Metrics)
	}

	server := api.NewServer(agency.NewPostgresStore(db), verifier, logger, opts)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("starting Castboard API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// pollDBStats feeds connection pool gauges until shutdown
func pollDBStats(ctx context.Context, db *sql.DB, metrics *observability.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBStats(db.Stats())
		}
	}
}
