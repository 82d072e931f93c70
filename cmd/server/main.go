package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	soidc "go.pilab.hu/shadow-oidc"
	echoapi "go.pilab.hu/shadow-oidc/api/echo"
	"go.pilab.hu/shadow-oidc/config"
	"go.pilab.hu/shadow-oidc/internal/audit"
	"go.pilab.hu/shadow-oidc/internal/metrics"
	"go.pilab.hu/shadow-oidc/log"
	"go.pilab.hu/shadow-oidc/tracing"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("SOIDC_CONFIG_FILE"))
	if err != nil {
		stdLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		stdLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel), cfg.LogPretty, nil)
	zlog.Logger = logger
	zerolog.DefaultContextLogger = &logger

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("http_addr", cfg.HTTPAddr).
		Str("issuer", cfg.Issuer).
		Str("session_backend", string(cfg.SessionBackend)).
		Dur("session_ttl", cfg.SessionTTL).
		Msg("Starting shadow-oidc server")

	vars, err := cfg.Vars()
	if err != nil {
		return err
	}
	if vars.Confidential() {
		logger.Info().Msg("Confidential client mode enabled")
	}

	user, err := soidc.LoadUserFile(cfg.UserFile)
	if err != nil {
		return err
	}

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
		if err != nil {
			return err
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("TracerProvider shutdown error")
			}
		}()
	}

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(reg)

	tokens := soidc.NewTokenService(vars, soidc.NewTokenSigner(vars.Secret))
	proxies, err := cfg.TrustedProxyNets()
	if err != nil {
		return err
	}

	auditLog, closeAudit, err := openAuditLog(cfg.AuditLog)
	if err != nil {
		return err
	}
	defer closeAudit()

	service := soidc.NewOAuthService(
		store,
		tokens,
		soidc.NewStaticUserRepository(user),
		soidc.NewRandomGenerator(nil),
		soidc.WithAuditLogger(auditLog),
	)
	api := echoapi.NewOAuth2API(service, soidc.NewOpenIDConfiguration(vars))

	e := echoapi.NewServer(api, echoapi.ServerOptions{
		Logger:         logger,
		TokenRateLimit: cfg.TokenRateLimit,
		Gatherer:       reg,
		TrustedProxies: proxies,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info().Msg("Server gracefully stopped.")

	return nil
}

func openAuditLog(path string) (*audit.Logger, func(), error) {
	switch path {
	case "":
		return audit.Nop(), func() {}, nil
	case "-":
		return audit.NewLogger(os.Stdout), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return audit.NewLogger(f), func() { _ = f.Close() }, nil
}
