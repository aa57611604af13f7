package curioservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/curiohq/curio/server/internal/ai"
	"github.com/curiohq/curio/server/internal/api"
	"github.com/curiohq/curio/server/internal/auth"
	"github.com/curiohq/curio/server/internal/bookmark"
	"github.com/curiohq/curio/server/internal/config"
	"github.com/curiohq/curio/server/internal/github"
	"github.com/curiohq/curio/server/internal/health"
	"github.com/curiohq/curio/server/internal/logger"
	"github.com/curiohq/curio/server/internal/search"
	"github.com/curiohq/curio/server/internal/services"
	"github.com/curiohq/curio/server/internal/store"
	"github.com/curiohq/curio/server/internal/store/postgres"
	"github.com/curiohq/curio/server/internal/store/sqlite"
	"github.com/curiohq/curio/server/internal/workflows"
)

// Run starts the curio backend HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("curio-backend")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Int("search_result_limit", cfg.SearchResultLimit).
		Str("openai_model", cfg.OpenAIModel).
		Msg("curio backend starting")

	ctx, stop := newServerContext()
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("store unavailable")
		return err
	}

	registry := buildRegistry(cfg)
	summarizer := ai.NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	runner := workflows.NewRunner(st, registry, summarizer, log)

	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	router := api.NewRouter(api.Deps{
		Authorizer:  auth.NewStaticAuthorizer(),
		Users:       services.NewUserService(st),
		Sessions:    services.NewSessionService(st, registry, cfg.SearchResultLimit),
		Collections: services.NewCollectionService(st),
		Notes:       services.NewNoteService(st),
		Events:      services.NewEventService(st),
		Reports:     services.NewReportService(st),
		Workflows:   services.NewWorkflowService(st, runner),
		Bookmarks:   bookmark.NewService(st, registry, cfg.SearchResultLimit, log),
		GitHub:      github.NewClient(cfg.GitHubBaseURL, cfg.GitHubToken),
		Health:      svcHealth,
	})

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("server forced to shutdown")
			return err
		}
		if err := runner.Shutdown(ctxShutdown); err != nil {
			log.Warn().Err(err).Msg("workflow runner did not drain in time")
		}
		log.Info().Msg("server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// openStore builds the configured storage backend. Postgres gets its schema
// applied on startup; the sqlite driver manages its own.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		log.Info().Msg("postgres store ready")
		return postgres.NewWithDB(db), nil
	case "sqlite":
		st, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

// buildRegistry wires every search provider. Providers with missing
// credentials are still registered; upstream auth errors surface per request.
func buildRegistry(cfg *config.Config) *search.Registry {
	gh := github.NewClient(cfg.GitHubBaseURL, cfg.GitHubToken)
	return search.NewRegistry(
		search.NewSerpProvider(cfg.SerpBaseURL, cfg.SerpAPIKey),
		search.NewPexelsProvider(cfg.PexelsBaseURL, cfg.PexelsAPIKey),
		search.NewGitHubProvider(gh),
	)
}

func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, st store.Store) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	storeChecker := store.NewStoreHealthChecker(st, log, probeTimeout)
	go storeChecker.Start(ctx, interval)

	svcHealth := health.NewServiceHealthChecker(log, storeChecker)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// startupHealthTimeout gives checkers at least two probe cycles, with a one
// minute floor.
func startupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is green or the startup window
// expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := startupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
