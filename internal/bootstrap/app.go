package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"biasbuster-backend/internal/analyses"
	"biasbuster-backend/internal/extract"
	"biasbuster-backend/internal/history"
	"biasbuster-backend/internal/llm"
	anthropicllm "biasbuster-backend/internal/llm/anthropic"
	openaillm "biasbuster-backend/internal/llm/openai"
	"biasbuster-backend/internal/scenarios"
	"biasbuster-backend/internal/services/health"
	"biasbuster-backend/internal/shared/config"
	"biasbuster-backend/internal/shared/server"
	"biasbuster-backend/internal/shared/storage/db"
	"biasbuster-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the router built from them.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Catalog *scenarios.Catalog

	HistoryRepo history.Repo

	AnalysesService *analyses.Service
	HistoryService  *history.Service
	HealthService   *health.Service

	AnalysisHandler *analyses.Handler
	ScenarioHandler *scenarios.Handler
	ExtractHandler  *extract.Handler
	HistoryHandler  *history.Handler
}

// Build prepares dependencies and the router. A missing completion
// credential is logged, not fatal: the server starts and analysis requests
// answer with a configuration error.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	telemetry.SetDebug(cfg.Env == "dev" || cfg.Env == "local")
	if err := cfg.Validate(); err != nil {
		telemetry.Warn("config.invalid", map[string]any{"error": err.Error()})
	}

	catalog, err := scenarios.Default()
	if err != nil {
		return nil, fmt.Errorf("load scenario catalog: %w", err)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	llmClient, err := BuildLLMClient(cfg)
	if err != nil {
		telemetry.Warn("llm.not_configured", map[string]any{
			"provider": cfg.LLMProvider,
			"error":    err.Error(),
		})
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Catalog: catalog,
	}
	buildServices(app, llmClient)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Health:          app.HealthService,
		AnalysisHandler: app.AnalysisHandler,
		ScenarioHandler: app.ScenarioHandler,
		ExtractHandler:  app.ExtractHandler,
		HistoryHandler:  app.HistoryHandler,
	})

	return app, nil
}

// BuildLLMClient returns the completion client for the configured provider,
// or nil and an error when its credential is missing.
func BuildLLMClient(cfg config.Config) (llm.Client, error) {
	key := cfg.CompletionAPIKey()
	if key == "" {
		return nil, fmt.Errorf("no API key for provider %s", cfg.LLMProvider)
	}
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		client, err := anthropicllm.NewClient(key, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client, err := openaillm.NewClient(key, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// NewAnalysesService builds the analysis service from configuration.
// client may be nil.
func NewAnalysesService(cfg config.Config, catalog *scenarios.Catalog, client llm.Client) *analyses.Service {
	return &analyses.Service{
		LLM:            client,
		Catalog:        catalog,
		Provider:       cfg.LLMProvider,
		Model:          cfg.LLMModel,
		Temperature:    cfg.LLMTemperature,
		Timeout:        cfg.LLMTimeout,
		MaxResumeChars: cfg.MaxResumeChars,
		MaxRetries:     cfg.LLMMaxRetries,
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.history.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.history.memory", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App, llmClient llm.Client) {
	var historyRepo history.Repo
	if app.DB != nil {
		historyRepo = &history.PGRepo{DB: app.DB}
	} else {
		historyRepo = history.NewMemoryRepo()
	}

	app.HistoryRepo = historyRepo
	app.AnalysesService = NewAnalysesService(app.Config, app.Catalog, llmClient)
	app.HistoryService = &history.Service{Repo: historyRepo}
	app.HealthService = health.NewService(app.DB, llmClient != nil, app.Config.LLMProvider)

	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.ScenarioHandler = scenarios.NewHandler(app.Catalog)
	app.ExtractHandler = extract.NewHandler(app.Config.MaxUploadBytes)
	app.HistoryHandler = history.NewHandler(app.HistoryService)
}
