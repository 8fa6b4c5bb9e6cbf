package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume2portfolio/internal/deployments"
	"resume2portfolio/internal/extract"
	"resume2portfolio/internal/portfolios"
	"resume2portfolio/internal/publish"
	"resume2portfolio/internal/shared/config"
	"resume2portfolio/internal/shared/server"
	"resume2portfolio/internal/shared/server/middleware"
	"resume2portfolio/internal/shared/storage/db"
	"resume2portfolio/internal/shared/storage/object"
	localstore "resume2portfolio/internal/shared/storage/object/local"
	s3store "resume2portfolio/internal/shared/storage/object/s3"
	"resume2portfolio/internal/shared/telemetry"
	"resume2portfolio/resume/enhance"
	"resume2portfolio/resume/parse"
	"resume2portfolio/resume/render"
	"resume2portfolio/templates"
)

// App holds shared dependencies and the router built from them.
type App struct {
	Config             config.Config
	Router             *gin.Engine
	DB                 *sql.DB
	Store              object.ObjectStore
	Renderer           *render.Renderer
	Enhancer           enhance.Enhancer
	Publisher          *publish.Publisher
	Exporter           *publish.Exporter
	DeploymentsRepo    deployments.Repo
	DeploymentsService *deployments.Service
	PortfolioService   *portfolios.Service
	PortfolioHandler   *portfolios.Handler
	DeploymentsHandler *deployments.Handler
}

// Build prepares every dependency and wires the router. A missing template
// bundle is fatal.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	renderer, err := BuildRenderer(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Renderer: renderer,
		Enhancer: BuildEnhancer(cfg),
	}
	buildServices(app)

	app.Router = server.NewRouter(cfg, server.RouterDeps{
		Portfolios:  app.PortfolioHandler,
		Deployments: app.DeploymentsHandler,
		Limiter:     middleware.NewRateLimiter(nil),
	})
	return app, nil
}

// BuildRenderer loads bundles from TEMPLATE_DIR when set, otherwise from the
// embedded templates.
func BuildRenderer(cfg config.Config) (*render.Renderer, error) {
	if dir := strings.TrimSpace(cfg.TemplateDir); dir != "" {
		r, err := render.NewFromDir(dir)
		if err != nil {
			return nil, fmt.Errorf("load templates from %s: %w", dir, err)
		}
		return r, nil
	}
	r, err := render.New(templates.FS)
	if err != nil {
		return nil, fmt.Errorf("load embedded templates: %w", err)
	}
	return r, nil
}

// BuildEnhancer returns the configured summary enhancer. The OpenAI enhancer
// always falls back to the placeholder.
func BuildEnhancer(cfg config.Config) enhance.Enhancer {
	if cfg.SummaryEnhancer != "openai" {
		return enhance.Placeholder{}
	}
	client, err := enhance.NewOpenAI(enhance.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.LLMModel})
	if err != nil {
		telemetry.Warn("bootstrap.enhancer_unavailable", map[string]any{"err": err})
		return enhance.Placeholder{}
	}
	return enhance.WithFallback(client, enhance.Placeholder{})
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.memory_history", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
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
			telemetry.Warn("bootstrap.db_connect_failed", map[string]any{"err": err})
			return nil, nil
		}
		return nil, err
	}

	if isDevLike(cfg.Env) {
		return migrateOrRelease(ctx, sqlDB, db.IsLambdaRuntime()), nil
	}
	return sqlDB, nil
}

var runMigrations = db.RunMigrations

// migrateOrRelease returns nil when migrations fail so the caller falls back to
// in-memory history. The pool is closed unless it is the shared Lambda handle.
func migrateOrRelease(ctx context.Context, sqlDB *sql.DB, shared bool) *sql.DB {
	if err := runMigrations(ctx, sqlDB); err != nil {
		telemetry.Warn("bootstrap.migrations_failed", map[string]any{"err": err})
		if !shared {
			if cerr := sqlDB.Close(); cerr != nil {
				telemetry.Warn("bootstrap.db_close_failed", map[string]any{"err": cerr})
			}
		}
		return nil
	}
	return sqlDB
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	var repo deployments.Repo
	if app.DB != nil {
		repo = &deployments.PGRepo{DB: app.DB}
	} else {
		repo = deployments.NewMemoryRepo()
	}
	app.DeploymentsRepo = repo
	app.DeploymentsService = deployments.NewService(repo)

	app.Publisher = publish.New(publish.Settings{
		DefaultVercelToken: app.Config.VercelToken,
		Branch:             app.Config.PublishBranch,
		CallTimeout:        app.Config.PublishTimeout,
		GitHubBaseURL:      app.Config.GitHubAPIURL,
		VercelBaseURL:      app.Config.VercelAPIURL,
	})
	app.Exporter = &publish.Exporter{Store: app.Store, BaseURL: app.Config.ExportBaseURL}

	app.PortfolioService = &portfolios.Service{
		Extractor:   extract.Extractor{},
		Parser:      parse.Parser{Enhancer: app.Enhancer},
		Renderer:    app.Renderer,
		Publisher:   app.Publisher,
		Exporter:    app.Exporter,
		Deployments: app.DeploymentsService,
	}
	app.PortfolioHandler = portfolios.NewHandler(app.PortfolioService, app.Config.MaxUploadBytes)
	app.DeploymentsHandler = deployments.NewHandler(app.DeploymentsService)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
