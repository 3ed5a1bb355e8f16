package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"doctoc-backend/internal/documents"
	"doctoc-backend/internal/pdfservices"
	"doctoc-backend/internal/runs"
	"doctoc-backend/internal/shared/config"
	"doctoc-backend/internal/shared/server"
	"doctoc-backend/internal/shared/storage/db"
	"doctoc-backend/internal/shared/storage/object"
	localstore "doctoc-backend/internal/shared/storage/object/local"
	s3store "doctoc-backend/internal/shared/storage/object/s3"
	"doctoc-backend/internal/toc"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	RunsRepo         runs.Repo
	DocumentsRepo    documents.Repo
	Extractor        toc.Extractor
	DocumentsService *documents.Service
	TOCService       *toc.Service
	DocumentsHandler *documents.Handler
	TOCHandler       *toc.Handler
}

// Option overrides a dependency before services are built.
type Option func(*App)

// WithExtractor replaces the remote extraction client, mainly for tests.
func WithExtractor(ext toc.Extractor) Option {
	return func(a *App) { a.Extractor = ext }
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	for _, opt := range opts {
		opt(app)
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		DocumentHandler: app.DocumentsHandler,
		TOCHandler:      app.TOCHandler,
		Health: func(ctx context.Context) error {
			return db.Ping(ctx, app.DB, 2*time.Second)
		},
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory run history")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database unavailable; using in-memory run history: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.DocsDir), nil
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.RunsRepo = &runs.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
	} else {
		app.RunsRepo = runs.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
	}

	if app.Extractor == nil {
		app.Extractor = NewExtractor(app.Config.PDFServices)
	}

	app.DocumentsService = documents.NewService(app.Store, app.DocumentsRepo)
	app.TOCService = &toc.Service{
		Docs:      app.DocumentsService,
		Extractor: app.Extractor,
		Runs:      app.RunsRepo,
	}

	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.TOCHandler = toc.NewHandler(app.TOCService)
}

// NewExtractor builds the remote extraction client from configuration.
func NewExtractor(cfg config.PDFServices) *pdfservices.Client {
	return pdfservices.NewClient(pdfservices.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BaseURL:      cfg.BaseURL,
		PollInterval: cfg.PollInterval,
		PollTimeout:  cfg.PollTimeout,
		HTTPTimeout:  cfg.HTTPTimeout,
	})
}
