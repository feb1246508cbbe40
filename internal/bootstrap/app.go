package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-match/internal/analysis"
	"resume-match/internal/events"
	"resume-match/internal/matches"
	"resume-match/internal/shared/auth"
	"resume-match/internal/shared/config"
	"resume-match/internal/shared/server"
	"resume-match/internal/shared/storage/db"
	"resume-match/internal/shared/storage/object"
	gcsstore "resume-match/internal/shared/storage/object/gcs"
	localstore "resume-match/internal/shared/storage/object/local"
	s3store "resume-match/internal/shared/storage/object/s3"
	"resume-match/internal/shared/telemetry"
	"resume-match/internal/users"
)

// App holds shared dependencies and the assembled router.
type App struct {
	Config       config.Config
	Router       *gin.Engine
	DB           *sql.DB
	Store        object.Store
	Events       events.Publisher
	MatchRepo    matches.Repo
	UsersRepo    users.Repo
	UsersService *users.Service
	MatchService *matches.Service
	MatchHandler *matches.Handler

	closers []io.Closer
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	for _, err := range cfg.EnvFileErrors {
		telemetry.Warn("config.env_file_invalid", map[string]any{"error": err})
	}

	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store
	if c, ok := store.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	publisher, err := buildEvents(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Events = publisher
	if c, ok := publisher.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	analyzer, err := analysis.NewClient(analysis.Options{
		URL:          cfg.AnalyzerURL,
		Timeout:      cfg.AnalyzerTimeout,
		TokenURL:     cfg.AnalyzerTokenURL,
		ClientID:     cfg.AnalyzerClientID,
		ClientSecret: cfg.AnalyzerClientSecret,
		Scopes:       cfg.AnalyzerScopes,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.Env)
	if err != nil {
		app.Close()
		return nil, err
	}

	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.MatchRepo = &matches.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.MatchRepo = matches.NewMemoryRepo()
	}
	app.UsersService = users.NewService(app.UsersRepo)

	app.MatchService = &matches.Service{
		Repo:          app.MatchRepo,
		Intake:        &matches.Intake{Store: app.Store, MaxSize: matches.MaxUploadSize},
		Store:         app.Store,
		Analyzer:      analyzer,
		Users:         app.UsersService,
		Events:        app.Events,
		PreviewLength: cfg.PreviewLength,
	}
	app.MatchHandler = matches.NewHandler(app.MatchService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:       cfg,
		Verifier:     verifier,
		Identity:     app.UsersService,
		MatchHandler: app.MatchHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":            cfg.Env,
		"object_store":   cfg.ObjectStoreType,
		"events_backend": cfg.EventsBackend,
		"database":       app.DB != nil,
	})
	return app, nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{
				"reason": "DATABASE_URL empty",
			})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{
				"reason": "database connect failed",
				"error":  err,
			})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "gcs":
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=gcs requires GCS_BUCKET")
		}
		return gcsstore.New(ctx, cfg.GCSBucket, cfg.GCSPrefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildEvents(ctx context.Context, cfg config.Config) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case "amqp":
		return events.DialAMQP(cfg.EventsAMQPURL, cfg.EventsExchange)
	case "sqs":
		return events.NewSQSPublisher(ctx, cfg.AWSRegion, cfg.EventsSQSQueueURL)
	default:
		return events.Nop{}, nil
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
