package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ryanmontogomory-hue/Injector-sub000/internal/customizations"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/email"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/queue"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/services/health"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/config"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/server"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/storage/db"
	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/storage/object"
	localstore "github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/storage/object/local"
	s3store "github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/storage/object/s3"
	"github.com/ryanmontogomory-hue/Injector-sub000/resume/customize"
	"github.com/ryanmontogomory-hue/Injector-sub000/resume/parse"
)

// App holds shared dependencies for the API and worker entrypoints.
type App struct {
	Config                 config.Config
	Router                 *gin.Engine
	DB                     *sql.DB
	Store                  object.ObjectStore
	Queue                  queue.Client
	Email                  email.Sender
	HealthService          *health.Service
	CustomizationsRepo     customizations.Repo
	CustomizationsService  *customizations.Service
	CustomizationProcessor CustomizationProcessor
	CustomizationsHandler  *customizations.Handler
}

// CustomizationProcessor allows callers to override job processing for tests.
type CustomizationProcessor interface {
	Process(ctx context.Context, customizationID string) error
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
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

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
		Email:  buildEmail(cfg),
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:               app.Config,
		Health:               app.HealthService,
		CustomizationHandler: app.CustomizationsHandler,
		EnableUploads:        strings.TrimSpace(os.Getenv("UPLOADS_S3_BUCKET")) != "",
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
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
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.QueueURL) == "" {
		return nil, nil
	}
	client, err := queue.NewSQSClient(ctx, cfg.QueueURL, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func buildEmail(cfg config.Config) email.Sender {
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		return nil
	}
	sender, err := email.NewSMTPSender(cfg.SMTP)
	if err != nil {
		log.Printf("bootstrap: smtp sender disabled: %v", err)
		return nil
	}
	return sender
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
	var repo customizations.Repo
	if app.DB != nil {
		repo = &customizations.PGRepo{DB: app.DB}
	} else {
		repo = customizations.NewMemoryRepo()
	}

	svc := &customizations.Service{
		Repo:      repo,
		Store:     app.Store,
		Queue:     app.Queue,
		Email:     app.Email,
		Processor: customize.NewProcessor(customize.DefaultKeywords()),
		Parser:    parse.NewTechStackParser(),
	}

	app.HealthService = health.NewService(app.DB)
	app.CustomizationsRepo = repo
	app.CustomizationsService = svc
	app.CustomizationProcessor = svc
	app.CustomizationsHandler = customizations.NewHandler(svc, app.Config.MaxUploadBytes)
}
