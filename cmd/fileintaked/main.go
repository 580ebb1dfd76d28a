package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"fileintake/internal/changefeed"
	"fileintake/internal/config"
	"fileintake/internal/database"
	"fileintake/internal/database/migration"
	"fileintake/internal/dispatch"
	"fileintake/internal/errorreport"
	handlers "fileintake/internal/http/handler"
	"fileintake/internal/http/middleware"
	"fileintake/internal/intake"
	"fileintake/internal/janitor"
	"fileintake/internal/logx"
	"fileintake/internal/metrics"
	"fileintake/internal/model"
	"fileintake/internal/notify"
	otelx "fileintake/internal/otel"
	"fileintake/internal/repository"
	"fileintake/internal/repository/postgres"
	"fileintake/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otelx.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize the S3-compatible object store client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	reg := prometheus.NewRegistry()
	pipeMx, err := metrics.NewPipeline(reg)
	if err != nil {
		log.Fatalf("failed to register pipeline metrics: %v", err)
	}

	errPub, err := errorreport.NewWebhook(cfg.ErrorReport.WebhookURL)
	if err != nil {
		log.Fatalf("failed to initialize error reporting: %v", err)
	}

	mailer, err := notify.NewSMTPMailer(cfg.Notify)
	if err != nil {
		log.Fatalf("failed to initialize mailer: %v", err)
	}

	// Pipeline components with injected dependencies
	repo := postgres.NewMetadataPostgres(db)
	validator := intake.NewValidator(objStore, repo, errPub, cfg.Intake.AllowedExtensions, pipeMx)
	notifier := notify.NewNotifier(mailer, cfg.Notify.Recipient, pipeMx)
	runner := dispatch.NewRunner(dispatch.Redelivery{
		MaxAttempts:     cfg.Redelivery.MaxAttempts,
		InitialInterval: time.Duration(cfg.Redelivery.InitialIntervalSec) * time.Second,
	}, errPub, pipeMx)

	// Store-side TTL enforcement for metadata records
	sweeper := repository.NewExpirySweeper(repo, time.Duration(cfg.SweepIntervalSec)*time.Second)
	go sweeper.Run(ctx)

	// Change feed: insert events from the metadata store drive notifications
	feedConn, err := database.NewListenConn(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to open change feed connection: %v", err)
	}
	listener := changefeed.NewListener(feedConn, changefeed.Channel, func(ctx context.Context, events []model.ChangeEvent) {
		runner.Invoke(ctx, "change-notifier", func(ctx context.Context) error {
			return notifier.HandleBatch(ctx, events)
		})
	})
	go func() {
		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			logx.Error("main", "changefeed_stopped", err, nil)
			stop()
		}
	}()

	// Object-created events drive validation/indexing
	go consumeUploads(ctx, objStore, runner, validator)

	// Scheduled purge of aged objects
	jan := janitor.New(objStore, time.Duration(cfg.Janitor.MaxAgeMinutes)*time.Minute, pipeMx)
	go jan.RunLoop(ctx, time.Duration(cfg.Janitor.IntervalMinutes)*time.Minute)

	// Operational HTTP surface (probes + metrics only)
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	promMw, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}
	app.Use(promMw.Handler())
	handlers.RegisterRoutes(app, db, objStore, reg)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil && ctx.Err() == nil {
			logx.Error("main", "http_server_stopped", err, nil)
			stop()
		}
	}()

	logx.Info("main", "started", map[string]any{
		"bucket":             cfg.MinIO.Bucket,
		"allowed_extensions": cfg.Intake.AllowedExtensions,
		"janitor_max_age":    cfg.Janitor.MaxAgeMinutes,
		"port":               cfg.Port,
	})

	<-ctx.Done()
	logx.Info("main", "shutting_down", nil)

	_ = app.ShutdownWithTimeout(5 * time.Second)
	_ = feedConn.Close(context.Background())
	_ = shutdownTracing(context.Background())
}

// consumeUploads dispatches object-created events to the validator,
// re-establishing the notification stream if the backend drops it.
func consumeUploads(ctx context.Context, store storage.ObjectStore, runner *dispatch.Runner, validator *intake.Validator) {
	for {
		for ev := range store.Listen(ctx) {
			runner.Invoke(ctx, "intake-validator", func(ctx context.Context) error {
				return validator.HandleObjectCreated(ctx, ev)
			})
		}
		if ctx.Err() != nil {
			return
		}
		logx.Warn("main", "upload_stream_reconnecting", nil)
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}
