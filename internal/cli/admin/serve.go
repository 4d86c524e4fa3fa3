// Package admin implements the docsentryd daemon commands.
package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/api/handlers"
	"github.com/docsentry/docsentry/internal/config"
	"github.com/docsentry/docsentry/internal/database"
	"github.com/docsentry/docsentry/internal/github"
	"github.com/docsentry/docsentry/internal/jobs"
	"github.com/docsentry/docsentry/internal/kb"
	"github.com/docsentry/docsentry/internal/llm"
	"github.com/docsentry/docsentry/internal/pipeline"
	"github.com/docsentry/docsentry/internal/repository"
	"github.com/docsentry/docsentry/internal/schedule"
	"github.com/docsentry/docsentry/internal/server"
	"github.com/docsentry/docsentry/internal/service"
	"github.com/docsentry/docsentry/internal/storage"
	"github.com/docsentry/docsentry/internal/telemetry"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the docsentry API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if cfg.APIToken == "" {
		return fmt.Errorf("DOCSENTRY_API_TOKEN is required")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	postRepo := repository.NewPostRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(pool)
	embeddingJobRepo := repository.NewEmbeddingJobRepository(pool)
	driftRunRepo := repository.NewDriftRunRepository(pool)

	var embeddingClient *llm.EmbeddingClient
	var embeddingWorker *jobs.Worker
	var jobEnqueuer service.EmbeddingJobEnqueuer
	var embedder service.EmbeddingGenerator
	if cfg.HasEmbeddings() {
		embeddingClient = llm.NewEmbeddingClient(cfg.OpenAIAPIKey)
		embeddingSvc := service.NewEmbeddingService(embeddingClient, snapshotRepo)
		embeddingProcessor := jobs.NewEmbeddingWorker(embeddingJobRepo, embeddingSvc)
		embeddingWorker = jobs.NewWorker(embeddingProcessor, 10*time.Second)
		go embeddingWorker.Start(ctx)
		jobEnqueuer = embeddingJobRepo
		embedder = embeddingClient
		log.Println("embedding worker started")
	}

	postSvc := service.NewPostService(postRepo)
	kbSvc := service.NewKnowledgeBaseService(snapshotRepo, jobEnqueuer, driftRunRepo, embedder)

	router := server.NewRouter(server.RouterConfig{
		APIToken:    cfg.APIToken,
		PostHandler: handlers.NewPostHandler(postSvc),
		KBHandler:   handlers.NewKBHandler(kbSvc),
	})

	scheduler, err := startClassifyScheduler(ctx, cfg, kbSvc)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// startClassifyScheduler starts the periodic re-classification job when a
// schedule is configured. Returns nil without error when it isn't.
func startClassifyScheduler(ctx context.Context, cfg *config.Config, kbSvc *service.KnowledgeBaseService) (*schedule.Scheduler, error) {
	if cfg.ClassifySchedule == "" {
		return nil, nil
	}
	if cfg.ClassifyRepository == "" {
		return nil, fmt.Errorf("DOCSENTRY_CLASSIFY_REPOSITORY is required when DOCSENTRY_CLASSIFY_SCHEDULE is set")
	}
	if !cfg.HasGitHub() {
		return nil, fmt.Errorf("DOCSENTRY_GITHUB_TOKEN is required when DOCSENTRY_CLASSIFY_SCHEDULE is set")
	}

	chat, err := llm.NewChatClient(llm.Config{
		Provider:        cfg.LLMProvider,
		Model:           cfg.LLMModel,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}

	ghClient := github.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL)
	classifier := service.NewClassifierService(chat, cfg.ClassifyBatchSize,
		time.Duration(cfg.ClassifyBatchDelaySec)*time.Second)
	classifyPipeline := pipeline.NewClassifyPipeline(ghClient, classifier)

	var s3Client *storage.S3Client
	if cfg.HasS3() {
		s3Client, err = storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	}

	repo := cfg.ClassifyRepository
	scheduler, err := schedule.New(cfg.ClassifySchedule, "classify "+repo, func(jobCtx context.Context) {
		snap := classifyPipeline.Run(jobCtx, repo, "")
		if snap == nil {
			return
		}
		if _, err := kbSvc.ReplaceSnapshot(jobCtx, snap); err != nil {
			log.Printf("WARN: storing scheduled snapshot for %s failed: %v", repo, err)
			return
		}
		if s3Client != nil {
			data, err := kb.Marshal(snap)
			if err != nil {
				log.Printf("WARN: encoding snapshot artifact for %s failed: %v", repo, err)
				return
			}
			if err := s3Client.PutSnapshot(jobCtx, repo, data); err != nil {
				log.Printf("WARN: archiving snapshot for %s failed: %v", repo, err)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid classify schedule: %w", err)
	}

	go scheduler.Start(ctx)
	log.Printf("classify scheduler started: %s (%s)", repo, cfg.ClassifySchedule)
	return scheduler, nil
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}

	version, dirty, verErr := m.Version()
	status, err := migrationStatus(upErr, verErr, version, dirty)
	if err != nil {
		return err
	}
	log.Printf("migrations: %s", status)
	return nil
}

// migrationStatus summarizes a migration run. upErr is m.Up()'s result
// (nil or ErrNoChange), verErr is m.Version()'s.
func migrationStatus(upErr, verErr error, version uint, dirty bool) (string, error) {
	if verErr == migrate.ErrNilVersion {
		return "database is up to date (no migrations applied)", nil
	}
	if verErr != nil {
		return "", fmt.Errorf("failed to get migration version: %w", verErr)
	}
	if dirty {
		return "", fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	}
	if upErr == migrate.ErrNoChange {
		return fmt.Sprintf("database is up to date (version %d)", version), nil
	}
	return fmt.Sprintf("applied successfully (version %d)", version), nil
}
