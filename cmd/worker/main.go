// Command worker consumes admitted triage jobs from Kafka, scores each
// document through the inference collaborator, and settles the jobs with
// their results.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/LitiDocket/internal/application/triage"
	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/collaborators/scoringsvc"
	"github.com/turtacn/LitiDocket/internal/infrastructure/database/postgres"
	"github.com/turtacn/LitiDocket/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/LitiDocket/internal/infrastructure/database/redis"
	"github.com/turtacn/LitiDocket/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/internal/infrastructure/storage/minio"
	"github.com/turtacn/LitiDocket/internal/interfaces/http/handlers"
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultHealthPort = 8081
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	workerCount := flag.Int("workers", 0, "number of concurrent consumers (overrides config)")
	healthPort := flag.Int("health-port", defaultHealthPort, "health endpoint port")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("worker")

	concurrency := cfg.Worker.Concurrency
	if *workerCount > 0 {
		concurrency = *workerCount
	}

	logger.Info("starting litidocket worker",
		logging.String("version", version),
		logging.String("commit", gitCommit),
		logging.Int("consumers", concurrency),
	)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// ── Infrastructure ────────────────────────────────────────────────────

	pool, err := postgres.NewPool(startupCtx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("postgres unavailable", logging.Err(err))
	}
	defer pool.Close()

	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis unavailable", logging.Err(err))
	}
	defer redisClient.Close()
	guard := redis.NewAdmissionGuard(redisClient, logger, cfg.Redis.KeyPrefix)

	minioClient, err := minio.NewClient(cfg.MinIO, logger)
	if err != nil {
		logger.Fatal("minio unavailable", logging.Err(err))
	}
	defer minioClient.Close()
	docStore := minio.NewDocumentStore(minioClient, logger)

	scorer, err := scoringsvc.NewClient(cfg.Scoring, logger)
	if err != nil {
		logger.Fatal("scoring service setup failed", logging.Err(err))
	}

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		MaxRetries: cfg.Kafka.ProducerRetries,
		BatchSize:  cfg.Kafka.BatchSize,
	}, logger)
	if err != nil {
		logger.Fatal("kafka producer setup failed", logging.Err(err))
	}
	defer producer.Close()

	// ── Scoring pipeline ──────────────────────────────────────────────────

	jobRepo := repositories.NewJobRepository(pool.Pool(), logger)
	kvLogger := logging.KV(logger)

	triageSvc := triage.NewService(jobRepo, guard,
		kafka.NewJobEventPublisher(producer, "litidocket-worker"),
		kvLogger,
		triage.ServiceConfig{
			DefaultThreshold:          cfg.Triage.DefaultThreshold,
			DefaultPrivilegeThreshold: cfg.Triage.DefaultPrivilegeThreshold,
			AdmissionTTL:              cfg.Triage.AdmissionTTL,
		})
	processor := triage.NewProcessor(triageSvc, docStore, scorer, kvLogger)

	jobHandler := func(ctx context.Context, env *kafka.EventEnvelope) error {
		var payload kafka.JobSubmittedPayload
		if err := env.DecodePayload(&payload); err != nil {
			return err
		}

		jobCtx, cancel := context.WithTimeout(ctx, cfg.Triage.JobTimeout)
		defer cancel()
		return processor.Process(jobCtx, payload.Job)
	}

	// One reader per consumer; the group balances partitions across them.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumers := make([]*kafka.Consumer, 0, concurrency)
	for i := 0; i < concurrency; i++ {
		consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:         cfg.Kafka.Brokers,
			GroupID:         cfg.Kafka.GroupID,
			Topics:          []string{kafka.TopicJobSubmitted},
			AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
			MaxRetries:      cfg.Worker.MaxRetries,
			RetryBackoff:    cfg.Worker.RetryBackoff,
			DeadLetterTopic: kafka.TopicDeadLetter,
		}, producer, logger)
		if err != nil {
			logger.Fatal("kafka consumer setup failed", logging.Err(err))
		}
		consumer.Handle("triage.job.submitted", jobHandler)

		if err := consumer.Start(ctx); err != nil {
			logger.Fatal("kafka consumer start failed", logging.Err(err))
		}
		consumers = append(consumers, consumer)
	}

	healthSrv := startHealthServer(*healthPort, logger,
		&postgresHealthAdapter{pool: pool},
		&redisHealthAdapter{client: redisClient},
		&minioHealthAdapter{client: minioClient},
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", logging.String("signal", sig.String()))

	cancel()
	for _, consumer := range consumers {
		if err := consumer.Stop(); err != nil {
			logger.Error("consumer stop failed", logging.Err(err))
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown failed", logging.Err(err))
	}

	logger.Info("worker stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func startHealthServer(port int, logger logging.Logger, checkers ...handlers.HealthChecker) *http.Server {
	health := handlers.NewHealthHandler(version, checkers...)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.Liveness)
	mux.HandleFunc("/readyz", health.Readiness)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info("health server listening", logging.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", logging.Err(err))
		}
	}()

	return srv
}

// Readiness adapters for the worker's infrastructure clients.

type postgresHealthAdapter struct {
	pool *postgres.Pool
}

func (a *postgresHealthAdapter) Name() string { return "postgres" }

func (a *postgresHealthAdapter) Check(ctx context.Context) error {
	return a.pool.HealthCheck(ctx)
}

type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string { return "redis" }

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}

type minioHealthAdapter struct {
	client *minio.Client
}

func (a *minioHealthAdapter) Name() string { return "minio" }

func (a *minioHealthAdapter) Check(ctx context.Context) error {
	return a.client.HealthCheck(ctx)
}
