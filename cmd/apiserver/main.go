// Command apiserver runs the LitiDocket HTTP API: deadline CRUD, the month
// calendar, triage job admission, conflict reports, and precedent search.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/LitiDocket/internal/application/conflictcheck"
	appdocket "github.com/turtacn/LitiDocket/internal/application/docket"
	"github.com/turtacn/LitiDocket/internal/application/mapping"
	"github.com/turtacn/LitiDocket/internal/application/triage"
	"github.com/turtacn/LitiDocket/internal/config"
	"github.com/turtacn/LitiDocket/internal/infrastructure/collaborators/conflictsvc"
	"github.com/turtacn/LitiDocket/internal/infrastructure/collaborators/mapsvc"
	"github.com/turtacn/LitiDocket/internal/infrastructure/database/postgres"
	"github.com/turtacn/LitiDocket/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/LitiDocket/internal/infrastructure/database/redis"
	"github.com/turtacn/LitiDocket/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LitiDocket/internal/infrastructure/search/opensearch"
	httpserver "github.com/turtacn/LitiDocket/internal/interfaces/http"
	"github.com/turtacn/LitiDocket/internal/interfaces/http/handlers"
	"github.com/turtacn/LitiDocket/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("apiserver")

	logger.Info("starting litidocket api server",
		logging.String("version", version),
		logging.String("commit", gitCommit),
		logging.Int("port", cfg.Server.Port),
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

	cache := redis.NewCache(redisClient, logger,
		redis.WithPrefix(cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
	guard := redis.NewAdmissionGuard(redisClient, logger, cfg.Redis.KeyPrefix)

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    cfg.Kafka.Brokers,
		MaxRetries: cfg.Kafka.ProducerRetries,
		BatchSize:  cfg.Kafka.BatchSize,
	}, logger)
	if err != nil {
		logger.Fatal("kafka producer setup failed", logging.Err(err))
	}
	defer producer.Close()

	if cfg.Kafka.AutoCreateTopics {
		ensureTopics(startupCtx, cfg, logger)
	}

	// The precedent index is optional: research endpoints disappear when the
	// cluster is unreachable, the docket core stays up.
	var searcher *opensearch.Searcher
	var indexer *opensearch.Indexer
	osChecker := []handlers.HealthChecker(nil)
	osClient, err := opensearch.NewClient(cfg.OpenSearch, logger)
	if err != nil {
		logger.Warn("opensearch unavailable, precedent search disabled", logging.Err(err))
	} else {
		defer osClient.Close()
		searcher = opensearch.NewSearcher(osClient, logger)
		indexer = opensearch.NewIndexer(osClient, opensearch.IndexerConfig{}, logger)
		osChecker = append(osChecker, &opensearchHealthAdapter{client: osClient})
	}

	// The conflict collaborator is likewise optional.
	var conflictRouter *conflictcheck.Router
	if cfg.Conflict.BaseURL != "" {
		checker, err := conflictsvc.NewClient(cfg.Conflict, logger)
		if err != nil {
			logger.Fatal("conflict service setup failed", logging.Err(err))
		}
		conflictRouter = conflictcheck.NewRouter(checker, logging.KV(logger.Named("conflictcheck")), nil)
	} else {
		logger.Warn("conflict service not configured, conflict routing disabled")
	}

	// The mapping collaborator is optional too: without it the venue analysis
	// endpoints are simply not mounted.
	var mappingSvc mapping.Service
	if cfg.Mapping.BaseURL != "" {
		mapClient, err := mapsvc.NewClient(cfg.Mapping, logger)
		if err != nil {
			logger.Fatal("mapping service setup failed", logging.Err(err))
		}
		mappingSvc = mapping.NewService(mapClient, logging.KV(logger.Named("mapping")))
	} else {
		logger.Warn("mapping service not configured, venue analysis disabled")
	}

	// ── Application services ──────────────────────────────────────────────

	deadlineRepo := repositories.NewDeadlineRepository(pool.Pool(), logger)
	jobRepo := repositories.NewJobRepository(pool.Pool(), logger)

	loc := cfg.Calendar.Location()
	kvLogger := logging.KV(logger)

	var conflicts appdocket.ConflictRouter
	if conflictRouter != nil {
		conflicts = conflictRouter
	}

	deadlineSvc := appdocket.NewDeadlineService(
		deadlineRepo, cache,
		kafka.NewDeadlineEventPublisher(producer),
		conflicts, kvLogger, loc,
	)
	calendarSvc := appdocket.NewCalendarService(deadlineRepo, cache, kvLogger,
		appdocket.CalendarServiceConfig{
			UpcomingWindowDays: cfg.Calendar.UpcomingWindowDays,
			CacheTTL:           cfg.Calendar.CacheTTL,
			Location:           loc,
		}, nil)
	triageSvc := triage.NewService(jobRepo, guard,
		kafka.NewJobEventPublisher(producer, ""),
		kvLogger,
		triage.ServiceConfig{
			DefaultThreshold:          cfg.Triage.DefaultThreshold,
			DefaultPrivilegeThreshold: cfg.Triage.DefaultPrivilegeThreshold,
			AdmissionTTL:              cfg.Triage.AdmissionTTL,
		})

	// ── Interfaces ────────────────────────────────────────────────────────

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "litidocket"}, logger)
	if err != nil {
		logger.Fatal("metrics setup failed", logging.Err(err))
	}
	metrics := prometheus.NewAppMetrics(collector)

	checkers := append([]handlers.HealthChecker{
		&postgresHealthAdapter{pool: pool},
		&redisHealthAdapter{client: redisClient},
	}, osChecker...)

	routerCfg := httpserver.RouterConfig{
		DeadlineHandler: handlers.NewDeadlineHandler(deadlineSvc),
		CalendarHandler: handlers.NewCalendarHandler(calendarSvc),
		TriageHandler:   handlers.NewTriageHandler(triageSvc),
		HealthHandler:   handlers.NewHealthHandler(version, checkers...),

		CORSConfig:  corsConfig(),
		RateLimiter: middleware.NewTokenBucketLimiter(50, 100, 5*time.Minute),

		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
	}
	if conflictRouter != nil {
		routerCfg.ConflictHandler = handlers.NewConflictHandler(conflictRouter)
	}
	if searcher != nil {
		routerCfg.PrecedentHandler = handlers.NewPrecedentHandler(searcher, indexer)
	}
	if mappingSvc != nil {
		routerCfg.MappingHandler = handlers.NewMappingHandler(mappingSvc)
	}

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("http server failed", logging.Err(err))
		}
	case sig := <-quit:
		logger.Info("shutting down", logging.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", logging.Err(err))
	}

	logger.Info("api server stopped")
}

// loadConfig reads the config file when present and falls back to DOCKET_*
// environment variables.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

func logConfig(cfg *config.Config) logging.LogConfig {
	lc := logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}
	if cfg.Log.Output != "" {
		lc.OutputPaths = []string{cfg.Log.Output}
	}
	return lc
}

func corsConfig() *middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	return &c
}

func ensureTopics(ctx context.Context, cfg *config.Config, logger logging.Logger) {
	tm, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
	if err != nil {
		logger.Warn("topic manager setup failed", logging.Err(err))
		return
	}
	defer tm.Close()

	if err := tm.EnsureDefaultTopics(ctx); err != nil {
		logger.Warn("topic creation failed", logging.Err(err))
	}
}
