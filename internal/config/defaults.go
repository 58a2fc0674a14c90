// Package config provides configuration loading, defaults, and validation for
// the LitiDocket platform.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBUser     = "litidocket"
	DefaultDBName     = "litidocket"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "docket:"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "litidocket-group"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "litidocket-documents"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultWorkerConcurrency = 10

	DefaultUpcomingWindowDays = 30
	DefaultCalendarCacheTTL   = 5 * time.Minute

	DefaultTriageThreshold    = 0.5
	DefaultPrivilegeThreshold = 0.7
	DefaultTriageAdmissionTTL = 30 * time.Minute
	DefaultTriagePollInterval = 2 * time.Second
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 10 * time.Minute
	}
	// DB is an int; 0 is a valid explicit value so we cannot distinguish "not
	// set" from "set to 0".  We leave it as-is (0 is also the default).

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = time.Hour
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}
	if cfg.Worker.RetryBackoff == 0 {
		cfg.Worker.RetryBackoff = 2 * time.Second
	}

	// ── Calendar ──────────────────────────────────────────────────────────────
	if cfg.Calendar.UpcomingWindowDays == 0 {
		cfg.Calendar.UpcomingWindowDays = DefaultUpcomingWindowDays
	}
	if cfg.Calendar.CacheTTL == 0 {
		cfg.Calendar.CacheTTL = DefaultCalendarCacheTTL
	}

	// ── Triage ────────────────────────────────────────────────────────────────
	if cfg.Triage.DefaultThreshold == 0 {
		cfg.Triage.DefaultThreshold = DefaultTriageThreshold
	}
	if cfg.Triage.DefaultPrivilegeThreshold == 0 {
		cfg.Triage.DefaultPrivilegeThreshold = DefaultPrivilegeThreshold
	}
	if cfg.Triage.AdmissionTTL == 0 {
		cfg.Triage.AdmissionTTL = DefaultTriageAdmissionTTL
	}
	if cfg.Triage.PollInterval == 0 {
		cfg.Triage.PollInterval = DefaultTriagePollInterval
	}
	if cfg.Triage.JobTimeout == 0 {
		cfg.Triage.JobTimeout = 10 * time.Minute
	}

	// ── Collaborators ─────────────────────────────────────────────────────────
	if cfg.Conflict.Timeout == 0 {
		cfg.Conflict.Timeout = 10 * time.Second
	}
	if cfg.Conflict.RetryAttempts == 0 {
		cfg.Conflict.RetryAttempts = 2
	}
	if cfg.Mapping.Timeout == 0 {
		cfg.Mapping.Timeout = 10 * time.Second
	}
	if cfg.Scoring.Timeout == 0 {
		cfg.Scoring.Timeout = 30 * time.Second
	}
	if cfg.Scoring.RetryAttempts == 0 {
		cfg.Scoring.RetryAttempts = 2
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
