package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the docket service exposes.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Deadline layer
	DeadlinesByStatus       GaugeVec
	DeadlineMutationsTotal  CounterVec
	CalendarBuildDuration   HistogramVec
	UpcomingFeedDuration    HistogramVec
	UpcomingFeedResultCount HistogramVec

	// Triage layer
	TriageJobsActive      GaugeVec
	TriageJobsTotal       CounterVec
	TriageJobDuration     HistogramVec
	TriageAdmissionsTotal CounterVec

	// Conflict layer
	ConflictChecksTotal CounterVec

	// Infrastructure layer
	DBQueryDuration      HistogramVec
	CacheHitsTotal       CounterVec
	CacheMissesTotal     CounterVec
	EventsPublishedTotal CounterVec
	EventsFailedTotal    CounterVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultJobDurationBuckets  = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultResultCountBuckets  = []float64{0, 1, 5, 10, 25, 50, 100, 250}
)

// NewAppMetrics registers all application metrics on the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	// Deadlines
	m.DeadlinesByStatus = collector.RegisterGauge("deadlines_total", "Deadlines currently stored, by status", "status")
	m.DeadlineMutationsTotal = collector.RegisterCounter("deadline_mutations_total", "Deadline create/update/delete operations", "operation", "result")
	m.CalendarBuildDuration = collector.RegisterHistogram("calendar_build_duration_seconds", "Time spent assembling a month grid", DefaultDBDurationBuckets, "source")
	m.UpcomingFeedDuration = collector.RegisterHistogram("upcoming_feed_duration_seconds", "Time spent assembling the upcoming feed", DefaultDBDurationBuckets)
	m.UpcomingFeedResultCount = collector.RegisterHistogram("upcoming_feed_result_count", "Entries returned by the upcoming feed", DefaultResultCountBuckets)

	// Triage
	m.TriageJobsActive = collector.RegisterGauge("triage_jobs_active", "Jobs currently running", "job_type")
	m.TriageJobsTotal = collector.RegisterCounter("triage_jobs_total", "Jobs by terminal status", "job_type", "status")
	m.TriageJobDuration = collector.RegisterHistogram("triage_job_duration_seconds", "Wall time from submission to terminal state", DefaultJobDurationBuckets, "job_type")
	m.TriageAdmissionsTotal = collector.RegisterCounter("triage_admissions_total", "Admission decisions", "job_type", "decision")

	// Conflicts
	m.ConflictChecksTotal = collector.RegisterCounter("conflict_checks_total", "Conflict sweep outcomes", "outcome")

	// Infrastructure
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "repository", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Events written to the broker", "topic")
	m.EventsFailedTotal = collector.RegisterCounter("events_failed_total", "Events that failed to publish", "topic")

	// System health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording helpers
// ─────────────────────────────────────────────────────────────────────────────

func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordDeadlineMutation(m *AppMetrics, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.DeadlineMutationsTotal.WithLabelValues(operation, result).Inc()
}

func RecordCalendarBuild(m *AppMetrics, source string, duration time.Duration) {
	m.CalendarBuildDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func RecordUpcomingFeed(m *AppMetrics, duration time.Duration, entries int) {
	m.UpcomingFeedDuration.WithLabelValues().Observe(duration.Seconds())
	m.UpcomingFeedResultCount.WithLabelValues().Observe(float64(entries))
}

// RecordAdmission counts one admission decision: "accepted", "rejected"
// or "failed".
func RecordAdmission(m *AppMetrics, jobType, decision string) {
	m.TriageAdmissionsTotal.WithLabelValues(jobType, decision).Inc()
}

func RecordJobStarted(m *AppMetrics, jobType string) {
	m.TriageJobsActive.WithLabelValues(jobType).Inc()
}

func RecordJobFinished(m *AppMetrics, jobType, status string, lifetime time.Duration) {
	m.TriageJobsActive.WithLabelValues(jobType).Dec()
	m.TriageJobsTotal.WithLabelValues(jobType, status).Inc()
	m.TriageJobDuration.WithLabelValues(jobType).Observe(lifetime.Seconds())
}

// RecordConflictCheck counts one sweep outcome: "clear", "conflict" or
// "unknown".
func RecordConflictCheck(m *AppMetrics, outcome string) {
	m.ConflictChecksTotal.WithLabelValues(outcome).Inc()
}

func RecordDBQuery(m *AppMetrics, repository, operation string, duration time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(repository, operation).Observe(duration.Seconds())
	if err != nil {
		m.ErrorsTotal.WithLabelValues(repository, "query_error").Inc()
	}
}

func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordEventPublish(m *AppMetrics, topic string, err error) {
	if err != nil {
		m.EventsFailedTotal.WithLabelValues(topic).Inc()
		return
	}
	m.EventsPublishedTotal.WithLabelValues(topic).Inc()
}

func SetHealthStatus(m *AppMetrics, component string, up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}
