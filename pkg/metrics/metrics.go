package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics records metadata for scheduled jobs.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewCronJobMetrics registers the cron job metrics on the provided registerer.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of cron jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful cron job executions.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed cron job executions.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure)
	return &CronJobMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named job.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// SyncMetrics tracks Strava sync outcomes per mode (incremental/full/webhook).
type SyncMetrics struct {
	activities *prometheus.CounterVec
	pages      *prometheus.CounterVec
	rateLimits *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewSyncMetrics registers sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	activities := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "strava_sync_activities_total",
		Help: "Activities processed during sync, by mode and outcome.",
	}, []string{"mode", "outcome"})
	pages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "strava_sync_pages_total",
		Help: "Activity list pages fetched during sync.",
	}, []string{"mode"})
	rateLimits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "strava_sync_rate_limited_total",
		Help: "Sync batches cut short by the provider rate limit.",
	}, []string{"mode"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "strava_sync_duration_seconds",
		Help:    "Duration of sync batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	reg.MustRegister(activities, pages, rateLimits, duration)
	return &SyncMetrics{
		activities: activities,
		pages:      pages,
		rateLimits: rateLimits,
		duration:   duration,
	}
}

// IncActivity counts one processed activity for the mode/outcome pair.
func (s *SyncMetrics) IncActivity(mode, outcome string) {
	if s == nil || s.activities == nil {
		return
	}
	s.activities.WithLabelValues(normalizeLabel(mode), normalizeLabel(outcome)).Inc()
}

// IncPage counts one fetched list page.
func (s *SyncMetrics) IncPage(mode string) {
	if s == nil || s.pages == nil {
		return
	}
	s.pages.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncRateLimited counts a batch stopped by the provider rate limit.
func (s *SyncMetrics) IncRateLimited(mode string) {
	if s == nil || s.rateLimits == nil {
		return
	}
	s.rateLimits.WithLabelValues(normalizeLabel(mode)).Inc()
}

// ObserveDuration records the batch duration for the mode.
func (s *SyncMetrics) ObserveDuration(mode string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
