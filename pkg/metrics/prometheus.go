package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pick engine
	picksCreated  *prometheus.CounterVec
	itemsOpened   *prometheus.CounterVec
	openFailures  *prometheus.CounterVec
	coinsEarned   prometheus.Counter
	coinsSpent    prometheus.Counter
	rankingsBuilt *prometheus.CounterVec

	// Notifications
	notificationsDispatched prometheus.Counter
	notificationsFailed     prometheus.Counter
	notificationsDropped    prometheus.Counter
	notifyQueueSize         prometheus.Gauge
	notifyWorkers           prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
	gcPauseTime    prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dojo",
		subsystem:        "pick",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.picksCreated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "picks_created_total",
		Help:      "Total number of picks created, by kind (pick or skip)",
	}, []string{"kind"})

	m.itemsOpened = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "items_opened_total",
		Help:      "Total number of reveal items opened, by item",
	}, []string{"item"})

	m.openFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "open_failures_total",
		Help:      "Total number of rejected open attempts, by reason",
	}, []string{"reason"})

	m.coinsEarned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "coins_earned_total",
		Help:      "Total coins credited to members",
	})

	m.coinsSpent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "coins_spent_total",
		Help:      "Total coins debited from members",
	})

	m.rankingsBuilt = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rankings_built_total",
		Help:      "Total number of ranked views computed, by view",
	}, []string{"view"})

	m.notificationsDispatched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_dispatched_total",
		Help:      "Total picked notifications delivered to the dispatcher",
	})

	m.notificationsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_failed_total",
		Help:      "Total picked notifications the dispatcher rejected",
	})

	m.notificationsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_dropped_total",
		Help:      "Total picked notifications dropped because the queue was full or closed",
	})

	m.notifyQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_queue_size",
		Help:      "Current number of queued picked notifications",
	})

	m.notifyWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_workers",
		Help:      "Number of notification workers running",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.memoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.goroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of running goroutines",
	})

	m.gcPauseTime = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Average GC pause in milliseconds",
	})
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry { return customRegistry }

// RecordPickCreated counts a created pick.
func RecordPickCreated(skip bool) {
	kind := "pick"
	if skip {
		kind = "skip"
	}
	globalManager.picksCreated.WithLabelValues(kind).Inc()
}

// RecordItemOpened counts a successful reveal.
func RecordItemOpened(item string) { globalManager.itemsOpened.WithLabelValues(item).Inc() }

// RecordOpenFailure counts a rejected reveal.
func RecordOpenFailure(reason string) { globalManager.openFailures.WithLabelValues(reason).Inc() }

// RecordCoinsEarned adds to the earned coin counter.
func RecordCoinsEarned(amount int64) {
	if amount > 0 {
		globalManager.coinsEarned.Add(float64(amount))
	}
}

// RecordCoinsSpent adds to the spent coin counter.
func RecordCoinsSpent(amount int64) {
	if amount > 0 {
		globalManager.coinsSpent.Add(float64(amount))
	}
}

// RecordRankingBuilt counts a computed ranked view.
func RecordRankingBuilt(view string) { globalManager.rankingsBuilt.WithLabelValues(view).Inc() }

// RecordNotificationDispatched counts a delivered notification.
func RecordNotificationDispatched() { globalManager.notificationsDispatched.Inc() }

// RecordNotificationFailed counts a notification the dispatcher failed on.
func RecordNotificationFailed() { globalManager.notificationsFailed.Inc() }

// RecordNotificationDropped counts a notification that never reached a worker.
func RecordNotificationDropped() { globalManager.notificationsDropped.Inc() }

// UpdateNotifyQueueSize sets the notification backlog gauge.
func UpdateNotifyQueueSize(size int) { globalManager.notifyQueueSize.Set(float64(size)) }

// UpdateNotifyWorkers sets the worker gauge.
func UpdateNotifyWorkers(count int) { globalManager.notifyWorkers.Set(float64(count)) }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request latency.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.memoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) { globalManager.goroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime sets the average GC pause gauge.
func RecordSystemGCPauseTime(ms float64) { globalManager.gcPauseTime.Set(ms) }
