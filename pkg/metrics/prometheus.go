// Package metrics provides Prometheus metrics for the trio game engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the game.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Round lifecycle
	roundsStarted prometheus.Counter
	reshuffles    prometheus.Counter
	cardsDealt    prometheus.Counter
	cardsOnTable  prometheus.Gauge
	deckSize      prometheus.Gauge
	gamesFinished *prometheus.CounterVec

	// Adjudication
	claims       *prometheus.CounterVec
	claimLatency prometheus.Histogram
	pointsTotal  prometheus.Counter

	// Participants
	playerCount   prometheus.Gauge
	inputsDropped *prometheus.CounterVec
	tokenToggles  prometheus.Counter

	// Action queues
	queueEnqueued prometheus.Counter
	queueDequeued prometheus.Counter
	queueRemoved  prometheus.Counter

	// HTTP collaborator
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "trio",
		subsystem:        "game",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.roundsStarted = m.counter("rounds_started_total", "Rounds dealt from a cleared table")
	m.reshuffles = m.counter("reshuffles_total", "Rounds ended by the turn timeout")
	m.cardsDealt = m.counter("cards_dealt_total", "Cards moved from the deck to the table")
	m.cardsOnTable = m.gauge("cards_on_table", "Cards currently on the table")
	m.deckSize = m.gauge("deck_size", "Cards remaining in the deck")
	m.gamesFinished = m.counterVec("games_finished_total", "Finished games by reason", "reason")

	m.claims = m.counterVec("claims_total", "Adjudicated claims by verdict", "verdict")
	m.claimLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "claim_latency_milliseconds",
		Help:        "Time from claim submission to verdict in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	})
	m.pointsTotal = m.counter("points_total", "Points awarded across all players")

	m.playerCount = m.gauge("players", "Players seated at the table")
	m.inputsDropped = m.counterVec("inputs_dropped_total", "Dropped key presses by reason", "reason")
	m.tokenToggles = m.counter("token_toggles_total", "Applied token toggles")

	m.queueEnqueued = m.counter("queue_enqueue_total", "Actions accepted into player queues")
	m.queueDequeued = m.counter("queue_dequeue_total", "Actions taken from player queues")
	m.queueRemoved = m.counter("queue_removed_total", "Actions discarded by the dealer")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Allocated heap bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Running goroutines")
}

// RecordRoundStarted increments the rounds counter.
func RecordRoundStarted() {
	globalManager.roundsStarted.Inc()
}

// RecordReshuffle increments the reshuffle counter.
func RecordReshuffle() {
	globalManager.reshuffles.Inc()
}

// RecordCardDealt increments the dealt-cards counter.
func RecordCardDealt() {
	globalManager.cardsDealt.Inc()
}

// UpdateCardsOnTable sets the table occupancy gauge.
func UpdateCardsOnTable(n int) {
	globalManager.cardsOnTable.Set(float64(n))
}

// UpdateDeckSize sets the deck size gauge.
func UpdateDeckSize(n int) {
	globalManager.deckSize.Set(float64(n))
}

// RecordGameFinished counts a finished game; reason is "exhausted" or "terminated".
func RecordGameFinished(reason string) {
	globalManager.gamesFinished.WithLabelValues(reason).Inc()
}

// RecordClaim counts an adjudicated claim by verdict.
func RecordClaim(verdict string) {
	globalManager.claims.WithLabelValues(verdict).Inc()
}

// RecordClaimLatency observes submission-to-verdict latency.
func RecordClaimLatency(latencyMs float64) {
	globalManager.claimLatency.Observe(latencyMs)
}

// RecordPoint counts an awarded point.
func RecordPoint() {
	globalManager.pointsTotal.Inc()
}

// UpdatePlayerCount sets the seated players gauge.
func UpdatePlayerCount(n int) {
	globalManager.playerCount.Set(float64(n))
}

// RecordInputDropped counts a key press that never reached the board.
func RecordInputDropped(reason string) {
	globalManager.inputsDropped.WithLabelValues(reason).Inc()
}

// RecordTokenToggle counts an applied toggle.
func RecordTokenToggle() {
	globalManager.tokenToggles.Inc()
}

// RecordQueueEnqueue counts an accepted action.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts an action taken by its player.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueRemoved counts actions discarded by Remove or Clear.
func RecordQueueRemoved(n int) {
	globalManager.queueRemoved.Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
