package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"randpredict/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "randpredict"

// Draw outcomes
const (
	DrawOK           = "ok"
	DrawRateLimited  = "rate_limited"
	DrawInvalid      = "invalid"
	DrawUnauthorized = "unauthorized"
	DrawError        = "error"
)

// Metrics holds the application collectors and the registry they live in
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	gamesRecorded *prometheus.CounterVec
	gameScores    *prometheus.HistogramVec
	highScores    *prometheus.CounterVec
	migrations    prometheus.Counter
	migratedGames prometheus.Counter
	randomDraws   *prometheus.CounterVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method", "route"},
		),
		gamesRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "games",
				Name:      "recorded_total",
				Help:      "Total number of game runs recorded.",
			},
			[]string{"game_type", "authenticated"},
		),
		gameScores: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "games",
				Name:      "score",
				Help:      "Scores of recorded game runs.",
				Buckets:   prometheus.LinearBuckets(0, 1, 11),
			},
			[]string{"game_type"},
		),
		highScores: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "games",
				Name:      "high_scores_total",
				Help:      "Total number of runs that raised a best score.",
			},
			[]string{"game_type"},
		),
		migrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "migrations_total",
			Help:      "Total number of account migrations that moved data.",
		}),
		migratedGames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "migrated_games_total",
			Help:      "Total number of legacy game runs moved to accounts.",
		}),
		randomDraws: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "random",
				Name:      "draws_total",
				Help:      "Total number of random draws by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.gamesRecorded,
		m.gameScores,
		m.highScores,
		m.migrations,
		m.migratedGames,
		m.randomDraws,
	)

	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDraw records the outcome of a random draw request
func (m *Metrics) RecordDraw(outcome string) {
	m.randomDraws.WithLabelValues(outcome).Inc()
}

// Subscribe counts recorded games, high scores and migrations from bus events
func (m *Metrics) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeGameRunRecorded, func(_ context.Context, e events.Event) {
		ev, ok := e.(events.GameRunRecordedEvent)
		if !ok {
			return
		}
		m.gamesRecorded.WithLabelValues(ev.GameType, strconv.FormatBool(ev.UserID != "")).Inc()
		m.gameScores.WithLabelValues(ev.GameType).Observe(float64(ev.Score))
	})

	bus.Subscribe(events.EventTypeHighScore, func(_ context.Context, e events.Event) {
		ev, ok := e.(events.HighScoreEvent)
		if !ok {
			return
		}
		m.highScores.WithLabelValues(ev.GameType).Inc()
	})

	bus.Subscribe(events.EventTypeAccountMigrated, func(_ context.Context, e events.Event) {
		ev, ok := e.(events.AccountMigratedEvent)
		if !ok {
			return
		}
		m.migrations.Inc()
		m.migratedGames.Add(float64(ev.MigratedGames))
	})
}
