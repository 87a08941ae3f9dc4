package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Movement metrics
	MovementsCreated  prometheus.Counter
	MovementsModified prometheus.Counter
	MovementsDeleted  prometheus.Counter
	MovementAmount    prometheus.Histogram
	CounterMovements  *prometheus.CounterVec

	// Account metrics
	AccountsCreated prometheus.Counter
	AccountsSplit   prometheus.Counter
	AccountsDeleted prometheus.Counter
	AccountBalance  *prometheus.GaugeVec

	// Balance engine metrics
	BalanceRecalculations prometheus.Counter
	BalanceRowsTouched    *prometheus.CounterVec

	// Command metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	// Currency metrics
	QuoteCacheHits   prometheus.Counter
	QuoteCacheMisses prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec
}

// New creates all Prometheus metrics and registers them with reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		MovementsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuentas_movements_created_total",
			Help: "Total number of movements created",
		}),
		MovementsModified: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuentas_movements_modified_total",
			Help: "Total number of movements modified",
		}),
		MovementsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuentas_movements_deleted_total",
			Help: "Total number of movements deleted",
		}),
		MovementAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cuentas_movement_amount",
			Help:    "Movement amounts",
			Buckets: prometheus.ExponentialBuckets(1, 10, 10),
		}),
		CounterMovements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuentas_counter_movements_total",
				Help: "Credit counter-movements by operation",
			},
			[]string{"operation"},
		),

		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuentas_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsSplit: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuentas_accounts_split_total",
			Help: "Total number of accounts split into subaccounts",
		}),
		AccountsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuentas_accounts_deleted_total",
			Help: "Total number of accounts deleted",
		}),
		AccountBalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cuentas_account_balance",
				Help: "Last read account balance",
			},
			[]string{"account_key", "currency"},
		),

		BalanceRecalculations: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuentas_balance_recalculations_total",
			Help: "Total number of balance range recalculations",
		}),
		BalanceRowsTouched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuentas_balance_rows_total",
				Help: "Balance rows written by operation",
			},
			[]string{"operation"},
		),

		Commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuentas_commands_total",
				Help: "Total commands by name and outcome",
			},
			[]string{"command", "status"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cuentas_command_duration_seconds",
				Help:    "Command duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		QuoteCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuentas_quote_cache_hits_total",
			Help: "Current quote cache hits",
		}),
		QuoteCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "cuentas_quote_cache_misses_total",
			Help: "Current quote cache misses",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuentas_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cuentas_http_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cuentas_db_connections",
			Help: "Current number of acquired database connections",
		}),
		DBErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuentas_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuentas_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cuentas_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
	}
}

// ObserveCommand records the outcome and duration of a use case command.
// status is "ok" or the kind of the returned error. It is safe to call on a
// nil receiver.
func (m *Metrics) ObserveCommand(command string, elapsed time.Duration, status string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(command, status).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}
