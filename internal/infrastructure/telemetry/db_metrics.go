package telemetry

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSlowQuery     = 200 * time.Millisecond
	defaultPoolStatsTick = 15 * time.Second
)

type DBMetricsConfig struct {
	Enabled            bool
	SlowQueryThreshold time.Duration
	PoolStatsInterval  time.Duration
}

func DefaultDBMetricsConfig() DBMetricsConfig {
	return DBMetricsConfig{Enabled: true, SlowQueryThreshold: defaultSlowQuery, PoolStatsInterval: defaultPoolStatsTick}
}

// DBMetrics is a gorm plugin counting statements by operation, timing them,
// and sampling sql.DB pool stats in the background.
type DBMetrics struct {
	config DBMetricsConfig
	logger *zap.Logger

	queries   *Counter
	slow      *Counter
	latency   *Histogram
	pool      *Gauge
	poolLimit *Gauge

	stop func()
	wg   sync.WaitGroup
}

func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold == 0 {
		cfg.SlowQueryThreshold = defaultSlowQuery
	}
	if cfg.PoolStatsInterval == 0 {
		cfg.PoolStatsInterval = defaultPoolStatsTick
	}

	m := &DBMetrics{config: cfg, logger: logger, stop: func() {}}
	var errs [5]error
	m.queries, errs[0] = NewCounter(meter, "db_query_total", "Database queries by operation", "{query}")
	m.slow, errs[1] = NewCounter(meter, "db_slow_query_total", "Queries slower than the configured threshold", "{query}")
	m.latency, errs[2] = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	m.pool, errs[3] = NewGauge(meter, "db_pool_connections", "Connections in the pool by state", "{connection}")
	m.poolLimit, errs[4] = NewGauge(meter, "db_pool_connections_max", "Maximum open connections", "{connection}")
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordQuery counts one statement. Slow ones are also counted per table.
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, took time.Duration) {
	op := AttrDBOperation.String(cmp.Or(strings.ToUpper(operation), "UNKNOWN"))
	m.queries.Inc(ctx, op)
	m.latency.RecordDuration(ctx, took, op)
	if took > m.config.SlowQueryThreshold {
		m.slow.Inc(ctx, AttrDBTable.String(cmp.Or(table, "unknown")))
	}
}

func (m *DBMetrics) Name() string { return "db_metrics" }

func (m *DBMetrics) Initialize(db *gorm.DB) error {
	return registerAround(db, "db_metrics", func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			operation := op
			if operation == "" {
				operation = detectOperationType(tx.Statement.SQL.String())
			}
			took, _ := queryElapsed(tx)
			ctx := tx.Statement.Context
			if ctx == nil {
				ctx = context.Background()
			}
			m.RecordQuery(ctx, operation, tx.Statement.Table, took)
		}
	})
}

// StartPoolStatsCollection samples pool stats once immediately and then on
// every tick until Stop is called or ctx ends.
func (m *DBMetrics) StartPoolStatsCollection(ctx context.Context, sqlDB *sql.DB) {
	ctx, cancel := context.WithCancel(ctx)
	m.stop = cancel

	sample := func() {
		st := sqlDB.Stats()
		m.poolLimit.Record(ctx, int64(st.MaxOpenConnections))
		m.pool.Record(ctx, int64(st.Idle), AttrDBState.String("idle"))
		m.pool.Record(ctx, int64(st.InUse), AttrDBState.String("in_use"))
		m.pool.Record(ctx, int64(st.OpenConnections), AttrDBState.String("open"))
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		tick := time.NewTicker(m.config.PoolStatsInterval)
		defer tick.Stop()
		for sample(); ; {
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
				sample()
			}
		}
	}()
}

// Stop ends pool sampling and waits for it. Calling it twice is fine.
func (m *DBMetrics) Stop() {
	m.stop()
	m.wg.Wait()
}

// RegisterDBMetrics installs the plugin on db and starts pool sampling. It
// returns nil, nil when metrics export is off.
func RegisterDBMetrics(ctx context.Context, db *gorm.DB, mp *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if !cfg.Enabled || mp == nil || !mp.IsEnabled() {
		return nil, nil
	}
	m, err := NewDBMetrics(mp.Meter("db.client"), cfg, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := db.Use(m); err != nil {
		return nil, err
	}
	m.StartPoolStatsCollection(ctx, sqlDB)
	m.logger.Info("Database metrics registered",
		zap.Duration("slow_query_threshold", m.config.SlowQueryThreshold),
		zap.Duration("pool_stats_interval", m.config.PoolStatsInterval))
	return m, nil
}
