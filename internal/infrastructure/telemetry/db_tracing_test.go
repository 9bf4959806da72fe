package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&testRow{}))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTestDB(t)
	plugin := NewDBTracingPlugin(DBTracingConfig{}, nil)
	assert.NoError(t, plugin.RegisterOtelGorm(db))
	assert.Equal(t, 200*time.Millisecond, plugin.config.SlowQueryThresh)
}

func TestDBTracingPlugin_RecordsQuerySpans(t *testing.T) {
	db := setupTestDB(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	plugin := NewDBTracingPlugin(DBTracingConfig{
		Enabled:        true,
		DBSystem:       "sqlite",
		TracerProvider: tp,
	}, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&testRow{Name: "a"}).Error)
	var rows []testRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)

	spans := recorder.Ended()
	require.GreaterOrEqual(t, len(spans), 2)
	for _, s := range spans {
		assert.Equal(t, trace.SpanKindClient, s.SpanKind())
	}
}

func TestDBTracingPlugin_AnnotateSlowQuery(t *testing.T) {
	db := setupTestDB(t)
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, nil)
	ctx, span := tp.Tracer("test").Start(context.Background(), "parent")

	stmt := db.WithContext(ctx).Model(&testRow{})
	stmt.Statement.Table = "test_rows"
	stmt.Statement.RowsAffected = 3
	markQueryStart(stmt)
	time.Sleep(time.Millisecond)
	plugin.annotate(stmt)
	span.End()

	got := recorder.Ended()[0]
	attrs := attrMap(got.Attributes())
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	assert.Equal(t, "test_rows", attrs["db.sql.table"].AsString())
	assert.True(t, attrs["db.slow_query"].AsBool())
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "slow_query_warning", got.Events()[0].Name)
}
