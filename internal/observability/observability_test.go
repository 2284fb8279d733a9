package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type probe struct {
	ID   uint
	Name string
}

func TestInstrumentGorm_RecordsLatency(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, InstrumentGorm(db))
	require.NoError(t, db.AutoMigrate(&probe{}))

	require.NoError(t, db.Create(&probe{Name: "a"}).Error)
	var got []probe
	require.NoError(t, db.Find(&got).Error)

	assert.Len(t, got, 1)
	assert.Equal(t, uint64(1), sampleCount(t, "create", "probes"))
	assert.Equal(t, uint64(1), sampleCount(t, "query", "probes"))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer)
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "service", "Test")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("boom"))
}

func TestRecordCounters(t *testing.T) {
	before := counterValue(t, AuthEvents.WithLabelValues("login", "success"))
	RecordAuth("login", "success")
	assert.Equal(t, before+1, counterValue(t, AuthEvents.WithLabelValues("login", "success")))

	beforeWrites := counterValue(t, ContentWrites.WithLabelValues("post", "create"))
	RecordWrite("post", "create")
	assert.Equal(t, beforeWrites+1, counterValue(t, ContentWrites.WithLabelValues("post", "create")))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func sampleCount(t *testing.T, op, table string) uint64 {
	t.Helper()
	h, ok := DatabaseQueryLatency.WithLabelValues(op, table).(prometheus.Histogram)
	require.True(t, ok)
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}
