package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robinbraemer/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"go.minekube.com/pex/pkg/datastore/groupmanager"
	"go.minekube.com/pex/pkg/pex"
)

func testStore(t *testing.T) *groupmanager.Store {
	t.Helper()
	root := t.TempDir()
	users := filepath.Join(root, "worlds", "world", "users.yml")
	require.NoError(t, os.MkdirAll(filepath.Dir(users), 0755))
	require.NoError(t, os.WriteFile(users, []byte("users:\n  alice: {}\n  bob: {}\n"), 0644))
	s, err := groupmanager.New("gm", groupmanager.Options{Config: &groupmanager.Config{GroupManagerRoot: root}})
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestInstrument(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	mgr := event.New()
	unsubscribe, err := Instrument(Options{Event: mgr, MeterProvider: mp, TracerProvider: tp})
	require.NoError(t, err)

	s := testStore(t)
	mgr.Fire(&pex.StoreLoadedEvent{Store: s, Took: 20 * time.Millisecond})
	mgr.Fire(&pex.StoreReloadedEvent{Previous: s, Current: s})

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "pex.store.load", spans[0].Name())
	assert.Equal(t, "pex.store.reload", spans[1].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int("pex.subjects.user", 2))
	assert.GreaterOrEqual(t, spans[0].EndTime().Sub(spans[0].StartTime()), 20*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	m, ok := findMetric(rm, "pex.store.loads")
	require.True(t, ok)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	m, ok = findMetric(rm, "pex.store.subjects")
	require.True(t, ok)
	gauge, ok := m.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	for _, dp := range gauge.DataPoints {
		if typ, _ := dp.Attributes.Value("type"); typ.AsString() == "user" {
			assert.Equal(t, int64(2), dp.Value)
		}
	}

	_, ok = findMetric(rm, "pex.store.load.duration")
	assert.True(t, ok)

	unsubscribe()
	mgr.Fire(&pex.StoreLoadedEvent{Store: s})
	assert.Len(t, sr.Ended(), 2)
}

func TestInstrument_NoEventManager(t *testing.T) {
	_, err := Instrument(Options{})
	require.Error(t, err)
}

func TestInit_Disabled(t *testing.T) {
	_, err := Init(context.Background(), nil)
	require.Error(t, err)

	cleanup, err := Init(context.Background(), &pex.Config{})
	require.NoError(t, err)
	cleanup()
}
