package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/robinbraemer/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"go.minekube.com/pex/pkg/datastore"
	"go.minekube.com/pex/pkg/pex"
)

const instrumentationName = "go.minekube.com/pex/pkg/telemetry"

// Load kinds.
const (
	kindLoad   = "load"
	kindReload = "reload"
)

// Telemetry records store events.
type Telemetry struct {
	tracer   trace.Tracer
	loads    metric.Int64Counter
	duration metric.Float64Histogram
	subjects metric.Int64Gauge
}

// Instrument subscribes to the store events of opts.Event and records
// a span and metrics for every load and reload.
// The returned func unsubscribes.
func Instrument(opts Options) (unsubscribe func(), err error) {
	if opts.Event == nil {
		return nil, errors.New("event manager is nil")
	}
	t, err := newTelemetry(opts)
	if err != nil {
		return nil, err
	}
	unsubs := []func(){
		event.Subscribe(opts.Event, 0, func(e *pex.StoreLoadedEvent) {
			t.record(context.Background(), kindLoad, e.Store, e.Took)
		}),
		event.Subscribe(opts.Event, 0, func(e *pex.StoreReloadedEvent) {
			t.record(context.Background(), kindReload, e.Current, 0)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}, nil
}

func newTelemetry(opts Options) (*Telemetry, error) {
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	meter := mp.Meter(instrumentationName)

	t := &Telemetry{tracer: tp.Tracer(instrumentationName)}
	var err1, err2, err3 error
	t.loads, err1 = meter.Int64Counter("pex.store.loads",
		metric.WithDescription("Number of data store loads"),
	)
	t.duration, err2 = meter.Float64Histogram("pex.store.load.duration",
		metric.WithDescription("Data store load duration"),
		metric.WithUnit("s"),
	)
	t.subjects, err3 = meter.Int64Gauge("pex.store.subjects",
		metric.WithDescription("Number of subjects in the data store in use"),
	)
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Telemetry) record(ctx context.Context, kind string, s datastore.Store, took time.Duration) {
	if s == nil {
		return
	}
	storeAttr := attribute.String("pex.store", s.Name())
	opts := []trace.SpanStartOption{trace.WithAttributes(storeAttr, attribute.String("pex.kind", kind))}
	if took > 0 {
		opts = append(opts, trace.WithTimestamp(time.Now().Add(-took)))
	}
	ctx, span := t.tracer.Start(ctx, "pex.store."+kind, opts...)
	defer span.End()

	t.loads.Add(ctx, 1, metric.WithAttributes(storeAttr, attribute.String("kind", kind)))
	if took > 0 {
		t.duration.Record(ctx, took.Seconds(), metric.WithAttributes(storeAttr))
	}
	for _, typ := range s.RegisteredTypes() {
		n := s.AllIdentifiers(typ).Cardinality()
		span.SetAttributes(attribute.Int("pex.subjects."+typ, n))
		t.subjects.Record(ctx, int64(n), metric.WithAttributes(storeAttr, attribute.String("type", typ)))
	}
}
