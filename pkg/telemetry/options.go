package telemetry

import (
	"github.com/robinbraemer/event"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Options contains configuration options for instrumentation.
type Options struct {
	// Event is the event manager store events are subscribed on. (required)
	Event event.Manager
	// MeterProvider defaults to the global meter provider.
	MeterProvider metric.MeterProvider
	// TracerProvider defaults to the global tracer provider.
	TracerProvider trace.TracerProvider
}
