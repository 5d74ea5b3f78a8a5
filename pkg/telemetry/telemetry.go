// Package telemetry records OpenTelemetry traces and metrics of data store loads.
package telemetry

import (
	"context"
	"fmt"

	"github.com/honeycombio/otel-config-go/otelconfig"

	"go.minekube.com/pex/pkg/pex"
	"go.minekube.com/pex/pkg/version"
)

// Init configures the global OpenTelemetry providers from the standard
// OTEL_* environment variables if telemetry is enabled in cfg.
func Init(ctx context.Context, cfg *pex.Config) (cleanup func(), err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}
	cleanup, err = otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName("pex"),
		otelconfig.WithServiceVersion(version.String()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	return cleanup, nil
}
