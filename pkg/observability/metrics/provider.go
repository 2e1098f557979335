package metrics

import (
	"context"
	"time"

	appconfig "github.com/Sokol111/ecommerce-choreography/pkg/core/config"
	otelinternal "github.com/Sokol111/ecommerce-choreography/pkg/observability/internal"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// newProvider exports periodically over OTLP. Without an endpoint instruments record but nothing is read.
func newProvider(ctx context.Context, log *zap.Logger, endpoint string, interval time.Duration, appCfg appconfig.AppConfig) (*sdkmetric.MeterProvider, error) {
	res, err := otelinternal.NewResource(ctx, appCfg)
	if err != nil {
		return nil, err
	}

	if endpoint == "" {
		log.Info("metrics: no collector endpoint, running in local mode")
		return sdkmetric.NewMeterProvider(sdkmetric.WithResource(res)), nil
	}

	exp, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}
