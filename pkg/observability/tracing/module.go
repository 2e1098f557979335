package tracing

import (
	"context"

	appconfig "github.com/Sokol111/ecommerce-choreography/pkg/core/config"
	"github.com/Sokol111/ecommerce-choreography/pkg/core/health"
	"github.com/Sokol111/ecommerce-choreography/pkg/http/middleware"
	otelconfig "github.com/Sokol111/ecommerce-choreography/pkg/observability/config"
	otelinternal "github.com/Sokol111/ecommerce-choreography/pkg/observability/internal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type providerParams struct {
	fx.In
	Lc        fx.Lifecycle
	Log       *zap.Logger
	Cfg       otelconfig.Config
	AppCfg    appconfig.AppConfig
	Readiness health.ComponentManager
}

// NewTracingModule provides trace.TracerProvider and the HTTP server span middleware. When tracing is
// disabled the provider is a noop, so producers and consumers can depend on it unconditionally.
func NewTracingModule() fx.Option {
	return fx.Options(
		fx.Provide(
			func(p providerParams) (trace.TracerProvider, error) {
				if !p.Cfg.Tracing.Enabled {
					p.Log.Info("tracing: disabled")
					return noop.NewTracerProvider(), nil
				}
				return provideTracerProvider(p)
			},
		),
		middleware.Provide(func(cfg otelconfig.Config, appCfg appconfig.AppConfig, tp trace.TracerProvider) middleware.Middleware {
			if !cfg.Tracing.Enabled {
				return middleware.Middleware{}
			}
			return provideHTTPMiddleware(appCfg, tp)
		}),
		fx.Invoke(func(trace.TracerProvider) {}),
	)
}

func provideTracerProvider(p providerParams) (trace.TracerProvider, error) {
	tp, err := newTracerProvider(context.Background(), p.Log, p.Cfg, p.AppCfg)
	if err != nil {
		return nil, err
	}

	markReady := p.Readiness.AddComponent(otelconfig.TracingComponentName)

	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			otel.SetTracerProvider(tp)
			otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
				propagation.TraceContext{},
				propagation.Baggage{},
			))
			p.Log.Info("tracing initialized",
				zap.String("endpoint", p.Cfg.OtelCollectorEndpoint),
				zap.Float64("sample_ratio", p.Cfg.Tracing.SampleRatio))
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, otelconfig.DefaultShutdownTimeout)
			defer cancel()
			return tp.Shutdown(shutdownCtx)
		},
	})

	return tp, nil
}

// provideHTTPMiddleware runs right after recovery so the server span is live when the trace origin reads it.
func provideHTTPMiddleware(appCfg appconfig.AppConfig, tp trace.TracerProvider) middleware.Middleware {
	return middleware.Middleware{
		Priority: 20,
		Handler: otelhttp.NewMiddleware(appCfg.ServiceName,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithPropagators(propagation.TraceContext{}),
			otelhttp.WithFilter(otelinternal.FilterPaths),
		),
	}
}
