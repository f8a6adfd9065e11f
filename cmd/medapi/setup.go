package main

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fastbmktdev/medical-by-fastb-sub001/app/services"
	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/config"
	"github.com/fastbmktdev/medical-by-fastb-sub001/internal/logging"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/formdata"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/server"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/shim"
	"github.com/fastbmktdev/medical-by-fastb-sub001/pkg/upload"
)

// loadConfig loads and validates the project configuration.
func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the default.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	w, tty := logging.Stderr()
	logger, _, err := logging.New(w, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Color:  tty,
	})
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// serverConfig maps the project configuration onto the server.
func serverConfig(cfg *config.Config) server.Config {
	sc := server.Config{
		Addr:       cfg.Server.Addr,
		Host:       cfg.Server.Host,
		Prefix:     cfg.Routes.Prefix,
		Production: cfg.IsProduction(),
		Body: shim.BodyOptions{
			MaxBytes: cfg.Body.MaxBytes,
			RawPaths: cfg.Routes.RawBodyPaths,
		},
		Limits: formdata.Limits{
			MaxFileBytes:    cfg.Multipart.MaxFileBytes,
			MaxRequestBytes: cfg.Multipart.MaxRequestBytes,
			MaxParts:        cfg.Multipart.MaxParts,
			MaxFieldBytes:   cfg.Multipart.MaxFieldBytes,
		},
		TrustedProxies:  cfg.Server.TrustedProxies,
		ReadTimeout:     cfg.ReadTimeout(),
		WriteTimeout:    cfg.WriteTimeout(),
		IdleTimeout:     cfg.IdleTimeout(),
		ShutdownTimeout: cfg.ShutdownTimeout(),
		MetricsPath:     cfg.Metrics.Path,
		Tracing:         cfg.Tracing.Enabled,
		TracerName:      cfg.Tracing.ServiceName,
		LogRequests:     cfg.Log.Requests,
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sc.Registry = reg
	}
	return sc
}

// newServices builds the collaborators route modules use.
func newServices(cfg *config.Config) (*services.Services, error) {
	store, err := upload.Open(upload.Options{
		Kind:      cfg.Uploads.Store,
		Dir:       cfg.UploadsPath(),
		Bucket:    cfg.Uploads.Bucket,
		KeyPrefix: cfg.Uploads.KeyPrefix,
		S3: upload.S3Options{
			Region:   cfg.Uploads.Region,
			Endpoint: cfg.Uploads.Endpoint,
		},
		MaxFileSize: cfg.Multipart.MaxFileBytes,
	})
	if err != nil {
		return nil, err
	}

	return &services.Services{
		Hospitals: services.NewHospitalStore(),
		Uploads:   store,
		UploadConfig: upload.Config{
			MaxFileSize:  cfg.Multipart.MaxFileBytes,
			AllowedTypes: cfg.Uploads.AllowedTypes,
		},
		StripeWebhookSecret: cfg.Webhooks.StripeSecret,
	}, nil
}

// setupTracing installs an OTLP/gRPC tracer provider and W3C propagation.
// The exporter is configured through the standard OTEL_EXPORTER_OTLP_*
// variables. The returned function flushes and stops the provider.
func setupTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if !cfg.Tracing.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.Tracing.ServiceName),
			attribute.String("service.version", version),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
