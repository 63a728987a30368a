package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	reportsGenerated  metric.Int64Counter
	reportFailures    metric.Int64Counter
	transactions      metric.Int64Counter
	insufficientFunds metric.Int64Counter
	rateLimitAllowed  metric.Int64Counter
	rateLimitDenied   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "credicheck"
	}
	meter := provider.Meter(name)

	reportsGenerated, err := meter.Int64Counter("credicheck_reports_generated_total")
	if err != nil {
		return nil, err
	}
	reportFailures, err := meter.Int64Counter("credicheck_report_failures_total")
	if err != nil {
		return nil, err
	}
	transactions, err := meter.Int64Counter("credicheck_transactions_total")
	if err != nil {
		return nil, err
	}
	insufficientFunds, err := meter.Int64Counter("credicheck_insufficient_funds_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("credicheck_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("credicheck_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		reportsGenerated:  reportsGenerated,
		reportFailures:    reportFailures,
		transactions:      transactions,
		insufficientFunds: insufficientFunds,
		rateLimitAllowed:  rateLimitAllowed,
		rateLimitDenied:   rateLimitDenied,
	}, nil
}

// RecordReportGenerated increments generated report counts per bureau.
func (m *Metrics) RecordReportGenerated(ctx context.Context, bureau string) {
	if m == nil {
		return
	}
	m.reportsGenerated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bureau", strings.TrimSpace(bureau)),
	))
}

// RecordReportFailure increments per-bureau generation failures.
func (m *Metrics) RecordReportFailure(ctx context.Context, bureau, reason string) {
	if m == nil {
		return
	}
	m.reportFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bureau", strings.TrimSpace(bureau)),
		attribute.String("reason", strings.TrimSpace(reason)),
	))
}

// RecordTransaction increments transaction counts per funding method and purpose.
func (m *Metrics) RecordTransaction(ctx context.Context, method, purpose string) {
	if m == nil {
		return
	}
	m.transactions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", strings.TrimSpace(method)),
		attribute.String("purpose", strings.TrimSpace(purpose)),
	))
}

// RecordInsufficientFunds increments rejected wallet debits.
func (m *Metrics) RecordInsufficientFunds(ctx context.Context) {
	if m == nil {
		return
	}
	m.insufficientFunds.Add(ctx, 1)
}

// RecordRateLimitAllowed increments rate limit allow counts.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
	))
}

// RecordRateLimitDenied increments rate limit deny counts.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}
