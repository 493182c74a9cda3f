package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const (
	defaultOTLPEndpoint = "http://localhost:4318"
	defaultOTLPPath     = "/v1/traces"
	serviceNamespace    = "multiverse"
)

var ErrInvalidOTLPEndpoint = errors.New("invalid OTLP endpoint")

type otlpEndpoint struct {
	hostport string
	path     string
	insecure bool
}

// SetupTracing installs the global tracer provider that the router and the
// waitlist repository spans report to. It returns nil when tracing is off.
func SetupTracing(ctx context.Context, logger *log.Logger) (func(context.Context) error, error) {
	if !utils.IsTracingEnabled() {
		return nil, nil
	}

	raw := utils.GetEnvTrimmedOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", defaultOTLPEndpoint)
	endpoint, err := parseOTLPEndpoint(raw)
	if err != nil {
		return nil, err
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint.hostport),
		otlptracehttp.WithURLPath(endpoint.path),
	}
	if endpoint.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("waitlist tracing exporter: %w", err)
	}

	serviceName := utils.OTelServiceName()
	res, err := newTracingResource(ctx, serviceName, GetAppEnv())
	if err != nil {
		return nil, fmt.Errorf("waitlist tracing resource: %w", err)
	}

	ratio := utils.TraceSampleRatio()
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("OpenTelemetry tracing enabled",
		"service", serviceName,
		"endpoint", raw,
		"sample_ratio", ratio,
	)

	return tp.Shutdown, nil
}

func newTracingResource(ctx context.Context, serviceName, appEnv string) (*resource.Resource, error) {
	if appEnv == "" {
		appEnv = "development"
	}
	return resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceNamespace(serviceNamespace),
			semconv.DeploymentEnvironmentName(appEnv),
		),
	)
}

// parseOTLPEndpoint accepts http(s)://host:port[/path] or a bare host:port.
func parseOTLPEndpoint(raw string) (otlpEndpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return otlpEndpoint{}, fmt.Errorf("%w: empty", ErrInvalidOTLPEndpoint)
	}

	if !strings.Contains(raw, "://") {
		// otlptracehttp.WithEndpoint takes host:port only.
		if strings.ContainsAny(raw, "/?#") {
			return otlpEndpoint{}, fmt.Errorf("%w %q: a path needs a scheme, e.g. http://host:port/path", ErrInvalidOTLPEndpoint, raw)
		}
		return otlpEndpoint{hostport: raw, path: defaultOTLPPath, insecure: true}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return otlpEndpoint{}, fmt.Errorf("%w %q: %v", ErrInvalidOTLPEndpoint, raw, err)
	}
	if u.Host == "" {
		return otlpEndpoint{}, fmt.Errorf("%w %q: missing host", ErrInvalidOTLPEndpoint, raw)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return otlpEndpoint{}, fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidOTLPEndpoint, raw)
	}

	path := u.EscapedPath()
	if path == "" || path == "/" {
		path = defaultOTLPPath
	}

	return otlpEndpoint{hostport: u.Host, path: path, insecure: scheme == "http"}, nil
}
