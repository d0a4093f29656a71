package exchange

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/swapgrid/pkg/lifecycle"
	"github.com/vango-dev/swapgrid/pkg/telemetry"
)

// Transport sends a request and reports the outcome through done. done may
// be called from any goroutine; the Dispatcher moves it onto the scheduler.
type Transport interface {
	Send(ctx context.Context, req *lifecycle.Request, done func(*lifecycle.Response, error))
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *lifecycle.Request, done func(*lifecycle.Response, error))

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, req *lifecycle.Request, done func(*lifecycle.Response, error)) {
	f(ctx, req, done)
}

// HTTPConfig configures an HTTPTransport.
type HTTPConfig struct {
	// BaseURL is prefixed to relative request URLs.
	BaseURL string

	// Timeout bounds one exchange.
	// Default: 10s
	Timeout time.Duration

	// Tracer traces each exchange.
	// Default: telemetry.Tracer()
	Tracer trace.Tracer
}

// HTTPTransport performs exchanges over HTTP. Failed exchanges are never
// retried.
type HTTPTransport struct {
	client *resty.Client
	tracer trace.Tracer
}

// NewHTTPTransport creates an HTTPTransport.
func NewHTTPTransport(cfg HTTPConfig) *HTTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Tracer == nil {
		cfg.Tracer = telemetry.Tracer()
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("HX-Request", "true")
	return &HTTPTransport{client: client, tracer: cfg.Tracer}
}

// Send performs req on a new goroutine.
func (t *HTTPTransport) Send(ctx context.Context, req *lifecycle.Request, done func(*lifecycle.Response, error)) {
	go func() {
		resp, err := t.do(ctx, req)
		done(resp, err)
	}()
}

func (t *HTTPTransport) do(ctx context.Context, req *lifecycle.Request) (*lifecycle.Response, error) {
	ctx, span := t.tracer.Start(ctx, "exchange "+req.Verb+" "+req.Path(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Verb),
			attribute.String("http.url", req.URL),
			attribute.String("swapgrid.swap", req.Swap),
			attribute.String("swapgrid.trigger", req.Trigger),
		),
	)
	defer span.End()

	r := t.client.R().SetContext(ctx)
	for k, vs := range req.Headers {
		r.SetHeaderMultiValues(map[string][]string{k: vs})
	}
	if req.Verb == http.MethodGet {
		r.SetQueryParamsFromValues(req.Params)
	} else {
		r.SetFormDataFromValues(req.Params)
	}

	resp, err := r.Execute(req.Verb, req.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	if resp.IsError() {
		span.SetStatus(codes.Error, resp.Status())
	}
	return &lifecycle.Response{
		Status: resp.StatusCode(),
		Body:   resp.String(),
		Header: resp.Header(),
	}, nil
}
