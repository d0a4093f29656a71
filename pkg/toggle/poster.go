package toggle

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/vango-dev/swapgrid/pkg/lifecycle"
)

// Payload is the body of a toggle request.
type Payload struct {
	ItemIdentity        int    `json:"itemIdentity" validate:"required,gt=0"`
	TargetListName      string `json:"targetListName" validate:"required,oneof=include exclude"`
	DesiredEnabledState bool   `json:"desiredEnabledState"`
}

// Poster delivers a toggle request. done may be called on any goroutine.
type Poster interface {
	Post(ctx context.Context, p Payload, done func(*lifecycle.Response, error))
}

// PosterFunc adapts a function to Poster.
type PosterFunc func(ctx context.Context, p Payload, done func(*lifecycle.Response, error))

// Post implements Poster.
func (f PosterFunc) Post(ctx context.Context, p Payload, done func(*lifecycle.Response, error)) {
	f(ctx, p, done)
}

// HTTPPoster posts toggle requests as JSON. Requests are never retried.
type HTTPPoster struct {
	client *resty.Client
	url    string
}

// NewHTTPPoster creates an HTTPPoster posting to url, which may be relative
// to baseURL.
func NewHTTPPoster(baseURL, url string, timeout time.Duration) *HTTPPoster {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/html, application/json")
	return &HTTPPoster{client: client, url: url}
}

// Post implements Poster on a new goroutine.
func (h *HTTPPoster) Post(ctx context.Context, p Payload, done func(*lifecycle.Response, error)) {
	go func() {
		resp, err := h.client.R().
			SetContext(ctx).
			SetBody(p).
			Post(h.url)
		if err != nil {
			done(nil, err)
			return
		}
		done(&lifecycle.Response{
			Status: resp.StatusCode(),
			Body:   resp.String(),
			Header: resp.Header(),
		}, nil)
	}()
}
