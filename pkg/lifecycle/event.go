// Package lifecycle defines the tagged events emitted around a partial-page
// update and the synchronous bus that delivers them.
//
// The order for one exchange is:
//
//	ConfigRequest → BeforeExchange → AfterRequest → AfterSwap
//
// with SendError replacing everything after BeforeExchange when the transport
// fails, and ResponseError replacing AfterRequest and AfterSwap when the
// server answers with a non-2xx status. A BeforeExchange handler may cancel
// the exchange; nothing further is emitted for it unless the canceller
// completes the exchange itself (the request cache does exactly that).
package lifecycle

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// Kind identifies a lifecycle event variant.
type Kind uint8

const (
	KindConfigRequest Kind = iota + 1
	KindBeforeExchange
	KindAfterRequest
	KindAfterSwap
	KindSendError
	KindResponseError
)

// String returns the wire name of the event kind.
func (k Kind) String() string {
	switch k {
	case KindConfigRequest:
		return "config-request"
	case KindBeforeExchange:
		return "before-exchange"
	case KindAfterRequest:
		return "after-request"
	case KindAfterSwap:
		return "after-swap"
	case KindSendError:
		return "send-error"
	case KindResponseError:
		return "response-error"
	default:
		return "unknown"
	}
}

// Event is implemented by every lifecycle variant.
type Event interface {
	Kind() Kind
}

// Request is one partial-update exchange as built from element attributes.
type Request struct {
	Elt     *vdom.VNode // Triggering element
	Target  *vdom.VNode // Computed swap target
	Verb    string      // "GET" or "POST"
	URL     string
	Params  url.Values
	Headers http.Header
	Swap    string // Swap mode, e.g. "innerHTML"
	Trigger string // Event name that triggered the exchange

	// CacheKey is stashed during ConfigRequest by the request cache.
	CacheKey string
}

// Path returns the URL path of the request, or the raw URL if unparseable.
func (r *Request) Path() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}
	return u.Path
}

// Response is a server answer to a Request.
type Response struct {
	Status int
	Body   string
	Header http.Header
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// ErrorDetail is the structured error payload a server may return.
type ErrorDetail struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Path   string `json:"path"`
}

// ParseErrorDetail extracts an ErrorDetail from a JSON body. It returns nil
// when the body is not JSON or carries none of the known fields.
func ParseErrorDetail(body string) *ErrorDetail {
	var raw struct {
		Status  int    `json:"status"`
		Detail  string `json:"detail"`
		Path    string `json:"path"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil
	}
	d := &ErrorDetail{Status: raw.Status, Detail: raw.Detail, Path: raw.Path}
	if d.Detail == "" {
		d.Detail = raw.Error
	}
	if d.Detail == "" {
		d.Detail = raw.Message
	}
	if d.Status == 0 && d.Detail == "" && d.Path == "" {
		return nil
	}
	return d
}

// ConfigRequest is emitted before dispatch; handlers may adjust the request.
type ConfigRequest struct {
	Request *Request
}

// BeforeExchange is emitted just before the request goes out. It carries
// the triggering element and computed target through Request.
type BeforeExchange struct {
	Request   *Request
	cancelled bool
}

// Cancel stops the real request from being sent.
func (e *BeforeExchange) Cancel() { e.cancelled = true }

// Cancelled reports whether a handler cancelled the exchange.
func (e *BeforeExchange) Cancelled() bool { return e.cancelled }

// AfterRequest is emitted once a 2xx response is in hand, before the swap.
type AfterRequest struct {
	Request  *Request
	Response *Response
}

// AfterSwap is emitted after the payload has been swapped into the page.
// Target is the swapped region; Inserted lists the top-level nodes the swap
// added.
type AfterSwap struct {
	Request  *Request
	Target   *vdom.VNode
	Inserted []*vdom.VNode
}

// SendError is emitted when the transport fails. Err is the raw transport
// error.
type SendError struct {
	Request *Request
	Err     error
}

// ResponseError is emitted for a non-2xx response. Detail is nil when the
// body could not be parsed.
type ResponseError struct {
	Request  *Request
	Response *Response
	Detail   *ErrorDetail
}

func (*ConfigRequest) Kind() Kind  { return KindConfigRequest }
func (*BeforeExchange) Kind() Kind { return KindBeforeExchange }
func (*AfterRequest) Kind() Kind   { return KindAfterRequest }
func (*AfterSwap) Kind() Kind      { return KindAfterSwap }
func (*SendError) Kind() Kind      { return KindSendError }
func (*ResponseError) Kind() Kind  { return KindResponseError }
