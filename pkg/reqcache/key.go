package reqcache

import (
	"net/url"

	"github.com/vango-dev/swapgrid/pkg/lifecycle"
)

// DeriveKey returns override if set, else "VERB path?params" with the URL's
// own query merged with the request parameters and sorted by name.
func DeriveKey(req *lifecycle.Request, override string) string {
	if override != "" {
		return override
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		return req.Verb + " " + req.URL
	}
	q := u.Query()
	for k, vs := range req.Params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return req.Verb + " " + u.String()
}
