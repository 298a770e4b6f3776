package httpclient

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// QueryParam is a single query key with zero or more values. A param with no
// values is omitted from the URL; a param with several values repeats the key.
type QueryParam struct {
	Key    string
	Values []string
}

// QueryParams is an ordered list of query parameters. Order is preserved in
// the built URL.
type QueryParams []QueryParam

// Param returns a QueryParam with the given key and values.
func Param(key string, values ...string) QueryParam {
	return QueryParam{Key: key, Values: values}
}

// Add appends a key with one or more values and returns the extended list.
func (p QueryParams) Add(key string, values ...string) QueryParams {
	return append(p, QueryParam{Key: key, Values: values})
}

// Without returns a copy of p with every entry for key removed.
func (p QueryParams) Without(key string) QueryParams {
	out := make(QueryParams, 0, len(p))
	for _, qp := range p {
		if qp.Key != key {
			out = append(out, qp)
		}
	}
	return out
}

// Get returns the first value for key, or "" if there is none.
func (p QueryParams) Get(key string) string {
	for _, qp := range p {
		if qp.Key == key && len(qp.Values) > 0 {
			return qp.Values[0]
		}
	}
	return ""
}

// Encode renders the params in order using standard query encoding.
func (p QueryParams) Encode() string {
	var b strings.Builder
	for _, qp := range p {
		k := url.QueryEscape(qp.Key)
		for _, v := range qp.Values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// RequestOptions describes one logical request.
type RequestOptions struct {
	Endpoint      string      // endpoint path, a leading slash is ignored
	Params        QueryParams // optional query parameters
	Body          any         // optional body, JSON-encoded for POST/PUT/PATCH
	IgnoreAPIPath bool        // resolve Endpoint against the server URL without the API path
}

// buildURL resolves the request against the configured server URL.
func (c *HTTPClient) buildURL(opts RequestOptions) (*url.URL, error) {
	base, err := url.Parse(c.config.serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	endpoint := strings.TrimPrefix(opts.Endpoint, "/")
	if !opts.IgnoreAPIPath {
		endpoint = c.config.apiPath + "/" + endpoint
	}
	ref, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", opts.Endpoint, err)
	}
	u := base.ResolveReference(ref)

	if q := opts.Params.Encode(); q != "" {
		if u.RawQuery != "" {
			u.RawQuery += "&" + q
		} else {
			u.RawQuery = q
		}
	}
	return u, nil
}

// buildHeaders assembles the static headers plus any stored cookie.
func (c *HTTPClient) buildHeaders() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	if auth := c.buildAuthorizationHeader(); auth != "" {
		h.Set("Authorization", auth)
	}
	if c.config.cookies {
		if cookie := c.Cookie(); cookie != "" {
			h.Set("Cookie", cookie)
		}
	}
	return h
}

func (c *HTTPClient) buildAuthorizationHeader() string {
	creds := c.config.credentials
	if creds == nil {
		return ""
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds.Username+":"+creds.Password))
}
