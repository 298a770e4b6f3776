package httpclient

import (
	"net/http"
	"net/http/httptest"
)

// HandlerTransport is an http.RoundTripper that serves every request with an
// in-process handler. It uses httptest.NewRecorder, so no sockets are opened.
type HandlerTransport struct {
	Handler http.Handler
}

// RoundTrip implements http.RoundTripper.
func (t *HandlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rr := httptest.NewRecorder()
	t.Handler.ServeHTTP(rr, req)
	resp := rr.Result()
	resp.Request = req
	return resp, nil
}

// NewTestClient creates a client whose requests are served by handler.
// opts.HTTPClient is ignored.
func NewTestClient(config Configurator, handler http.Handler, opts ...ClientOptions) *HTTPClient {
	var clientOpts ClientOptions
	if len(opts) > 0 {
		clientOpts = opts[0]
	}
	clientOpts.HTTPClient = &http.Client{Transport: &HandlerTransport{Handler: handler}}
	return NewClient(config, clientOpts)
}
