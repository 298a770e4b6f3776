// Package httpclient provides a small JSON-over-HTTP client for REST APIs.
// It resolves endpoints against a server URL and an API path prefix, adds basic
// authentication, carries the cookies set by the previous response, and parses
// JSON responses leniently. Vendor-specific behaviour plugs in through a
// RequestHook that can rewrite a request before it is built.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Credentials holds basic authentication details.
type Credentials struct {
	Username string
	Password string
}

// Configurator provides the connection settings for a client. Values are read
// once, when the client is created.
type Configurator interface {
	GetServerURL() string
	GetAPIPath() string
	GetCredentials() *Credentials
	TrackCookies() bool
}

// Config is a plain Configurator.
type Config struct {
	ServerURL   string       // base URL, e.g. https://rally1.rallydev.com
	APIPath     string       // prefix prepended to every endpoint unless ignored
	Credentials *Credentials // optional basic auth credentials
	Cookies     bool         // replay cookies set by the previous response
}

func (c *Config) GetServerURL() string         { return c.ServerURL }
func (c *Config) GetAPIPath() string           { return c.APIPath }
func (c *Config) GetCredentials() *Credentials { return c.Credentials }
func (c *Config) TrackCookies() bool           { return c.Cookies }

// RequestHook is called before each request is built. It may return modified
// options; an error aborts the request before anything is sent.
type RequestHook func(ctx context.Context, method string, opts RequestOptions) (RequestOptions, error)

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	DisableCertValidation bool         // If true, skips TLS certificate validation
	HTTPClient            *http.Client // Optional underlying client, used as is
	BeforeRequest         RequestHook  // Optional pre-dispatch hook
}

type clientConfig struct {
	serverURL   string
	apiPath     string
	credentials *Credentials
	cookies     bool
}

// HTTPClient sends requests for a single session. The stored cookie string is
// owned by this client; concurrent calls may overwrite it in any order.
type HTTPClient struct {
	config        clientConfig
	httpClient    *http.Client
	beforeRequest RequestHook

	mu     sync.Mutex
	cookie string
}

// NewClient creates a new HTTP client from the given configuration.
func NewClient(config Configurator, opts ...ClientOptions) *HTTPClient {
	var clientOpts ClientOptions
	if len(opts) > 0 {
		clientOpts = opts[0]
	}

	cfg := clientConfig{
		serverURL: config.GetServerURL(),
		apiPath:   strings.TrimRight(config.GetAPIPath(), "/"),
		cookies:   config.TrackCookies(),
	}
	if creds := config.GetCredentials(); creds != nil {
		cp := *creds
		cfg.credentials = &cp
	}

	httpClient := clientOpts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
		if clientOpts.DisableCertValidation {
			httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			}
		}
	}

	return &HTTPClient{
		config:        cfg,
		httpClient:    httpClient,
		beforeRequest: clientOpts.BeforeRequest,
	}
}

// Get sends a GET request.
func (c *HTTPClient) Get(ctx context.Context, opts RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodGet, opts)
}

// Post sends a POST request with opts.Body encoded as JSON.
func (c *HTTPClient) Post(ctx context.Context, opts RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPost, opts)
}

// Delete sends a DELETE request. The body is never sent.
func (c *HTTPClient) Delete(ctx context.Context, opts RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, opts)
}

// Do sends a request with the given method. It returns a *TransportError when
// the server answers with a failure status. A body that is not JSON is not an
// error; the returned Response then has no ParsedBody.
func (c *HTTPClient) Do(ctx context.Context, method string, opts RequestOptions) (*Response, error) {
	method = strings.ToUpper(method)
	if method == "" {
		method = http.MethodGet
	}

	if c.beforeRequest != nil {
		var err error
		opts, err = c.beforeRequest(ctx, method, opts)
		if err != nil {
			return nil, err
		}
	}

	u, err := c.buildURL(opts)
	if err != nil {
		return nil, err
	}
	body, err := encodeBody(method, opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = c.buildHeaders()

	log.Debug().Str("method", method).Str("host", u.Host).Str("path", u.Path).Msg("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if setCookies := resp.Header.Values("Set-Cookie"); len(setCookies) > 0 {
		c.setCookie(parseCookies(setCookies))
	}

	r := newResponse(resp, raw)
	log.Debug().Str("method", method).Str("path", u.Path).Int("status", r.StatusCode).Bool("json", r.HasParsedBody()).Msg("received response")

	if !isSuccess(r.StatusCode) {
		return nil, newTransportError(r, method, u.String())
	}
	return r, nil
}

// encodeBody returns the request body for methods that carry one.
func encodeBody(method string, body any) (io.Reader, error) {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil, nil
	}

	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 400
}
