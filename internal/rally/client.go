// Package rally is a client for the Rally Web Services API (WSAPI v2.0).
//
// A Client wraps httpclient.HTTPClient with cookie tracking enabled and a
// pre-dispatch hook that adds the WSAPI security token as the "key" query
// parameter on every request that is not a GET. The token is fetched from
// security/authorize on first use and then reused for the lifetime of the
// client.
package rally

import (
	"context"
	"net/http"
	"sync"

	"github.com/tansive/rallyclient/internal/common/httpclient"
)

const (
	// DefaultURL is the Rally SaaS endpoint.
	DefaultURL = "https://rally1.rallydev.com"
	// APIPath is the prefix of every WSAPI endpoint.
	APIPath = "/slm/webservice/v2.0"
	// AuthorizeEndpoint returns the security token for the session.
	AuthorizeEndpoint = "security/authorize"
	// SecurityTokenParam is the query parameter that carries the token.
	SecurityTokenParam = "key"
)

// Client is a Rally WSAPI client. The cookie string and the security token are
// owned by one Client and are not shared. Concurrent first writes can each
// fetch a token; see securityToken.
type Client struct {
	http *httpclient.HTTPClient

	mu    sync.Mutex
	token string
}

// New creates a client for the Rally server at rallyURL. An empty rallyURL
// selects DefaultURL. opts.BeforeRequest, if set, runs after the security token
// has been added.
func New(credentials httpclient.Credentials, rallyURL string, opts ...httpclient.ClientOptions) *Client {
	if rallyURL == "" {
		rallyURL = DefaultURL
	}
	var clientOpts httpclient.ClientOptions
	if len(opts) > 0 {
		clientOpts = opts[0]
	}

	c := &Client{}
	next := clientOpts.BeforeRequest
	clientOpts.BeforeRequest = func(ctx context.Context, method string, ro httpclient.RequestOptions) (httpclient.RequestOptions, error) {
		ro, err := c.injectSecurityToken(ctx, method, ro)
		if err != nil || next == nil {
			return ro, err
		}
		return next(ctx, method, ro)
	}

	c.http = httpclient.NewClient(&httpclient.Config{
		ServerURL:   rallyURL,
		APIPath:     APIPath,
		Credentials: &credentials,
		Cookies:     true,
	}, clientOpts)
	return c
}

// Get sends a GET request. No security token is added.
func (c *Client) Get(ctx context.Context, opts httpclient.RequestOptions) (*httpclient.Response, error) {
	return c.http.Get(ctx, opts)
}

// Post sends a POST request with the security token.
func (c *Client) Post(ctx context.Context, opts httpclient.RequestOptions) (*httpclient.Response, error) {
	return c.http.Post(ctx, opts)
}

// Delete sends a DELETE request with the security token.
func (c *Client) Delete(ctx context.Context, opts httpclient.RequestOptions) (*httpclient.Response, error) {
	return c.http.Delete(ctx, opts)
}

// Do sends a request with an arbitrary method.
func (c *Client) Do(ctx context.Context, method string, opts httpclient.RequestOptions) (*httpclient.Response, error) {
	return c.http.Do(ctx, method, opts)
}

// Cookie returns the session cookie string captured so far.
func (c *Client) Cookie() string {
	return c.http.Cookie()
}

var _ httpclient.HTTPClientInterface = &Client{}

// injectSecurityToken puts the token first in the query string of every
// request that is not a GET, replacing any caller-supplied key.
func (c *Client) injectSecurityToken(ctx context.Context, method string, opts httpclient.RequestOptions) (httpclient.RequestOptions, error) {
	if method == http.MethodGet {
		return opts, nil
	}
	token, err := c.securityToken(ctx)
	if err != nil {
		return opts, err
	}
	params := httpclient.QueryParams{httpclient.Param(SecurityTokenParam, token)}
	opts.Params = append(params, opts.Params.Without(SecurityTokenParam)...)
	return opts, nil
}
