package rally

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tansive/rallyclient/internal/common/httpclient"
)

const securityTokenPath = "OperationResult.SecurityToken"

// securityToken returns the cached token, fetching it on first use. The fetch
// runs without holding the lock: two callers that both miss the cache each
// fetch, and the later result is kept.
func (c *Client) securityToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	log.Debug().Str("endpoint", AuthorizeEndpoint).Msg("fetching security token")
	resp, err := c.http.Get(ctx, httpclient.RequestOptions{Endpoint: AuthorizeEndpoint})
	if err != nil {
		return "", ErrSecurityToken.Err(errors.Wrap(err, "authorize request failed"))
	}

	token = resp.Get(securityTokenPath).String()
	if token == "" {
		return "", ErrSecurityToken
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return token, nil
}
