package httpclient

import "context"

// HTTPClientInterface is the verb surface shared by HTTPClient and wrappers
// built on top of it.
type HTTPClientInterface interface {
	// Do sends a request with an arbitrary method.
	Do(ctx context.Context, method string, opts RequestOptions) (*Response, error)

	// Get sends a GET request.
	Get(ctx context.Context, opts RequestOptions) (*Response, error)

	// Post sends a POST request with opts.Body encoded as JSON.
	Post(ctx context.Context, opts RequestOptions) (*Response, error)

	// Delete sends a DELETE request without a body.
	Delete(ctx context.Context, opts RequestOptions) (*Response, error)
}

var _ HTTPClientInterface = &HTTPClient{}
