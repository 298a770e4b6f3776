package rally

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/tansive/rallyclient/internal/common/httpclient"
)

// ProjectType is the WSAPI type path of projects.
const ProjectType = "project"

// QueryOptions are the WSAPI query parameters. Zero values are not sent.
type QueryOptions struct {
	Query     string   // e.g. (Name = "Wombat")
	Fetch     []string // attributes to return, "true" for all
	Order     string
	PageSize  int
	Start     int // 1-based start index
	Workspace string
	Project   string
}

// Params renders the options in a fixed order.
func (q QueryOptions) Params() httpclient.QueryParams {
	var p httpclient.QueryParams
	if q.Query != "" {
		p = p.Add("query", q.Query)
	}
	if len(q.Fetch) > 0 {
		p = p.Add("fetch", strings.Join(q.Fetch, ","))
	}
	if q.Order != "" {
		p = p.Add("order", q.Order)
	}
	if q.PageSize > 0 {
		p = p.Add("pagesize", strconv.Itoa(q.PageSize))
	}
	if q.Start > 0 {
		p = p.Add("start", strconv.Itoa(q.Start))
	}
	if q.Workspace != "" {
		p = p.Add("workspace", q.Workspace)
	}
	if q.Project != "" {
		p = p.Add("project", q.Project)
	}
	return p
}

// QueryRaw runs a query and returns the response without decoding it.
func (c *Client) QueryRaw(ctx context.Context, typePath string, q QueryOptions) (*httpclient.Response, error) {
	return c.Get(ctx, httpclient.RequestOptions{
		Endpoint: strings.Trim(typePath, "/"),
		Params:   q.Params(),
	})
}

// Query returns one page of objects of typePath. Only the requested page is
// fetched. ErrQueryFailed is returned when Rally reports errors in the envelope.
func Query[T any](ctx context.Context, c *Client, typePath string, q QueryOptions) (*QueryResult[T], error) {
	resp, err := c.QueryRaw(ctx, typePath, q)
	if err != nil {
		return nil, err
	}
	result, err := httpclient.Decode[QueryResult[T]](resp)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s query result", typePath)
	}
	if errs := result.QueryResult.Errors; len(errs) > 0 {
		return nil, ErrQueryFailed.Err(envelopeErrors(result.QueryResult.Result)...)
	}
	return result, nil
}

// QueryProjects queries projects.
func (c *Client) QueryProjects(ctx context.Context, q QueryOptions) (*QueryResult[Project], error) {
	return Query[Project](ctx, c, ProjectType, q)
}
