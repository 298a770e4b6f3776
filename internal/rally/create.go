package rally

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/sjson"

	"github.com/tansive/rallyclient/internal/common/httpclient"
)

// FeatureType is the WSAPI type path of features.
const FeatureType = "portfolioitem/feature"

// FeatureInput holds the fields of a feature to create.
type FeatureInput struct {
	Name        string
	Workspace   int64 // workspace ObjectID
	Project     int64 // project ObjectID
	State       string
	Description string
	// Attributes sets additional fields by sjson path, e.g. "Owner" or
	// "c_CustomField". Values are applied after the fields above.
	Attributes map[string]any
}

// Ref formats a WSAPI reference such as "workspace/12352608129".
func Ref(typePath string, objectID int64) string {
	return fmt.Sprintf("%s/%d", strings.ToLower(strings.Trim(typePath, "/")), objectID)
}

// Fields renders the feature as the JSON object sent under "feature".
func (in FeatureInput) Fields() (json.RawMessage, error) {
	if in.Name == "" {
		return nil, ErrInvalidInput.Msg("feature name is required")
	}
	if in.Workspace <= 0 || in.Project <= 0 {
		return nil, ErrInvalidInput.Msg("workspace and project object IDs are required")
	}

	fields := []byte(`{}`)
	set := func(path string, value any) {
		if fields == nil {
			return
		}
		var err error
		if fields, err = sjson.SetBytes(fields, path, value); err != nil {
			fields = nil
		}
	}
	set("name", in.Name)
	set("workspace", Ref("workspace", in.Workspace))
	set("project", Ref("project", in.Project))
	if in.State != "" {
		set("state", in.State)
	}
	if in.Description != "" {
		set("description", in.Description)
	}

	paths := make([]string, 0, len(in.Attributes))
	for p := range in.Attributes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		set(p, in.Attributes[p])
	}
	if fields == nil {
		return nil, ErrInvalidInput.Msg("unable to build feature fields")
	}
	return fields, nil
}

// Create posts fields to <typePath>/create wrapped as {payloadKey: fields} and
// returns the envelope as received. Errors reported inside the envelope are
// left to the caller.
func Create[T any](ctx context.Context, c *Client, typePath, payloadKey string, fields any) (*CreateResult[T], error) {
	resp, err := c.Post(ctx, httpclient.RequestOptions{
		Endpoint: strings.Trim(typePath, "/") + "/create",
		Body:     map[string]any{payloadKey: fields},
	})
	if err != nil {
		return nil, err
	}
	result, err := httpclient.Decode[CreateResult[T]](resp)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s create result", typePath)
	}
	return result, nil
}

// CreateFeature creates a feature and returns it. ErrCreateFailed is returned
// when Rally does not hand back the created object.
func (c *Client) CreateFeature(ctx context.Context, in FeatureInput) (*Feature, error) {
	fields, err := in.Fields()
	if err != nil {
		return nil, err
	}
	result, err := Create[Feature](ctx, c, FeatureType, "feature", fields)
	if err != nil {
		return nil, err
	}
	if result.CreateResult.Object == nil {
		return nil, ErrCreateFailed.MsgErr("unable to create feature", envelopeErrors(result.CreateResult.Result)...)
	}
	return result.CreateResult.Object, nil
}

func envelopeErrors(r Result) []error {
	errs := make([]error, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, errors.New(e))
	}
	return errs
}
