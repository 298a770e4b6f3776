package httpclient

import (
	"bytes"
	"encoding/json"
	"net/http"

	jsonitor "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
)

var jsonAPI = jsonitor.ConfigCompatibleWithStandardLibrary

// Response is the result of a successful request.
type Response struct {
	StatusCode int             // HTTP status code
	Header     http.Header     // response headers
	Body       []byte          // raw response body
	ParsedBody json.RawMessage // body as JSON, nil if the body is not valid JSON
}

func newResponse(resp *http.Response, raw []byte) *Response {
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
		ParsedBody: parseJSON(raw),
	}
}

// parseJSON returns raw as JSON when it is valid JSON and nil otherwise.
func parseJSON(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil
	}
	return json.RawMessage(trimmed)
}

// HasParsedBody reports whether the response body was valid JSON.
func (r *Response) HasParsedBody() bool {
	return r != nil && r.ParsedBody != nil
}

// Decode unmarshals the parsed body into v. It returns ErrNoParsedBody if the
// body was not JSON.
func (r *Response) Decode(v any) error {
	if !r.HasParsedBody() {
		return ErrNoParsedBody
	}
	if err := jsonAPI.Unmarshal(r.ParsedBody, v); err != nil {
		return ErrDecode.MsgErr("unable to decode response body", err)
	}
	return nil
}

// Get looks up a gjson path in the parsed body. The result does not exist when
// the body was not JSON.
func (r *Response) Get(path string) gjson.Result {
	if !r.HasParsedBody() {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.ParsedBody, path)
}

// Decode is the typed form of Response.Decode.
func Decode[T any](r *Response) (*T, error) {
	var v T
	if err := r.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
