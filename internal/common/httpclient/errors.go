package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tansive/rallyclient/internal/common/apperrors"
)

var (
	// ErrTransport matches every *TransportError.
	ErrTransport = apperrors.New("http request failed")
	// ErrNoParsedBody is returned by Response.Decode when the body was not JSON.
	ErrNoParsedBody = apperrors.New("response body is not JSON")
	// ErrDecode is returned when a JSON body does not fit the target type.
	ErrDecode = apperrors.New("unable to decode response")
)

// TransportError is returned when the server responds with a failure status.
type TransportError struct {
	StatusCode int    // HTTP status code of the response
	Method     string // upper-cased request method
	URL        string // full request URL
	Body       string // indented JSON body, or the raw body when it was not JSON
}

func newTransportError(r *Response, method, url string) *TransportError {
	body := string(r.Body)
	if r.HasParsedBody() {
		var buf bytes.Buffer
		if err := json.Indent(&buf, r.ParsedBody, "", "  "); err == nil {
			body = buf.String()
		}
	}
	return &TransportError{
		StatusCode: r.StatusCode,
		Method:     method,
		URL:        url,
		Body:       body,
	}
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("[%d] %s %s\n%s", e.StatusCode, e.Method, e.URL, e.Body)
}

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
