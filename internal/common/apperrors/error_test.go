package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	ErrBase := New("base error")
	assert.Equal(t, "base error", ErrBase.Error())
	assert.ErrorIs(t, ErrBase, ErrBase)

	ErrFirst := ErrBase.New("first level")
	assert.Equal(t, "first level", ErrFirst.Error())
	assert.ErrorIs(t, ErrFirst, ErrBase)
	assert.NotErrorIs(t, ErrBase, ErrFirst)

	ErrOther := New("other error")
	ErrOtherMsg := ErrOther.Msg("other error msg")
	wrapped := ErrFirst.Err(ErrOtherMsg)
	assert.Equal(t, "first level", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrBase)
	assert.ErrorIs(t, wrapped, ErrFirst)
	assert.ErrorIs(t, wrapped, ErrOther)
	assert.ErrorIs(t, wrapped, ErrOtherMsg)

	goErr := fmt.Errorf("go error")
	pkgErr := errors.Wrap(goErr, "pkg error")
	wrapped = ErrFirst.MsgErr("msg", pkgErr)
	assert.Equal(t, "msg", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrBase)
	assert.ErrorIs(t, wrapped, goErr)
	assert.Len(t, wrapped.UnwrapAll(), 2)
}

func TestStatusCodeIsInherited(t *testing.T) {
	ErrAuth := New("authentication failed").SetStatusCode(http.StatusUnauthorized)
	ErrToken := ErrAuth.New("no token")
	assert.Equal(t, http.StatusUnauthorized, ErrToken.StatusCode())
	assert.Equal(t, http.StatusUnauthorized, ErrToken.Msg("again").StatusCode())
	assert.Equal(t, 0, New("plain").StatusCode())
}

func TestErrorAll(t *testing.T) {
	ErrBase := New("request failed")
	cause := fmt.Errorf("connection refused")

	assert.Equal(t, "request failed", ErrBase.Err(cause).ErrorAll())
	assert.Equal(t, "request failed; connection refused", ErrBase.SetExpandError(true).Err(cause).ErrorAll())
	assert.Equal(t, "dialing; connection refused", ErrBase.SetExpandError(true).MsgErr("dialing", cause).ErrorAll())
}

type codeError struct{ code int }

func (c *codeError) Error() string { return fmt.Sprintf("code %d", c.code) }

func TestErrorAs(t *testing.T) {
	ErrBase := New("base error")
	wrapped := ErrBase.Err(errors.Wrap(&codeError{code: 7}, "context"))

	var ce *codeError
	assert.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, 7, ce.code)

	assert.False(t, errors.As(ErrBase.Msg("no cause"), &ce))
}
