package rally

import (
	"net/http"

	"github.com/tansive/rallyclient/internal/common/apperrors"
)

var (
	ErrRally          = apperrors.New("rally error")
	ErrAuthentication = ErrRally.New("authentication failed").SetStatusCode(http.StatusUnauthorized)
	ErrSecurityToken  = ErrAuthentication.New("failed to retrieve security token from Rally")
	ErrCreateFailed   = ErrRally.New("unable to create object").SetExpandError(true)
	ErrQueryFailed    = ErrRally.New("query failed").SetExpandError(true)
	ErrInvalidInput   = ErrRally.New("invalid input").SetStatusCode(http.StatusBadRequest)
)
