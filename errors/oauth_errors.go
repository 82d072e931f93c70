package errors

import (
	"errors"
	"fmt"
	"net/http"

	soidc "go.pilab.hu/shadow-oidc"
	"go.pilab.hu/shadow-oidc/parameter"
)

// OAuth2Error represents a standardized OAuth 2.0 error
type OAuth2Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	URI         string `json:"error_uri,omitempty"`
	State       string `json:"state,omitempty"`
}

func (e *OAuth2Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Standard OAuth2 and bearer token error codes
const (
	InvalidRequest          = "invalid_request"
	InvalidClient           = "invalid_client"
	InvalidGrant            = "invalid_grant"
	InvalidScope            = "invalid_scope"
	UnsupportedGrantType    = "unsupported_grant_type"
	UnsupportedResponseType = "unsupported_response_type"
	ServerError             = "server_error"
	InvalidToken            = "invalid_token"
	InsufficientScope       = "insufficient_scope"
	SlowDown                = "slow_down"
)

func NewInvalidRequest(description string) *OAuth2Error {
	return &OAuth2Error{
		Code:        InvalidRequest,
		Description: description,
	}
}

func NewInvalidClient(description string) *OAuth2Error {
	return &OAuth2Error{
		Code:        InvalidClient,
		Description: description,
	}
}

func NewInvalidGrant(description string) *OAuth2Error {
	return &OAuth2Error{
		Code:        InvalidGrant,
		Description: description,
	}
}

func NewServerError(description string) *OAuth2Error {
	return &OAuth2Error{
		Code:        ServerError,
		Description: description,
	}
}

func NewInvalidToken(description string) *OAuth2Error {
	return &OAuth2Error{
		Code:        InvalidToken,
		Description: description,
	}
}

func NewInsufficientScope(description string) *OAuth2Error {
	return &OAuth2Error{
		Code:        InsufficientScope,
		Description: description,
	}
}

// FromError maps a provider error to its HTTP status and wire body.
// Unknown errors become an opaque 500 so internals are not leaked.
func FromError(err error) (int, *OAuth2Error) {
	var (
		oauthErr    *OAuth2Error
		fieldErr    *parameter.FieldError
		codeErr     *soidc.InvalidCodeError
		grantErr    *soidc.InvalidGrantError
		redirectErr *soidc.InvalidRedirectURIError
		scopesErr   *soidc.MissingScopesError
	)

	switch {
	case errors.As(err, &oauthErr):
		return statusFor(oauthErr.Code), oauthErr
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, fromFieldError(fieldErr)
	case errors.As(err, &codeErr), errors.As(err, &grantErr), errors.As(err, &redirectErr):
		return http.StatusBadRequest, NewInvalidGrant(err.Error())
	case errors.Is(err, soidc.ErrInvalidClientSecret):
		return http.StatusBadRequest, NewInvalidClient(err.Error())
	case errors.As(err, &scopesErr):
		return http.StatusForbidden, NewInsufficientScope(err.Error())
	case errors.Is(err, soidc.ErrInvalidToken):
		return http.StatusUnauthorized, NewInvalidToken(err.Error())
	default:
		return http.StatusInternalServerError, NewServerError("internal server error")
	}
}

func fromFieldError(err *parameter.FieldError) *OAuth2Error {
	if errors.Is(err, parameter.ErrUnrecognized) {
		switch err.Field {
		case "grant_type":
			return &OAuth2Error{Code: UnsupportedGrantType, Description: err.Error()}
		case "response_type":
			return &OAuth2Error{Code: UnsupportedResponseType, Description: err.Error()}
		case "scope":
			return &OAuth2Error{Code: InvalidScope, Description: err.Error()}
		}
	}

	return NewInvalidRequest(err.Error())
}

func statusFor(code string) int {
	switch code {
	case InvalidToken:
		return http.StatusUnauthorized
	case InsufficientScope:
		return http.StatusForbidden
	case ServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
