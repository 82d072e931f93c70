package parameter

import "fmt"

type CodeChallengeMethod string

const CodeChallengeMethodS256 CodeChallengeMethod = "S256"

func ParseCodeChallengeMethod(value string) (CodeChallengeMethod, error) {
	return parseEnum(value, CodeChallengeMethodS256)
}

type ResponseMode string

const ResponseModeFormPost ResponseMode = "form_post"

func ParseResponseMode(value string) (ResponseMode, error) {
	return parseEnum(value, ResponseModeFormPost)
}

type ResponseType string

const ResponseTypeCode ResponseType = "code"

func ParseResponseType(value string) (ResponseType, error) {
	return parseEnum(value, ResponseTypeCode)
}

type GrantType string

const GrantTypeAuthorizationCode GrantType = "authorization_code"

func ParseGrantType(value string) (GrantType, error) {
	return parseEnum(value, GrantTypeAuthorizationCode)
}

// TokenType is always bearer for this provider.
type TokenType string

const TokenTypeBearer TokenType = "bearer"

func parseEnum[T ~string](value string, allowed ...T) (T, error) {
	if value == "" {
		return "", ErrEmpty
	}

	for _, a := range allowed {
		if string(a) == value {
			return a, nil
		}
	}

	return "", fmt.Errorf("%w: `%s`", ErrUnrecognized, value)
}
