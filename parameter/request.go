package parameter

import "net/url"

// AuthorizeParams is a fully validated authorize request.
type AuthorizeParams struct {
	ClientID            ClientID
	CodeChallengeMethod CodeChallengeMethod
	CodeChallenge       CodeChallenge
	RedirectURI         RedirectURI
	ResponseMode        ResponseMode
	ResponseType        ResponseType
	Scope               ScopeSet
	State               State
}

// ParseAuthorizeParams validates the authorize query parameters. The first
// invalid field is reported as a *FieldError.
func ParseAuthorizeParams(q url.Values) (*AuthorizeParams, error) {
	var (
		p   AuthorizeParams
		err error
	)

	if p.ClientID, err = ParseClientID(q.Get("client_id")); err != nil {
		return nil, fieldError("client_id", err)
	}
	if p.CodeChallengeMethod, err = ParseCodeChallengeMethod(q.Get("code_challenge_method")); err != nil {
		return nil, fieldError("code_challenge_method", err)
	}
	if p.CodeChallenge, err = ParseCodeChallenge(q.Get("code_challenge")); err != nil {
		return nil, fieldError("code_challenge", err)
	}
	if p.RedirectURI, err = ParseRedirectURI(q.Get("redirect_uri")); err != nil {
		return nil, fieldError("redirect_uri", err)
	}
	if p.ResponseMode, err = ParseResponseMode(q.Get("response_mode")); err != nil {
		return nil, fieldError("response_mode", err)
	}
	if p.ResponseType, err = ParseResponseType(q.Get("response_type")); err != nil {
		return nil, fieldError("response_type", err)
	}
	if p.Scope, err = ParseRequestedScopes(q.Get("scope")); err != nil {
		return nil, fieldError("scope", err)
	}
	if p.State, err = ParseState(q.Get("state")); err != nil {
		return nil, fieldError("state", err)
	}

	return &p, nil
}

// TokenParams is a fully validated token request. ClientID and ClientSecret
// are optional and zero when absent.
type TokenParams struct {
	CodeVerifier CodeVerifier
	Code         Code
	GrantType    GrantType
	RedirectURI  RedirectURI
	ClientID     ClientID
	ClientSecret ClientSecret
}

// ParseTokenParams validates the token form body.
func ParseTokenParams(form url.Values) (*TokenParams, error) {
	var (
		p   TokenParams
		err error
	)

	if p.CodeVerifier, err = ParseCodeVerifier(form.Get("code_verifier")); err != nil {
		return nil, fieldError("code_verifier", err)
	}
	if p.Code, err = ParseCode(form.Get("code")); err != nil {
		return nil, fieldError("code", err)
	}
	if p.GrantType, err = ParseGrantType(form.Get("grant_type")); err != nil {
		return nil, fieldError("grant_type", err)
	}
	if p.RedirectURI, err = ParseRedirectURI(form.Get("redirect_uri")); err != nil {
		return nil, fieldError("redirect_uri", err)
	}
	if v := form.Get("client_id"); v != "" {
		if p.ClientID, err = ParseClientID(v); err != nil {
			return nil, fieldError("client_id", err)
		}
	}
	if v := form.Get("client_secret"); v != "" {
		if p.ClientSecret, err = ParseClientSecret(v); err != nil {
			return nil, fieldError("client_secret", err)
		}
	}

	return &p, nil
}
