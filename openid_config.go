package soidc

import (
	"strings"

	"go.pilab.hu/shadow-oidc/parameter"
)

// OpenIDConfiguration is the discovery document served at
// /.well-known/openid-configuration.
type OpenIDConfiguration struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	UserInfoEndpoint                  string   `json:"userinfo_endpoint"`
	ScopesSupported                   []string `json:"scopes_supported"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	ResponseModesSupported            []string `json:"response_modes_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	ClaimsSupported                   []string `json:"claims_supported"`
}

// NewOpenIDConfiguration describes the provider configured by vars.
func NewOpenIDConfiguration(vars *Vars) *OpenIDConfiguration {
	base := strings.TrimSuffix(vars.Issuer, "/")

	scopes := make([]string, 0, len(parameter.SupportedScopes))
	for _, s := range parameter.SupportedScopes {
		scopes = append(scopes, s.String())
	}

	authMethods := []string{"none"}
	if vars.Confidential() {
		authMethods = []string{"client_secret_post"}
	}

	return &OpenIDConfiguration{
		Issuer:                            vars.Issuer,
		AuthorizationEndpoint:             base + "/authorize",
		TokenEndpoint:                     base + "/token",
		UserInfoEndpoint:                  base + "/userinfo",
		ScopesSupported:                   scopes,
		ResponseTypesSupported:            []string{string(parameter.ResponseTypeCode)},
		ResponseModesSupported:            []string{string(parameter.ResponseModeFormPost)},
		GrantTypesSupported:               []string{string(parameter.GrantTypeAuthorizationCode)},
		SubjectTypesSupported:             []string{"public"},
		IDTokenSigningAlgValuesSupported:  []string{"HS256"},
		TokenEndpointAuthMethodsSupported: authMethods,
		CodeChallengeMethodsSupported:     []string{string(parameter.CodeChallengeMethodS256)},
		ClaimsSupported: []string{
			"aud", "auth_time", "amr", "at_hash", "exp", "iat", "iss", "jti", "sub",
			"name", "given_name", "family_name", "middle_name", "nickname",
			"email", "email_verified", "phone_number", "locale", "zoneinfo",
			"updated_at", "address",
		},
	}
}
