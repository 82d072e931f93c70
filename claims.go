package soidc

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.pilab.hu/shadow-oidc/parameter"
)

// AuthenticationMethod is an amr value from RFC 8176.
type AuthenticationMethod string

const (
	AMRPassword          AuthenticationMethod = "pwd"
	AMRProofOfPossession AuthenticationMethod = "pop"
	AMROneTimePassword   AuthenticationMethod = "otp"
	AMRFingerprint       AuthenticationMethod = "fpt"
	AMRRetina            AuthenticationMethod = "eye"
	AMRVoice             AuthenticationMethod = "vbm"
	AMRTelephone         AuthenticationMethod = "tel"
	AMRSMS               AuthenticationMethod = "sms"
	AMRKnowledge         AuthenticationMethod = "kba"
	AMRWindowsIntegrated AuthenticationMethod = "wia"
	AMRMultiFactor       AuthenticationMethod = "mfa"
)

var authenticationMethods = []AuthenticationMethod{
	AMRPassword, AMRProofOfPossession, AMROneTimePassword, AMRFingerprint,
	AMRRetina, AMRVoice, AMRTelephone, AMRSMS, AMRKnowledge,
	AMRWindowsIntegrated, AMRMultiFactor,
}

func (m *AuthenticationMethod) UnmarshalText(text []byte) error {
	for _, known := range authenticationMethods {
		if string(text) == string(known) {
			*m = known
			return nil
		}
	}
	return fmt.Errorf("unknown authentication method `%s`", text)
}

// AccessTokenClaims is the payload of the access token.
type AccessTokenClaims struct {
	jwt.RegisteredClaims

	AuthTime *jwt.NumericDate   `json:"auth_time,omitempty"`
	ClientID parameter.ClientID `json:"cid"`
	UserID   parameter.Subject  `json:"uid"`
	Scope    parameter.ScopeSet `json:"scp"`
	Version  int                `json:"ver"`
}

// IDTokenClaims is the payload of the ID token.
type IDTokenClaims struct {
	jwt.RegisteredClaims

	AuthTime *jwt.NumericDate       `json:"auth_time,omitempty"`
	ClientID parameter.ClientID     `json:"client_id"`
	ATHash   string                 `json:"at_hash"`
	AMR      []AuthenticationMethod `json:"amr"`
	Version  int                    `json:"ver"`
}
