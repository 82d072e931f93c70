package parameter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Scope is a named permission unit.
type Scope string

const (
	ScopeAddress Scope = "address"
	ScopeEmail   Scope = "email"
	ScopeGroups  Scope = "groups"
	ScopeOpenID  Scope = "openid"
	ScopePhone   Scope = "phone"
	ScopeProfile Scope = "profile"
)

// SupportedScopes lists every recognized scope in lexical order.
var SupportedScopes = []Scope{ScopeAddress, ScopeEmail, ScopeGroups, ScopeOpenID, ScopePhone, ScopeProfile}

// ParseScope parses a single scope token.
func ParseScope(value string) (Scope, error) {
	if value == "" {
		return "", ErrEmpty
	}

	for _, s := range SupportedScopes {
		if string(s) == value {
			return s, nil
		}
	}

	return "", fmt.Errorf("%w: scope `%s`", ErrUnrecognized, value)
}

func (s Scope) String() string { return string(s) }

// ScopeSet is an unordered set of scopes.
type ScopeSet map[Scope]struct{}

// NewScopeSet builds a set from the given scopes.
func NewScopeSet(scopes ...Scope) ScopeSet {
	set := make(ScopeSet, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	return set
}

// ParseScopeSet splits value on single spaces and parses each token. An
// empty token (leading, trailing or doubled space) is rejected.
func ParseScopeSet(value string) (ScopeSet, error) {
	if value == "" {
		return nil, ErrEmpty
	}

	set := make(ScopeSet)
	for _, token := range strings.Split(value, " ") {
		s, err := ParseScope(token)
		if err != nil {
			return nil, err
		}
		set[s] = struct{}{}
	}

	return set, nil
}

// ParseRequestedScopes parses the scope parameter of an authorize request,
// which must include openid.
func ParseRequestedScopes(value string) (ScopeSet, error) {
	set, err := ParseScopeSet(value)
	if err != nil {
		return nil, err
	}

	if !set.Contains(ScopeOpenID) {
		return nil, fmt.Errorf("%w: scope `%s` must be present", ErrMissingScope, ScopeOpenID)
	}

	return set, nil
}

func (s ScopeSet) Contains(scope Scope) bool {
	_, ok := s[scope]
	return ok
}

// Intersects reports whether s and other share at least one scope.
func (s ScopeSet) Intersects(other ScopeSet) bool {
	for scope := range s {
		if other.Contains(scope) {
			return true
		}
	}
	return false
}

// Slice returns the scopes sorted lexically.
func (s ScopeSet) Slice() []Scope {
	out := make([]Scope, 0, len(s))
	for scope := range s {
		out = append(out, scope)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Strings returns the scopes sorted lexically as plain strings.
func (s ScopeSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, scope := range s.Slice() {
		out = append(out, string(scope))
	}
	return out
}

// String renders the set in its space-delimited wire form.
func (s ScopeSet) String() string {
	return strings.Join(s.Strings(), " ")
}

// MarshalJSON renders the set as a sorted array.
func (s ScopeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON accepts an array of scopes; every element must be recognized.
func (s *ScopeSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	set := make(ScopeSet, len(raw))
	for _, token := range raw {
		scope, err := ParseScope(token)
		if err != nil {
			return err
		}
		set[scope] = struct{}{}
	}
	*s = set

	return nil
}
