package parameter

import (
	"fmt"
	"net/url"
)

// RedirectURI is the client callback. The raw text is kept as received and
// comparisons are exact, without normalization.
type RedirectURI struct {
	raw    string
	parsed *url.URL
}

// ParseRedirectURI parses an absolute URI.
func ParseRedirectURI(value string) (RedirectURI, error) {
	if value == "" {
		return RedirectURI{}, ErrEmpty
	}

	u, err := url.Parse(value)
	if err != nil {
		return RedirectURI{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}

	if !u.IsAbs() || u.Host == "" {
		return RedirectURI{}, fmt.Errorf("%w: `%s` is not an absolute URI", ErrInvalidURI, value)
	}

	if u.Fragment != "" {
		return RedirectURI{}, fmt.Errorf("%w: `%s` must not contain a fragment", ErrInvalidURI, value)
	}

	return RedirectURI{raw: value, parsed: u}, nil
}

// MustParseRedirectURI is like ParseRedirectURI but panics on error.
func MustParseRedirectURI(value string) RedirectURI {
	u, err := ParseRedirectURI(value)
	if err != nil {
		panic(err)
	}
	return u
}

func (u RedirectURI) String() string { return u.raw }

// URL returns a copy of the parsed URI.
func (u RedirectURI) URL() *url.URL {
	if u.parsed == nil {
		return nil
	}
	c := *u.parsed
	return &c
}

func (u RedirectURI) IsZero() bool { return u.raw == "" }

// Equal compares the raw text: "https://a/cb" and "https://a/cb/" differ.
func (u RedirectURI) Equal(other RedirectURI) bool {
	return u.raw == other.raw
}

func (u RedirectURI) MarshalText() ([]byte, error) { return []byte(u.raw), nil }

func (u *RedirectURI) UnmarshalText(text []byte) error {
	v, err := ParseRedirectURI(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}
