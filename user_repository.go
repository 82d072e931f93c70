package soidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.pilab.hu/shadow-oidc/parameter"
)

var ErrUserNotFound = errors.New("user not found")

// Address is the OIDC address claim.
type Address struct {
	Country       string `json:"country,omitempty"`
	Locality      string `json:"locality,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Region        string `json:"region,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
}

// User is the profile released by /userinfo.
type User struct {
	Subject       parameter.Subject `json:"sub,omitempty"`
	Name          string            `json:"name,omitempty"`
	GivenName     string            `json:"given_name,omitempty"`
	FamilyName    string            `json:"family_name,omitempty"`
	MiddleName    string            `json:"middle_name,omitempty"`
	Nickname      string            `json:"nickname,omitempty"`
	Email         string            `json:"email,omitempty"`
	EmailVerified bool              `json:"email_verified"`
	PhoneNumber   string            `json:"phone_number,omitempty"`
	Locale        string            `json:"locale,omitempty"`
	Zoneinfo      string            `json:"zoneinfo,omitempty"`
	UpdatedAt     int64             `json:"updated_at,omitempty"`
	Address       *Address          `json:"address,omitempty"`
}

// UserRepository resolves the profile behind a token subject.
type UserRepository interface {
	GetUserBySubject(ctx context.Context, subject parameter.Subject) (*User, error)
}

// StaticUserRepository serves one configured profile for every subject.
type StaticUserRepository struct {
	user *User
}

func NewStaticUserRepository(user *User) *StaticUserRepository {
	return &StaticUserRepository{user: user}
}

// GetUserBySubject returns a copy of the profile stamped with subject.
func (r *StaticUserRepository) GetUserBySubject(_ context.Context, subject parameter.Subject) (*User, error) {
	if r.user == nil {
		return nil, ErrUserNotFound
	}

	u := *r.user
	if r.user.Address != nil {
		addr := *r.user.Address
		u.Address = &addr
	}
	u.Subject = subject

	return &u, nil
}

// LoadUserFile reads a JSON profile from path.
func LoadUserFile(path string) (*User, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user file: %w", err)
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("failed to decode user file %s: %w", path, err)
	}

	return &u, nil
}
