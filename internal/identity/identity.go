package identity

import (
	"context"

	"golang.org/x/oauth2"
)

// Subject holds the verified attributes of an authenticated end user as
// reported by the identity provider.
type Subject struct {
	ID         string
	GivenName  string
	FamilyName string
	Username   string
	Email      string
}

// Provider is the external identity capability. The contract is deliberately
// small: exchange an authorization code for a token, verify a bearer token to
// a subject username, fetch subject attributes, and revoke a session. The
// cryptographic details live behind this interface.
type Provider interface {
	// ExchangeCode trades an authorization code for a token payload.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// Verify checks a raw bearer token and returns the subject username.
	Verify(ctx context.Context, rawToken string) (string, error)

	// UserInfo returns the subject attributes for a verified access token.
	UserInfo(ctx context.Context, accessToken string) (*Subject, error)

	// Logout revokes the session behind the given access token.
	Logout(ctx context.Context, accessToken string) error
}
