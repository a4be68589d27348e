package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hirokisan/task-tracker-api/internal/config"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidToken    = errors.New("identity: invalid token")
	ErrUnknownKey      = errors.New("identity: token signed with unknown key")
	ErrNoUsernameClaim = errors.New("identity: token carries no username claim")
)

// OIDCProvider implements Provider against an OAuth2/OIDC identity provider
// exposing the usual hosted endpoints (token, userInfo, revoke) plus a
// published JWKS for signature verification.
type OIDCProvider struct {
	oauth   *oauth2.Config
	jwksURL string
	domain  string
	client  *http.Client

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewOIDCProvider builds a provider from configuration.
func NewOIDCProvider(cfg *config.Config) *OIDCProvider {
	domain := strings.TrimRight(cfg.AuthDomain, "/")
	return &OIDCProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.AuthClientID,
			ClientSecret: cfg.AuthClientSecret,
			RedirectURL:  cfg.AuthRedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:  domain + "/oauth2/authorize",
				TokenURL: domain + "/oauth2/token",
			},
		},
		jwksURL: cfg.AuthJWKSURL,
		domain:  domain,
		client:  http.DefaultClient,
		keys:    map[string]*rsa.PublicKey{},
	}
}

// ExchangeCode trades an authorization code for a token payload.
func (p *OIDCProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("identity: code exchange failed: %w", err)
	}
	return token, nil
}

// Verify parses and verifies a bearer token against the provider's JWKS and
// returns the subject username.
func (p *OIDCProvider) Verify(ctx context.Context, rawToken string) (string, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKey
		}
		return p.keyForKid(ctx, kid)
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	for _, claim := range []string{"username", "cognito:username", "sub"} {
		if username, ok := claims[claim].(string); ok && username != "" {
			return username, nil
		}
	}
	return "", ErrNoUsernameClaim
}

// UserInfo fetches the subject attributes behind an access token.
func (p *OIDCProvider) UserInfo(ctx context.Context, accessToken string) (*Subject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.domain+"/oauth2/userInfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity: userinfo returned status %d", resp.StatusCode)
	}

	var payload struct {
		Sub        string `json:"sub"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Username   string `json:"username"`
		Email      string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("identity: failed to decode userinfo: %w", err)
	}

	return &Subject{
		ID:         payload.Sub,
		GivenName:  payload.GivenName,
		FamilyName: payload.FamilyName,
		Username:   payload.Username,
		Email:      payload.Email,
	}, nil
}

// Logout revokes the token at the provider.
func (p *OIDCProvider) Logout(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("token", accessToken)
	form.Set("client_id", p.oauth.ClientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.domain+"/oauth2/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.oauth.ClientID, p.oauth.ClientSecret)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity: revoke request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity: revoke returned status %d", resp.StatusCode)
	}
	return nil
}

// keyForKid returns the RSA public key for a key id, refreshing the cached
// JWKS once when the kid is not present.
func (p *OIDCProvider) keyForKid(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	p.mu.RLock()
	key, ok := p.keys[kid]
	p.mu.RUnlock()
	if ok {
		return key, nil
	}

	if err := p.refreshKeys(ctx); err != nil {
		return nil, err
	}

	p.mu.RLock()
	key, ok = p.keys[kid]
	p.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownKey
	}
	return key, nil
}

func (p *OIDCProvider) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.jwksURL, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity: JWKS fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity: JWKS endpoint returned status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("identity: failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		n, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		e, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}
	}

	p.mu.Lock()
	p.keys = keys
	p.mu.Unlock()
	return nil
}
