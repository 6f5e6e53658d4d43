package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"randpredict/models"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token cannot be verified
var ErrInvalidToken = errors.New("invalid token")

const supabaseAudience = "authenticated"

// Verifier turns an access token into the user it was issued to
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.AuthUser, error)
}

// JWTVerifier checks HS256 tokens signed with the project JWT secret
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given secret
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify validates signature, expiry and audience, then reads the user claims
func (v *JWTVerifier) Verify(_ context.Context, token string) (*models.AuthUser, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(supabaseAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	user := &models.AuthUser{
		ID:           stringClaim(claims, "sub"),
		Email:        stringClaim(claims, "email"),
		UserMetadata: mapClaim(claims, "user_metadata"),
		AppMetadata:  mapClaim(claims, "app_metadata"),
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if confirmed := timeClaim(claims, "email_confirmed_at"); confirmed != nil {
		user.EmailConfirmedAt = confirmed
	} else if verified, _ := user.UserMetadata["email_verified"].(bool); verified {
		if issued, err := claims.GetIssuedAt(); err == nil && issued != nil {
			user.EmailConfirmedAt = &issued.Time
		}
	}

	return user, nil
}

// RemoteVerifier asks Supabase Auth who owns a token
type RemoteVerifier struct {
	url     string
	anonKey string
	client  *http.Client
}

// NewRemoteVerifier creates a verifier calling {supabaseURL}/auth/v1/user
func NewRemoteVerifier(supabaseURL, anonKey string) *RemoteVerifier {
	return &RemoteVerifier{
		url:     supabaseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify calls the Supabase user endpoint with the token
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*models.AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.url+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.anonKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 32<<10))
		return nil, fmt.Errorf("token validation failed: %s", string(body))
	}

	var user models.AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrInvalidToken
	}

	return &user, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

func mapClaim(claims jwt.MapClaims, key string) map[string]any {
	if m, ok := claims[key].(map[string]any); ok {
		return m
	}
	return nil
}

func timeClaim(claims jwt.MapClaims, key string) *time.Time {
	s, ok := claims[key].(string)
	if !ok || s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
