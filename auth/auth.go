// Package auth resolves the Supabase user behind a request.
package auth

import (
	"context"
	"errors"
	"net/http"

	"randpredict/models"
	"randpredict/service"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// Authenticator resolves users from request tokens
type Authenticator struct {
	verifier Verifier
}

// NewAuthenticator creates an authenticator over a verifier
func NewAuthenticator(verifier Verifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// NewVerifier picks local JWT verification when a secret is configured and
// falls back to asking Supabase Auth
func NewVerifier(supabaseURL, anonKey, jwtSecret string) Verifier {
	if jwtSecret != "" {
		return NewJWTVerifier(jwtSecret)
	}
	return NewRemoteVerifier(supabaseURL, anonKey)
}

// UserFromRequest returns the signed-in user, or nil when the request carries
// no token or an invalid one
func (a *Authenticator) UserFromRequest(r *http.Request) *models.AuthUser {
	token := TokenFromRequest(r)
	if token == "" {
		return nil
	}

	user, err := a.verifier.Verify(r.Context(), token)
	if err != nil {
		entry := log.WithError(err).WithField("path", r.URL.Path)
		if errors.Is(err, ErrInvalidToken) {
			entry.Debug("Ignoring invalid access token")
		} else {
			entry.Warn("Failed to verify access token")
		}
		return nil
	}

	return user
}

// Middleware stores the resolved user, if any, in the request context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := a.UserFromRequest(r); user != nil {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a context carrying user
func WithUser(ctx context.Context, user *models.AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the user stored by Middleware, or nil
func UserFromContext(ctx context.Context) *models.AuthUser {
	user, _ := ctx.Value(userContextKey).(*models.AuthUser)
	return user
}

// RequireUser returns the user of ctx or service.ErrUnauthorized
func RequireUser(ctx context.Context) (*models.AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, service.ErrUnauthorized
	}
	return user, nil
}
