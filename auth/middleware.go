package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/gamehub-go/apperror"
	"github.com/user/gamehub-go/config"
)

// Claims represents the JWT payload issued by this service.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTMiddleware verifies the bearer token from the Authorization header and
// stores the resulting Actor in the request context. Requests without a
// valid token are rejected with 401.
func JWTMiddleware(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := actorFromRequest(r, cfg)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// OptionalJWTMiddleware resolves an Actor when credentials are present but
// lets anonymous requests through. A malformed or expired token is still an
// error: silently downgrading a bad token to anonymous would mask client
// bugs.
func OptionalJWTMiddleware(cfg *config.AuthConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), AnonymousActor)))
				return
			}
			actor, err := actorFromRequest(r, cfg)
			if err != nil {
				WriteError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// actorFromRequest parses and validates the bearer token, returning the
// authenticated identity.
func actorFromRequest(r *http.Request, cfg *config.AuthConfig) (Actor, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Actor{}, apperror.NewAuthError("Authorization header is missing", nil)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return Actor{}, apperror.NewAuthError("Authorization header format must be Bearer {token}", nil)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return Actor{}, apperror.NewAuthError(fmt.Sprintf("Invalid token: %v", err), err)
	}
	if !token.Valid {
		return Actor{}, apperror.NewAuthError("Invalid token", nil)
	}
	if claims.UserID == 0 {
		return Actor{}, apperror.NewAuthError("Invalid token: user_id claim is missing or invalid", nil)
	}

	return Actor{ID: claims.UserID}, nil
}
