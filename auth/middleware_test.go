package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/gamehub-go/config"
)

var testAuthConfig = &config.AuthConfig{
	JWTSecret:           "test-secret",
	AccessTokenDuration: time.Hour,
}

func signToken(t *testing.T, userID int64, secret string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// actorCapture is a terminal handler recording the actor it was called with.
type actorCapture struct {
	called bool
	actor  Actor
}

func (c *actorCapture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.actor = ActorOrAnonymous(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, mw func(http.Handler) http.Handler, authHeader string) (*httptest.ResponseRecorder, *actorCapture) {
	t.Helper()
	capture := &actorCapture{}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	mw(capture.handler()).ServeHTTP(rec, req)
	return rec, capture
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	token := signToken(t, 42, testAuthConfig.JWTSecret, time.Hour)
	rec, capture := doRequest(t, JWTMiddleware(testAuthConfig), "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body)
	}
	if !capture.called {
		t.Fatal("next handler was never reached")
	}
	if capture.actor.Anonymous || capture.actor.ID != 42 {
		t.Fatalf("actor = %+v, want user 42", capture.actor)
	}
}

func TestJWTMiddlewareRejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signTokenHelper(t, 42, "other-secret", time.Hour)},
		{"expired", "Bearer " + signTokenHelper(t, 42, testAuthConfig.JWTSecret, -time.Hour)},
		{"zero user id", "Bearer " + signTokenHelper(t, 0, testAuthConfig.JWTSecret, time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, capture := doRequest(t, JWTMiddleware(testAuthConfig), tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if capture.called {
				t.Error("next handler ran despite a rejected token")
			}
		})
	}
}

// signTokenHelper wraps signToken for use inside table literals.
func signTokenHelper(t *testing.T, userID int64, secret string, expiresIn time.Duration) string {
	return signToken(t, userID, secret, expiresIn)
}

func TestOptionalJWTMiddlewareAnonymous(t *testing.T) {
	rec, capture := doRequest(t, OptionalJWTMiddleware(testAuthConfig), "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !capture.actor.Anonymous {
		t.Fatalf("actor = %+v, want anonymous", capture.actor)
	}
}

func TestOptionalJWTMiddlewareValidToken(t *testing.T) {
	token := signToken(t, 7, testAuthConfig.JWTSecret, time.Hour)
	rec, capture := doRequest(t, OptionalJWTMiddleware(testAuthConfig), "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if capture.actor.Anonymous || capture.actor.ID != 7 {
		t.Fatalf("actor = %+v, want user 7", capture.actor)
	}
}

func TestOptionalJWTMiddlewareBadTokenStillRejected(t *testing.T) {
	rec, capture := doRequest(t, OptionalJWTMiddleware(testAuthConfig), "Bearer broken")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401: a present but invalid token is an error", rec.Code)
	}
	if capture.called {
		t.Error("next handler ran despite an invalid token")
	}
}

func TestActorString(t *testing.T) {
	if got := (Actor{ID: 9}).String(); got != "user:9" {
		t.Errorf("String() = %q, want user:9", got)
	}
	if got := AnonymousActor.String(); got != "anon" {
		t.Errorf("String() = %q, want anon", got)
	}
}
