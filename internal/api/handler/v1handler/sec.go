package v1handler

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"sigscan/internal/config"
	"sigscan/pkg/serrors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// SubjectKey is the context key under which the authenticated token subject is stored.
const SubjectKey contextKey = "subject"

// SecHandlerOptions configure bearer token verification.
type SecHandlerOptions struct {
	// PublicKey is the PEM encoded RSA key tokens are verified with. When
	// empty, authentication is disabled and every request is let through.
	PublicKey string
}

func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{PublicKey: cfg.JWT.PublicKey}
}

// SecHandler verifies RS256 bearer tokens.
type SecHandler struct {
	publicKey *rsa.PublicKey
}

func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	if opts == nil || opts.PublicKey == "" {
		return &SecHandler{}, nil
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &SecHandler{publicKey: key}, nil
}

// Enabled reports whether requests must carry a valid token.
func (s SecHandler) Enabled() bool { return s.publicKey != nil }

// HandleBearerAuth validates token and returns ctx carrying its subject.
func (s SecHandler) HandleBearerAuth(ctx context.Context, token string) (context.Context, error) {
	if !s.Enabled() {
		return ctx, nil
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}
	if !parsed.Valid {
		return nil, serrors.With(serrors.ErrUnauthorized, "invalid token")
	}
	if claims.Subject == "" {
		return nil, serrors.With(serrors.ErrUnauthorized, "token has no subject")
	}

	return context.WithValue(ctx, SubjectKey, claims.Subject), nil
}

// Middleware authenticates every request before passing it to next. Failures
// are reported through onErr.
func (s SecHandler) Middleware(
	next http.Handler,
	onErr func(w http.ResponseWriter, r *http.Request, err error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Enabled() {
			next.ServeHTTP(w, r)

			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			onErr(w, r, serrors.With(serrors.ErrUnauthorized, "missing bearer token"))

			return
		}

		ctx, err := s.HandleBearerAuth(r.Context(), token)
		if err != nil {
			onErr(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Subject returns the authenticated subject stored in ctx, or "" when
// authentication is disabled.
func Subject(ctx context.Context) string {
	sub, _ := ctx.Value(SubjectKey).(string)

	return sub
}
