package jwtverify

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/AlibekovAA/jokes-gateway/internal/common/errors"
	commonhttp "github.com/AlibekovAA/jokes-gateway/internal/common/http"
	"github.com/AlibekovAA/jokes-gateway/internal/common/logger"
	"github.com/AlibekovAA/jokes-gateway/internal/observability/metrics"
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID    int64
	Username  string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenClaims is the signed JWT payload.
type TokenClaims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

type contextKey string

const claimsKey contextKey = "jwt_claims"

// Verifier checks HS256 tokens against a secret fixed at construction.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return NewVerifierWithClock(secret, time.Now)
}

func NewVerifierWithClock(secret string, now func() time.Time) *Verifier {
	return &Verifier{secret: []byte(secret), now: now}
}

// Verify returns ErrTokenExpired for a well-signed token past its expiry and
// ErrInvalidToken for every other failure.
func (v *Verifier) Verify(tokenString string) (Claims, error) {
	metrics.JWTValidationsTotal.Inc()

	claims, err := v.parse(tokenString)
	if err != nil {
		if errors.Is(err, commonerrors.ErrTokenExpired) {
			metrics.JWTValidationsFailed.WithLabelValues("expired").Inc()
		} else {
			metrics.JWTValidationsFailed.WithLabelValues("invalid").Inc()
		}
		return Claims{}, err
	}
	return claims, nil
}

func (v *Verifier) parse(tokenString string) (Claims, error) {
	var tc TokenClaims
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&tc,
		func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, errors.New("unexpected signing method")
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, commonerrors.ErrTokenExpired.WithCause(err)
		}
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid {
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(errors.New("token is not valid"))
	}

	userID, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil || tc.Username == "" {
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(errors.New("missing sub or usr claims"))
	}

	claims := Claims{
		UserID:   userID,
		Username: tc.Username,
		TokenID:  tc.ID,
	}
	if tc.IssuedAt != nil {
		claims.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}

// ExtractToken accepts both a raw token and the "Bearer <token>" form.
func ExtractToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// Middleware rejects requests without a valid token and stores the decoded
// claims in the request context for the wrapped handler.
func Middleware(verifier *Verifier, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				log.WithFields(r.Context(), logger.Fields{
					"path":   r.URL.Path,
					"action": "jwt_auth_missing",
				}).Warn("jwt auth failed: missing authorization header")
				commonhttp.HandleError(w, r, commonerrors.ErrTokenRequired, log)
				return
			}

			claims, err := verifier.Verify(tokenString)
			if err != nil {
				log.WithFields(r.Context(), logger.Fields{
					"path":   r.URL.Path,
					"action": "jwt_auth_rejected",
				}).Warnf("jwt auth failed: %v", err)
				commonhttp.HandleError(w, r, err, log)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func FromContext(ctx context.Context) (Claims, bool) {
	val := ctx.Value(claimsKey)
	claims, ok := val.(Claims)
	return claims, ok
}
