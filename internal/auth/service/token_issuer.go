package service

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/jokes-gateway/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/jokes-gateway/internal/common/crypto"
	"github.com/AlibekovAA/jokes-gateway/internal/common/jwtverify"
	userdomain "github.com/AlibekovAA/jokes-gateway/internal/user/domain"
)

// TokenIssuer signs access tokens with the same secret the gate verifies
// against.
type TokenIssuer struct {
	jwtSecret      []byte
	idGenerator    commoncrypto.IDGenerator
	clock          clock.Clock
	accessTokenTTL time.Duration
	verifier       *jwtverify.Verifier
}

func NewTokenIssuer(
	jwtSecret string,
	idGenerator commoncrypto.IDGenerator,
	accessTokenTTL time.Duration,
	clock clock.Clock,
) *TokenIssuer {
	return &TokenIssuer{
		jwtSecret:      []byte(jwtSecret),
		idGenerator:    idGenerator,
		clock:          clock,
		accessTokenTTL: accessTokenTTL,
		verifier:       jwtverify.NewVerifierWithClock(jwtSecret, clock.Now),
	}
}

// Issue signs arbitrary claims valid for ttl from now.
func (ti *TokenIssuer) Issue(claims jwtverify.Claims, ttl time.Duration) (string, error) {
	now := ti.clock.Now()
	tc := jwtverify.TokenClaims{
		Username: claims.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.UserID, 10),
			ID:        claims.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(ti.jwtSecret)
}

func (ti *TokenIssuer) IssueAccessToken(user userdomain.User) (string, string, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return "", "", err
	}

	token, err := ti.Issue(jwtverify.Claims{
		UserID:   int64(user.ID),
		Username: user.Username,
		TokenID:  jti,
	}, ti.accessTokenTTL)
	if err != nil {
		return "", "", err
	}

	incrementAccessTokensIssued()
	return token, jti, nil
}

func (ti *TokenIssuer) Verify(tokenString string) (jwtverify.Claims, error) {
	return ti.verifier.Verify(tokenString)
}

func (ti *TokenIssuer) Verifier() *jwtverify.Verifier {
	return ti.verifier
}
