// Package auth issues identity tokens and serves the credential endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"jobboard-backend/internal/config"
	"jobboard-backend/internal/model"
)

// ErrInvalidToken covers bad signatures, expiry, wrong issuer and missing identity.
var ErrInvalidToken = errors.New("invalid token")

// Claims is everything a token asserts: who (sub), which role, and the
// registered lifetime claims. No other identity state is embedded.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies identity tokens and knows how they travel.
type TokenCodec struct {
	secret []byte
	Issuer string
	TTL    time.Duration
	Header string
	Marker string
	now    func() time.Time
}

// NewTokenCodec builds a codec from configuration.
func NewTokenCodec(c config.Token) *TokenCodec {
	return &TokenCodec{
		secret: []byte(c.Secret),
		Issuer: c.Issuer,
		TTL:    c.TTL,
		Header: c.Header,
		Marker: c.Marker,
		now:    time.Now,
	}
}

// issueLeeway bounds how far iat may be ahead of the verifier's clock.
const issueLeeway = time.Second

// Valid checks the token lifetime. iat may run up to issueLeeway ahead,
// which happens for tokens issued in the same second as a password change.
func (c Claims) Valid() error {
	now := jwt.TimeFunc()
	if !c.VerifyExpiresAt(now, false) {
		return jwt.ErrTokenExpired
	}
	if !c.VerifyIssuedAt(now.Add(issueLeeway), false) {
		return jwt.ErrTokenUsedBeforeIssued
	}
	if !c.VerifyNotBefore(now, false) {
		return jwt.ErrTokenNotValidYet
	}
	return nil
}

// changeCutoff is the first whole second a token must be issued at to
// outlive a password change at t. iat has second precision, so every
// token issued during t's second falls before it.
func changeCutoff(t time.Time) time.Time {
	return t.Truncate(time.Second).Add(time.Second)
}

// Issue signs a short-lived token for user. A token issued in the second of
// the user's last password change is stamped with the next second so it
// survives the IssuedBefore check.
func (tc *TokenCodec) Issue(user model.User) (string, *Claims, error) {
	if len(tc.secret) == 0 {
		return "", nil, errors.New("token secret is not configured")
	}
	now := tc.now()
	if user.PasswordChangedAt != nil {
		if cutoff := changeCutoff(*user.PasswordChangedAt); now.Before(cutoff) {
			now = cutoff
		}
	}
	claims := &Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tc.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tc.TTL)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, lifetime, issuer and subject.
func (tc *TokenCodec) Verify(encoded string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(encoded, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return tc.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyIssuer(tc.Issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// IssuedBefore reports whether the token was issued before a password change
// at t. Tokens from t's own second count as earlier.
func (c *Claims) IssuedBefore(t time.Time) bool {
	if c.IssuedAt == nil {
		return true
	}
	return c.IssuedAt.Time.Before(changeCutoff(t))
}

// ClaimsFrom returns the verified claims stored on the request by the auth gate.
func ClaimsFrom(c *gin.Context) (*Claims, error) {
	v, ok := c.Get("claims")
	if !ok {
		return nil, ErrInvalidToken
	}
	claims, ok := v.(*Claims)
	if !ok || claims == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
