// Package auth issues and verifies session tokens, hashes passwords and
// carries the authenticated identity through request contexts.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/medtrack/internal/common"
	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// Claims are the session token contents: the standard registered claims
// (sub holds the user id) plus role and MedTrack ID.
type Claims struct {
	jwt.RegisteredClaims
	Role       string `json:"role"`
	MedTrackID string `json:"medTrackId"`
}

type TokenIssuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenIssuer(secret []byte, validity time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, validity: validity, now: time.Now}
}

// Issue signs an HS256 token for user that expires after the configured
// validity.
func (t *TokenIssuer) Issue(user *models.User) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.validity)),
		},
		Role:       user.Role.String(),
		MedTrackID: user.MedTrackID,
	})

	return token.SignedString(t.secret)
}

// Verify checks signature, algorithm and expiry. It returns
// common.ErrTokenExpired for an expired but otherwise valid token and
// common.ErrInvalidToken for everything else.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Identity converts verified claims into a request identity.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:     c.Subject,
		Role:       models.Role(c.Role),
		MedTrackID: c.MedTrackID,
	}
}
