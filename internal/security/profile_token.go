package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"chorequest/internal/models"
)

// ErrInvalidProfileToken is returned for tokens that fail signature, expiry or claim checks
var ErrInvalidProfileToken = errors.New("invalid profile token")

// ProfileClaims binds a selected profile to the family session that selected it
type ProfileClaims struct {
	FamilyID  int64       `json:"fam"`
	UserID    int64       `json:"uid"`
	Role      models.Role `json:"role"`
	SessionID string      `json:"sid"`
	jwt.RegisteredClaims
}

// ProfileTokens issues and validates signed profile-selection tokens
type ProfileTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewProfileTokens creates a token issuer signing with HMAC-SHA256
func NewProfileTokens(secret string, ttl time.Duration) *ProfileTokens {
	return &ProfileTokens{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given actor within a family session
func (p *ProfileTokens) Issue(actor models.Actor, sessionID string, now time.Time) (string, time.Time, error) {
	expires := now.Add(p.ttl)
	claims := ProfileClaims{
		FamilyID:  actor.FamilyID,
		UserID:    actor.UserID,
		Role:      actor.Role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", actor.UserID),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign profile token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates a token and checks that it belongs to sessionID
func (p *ProfileTokens) Parse(tokenString, sessionID string) (models.Actor, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &ProfileClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return models.Actor{}, ErrInvalidProfileToken
	}
	if claims.SessionID != sessionID || !claims.Role.Valid() {
		return models.Actor{}, ErrInvalidProfileToken
	}
	return models.Actor{FamilyID: claims.FamilyID, UserID: claims.UserID, Role: claims.Role}, nil
}
