// Package auth issues and checks the signed tokens the API hands out: access
// tokens carried as "Authorization: Bearer" and short-lived anti-forgery
// tokens carried in the X-CSRF-Token header. Both are HS256 JWTs; a purpose
// claim keeps one from being replayed as the other.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrCSRFMismatch = errors.New("csrf token does not belong to this session")
)

const (
	purposeAccess = "access"
	purposeCSRF   = "csrf"
	issuer        = "evouqe"
)

type Claims struct {
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// AccountID is the subject of the token.
func (c *Claims) AccountID() string {
	return c.Subject
}

type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
	csrfTTL   time.Duration
	now       func() time.Time
}

func NewTokenManager(secret string, accessTTL, csrfTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		csrfTTL:   csrfTTL,
		now:       time.Now,
	}
}

func (m *TokenManager) IssueAccess(accountID, role string) (string, error) {
	return m.sign(accountID, role, purposeAccess, m.accessTTL)
}

func (m *TokenManager) ParseAccess(token string) (*Claims, error) {
	return m.parse(token, purposeAccess)
}

func (m *TokenManager) IssueCSRF(accountID string) (string, error) {
	return m.sign(accountID, "", purposeCSRF, m.csrfTTL)
}

// VerifyCSRF checks the token signature and expiry and that it was issued
// to accountID.
func (m *TokenManager) VerifyCSRF(token, accountID string) error {
	claims, err := m.parse(token, purposeCSRF)
	if err != nil {
		return err
	}
	if claims.Subject != accountID {
		return ErrCSRFMismatch
	}
	return nil
}

func (m *TokenManager) sign(subject, role, purpose string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", purpose, err)
	}
	return signed, nil
}

func (m *TokenManager) parse(token, purpose string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
