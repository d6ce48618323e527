package identity

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"pacomprar/internal/models"
	"pacomprar/utils"
)

// Token types carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

const defaultLeeway = 30 * time.Second

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims are the JWT claims issued for both access and refresh tokens.
// Refresh tokens additionally carry a JTI so they can be revoked one by one.
type Claims struct {
	Username  string `json:"username,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user id.
func (c Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse token subject: %w", ErrInvalidToken)
	}
	return uint(id), nil
}

// TokenIssuer signs and verifies HS256 access/refresh token pairs.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer builds an issuer with the given signing secret and TTLs.
func NewTokenIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair returns a fresh access and refresh token for the user.
func (t *TokenIssuer) IssuePair(u models.User) (access, refresh string, err error) {
	now := time.Now().UTC()
	access, err = t.sign(u, TokenTypeAccess, now, t.accessTTL, "")
	if err != nil {
		return "", "", fmt.Errorf("issue access token: %w", err)
	}
	refresh, err = t.sign(u, TokenTypeRefresh, now, t.refreshTTL, utils.GenerateTokenID())
	if err != nil {
		return "", "", fmt.Errorf("issue refresh token: %w", err)
	}
	return access, refresh, nil
}

func (t *TokenIssuer) sign(u models.User, tokenType string, now time.Time, ttl time.Duration, jti string) (string, error) {
	claims := Claims{
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses the token, checks the signature and standard claims, and
// requires the given token type.
func (t *TokenIssuer) Verify(token, wantType string) (Claims, error) {
	claims := Claims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(defaultLeeway),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, fmt.Errorf("verify token: %w", ErrInvalidToken)
	}
	if claims.TokenType != wantType {
		return Claims{}, fmt.Errorf("verify token: %w", ErrWrongTokenType)
	}
	return claims, nil
}
