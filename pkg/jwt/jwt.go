package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

const issuer = "personnel-backend"

// Subject identifies the account a token is issued for
type Subject struct {
	UserID     int64
	Username   string
	Role       string
	EmployeeID *int64
}

// Claims represents the JWT claims structure
type Claims struct {
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Role       string    `json:"role,omitempty"`
	EmployeeID *int64    `json:"employee_id,omitempty"`
	TokenType  TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Service handles JWT operations
type Service struct {
	accessSecret       string
	refreshSecret      string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewService creates a new JWT service
func NewService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) *Service {
	return &Service{
		accessSecret:       accessSecret,
		refreshSecret:      refreshSecret,
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

// AccessTokenExpiry returns the lifetime of access tokens
func (s *Service) AccessTokenExpiry() time.Duration { return s.accessTokenExpiry }

// RefreshTokenExpiry returns the lifetime of refresh tokens
func (s *Service) RefreshTokenExpiry() time.Duration { return s.refreshTokenExpiry }

// GenerateAccessToken generates a new access token carrying the role and employee link
func (s *Service) GenerateAccessToken(sub Subject) (string, error) {
	claims := s.claims(sub, AccessToken, s.accessTokenExpiry)
	claims.Role = sub.Role
	claims.EmployeeID = sub.EmployeeID
	return sign(claims, s.accessSecret)
}

// GenerateRefreshToken generates a new refresh token. Every token gets a
// unique id so two tokens issued in the same second still differ.
func (s *Service) GenerateRefreshToken(sub Subject) (string, error) {
	return sign(s.claims(sub, RefreshToken, s.refreshTokenExpiry), s.refreshSecret)
}

func (s *Service) claims(sub Subject, typ TokenType, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		UserID:    sub.UserID,
		Username:  sub.Username,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(sub.UserID, 10),
		},
	}
}

func sign(claims Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", claims.TokenType, err)
	}
	return tokenString, nil
}

// ValidateAccessToken validates and parses an access token
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.accessSecret, AccessToken)
}

// ValidateRefreshToken validates and parses a refresh token
func (s *Service) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.refreshSecret, RefreshToken)
}

// validateToken validates a token with the given secret and type
func (s *Service) validateToken(tokenString, secret string, expectedType TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedType, claims.TokenType)
	}
	return claims, nil
}

// IsExpired reports whether err came from an expired token
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
