package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/xerp/xerp/internal/config"
)

// JWTService verifies HS256 bearer tokens issued by an upstream identity
// provider. This service never issues tokens itself.
type JWTService struct {
	secretKey []byte
	logger    *logrus.Logger
}

// NewJWTService returns nil when no secret is configured; callers treat a nil
// service as "verification disabled".
func NewJWTService(cfg *config.JWTConfig, logger *logrus.Logger) (*JWTService, error) {
	if cfg.SecretKey == "" {
		return nil, nil
	}

	secretKey := []byte(cfg.SecretKey)
	if len(secretKey) < 32 {
		return nil, fmt.Errorf("secret key must be at least 32 bytes")
	}

	return &JWTService{
		secretKey: secretKey,
		logger:    logger,
	}, nil
}

type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (s *JWTService) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
