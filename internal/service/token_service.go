package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/sma-dashboard/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
	"github.com/noah-isme/sma-dashboard/pkg/config"
)

// TokenService signs and validates HS256 bearer tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenService constructs a token service from the JWT config.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	expiry := cfg.Expiration
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenService{secret: []byte(cfg.Secret), expiry: expiry, now: time.Now}
}

// Issue signs a token for subject.
func (s *TokenService) Issue(req models.IssueTokenRequest) (string, time.Time, error) {
	if req.Subject == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "subject is required")
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.expiry)
	claims := models.JWTClaims{
		Name: req.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.Subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a bearer token.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}
