package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-dashboard/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
	"github.com/noah-isme/sma-dashboard/pkg/config"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "secret", Expiration: time.Hour})

	token, expires, err := svc.Issue(models.IssueTokenRequest{Subject: "admin", Name: "Admin"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "Admin", claims.Name)
}

func TestTokenServiceRejectsExpiredAndForeign(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "secret", Expiration: time.Minute})
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := svc.Issue(models.IssueTokenRequest{Subject: "admin"})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)

	other := NewTokenService(config.JWTConfig{Secret: "other"})
	foreign, _, err := other.Issue(models.IssueTokenRequest{Subject: "admin"})
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, models.JWTClaims{})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)
}

func TestTokenServiceRequiresSubject(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "secret"})
	_, _, err := svc.Issue(models.IssueTokenRequest{})
	assert.Error(t, err)
}
