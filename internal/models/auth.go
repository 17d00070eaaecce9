package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the payload of a dashboard bearer token. Subject names the
// operator the token was issued to.
type JWTClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IssueTokenRequest asks the development issuer for a token.
type IssueTokenRequest struct {
	Subject string `json:"subject" validate:"required"`
	Name    string `json:"name"`
}

// IssuedToken is returned by the development issuer.
type IssuedToken struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}
