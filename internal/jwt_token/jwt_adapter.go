package jwttoken

import (
	authmw "navbat/pkg/platform/middleware/auth"
)

// ToVerifiedClaims maps token claims to the gate's view. The role is passed
// through as text; the gate decides what it means.
func ToVerifiedClaims(claims *Claims) *authmw.Claims {
	return &authmw.Claims{
		Subject: claims.Subject,
		Role:    claims.Role,
		JTI:     claims.ID,
	}
}

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) Verify(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToVerifiedClaims(claims), nil
}
