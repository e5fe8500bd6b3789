package jwttoken

import "campuspass/internal/platform/middleware"

// MiddlewareAdapter adapts JWTService to the middleware.JWTValidator interface
// so the middleware package does not depend on jwt library types.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{
		StaffID: claims.StaffID,
		Role:    claims.Role,
	}, nil
}
