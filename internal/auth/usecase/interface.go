package usecase

import (
	authdomain "readerdash/internal/auth/domain"
	authdto "readerdash/internal/auth/dto"
)

// AuthUsecase defines the interface for auth use cases
type AuthUsecase interface {
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(tokenString string) (*authdomain.User, error)
}
