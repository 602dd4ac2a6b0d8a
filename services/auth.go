package services

import (
	"context"

	"github.com/questforge/gateway/entities"
	"github.com/questforge/gateway/repositories"
)

type AuthService struct {
	auth repositories.AuthProvider
}

func NewAuthService(auth repositories.AuthProvider) *AuthService {
	return &AuthService{auth: auth}
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*entities.Account, *entities.Session, error) {
	return s.auth.CreateAccount(ctx, email, password)
}

func (s *AuthService) LogIn(ctx context.Context, email, password string) (*entities.LogInResult, error) {
	account, session, err := s.auth.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &entities.LogInResult{User: account, Session: session}, nil
}
