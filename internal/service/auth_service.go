package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docrepo/internal/domain"
	"docrepo/internal/port"
	"docrepo/internal/session"
)

// LoginInput is the DTO for signing in.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput is the DTO for the registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	DepartmentID    *int64
	// Role defaults to employee.
	Role string
}

// AuthService manages the session token.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*session.Claims, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Me(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*session.Claims, error)
}

type authService struct {
	api    port.AuthAPI
	tokens port.TokenStore
	log    *zap.Logger
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(api port.AuthAPI, tokens port.TokenStore, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{api: api, tokens: tokens, log: log}
}

// Login exchanges credentials for a token and stores it. The returned claims
// are informational; a token that cannot be decoded still signs in.
func (s *authService) Login(ctx context.Context, input LoginInput) (*session.Claims, error) {
	resp, err := s.api.Login(ctx, domain.Credentials{
		Email:    strings.TrimSpace(input.Email),
		Password: input.Password,
	})
	if err != nil {
		return nil, err
	}
	if err := s.tokens.SetToken(ctx, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}

	claims, err := session.Inspect(resp.AccessToken)
	if err != nil {
		s.log.Debug("auth.Login: token is not a readable JWT", zap.Error(err))
		return &session.Claims{Email: strings.TrimSpace(input.Email)}, nil
	}
	return claims, nil
}

// Register checks the confirmation locally before creating the account.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Password != input.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = domain.RoleEmployee
	}
	if role != domain.RoleEmployee && role != domain.RoleManager {
		return nil, domain.ErrInvalidRole
	}

	return s.api.Register(ctx, domain.Registration{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		Password:     input.Password,
		DepartmentID: input.DepartmentID,
		Role:         &role,
	})
}

func (s *authService) Me(ctx context.Context) (*domain.User, error) {
	return s.api.Me(ctx)
}

func (s *authService) Logout(ctx context.Context) error {
	if err := s.tokens.ClearToken(ctx); err != nil {
		return fmt.Errorf("auth.Logout: %w", err)
	}
	return nil
}

// Session decodes the stored token. It returns session.ErrNoSession when
// signed out.
func (s *authService) Session(ctx context.Context) (*session.Claims, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth.Session: %w", err)
	}
	return session.Inspect(token)
}
