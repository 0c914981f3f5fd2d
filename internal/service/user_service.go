package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estatehub/internal/auth"
	"estatehub/internal/domain"
	"estatehub/internal/models"

	"github.com/rs/zerolog"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

type UserService struct {
	repo   domain.UserRepository
	tokens TokenIssuer
	logger *zerolog.Logger
}

func NewUserService(repo domain.UserRepository, tokens TokenIssuer, logger *zerolog.Logger) *UserService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &UserService{repo: repo, tokens: tokens, logger: logger}
}

// Registration describes a new account.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      models.Role
}

// Register creates an active account with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if reg.Role == "" {
		reg.Role = models.RoleBuyer
	}
	if !reg.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, reg.Role)
	}

	hash, err := auth.HashPassword(reg.Password)
	if errors.Is(err, auth.ErrWeakPassword) {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Phone:        reg.Phone,
		Role:         reg.Role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("name", user.FullName()).Str("role", string(user.Role)).Msg("user registered")
	return user, nil
}

// Login checks the credentials and returns a signed access token. Unknown
// emails, wrong passwords and inactive accounts all yield ErrUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (string, time.Time, *models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, domain.ErrNotFound) {
		return "", time.Time{}, nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Warn().Int64("user_id", user.ID).Msg("rejected login")
		return "", time.Time{}, nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expires, user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}
