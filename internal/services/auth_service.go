package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridedeck/internal/config"
	"ridedeck/internal/models"
	"ridedeck/internal/repositories/interfaces"
	"ridedeck/internal/utils"
	"ridedeck/internal/validators"
	"ridedeck/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, request *validators.RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *validators.LoginRequest) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

// AuthResponse is the user record with a signed access token alongside it.
type AuthResponse struct {
	*models.User
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"`
}

type authService struct {
	userRepo interfaces.UserRepository
	security *config.SecurityConfig
	logger   *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, security *config.SecurityConfig, logger *logger.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		security: security,
		logger:   logger,
	}
}

func (s *authService) Register(ctx context.Context, request *validators.RegisterRequest) (*AuthResponse, error) {
	request.Normalize()

	if _, err := s.userRepo.GetByPhone(ctx, request.Phone); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := &models.User{
		Name:               request.Name,
		Phone:              request.Phone,
		Email:              request.Email,
		Role:               models.UserRole(request.Role),
		VehicleType:        models.VehicleType(request.VehicleType),
		VehicleNumber:      request.VehicleNumber,
		LicenseNumber:      request.LicenseNumber,
		SubscriptionStatus: models.SubscriptionStatusNone,
	}

	if request.Password != "" {
		if len(request.Password) < s.security.PasswordMinLength {
			return nil, validators.NewValidationError("password",
				fmt.Sprintf("password must be at least %d characters long", s.security.PasswordMinLength))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.Password = string(hash)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Covers a concurrent registration with the same phone or email.
		if errors.Is(err, interfaces.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.LogUserAction(user.ID, "register", map[string]interface{}{
		"role":  user.Role,
		"phone": utils.MaskPhone(user.Phone),
	})

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, request *validators.LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByPhone(ctx, request.Phone)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Accounts created without a password keep phone-only login.
	if user.HasPassword() {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)); err != nil {
			s.logger.LogSecurityEvent("login_failed", "medium", map[string]interface{}{
				"user_id": user.ID.Hex(),
			})
			return nil, ErrInvalidCredentials
		}
	}

	s.logger.LogUserAction(user.ID, "login", nil)

	return s.issueToken(user)
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := utils.ValidateToken(token, s.security.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *authService) issueToken(user *models.User) (*AuthResponse, error) {
	ttl := s.security.JWTAccessTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	token, err := utils.GenerateAccessToken(user.ID, string(user.Role), user.Phone, s.security.JWTSecret, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{
		User:      user,
		Token:     token.Token,
		TokenType: token.TokenType,
		ExpiresIn: token.ExpiresIn,
	}, nil
}
