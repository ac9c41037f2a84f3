package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ridedeck/internal/models"
	"ridedeck/internal/repositories/interfaces"
	"ridedeck/internal/validators"
	"ridedeck/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, request *validators.UpdateProfileRequest) (*models.User, error)
}

type userService struct {
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, logger *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, request *validators.UpdateProfileRequest) (*models.User, error) {
	update := &interfaces.ProfileUpdate{}
	if request.Name != nil {
		name := strings.TrimSpace(*request.Name)
		update.Name = &name
	}
	if request.Phone != nil {
		phone := strings.TrimSpace(*request.Phone)
		update.Phone = &phone
	}
	if request.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*request.Email))
		update.Email = &email
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID, update)
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, interfaces.ErrDuplicateKey):
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.LogUserAction(user.ID, "update_profile", nil)
	return user, nil
}
