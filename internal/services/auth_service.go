package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/repositories/interfaces"
	"github.com/2nas159/car-rental-app/internal/repositories/mongodb"
	"github.com/2nas159/car-rental-app/internal/utils"
	"github.com/2nas159/car-rental-app/internal/validators"
	"github.com/2nas159/car-rental-app/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, request *validators.RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *validators.LoginRequest) (*AuthResponse, error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
}

type AuthResponse struct {
	User  *models.User         `json:"user"`
	Token *utils.TokenResponse `json:"token"`
}

type authService struct {
	userRepo  interfaces.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	logger    *logger.Logger
}

func NewAuthService(userRepo interfaces.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *logger.Logger) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *authService) Register(ctx context.Context, request *validators.RegisterRequest) (*AuthResponse, error) {
	if errs := validators.ValidateStruct(request); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, errs.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		Name:         strings.TrimSpace(request.Name),
		Email:        strings.ToLower(strings.TrimSpace(request.Email)),
		PasswordHash: string(hash),
		Role:         models.UserRole(request.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, mongodb.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, utils.ErrUserExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role), user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.WithUserID(user.ID).WithField("role", user.Role).Info("User registered")

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, request *validators.LoginRequest) (*AuthResponse, error) {
	if errs := validators.ValidateStruct(request); errs != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, errs.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(request.Email)))
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, err := utils.GenerateToken(user.ID, string(user.Role), user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.WithUserID(user.ID).Info("User logged in")

	return &AuthResponse{User: user, Token: token}, nil
}

func (s *authService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
