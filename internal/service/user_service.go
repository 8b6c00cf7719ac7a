package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vaibhavvatsbhartiya/storefront/internal/domain/entity"
	"github.com/vaibhavvatsbhartiya/storefront/internal/platform/logger"
	"github.com/vaibhavvatsbhartiya/storefront/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

type UserService interface {
	Register(ctx context.Context, params RegisterParams) (*entity.User, error)
	GetByID(ctx context.Context, userID string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, log logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		log:      log,
	}
}

func (s *userService) Register(ctx context.Context, params RegisterParams) (*entity.User, error) {
	name := strings.TrimSpace(params.Name)
	emailAddr := strings.ToLower(strings.TrimSpace(params.Email))

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case !strings.Contains(emailAddr, "@"):
		return nil, fmt.Errorf("%w: email is invalid", ErrInvalidInput)
	case len(params.Password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Name:         name,
		Email:        emailAddr,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			s.log.Warnf("Registration rejected, email %s already in use", emailAddr)
			return nil, err
		}
		s.log.Errorf("Failed to create user %s: %v", emailAddr, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}
	user.ID = id
	s.log.Infof("User registered: ID=%s, Email=%s", user.ID, user.Email)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]entity.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.log.Errorf("Failed to list users: %v", err)
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	return users, nil
}
