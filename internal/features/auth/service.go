package auth

import (
	"context"
	"errors"
	"time"

	"go-procure/internal/features/user"
	"go-procure/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, department, role string) (*user.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type AuthServiceImpl struct {
	UserRepo user.UserRepository
}

func NewAuthService(userRepo user.UserRepository) AuthService {
	return &AuthServiceImpl{UserRepo: userRepo}
}

func (s *AuthServiceImpl) Register(ctx context.Context, username, password, email, department, role string) (*user.User, error) {
	existing, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if role == "" {
		role = "create"
	}

	newUser := &user.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		Password:   string(hashed),
		Email:      email,
		Department: department,
		Role:       role,
		Status:     "active",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.UserRepo.Create(ctx, newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, error) {
	usr, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil || usr == nil {
		return "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	if usr.Status != "active" {
		return "", errors.New("account inactive")
	}

	return utils.GenerateToken(usr.ID, usr.Email, usr.Department, usr.Role)
}
