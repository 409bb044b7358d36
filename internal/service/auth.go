package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ecommerce-backend/internal/apperr"
	"ecommerce-backend/internal/config"
	"ecommerce-backend/internal/dto"
	"ecommerce-backend/internal/model"
	"ecommerce-backend/internal/repository"
	"ecommerce-backend/internal/token"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type authServiceImpl struct {
	userRepo repository.UserRepository
	jwtCfg   config.JWT
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg config.JWT) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if len(name) < 3 || len(name) > 50 {
		return nil, apperr.InvalidInput("name must be between 3 and 50 characters")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.InvalidInput("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.InvalidInput("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Unauthenticated("invalid email or password")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}

	return s.issueToken(user)
}

func (s *authServiceImpl) issueToken(user *model.User) (*dto.AuthResponse, error) {
	signed, err := token.Sign(s.jwtCfg.Secret, s.jwtCfg.TTL, user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: signed}, nil
}
