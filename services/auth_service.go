package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
	"github.com/jaypeewhat/ThriftStore/repository"
	"github.com/jaypeewhat/ThriftStore/utils"
)

// AuthService handles register/login and the per-request session check.
type AuthService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		userRepo:  repository.NewUserRepository(db),
		jwtSecret: secret,
		jwtTTL:    ttl,
	}
}

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FullName  string `json:"full_name" binding:"required"`
	Role      string `json:"role" binding:"omitempty,oneof=buyer seller"`
	Phone     string `json:"phone"`
	StoreName string `json:"store_name"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.Profile, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := in.Role
	if role == "" {
		role = entity.RoleBuyer
	}
	if role != entity.RoleBuyer && role != entity.RoleSeller {
		return nil, apperr.Invalid("role", "must be buyer or seller")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	p := &entity.Profile{
		Email:     email,
		Password:  string(hashed),
		FullName:  strings.TrimSpace(in.FullName),
		Role:      role,
		Phone:     strings.TrimSpace(in.Phone),
		StoreName: strings.TrimSpace(in.StoreName),
	}
	if err := s.userRepo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrEmailTaken
		}
		return nil, err
	}
	return p, nil
}

// Login refuses suspended accounts even with the right password.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *entity.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, apperr.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(password)); err != nil {
		return "", nil, apperr.ErrUnauthorized
	}
	if p.IsSuspended {
		return "", nil, apperr.ErrSuspended
	}

	token, err := utils.GenerateToken(p.ID, p.Role, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return "", nil, err
	}
	return token, p, nil
}

// Authorize resolves a token into a live, unsuspended profile.
func (s *AuthService) Authorize(ctx context.Context, token string) (*entity.Profile, error) {
	claims, err := utils.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}
	p, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if p.IsSuspended {
		return nil, apperr.ErrSuspended
	}
	return p, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*entity.Profile, error) {
	p, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	return p, err
}

// ----- Admin -----

func (s *AuthService) ListUsers(ctx context.Context, role string) ([]entity.Profile, error) {
	return s.userRepo.List(ctx, role)
}

// SetSuspended takes effect on the user's next request.
func (s *AuthService) SetSuspended(ctx context.Context, userID string, suspended bool) (*entity.Profile, error) {
	p, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Role == entity.RoleAdmin {
		return nil, apperr.ErrForbidden
	}
	if _, err := s.userRepo.SetSuspended(ctx, userID, suspended); err != nil {
		return nil, err
	}
	p.IsSuspended = suspended
	return p, nil
}
