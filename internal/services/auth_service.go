package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sjperalta/devagency-api/internal/config"
	"github.com/sjperalta/devagency-api/internal/middleware"
	"github.com/sjperalta/devagency-api/internal/models"
	"github.com/sjperalta/devagency-api/internal/repository"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		now:      time.Now,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      models.UserResponse `json:"user"`
}

// Login authenticates a user and returns a signed token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive() {
		return nil, ErrInactiveAccount
	}

	if !VerifyPassword(password, user.EncryptedPassword) {
		return nil, ErrInvalidCredentials
	}

	ttl := time.Duration(s.cfg.JWTExpirationHours) * time.Hour
	claims := middleware.NewClaims(user, ttl)
	token, err := middleware.SignToken(claims, s.cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	now := s.now()
	user.LastSignInAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("record sign in: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user.ToResponse(),
	}, nil
}

// CreateUser registers a staff account with a hashed password
func (s *AuthService) CreateUser(ctx context.Context, email, password, fullName, role string) (*models.User, error) {
	verr := &ValidationError{}
	if !validEmail(trimmed(email)) {
		verr.Add("email", "is not a valid address")
	}
	if len(password) < 8 {
		verr.Add("password", "must be at least 8 characters")
	}
	if role != models.RoleAdmin && role != models.RoleManager {
		verr.Add("role", "must be admin or manager")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:             trimmed(email),
		EncryptedPassword: hash,
		FullName:          trimmed(fullName),
		Role:              role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return nil, err
	}
	return user, nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword compares a password with a hash
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
