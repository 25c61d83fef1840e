package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/Adarsh0311/shopsphere-backend/auth"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db     *gorm.DB
	tokens *auth.TokenIssuer
}

func NewUserService(db *gorm.DB, tokens *auth.TokenIssuer) *UserService {
	return &UserService{db: db, tokens: tokens}
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return UserResponse{}, apperror.BadRequest("username, email and password are required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
			return apperror.Internal(err, "check username")
		}
		if n > 0 {
			return apperror.Conflict("username is already taken")
		}
		if err := tx.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&n).Error; err != nil {
			return apperror.Internal(err, "check email")
		}
		if n > 0 {
			return apperror.Conflict("email is already registered")
		}

		var role models.Role
		if err := tx.Where("name = ?", models.RoleUser).First(&role).Error; err != nil {
			return apperror.Internal(err, "default role %s is not seeded", models.RoleUser)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperror.Internal(err, "hash password")
		}

		user = models.User{
			Username:     username,
			PasswordHash: string(hash),
			Email:        email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			PhoneNumber:  req.PhoneNumber,
			Roles:        []models.Role{role},
		}
		if err := tx.Create(&user).Error; err != nil {
			return apperror.Internal(err, "create user")
		}
		return nil
	})
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(user), nil
}

// Login checks the password and issues a bearer token. Unknown users and
// wrong passwords get the same answer.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AuthResponse{}, apperror.Unauthorized("invalid username or password")
	}
	if err != nil {
		return AuthResponse{}, apperror.Internal(err, "load user for login")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return AuthResponse{}, apperror.Unauthorized("invalid username or password")
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResponse{}, apperror.Internal(err, "issue token")
	}
	return AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (UserResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return UserResponse{}, apperror.NotFound("user not found with id: %s", userID)
	}
	if err != nil {
		return UserResponse{}, apperror.Internal(err, "load user %s", userID)
	}
	return toUserResponse(user), nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Roles").Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperror.Internal(err, "list users")
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}
