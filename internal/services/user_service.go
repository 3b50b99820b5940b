package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/event-oh/server/internal/helpers"
	"github.com/event-oh/server/internal/models"
)

type UserService struct {
	userRepo  models.UserRepo
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(userRepo models.UserRepo, jwtSecret string, tokenTTL time.Duration) *UserService {
	return &UserService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Role     string
	Avatar   string
}

// Register creates a customer or vendor account and returns the user with a
// signed access token. Admin accounts are provisioned out of band, never via
// self-registration.
func (us *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, "", fmt.Errorf("%w: %v", models.ErrInvalid, err)
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleVendor {
		return nil, "", fmt.Errorf("%w: role must be customer or vendor", models.ErrInvalid)
	}

	if !helpers.IsPasswordStrong(in.Password) {
		return nil, "", fmt.Errorf("%w: password is not strong enough", models.ErrInvalid)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         role,
		AvatarURL:    in.Avatar,
	}

	created, err := us.userRepo.CreateUser(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := us.IssueToken(created)
	if err != nil {
		return nil, "", err
	}

	return created, token, nil
}

// Login verifies credentials and returns the user with a fresh token. The
// same error covers an unknown email and a wrong password.
func (us *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, "", fmt.Errorf("%w: invalid email format", models.ErrInvalid)
	}
	if password == "" {
		return nil, "", fmt.Errorf("%w: password is required", models.ErrInvalid)
	}

	user, err := us.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	if !helpers.VerifyPassword(user.PasswordHash, password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized)
	}

	token, err := us.IssueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (us *UserService) IssueToken(user *models.User) (string, error) {
	token, err := helpers.NewAccessToken(us.jwtSecret, user.ID.Hex(), user.Role, user.Email, user.Name, us.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %v", err)
	}
	return token, nil
}
