package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"marketplace/business/txn"
	"marketplace/domain"
	"marketplace/pkg/logger"
	"marketplace/pkg/utils"
)

// UserRepository contract interface
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, id string) (domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	FindAllUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) error
}

type ProductFinder interface {
	FindProductByID(ctx context.Context, id string) (domain.Product, error)
}

// TokenGenerator issues session tokens after a successful login.
type TokenGenerator interface {
	GenerateJWT(userID, role string) (string, error)
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

var ErrInvalidCredentials = &domain.Error{Kind: domain.ErrAuthorization, Msg: "invalid email or password"}

type UserService struct {
	userRepo    UserRepository
	productRepo ProductFinder
	tokens      TokenGenerator
	unit        *txn.Unit
	validate    *validator.Validate
	now         txn.Clock
}

func NewUserService(
	userRepo UserRepository,
	productRepo ProductFinder,
	tokens TokenGenerator,
	unit *txn.Unit,
	validate *validator.Validate,
	now txn.Clock,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		productRepo: productRepo,
		tokens:      tokens,
		unit:        unit,
		validate:    validate,
		now:         now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer or vendor account. Admin accounts are only
// created by CreateAdmin.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	role := domain.RoleCustomer
	if in.Role != "" {
		r, ok := domain.ParseRole(in.Role)
		if !ok || r == domain.RoleAdmin {
			return domain.User{}, domain.NewValidation("role must be customer or vendor")
		}
		role = r
	}

	return s.create(ctx, in, role)
}

func (s *UserService) CreateAdmin(ctx context.Context, in RegisterInput) (domain.User, error) {
	return s.create(ctx, in, domain.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, in RegisterInput, role domain.Role) (domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if err := s.validate.Var(in.Email, "required,email"); err != nil {
		return domain.User{}, domain.NewValidation("invalid email format")
	}
	if err := s.validate.Var(in.Password, "required,min=6"); err != nil {
		return domain.User{}, domain.NewValidation("password must be at least 6 characters")
	}
	if err := s.validate.Struct(in); err != nil {
		return domain.User{}, domain.NewValidation(fmt.Sprintf("invalid registration data: %v", err))
	}

	passwordHash, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(passwordHash),
		Role:         role,
		CreatedAt:    s.now(),
	}

	err = s.unit.Do(ctx, func() (bool, error) {
		_, err := s.userRepo.FindUserByEmail(ctx, in.Email)
		switch {
		case err == nil:
			return false, domain.NewStateConflict("email already registered")
		case !errors.Is(err, domain.ErrNotFound):
			return false, err
		}

		if err := s.userRepo.CreateUser(ctx, newUser); err != nil {
			return false, fmt.Errorf("failed to create user: %w", err)
		}
		return true, nil
	})
	if err != nil {
		logger.Warn("registration rejected", "email", in.Email, "error", err)
		return domain.User{}, err
	}

	logger.Info("user registered", "user_id", newUser.ID, "role", role)

	newUser.PasswordHash = ""
	return newUser, nil
}

// Login checks the credentials and returns a signed session token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}

	if !utils.CheckPassword(password, user.PasswordHash) {
		logger.Warn("user password incorrect", "user_id", user.ID)
		return "", domain.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateJWT(user.ID, string(user.Role))
	if err != nil {
		logger.Error("failed to generate token", "error", err)
		return "", domain.User{}, fmt.Errorf("failed to generate token: %w", err)
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.NewAuthorization("admin access required")
	}

	users, err := s.userRepo.FindAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i].PasswordHash = ""
	}

	return users, nil
}
