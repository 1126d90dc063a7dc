package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tilemart/tilemart-api/internal/domain"
	"github.com/tilemart/tilemart-api/internal/domain/entity"
	"github.com/tilemart/tilemart-api/internal/domain/repository"
	"github.com/tilemart/tilemart-api/pkg/jwt"
)

// JWTConfig holds token generation settings.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase handles login and account creation for backoffice users.
type UseCase struct {
	users  repository.UserRepository
	jwtCfg JWTConfig
}

// New builds the use case.
func New(users repository.UserRepository, jwtCfg JWTConfig) *UseCase {
	return &UseCase{users: users, jwtCfg: jwtCfg}
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token string
	User  *entity.User
}

// Login verifies the identifier/password pair and issues a JWT. The
// identifier matches either email or phone; inactive accounts never match.
func (uc *UseCase) Login(identifier, password string) (*LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: identifier and password are required", domain.ErrInvalidInput)
	}
	user, err := uc.users.GetByIdentifier(identifier)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	user.PasswordHash = ""
	return &LoginResult{Token: token, User: user}, nil
}

// CreateUserInput is the account creation form.
type CreateUserInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
}

// CreateUser hashes the password and persists the account. Role defaults to
// staff.
func (uc *UseCase) CreateUser(in CreateUserInput) (*entity.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	existing, err := uc.users.GetByIdentifier(in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email %s: %w", in.Email, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user with email %s already exists", domain.ErrDuplicate, in.Email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := in.Role
	if role == "" {
		role = entity.RoleStaff
	}
	name := in.Name
	if name == "" {
		name = in.Email
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Me returns the account behind a token subject.
func (uc *UseCase) Me(userID string) (*entity.User, error) {
	user, err := uc.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	user.PasswordHash = ""
	return user, nil
}
