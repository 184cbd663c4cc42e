package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/reimbursement-service/internal/auth"
	"github.com/spec-kit/reimbursement-service/internal/domain"
	"github.com/spec-kit/reimbursement-service/internal/repository"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users    repository.UserRepository
	hasher   auth.Hasher
	tokenMgr *auth.TokenManager
	logger   *zap.Logger
	now      func() time.Time
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Hasher   auth.Hasher
	Tokens   *auth.TokenManager
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    deps.UserRepo,
		hasher:   deps.Hasher,
		tokenMgr: deps.Tokens,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterInput is the registration payload. An empty Group means Employee.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Group    string
}

// LoginResult carries the authenticated account and its token.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a new account. The email must not belong to any existing
// account, suspended or not.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if !validEmail(input.Email) || !validPassword(input.Password) || !validUsername(input.Username) {
		return nil, apperrors.NewInvalidParameter("Invalid register data")
	}
	role := domain.RoleEmployee
	if input.Group != "" {
		parsed, ok := domain.ParseRole(input.Group)
		if !ok {
			return nil, apperrors.NewInvalidParameter("Invalid register data")
		}
		role = parsed
	}

	exists, err := s.users.EmailExists(ctx, input.Email)
	if err != nil {
		return nil, apperrors.NewStoreQueryError("Registration failed", err)
	}
	if exists {
		return nil, apperrors.NewEmailExists()
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewStoreInsertError("Registration failed", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: digest,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// a concurrent registration won the unique index
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.NewEmailExists()
		}
		return nil, apperrors.NewStoreInsertError("Registration failed", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Login authenticates by email and password. Unknown email and wrong password
// fail identically.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.NewStoreQueryError("Login failed", err)
	}
	if !s.hasher.Matches(user.PasswordHash, password) {
		return nil, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.IssueToken(user.ID, user.PasswordHash, s.now())
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
