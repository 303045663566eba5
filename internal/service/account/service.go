// Package account handles signup, login and password changes.
package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/auth"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/internal/service/audit"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Auditor records account events.
type Auditor interface {
	Record(ctx context.Context, actorID uint, role, action, details string)
}

// Service handles account lifecycle.
type Service struct {
	users      *repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	audit      Auditor
	log        *logger.Logger
}

// NewService creates a new account service.
func NewService(users *repository.UserRepository, tokens *auth.TokenManager, bcryptCost int, auditor Auditor, log *logger.Logger) *Service {
	return &Service{users: users, tokens: tokens, bcryptCost: bcryptCost, audit: auditor, log: log.Component("account")}
}

// SignupInput is a self-registration request.
type SignupInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	DepartmentID *uint  `json:"department_id"`
}

// Signup registers a new account awaiting admin approval. Admin accounts
// cannot be self-registered.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}

	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperr.Validation("invalid email address")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}
	if in.Role != models.RoleEmployee && in.Role != models.RoleManager {
		return nil, apperr.Validation("role must be %q or %q", models.RoleEmployee, models.RoleManager)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		DepartmentID: in.DepartmentID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email %s is already registered", in.Email)
		}
		return nil, apperr.Internal(err, "failed to create user")
	}

	s.record(ctx, user, audit.ActionSignup, "Account created, awaiting approval")
	s.log.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("User signed up")
	return user, nil
}

// Session is the result of a successful login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login checks credentials and issues a bearer token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		s.log.Warn().Uint("user_id", user.ID).Msg("Failed login attempt")
		return nil, apperr.Unauthorized("invalid email or password")
	}
	if !user.Approved {
		return nil, apperr.Forbidden("account is awaiting admin approval")
	}

	token, err := s.tokens.Issue(authz.Identity{ID: user.ID, Role: user.Role})
	if err != nil {
		return nil, apperr.Internal(err, "failed to issue token")
	}

	s.record(ctx, user, audit.ActionLogin, "Logged in")
	return &Session{Token: token, User: user}, nil
}

// ForgotPassword acknowledges a reset request. No email is sent; the response
// is the same whether or not the address is registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) string {
	email = normalizeEmail(email)
	if user, err := s.users.GetByEmail(ctx, email); err == nil {
		s.log.Info().Uint("user_id", user.ID).Msg("Password reset requested")
	}
	return "If the address is registered, password reset instructions have been sent."
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, caller authz.Identity, current, next string) error {
	if len(next) < MinPasswordLength {
		return apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}

	user, err := s.users.GetByID(ctx, caller.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user %d not found", caller.ID)
	}
	if err != nil {
		return apperr.Internal(err, "failed to load user")
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return apperr.Validation("current password is incorrect")
	}

	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperr.Internal(err, "failed to hash password")
	}
	if err := s.users.Update(ctx, user.ID, map[string]any{"password": hash}); err != nil {
		return apperr.Internal(err, "failed to update password")
	}

	s.record(ctx, user, audit.ActionPasswordChanged, "Password changed")
	return nil
}

func (s *Service) record(ctx context.Context, user *models.User, action, details string) {
	if s.audit != nil {
		s.audit.Record(ctx, user.ID, user.Role, action, details)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
