// Package directory manages users, departments and reporting lines.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zetarewards/recognition-api/internal/apperr"
	"github.com/zetarewards/recognition-api/internal/authz"
	"github.com/zetarewards/recognition-api/internal/models"
	"github.com/zetarewards/recognition-api/internal/repository"
	"github.com/zetarewards/recognition-api/internal/service/audit"
	"github.com/zetarewards/recognition-api/internal/service/ledger"
	"github.com/zetarewards/recognition-api/pkg/logger"
)

// Auditor records directory changes.
type Auditor interface {
	Record(ctx context.Context, actorID uint, role, action, details string)
}

// PointsReader provides the role-specific point summaries shown on /me.
type PointsReader interface {
	Balance(ctx context.Context, userID uint) (ledger.Balance, error)
	ManagerSummary(ctx context.Context, managerID uint) (ledger.ManagerSummary, error)
	AdminSummary(ctx context.Context, adminID uint) (ledger.AdminSummary, error)
}

// Service handles users and departments.
type Service struct {
	users  *repository.UserRepository
	points PointsReader
	audit  Auditor
	log    *logger.Logger
}

// NewService creates a new directory service.
func NewService(users *repository.UserRepository, points PointsReader, auditor Auditor, log *logger.Logger) *Service {
	return &Service{users: users, points: points, audit: auditor, log: log.Component("directory")}
}

// Me is the caller's profile with the point summary for their role.
type Me struct {
	*repository.UserProfile
	Points any `json:"points"`
}

// Me returns the caller's profile and point summary.
func (s *Service) Me(ctx context.Context, caller authz.Identity) (*Me, error) {
	profile, err := s.users.GetProfile(ctx, caller.ID)
	if err != nil {
		return nil, notFoundOr(err, "user", caller.ID)
	}

	me := &Me{UserProfile: profile}
	switch profile.Role {
	case models.RoleEmployee:
		me.Points, err = s.points.Balance(ctx, profile.ID)
	case models.RoleManager:
		me.Points, err = s.points.ManagerSummary(ctx, profile.ID)
	case models.RoleAdmin:
		me.Points, err = s.points.AdminSummary(ctx, profile.ID)
	}
	if err != nil {
		return nil, err
	}
	return me, nil
}

// ListUsers lists users ordered by name, optionally filtered by role.
func (s *Service) ListUsers(ctx context.Context, role string) ([]repository.UserProfile, error) {
	if role != "" && !models.ValidRole(role) {
		return nil, apperr.Validation("unknown role %q", role)
	}
	users, err := s.users.List(ctx, role)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list users")
	}
	return users, nil
}

// SetApproval approves or unapproves a user's account.
func (s *Service) SetApproval(ctx context.Context, admin authz.Identity, userID uint, approved bool) (*repository.UserProfile, error) {
	if userID == admin.ID && !approved {
		return nil, apperr.Validation("cannot unapprove your own account")
	}
	if err := s.users.Update(ctx, userID, map[string]any{"approved": approved}); err != nil {
		return nil, notFoundOr(err, "user", userID)
	}

	s.record(ctx, admin, audit.ActionUserApproval, fmt.Sprintf("User %d approved=%t", userID, approved))
	return s.profile(ctx, userID)
}

// UserUpdate holds the admin-editable fields of a user. Nil fields are left
// unchanged; ClearManager and ClearDepartment remove the assignment.
type UserUpdate struct {
	Role            *string    `json:"role"`
	ManagerID       *uint      `json:"manager_id"`
	ClearManager    bool       `json:"clear_manager"`
	DepartmentID    *uint      `json:"department_id"`
	ClearDepartment bool       `json:"clear_department"`
	EmployeeCode    *string    `json:"employee_id"`
	DateOfJoining   *time.Time `json:"date_of_joining"`
}

// UpdateUser changes a user's role, manager, department, employee id or joining date.
func (s *Service) UpdateUser(ctx context.Context, admin authz.Identity, userID uint, in UserUpdate) (*repository.UserProfile, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "user", userID)
	}

	fields := map[string]any{}
	if in.Role != nil {
		if !models.ValidRole(*in.Role) {
			return nil, apperr.Validation("unknown role %q", *in.Role)
		}
		if userID == admin.ID && *in.Role != models.RoleAdmin {
			return nil, apperr.Validation("cannot change your own role")
		}
		fields["role"] = *in.Role
	}

	switch {
	case in.ClearManager:
		fields["manager_id"] = nil
	case in.ManagerID != nil:
		if *in.ManagerID == userID {
			return nil, apperr.Validation("a user cannot manage themselves")
		}
		manager, err := s.users.GetByID(ctx, *in.ManagerID)
		if err != nil {
			return nil, notFoundOr(err, "manager", *in.ManagerID)
		}
		if manager.Role != models.RoleManager {
			return nil, apperr.Validation("user %d is not a manager", manager.ID)
		}
		fields["manager_id"] = manager.ID
	}

	switch {
	case in.ClearDepartment:
		fields["department_id"] = nil
	case in.DepartmentID != nil:
		if _, err := s.users.GetDepartment(ctx, *in.DepartmentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.Validation("department %d does not exist", *in.DepartmentID)
			}
			return nil, apperr.Internal(err, "failed to load department")
		}
		fields["department_id"] = *in.DepartmentID
	}

	if in.EmployeeCode != nil {
		fields["employee_id"] = strings.TrimSpace(*in.EmployeeCode)
	}
	if in.DateOfJoining != nil {
		fields["date_of_joining"] = *in.DateOfJoining
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("nothing to update")
	}

	if err := s.users.Update(ctx, userID, fields); err != nil {
		return nil, notFoundOr(err, "user", userID)
	}

	s.record(ctx, admin, audit.ActionUserUpdated, fmt.Sprintf("Updated user %d", userID))
	return s.profile(ctx, userID)
}

// DeleteUser removes a user. Users referenced by the ledger cannot be deleted,
// since ledger rows are never removed; unapprove them instead.
func (s *Service) DeleteUser(ctx context.Context, admin authz.Identity, userID uint) error {
	if userID == admin.ID {
		return apperr.Validation("cannot delete your own account")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return notFoundOr(err, "user", userID)
	}

	referenced, err := s.users.HasLedgerHistory(ctx, userID)
	if err != nil {
		return apperr.Internal(err, "failed to check ledger history")
	}
	if referenced {
		return apperr.Conflict("user %d has ledger history and cannot be deleted", userID)
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return notFoundOr(err, "user", userID)
	}

	s.record(ctx, admin, audit.ActionUserDeleted, fmt.Sprintf("Deleted user %d", userID))
	s.log.Info().Uint("admin_id", admin.ID).Uint("user_id", userID).Msg("User deleted")
	return nil
}

// MyManager returns the manager of an employee.
func (s *Service) MyManager(ctx context.Context, employee authz.Identity) (*models.User, error) {
	user, err := s.users.GetByID(ctx, employee.ID)
	if err != nil {
		return nil, notFoundOr(err, "user", employee.ID)
	}
	if user.ManagerID == nil {
		return nil, apperr.NotFound("no manager assigned")
	}
	manager, err := s.users.GetByID(ctx, *user.ManagerID)
	if err != nil {
		return nil, notFoundOr(err, "manager", *user.ManagerID)
	}
	return manager, nil
}

// MyEmployees returns the users reporting to a manager.
func (s *Service) MyEmployees(ctx context.Context, manager authz.Identity) ([]models.User, error) {
	users, err := s.users.ListByManager(ctx, manager.ID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list employees")
	}
	return users, nil
}

// ProfileUpdate holds the self-editable fields of a profile.
type ProfileUpdate struct {
	Name           *string `json:"name"`
	ContactInfo    *string `json:"contact_info"`
	ProfilePicture *string `json:"profile_picture"`
}

// UpdateProfile lets users edit their own name and contact details.
func (s *Service) UpdateProfile(ctx context.Context, caller authz.Identity, in ProfileUpdate) (*repository.UserProfile, error) {
	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation("name must not be blank")
		}
		fields["name"] = name
	}
	if in.ContactInfo != nil {
		fields["contact_info"] = strings.TrimSpace(*in.ContactInfo)
	}
	if in.ProfilePicture != nil {
		fields["profile_picture"] = strings.TrimSpace(*in.ProfilePicture)
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("nothing to update")
	}

	if err := s.users.Update(ctx, caller.ID, fields); err != nil {
		return nil, notFoundOr(err, "user", caller.ID)
	}
	return s.profile(ctx, caller.ID)
}

// ListDepartments lists departments by name.
func (s *Service) ListDepartments(ctx context.Context) ([]models.Department, error) {
	depts, err := s.users.ListDepartments(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list departments")
	}
	return depts, nil
}

// CreateDepartment creates a department with a unique name.
func (s *Service) CreateDepartment(ctx context.Context, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	dept := &models.Department{Name: name}
	if err := s.users.CreateDepartment(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("department %q already exists", name)
		}
		return nil, apperr.Internal(err, "failed to create department")
	}
	return dept, nil
}

// RenameDepartment renames a department.
func (s *Service) RenameDepartment(ctx context.Context, id uint, name string) (*models.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if err := s.users.RenameDepartment(ctx, id, name); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("department %q already exists", name)
		}
		return nil, notFoundOr(err, "department", id)
	}
	dept, err := s.users.GetDepartment(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "department", id)
	}
	return dept, nil
}

// DeleteDepartment deletes a department. Its members keep their accounts.
func (s *Service) DeleteDepartment(ctx context.Context, id uint) error {
	if err := s.users.DeleteDepartment(ctx, id); err != nil {
		return notFoundOr(err, "department", id)
	}
	return nil
}

func (s *Service) profile(ctx context.Context, userID uint) (*repository.UserProfile, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user", userID)
	}
	return profile, nil
}

func (s *Service) record(ctx context.Context, actor authz.Identity, action, details string) {
	if s.audit != nil {
		s.audit.Record(ctx, actor.ID, actor.Role, action, details)
	}
}

func notFoundOr(err error, what string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("%s %d not found", what, id)
	}
	return apperr.Internal(err, "failed to access "+what)
}
