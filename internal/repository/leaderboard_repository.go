package repository

import (
	"context"
	"fmt"

	"github.com/zetarewards/recognition-api/internal/models"
)

// ManagerStanding is a manager with the points assigned to their pool.
type ManagerStanding struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	DepartmentName *string `json:"department_name"`
	TotalPoints    int64   `json:"total_points"`
}

// EmployeeStanding is an employee with the points they have earned.
type EmployeeStanding struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TotalPoints int64  `json:"total_points"`
}

// ListManagerStandings retrieves every manager with assigned points, ordered by name.
// Managers without a pool report zero.
func (r *LedgerRepository) ListManagerStandings(ctx context.Context) ([]ManagerStanding, error) {
	var standings []ManagerStanding
	err := r.db.WithContext(ctx).
		Table("users").
		Select(`users.id, users.name, users.email, departments.name AS department_name,
			COALESCE(manager_points.points_assigned, 0) AS total_points`).
		Joins("LEFT JOIN departments ON departments.id = users.department_id").
		Joins("LEFT JOIN manager_points ON manager_points.manager_id = users.id").
		Where("users.role = ?", models.RoleManager).
		Order("users.name ASC, users.id ASC").
		Scan(&standings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list manager standings: %w", err)
	}
	return standings, nil
}

// ListEmployeeStandings retrieves the reports of a manager with the points
// each has earned, ordered by name.
func (r *LedgerRepository) ListEmployeeStandings(ctx context.Context, managerID uint) ([]EmployeeStanding, error) {
	var standings []EmployeeStanding
	err := r.db.WithContext(ctx).
		Table("users").
		Select(`users.id, users.name, users.email,
			(SELECT COALESCE(SUM(reward_points.points), 0) FROM reward_points
				WHERE reward_points.receiver_id = users.id) AS total_points`).
		Where("users.manager_id = ?", managerID).
		Order("users.name ASC, users.id ASC").
		Scan(&standings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list employee standings for manager %d: %w", managerID, err)
	}
	return standings, nil
}
