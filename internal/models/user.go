package models

import (
	"time"
)

// Roles.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User represents a person using the platform.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"size:255;not null" json:"name"`
	Email          string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash   string     `gorm:"column:password;size:255;not null" json:"-"`
	Role           string     `gorm:"size:20;not null;default:employee;index" json:"role"`
	Approved       bool       `gorm:"not null;default:false" json:"approved"`
	ManagerID      *uint      `gorm:"index" json:"manager_id"`
	DepartmentID   *uint      `gorm:"index" json:"department_id"`
	EmployeeCode   *string    `gorm:"column:employee_id;size:50" json:"employee_id"`
	ContactInfo    string     `gorm:"size:255" json:"contact_info"`
	ProfilePicture string     `gorm:"size:512" json:"profile_picture"`
	DateOfJoining  *time.Time `json:"date_of_joining"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// Department groups users for display purposes.
type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Department model.
func (Department) TableName() string {
	return "departments"
}
