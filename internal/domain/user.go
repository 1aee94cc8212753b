package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleEmployee Role = "Employee"
	RoleAdmin    Role = "Admin"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Position     *string   `json:"position"`
	Salary       *float64  `json:"salary"`
	EmployeeID   *string   `json:"employeeId"`
	ProfileImage *string   `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// UserBrief 是列表中联表返回的提交人信息
type UserBrief struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       Role    `json:"role"`
	EmployeeID *string `json:"employeeId"`
}

func (u *User) Brief() UserBrief {
	return UserBrief{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, EmployeeID: u.EmployeeID}
}

// Identity 是经过鉴权网关解析后的调用者身份，下游 handler 直接信任它
type Identity struct {
	UserID     int64
	Role       Role
	SuperAdmin bool
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
