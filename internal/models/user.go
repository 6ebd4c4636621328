package models

import "time"

// UserRole represents the available account roles.
type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleTeacher UserRole = "TEACHER"
)

// User represents an application user stored in the users table.
// Exactly one of StudentNumber/TeacherNumber is set, matching the role.
type User struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Role          UserRole  `db:"role" json:"role"`
	StudentNumber *string   `db:"student_number" json:"student_number,omitempty"`
	TeacherNumber *string   `db:"teacher_number" json:"teacher_number,omitempty"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Number returns the business identifier matching the user's role.
func (u *User) Number() string {
	switch u.Role {
	case RoleStudent:
		if u.StudentNumber != nil {
			return *u.StudentNumber
		}
	case RoleTeacher:
		if u.TeacherNumber != nil {
			return *u.TeacherNumber
		}
	}
	return ""
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
