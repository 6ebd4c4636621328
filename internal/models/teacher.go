package models

import "time"

// TeacherProfile represents a supervising teacher.
// TeacherNumber is the stable business identifier applications link to;
// it is distinct from the internal row id and immutable after registration.
type TeacherProfile struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	TeacherNumber string    `db:"teacher_number" json:"teacher_number"`
	FullName      string    `db:"full_name" json:"full_name"`
	Department    string    `db:"department" json:"department"`
	Phone         string    `db:"phone" json:"phone"`
	Email         string    `db:"email" json:"email"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
