package models

import "time"

// StudentProfile represents a student registered on the platform.
// StudentNumber is the stable business identifier and never changes
// after registration.
type StudentProfile struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	FullName      string    `db:"full_name" json:"full_name"`
	School        string    `db:"school" json:"school"`
	Major         string    `db:"major" json:"major"`
	Grade         string    `db:"grade" json:"grade"`
	Gender        string    `db:"gender" json:"gender"`
	Phone         string    `db:"phone" json:"phone"`
	Email         string    `db:"email" json:"email"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
