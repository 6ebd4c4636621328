package models

import (
	"fmt"
	"time"
)

// ApplicationStatus is the approval state of a competition application.
// Transitions are one-directional: pending moves to exactly one of
// approved, rejected or cancelled and never leaves it.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCancelled ApplicationStatus = "cancelled"
)

// Terminal reports whether the status permits no further transition.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected || s == ApplicationCancelled
}

// ProcessStatus is the overall workflow completion flag, independent of
// the approval status.
type ProcessStatus string

const (
	ProcessOngoing ProcessStatus = "ongoing"
	ProcessEnded   ProcessStatus = "ended"
)

// AttachmentKind names the three optional evidence attachments.
type AttachmentKind string

const (
	AttachmentPhoto       AttachmentKind = "photo"
	AttachmentSummary     AttachmentKind = "summary"
	AttachmentCertificate AttachmentKind = "certificate"
)

// Valid reports whether the kind is one of the three known attachments.
func (k AttachmentKind) Valid() bool {
	switch k {
	case AttachmentPhoto, AttachmentSummary, AttachmentCertificate:
		return true
	default:
		return false
	}
}

// ContentType returns the MIME type served for the attachment kind.
func (k AttachmentKind) ContentType() string {
	if k == AttachmentPhoto {
		return "image/jpeg"
	}
	return "application/pdf"
}

// Ext returns the canonical file extension for the attachment kind.
func (k AttachmentKind) Ext() string {
	if k == AttachmentPhoto {
		return ".jpg"
	}
	return ".pdf"
}

// Filename builds the canonical attachment filename for an application.
func (k AttachmentKind) Filename(applicationID int64) string {
	return fmt.Sprintf("%s_%d%s", k, applicationID, k.Ext())
}

// Application is a student's request to participate in a competition
// under a supervising teacher. The student, competition and teacher
// links are immutable after creation; the teacher is referenced by
// business number, not internal row id.
type Application struct {
	ID                int64             `db:"id" json:"id"`
	StudentID         string            `db:"student_id" json:"student_id"`
	CompetitionID     int64             `db:"competition_id" json:"competition_id"`
	TeacherNumber     string            `db:"teacher_number" json:"teacher_number"`
	ApplicationStatus ApplicationStatus `db:"application_status" json:"application_status"`
	ProcessStatus     ProcessStatus     `db:"process_status" json:"process_status"`
	ContactInfo       string            `db:"contact_info" json:"contact_info"`
	Description       *string           `db:"description" json:"description,omitempty"`
	Photo             *string           `db:"photo" json:"photo,omitempty"`
	Summary           *string           `db:"summary" json:"summary,omitempty"`
	Certificate       *string           `db:"certificate" json:"certificate,omitempty"`
	SubmissionTime    time.Time         `db:"submission_time" json:"submission_time"`
	UpdateTime        time.Time         `db:"update_time" json:"update_time"`
}

// AttachmentPath returns the stored relative path for the given kind,
// or nil when nothing has been uploaded.
func (a *Application) AttachmentPath(kind AttachmentKind) *string {
	switch kind {
	case AttachmentPhoto:
		return a.Photo
	case AttachmentSummary:
		return a.Summary
	case AttachmentCertificate:
		return a.Certificate
	default:
		return nil
	}
}

// ApplicationDetail joins the application with the display fields of its
// student, competition and teacher.
type ApplicationDetail struct {
	Application
	StudentName     string `db:"student_name" json:"student_name"`
	StudentNumber   string `db:"student_number" json:"student_number"`
	CompetitionName string `db:"competition_name" json:"competition_name"`
	CompetitionType string `db:"competition_type" json:"competition_type"`
	TeacherName     string `db:"teacher_name" json:"teacher_name"`

	// Attached by the service layer, not part of the joined row.
	Reimbursement *Reimbursement `db:"-" json:"reimbursement,omitempty"`
}

// ApplicationFilter captures list query options for applications.
type ApplicationFilter struct {
	ApplicationStatus *ApplicationStatus
	ProcessStatus     *ProcessStatus
	Page              int
	PageSize          int
}
