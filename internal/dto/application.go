package dto

import (
	"github.com/SONDER730/competition-platform/internal/models"
)

// CreateApplicationRequest captures POST /applications payload.
type CreateApplicationRequest struct {
	CompetitionID int64   `json:"competition_id" validate:"required,gt=0"`
	TeacherNumber string  `json:"teacher_number" validate:"required"`
	ContactInfo   string  `json:"contact_info" validate:"required,max=100"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// ReviewApplicationRequest captures the teacher's approve/reject decision.
type ReviewApplicationRequest struct {
	Approve bool `json:"approve"`
}

// ApplicationListQuery captures list filter parameters.
type ApplicationListQuery struct {
	ApplicationStatus string `form:"application_status" validate:"omitempty,oneof=pending approved rejected cancelled"`
	ProcessStatus     string `form:"process_status" validate:"omitempty,oneof=ongoing ended"`
	Page              int    `form:"page" validate:"omitempty,gte=1"`
	PageSize          int    `form:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// Filter converts the query into a repository filter.
func (q ApplicationListQuery) Filter() models.ApplicationFilter {
	filter := models.ApplicationFilter{Page: q.Page, PageSize: q.PageSize}
	if q.ApplicationStatus != "" {
		status := models.ApplicationStatus(q.ApplicationStatus)
		filter.ApplicationStatus = &status
	}
	if q.ProcessStatus != "" {
		status := models.ProcessStatus(q.ProcessStatus)
		filter.ProcessStatus = &status
	}
	return filter
}

// ApplicationListResponse wraps a page of application details.
type ApplicationListResponse struct {
	Items      []models.ApplicationDetail `json:"items"`
	Pagination models.Pagination          `json:"pagination"`
}
