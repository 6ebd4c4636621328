package dto

import "time"

// CompetitionRequest captures create/update payloads for the catalogue.
type CompetitionRequest struct {
	Name          string     `json:"name" validate:"required,max=200"`
	Link          string     `json:"link" validate:"omitempty,url,max=500"`
	Type          string     `json:"type" validate:"required,max=100"`
	RegTimeStart  *time.Time `json:"reg_time_start,omitempty"`
	RegTimeEnd    *time.Time `json:"reg_time_end,omitempty"`
	CompTimeStart *time.Time `json:"comp_time_start,omitempty"`
	CompTimeEnd   *time.Time `json:"comp_time_end,omitempty"`
	Description   string     `json:"description" validate:"omitempty,max=5000"`
	Status        int        `json:"status" validate:"gte=0,lte=4"`
}

// CompetitionListQuery captures catalogue list parameters.
type CompetitionListQuery struct {
	Search   string `form:"search" validate:"omitempty,max=200"`
	Status   *int   `form:"status" validate:"omitempty,gte=0,lte=4"`
	Page     int    `form:"page" validate:"omitempty,gte=1"`
	PageSize int    `form:"page_size" validate:"omitempty,gte=1,lte=100"`
}
