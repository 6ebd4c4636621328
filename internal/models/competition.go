package models

import "time"

// CompetitionStatus tracks where a competition sits in its own calendar.
type CompetitionStatus int

const (
	CompetitionRegistrationNotStarted CompetitionStatus = iota
	CompetitionRegistrationOpen
	CompetitionRegistrationClosed
	CompetitionInProgress
	CompetitionFinished
)

// Competition is a catalogue entry students apply to.
type Competition struct {
	ID            int64             `db:"id" json:"id"`
	Name          string            `db:"name" json:"name"`
	Link          string            `db:"link" json:"link"`
	Type          string            `db:"type" json:"type"`
	RegTimeStart  *time.Time        `db:"reg_time_start" json:"reg_time_start,omitempty"`
	RegTimeEnd    *time.Time        `db:"reg_time_end" json:"reg_time_end,omitempty"`
	CompTimeStart *time.Time        `db:"comp_time_start" json:"comp_time_start,omitempty"`
	CompTimeEnd   *time.Time        `db:"comp_time_end" json:"comp_time_end,omitempty"`
	Description   string            `db:"description" json:"description"`
	Status        CompetitionStatus `db:"status" json:"status"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// CompetitionRef is the compact projection used by the search endpoint.
type CompetitionRef struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CompetitionFilter captures list query options.
type CompetitionFilter struct {
	Search   string
	Status   *CompetitionStatus
	Page     int
	PageSize int
}
