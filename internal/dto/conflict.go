package dto

import (
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

// ConflictCheckRequest audits either a stored timetable or an ad-hoc class list.
type ConflictCheckRequest struct {
	TimetableID *int64                  `json:"timetable_id" validate:"required_without=Classes,omitempty,min=1"`
	Classes     []models.ScheduledClass `json:"classes" validate:"required_without=TimetableID"`
}

// ConflictCheckResponse wraps the conflict report.
type ConflictCheckResponse struct {
	TimetableID  *int64                   `json:"timetable_id,omitempty"`
	HasConflicts bool                     `json:"has_conflicts"`
	Total        int                      `json:"total"`
	Conflicts    scheduler.ConflictReport `json:"conflicts"`
	CheckedAt    time.Time                `json:"checked_at"`
	Cached       bool                     `json:"-"`
}
