package dto

import (
	"time"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

// GenerateTimetableRequest asks for a new timetable built from the stored catalogue.
type GenerateTimetableRequest struct {
	Name     string   `json:"name" validate:"required,max=120"`
	Semester string   `json:"semester" validate:"required,max=60"`
	Seed     *int64   `json:"seed"`
	Sections []string `json:"sections" validate:"omitempty,max=12,dive,required,max=8"`
	Activate bool     `json:"activate"`
}

// RegenerateTimetableRequest replaces the classes of an existing timetable.
type RegenerateTimetableRequest struct {
	Seed     *int64   `json:"seed"`
	Sections []string `json:"sections" validate:"omitempty,max=12,dive,required,max=8"`
}

// CommitProposalRequest persists a previewed proposal.
type CommitProposalRequest struct {
	Activate bool `json:"activate"`
}

// GenerateTimetableResponse reports the outcome of one generation.
type GenerateTimetableResponse struct {
	ProposalID string                  `json:"proposal_id,omitempty"`
	ExpiresAt  *time.Time              `json:"expires_at,omitempty"`
	Timetable  *models.Timetable       `json:"timetable,omitempty"`
	Classes    []models.ScheduledClass `json:"classes"`
	ClassCount int                     `json:"class_count"`
	Unplaced   []scheduler.Unplaced    `json:"unplaced"`
	Stats      scheduler.Stats         `json:"stats"`
	Seed       int64                   `json:"seed"`
	Complete   bool                    `json:"complete"`
}

// GenerationRunStatus tracks an asynchronous generation.
type GenerationRunStatus string

const (
	GenerationRunPending   GenerationRunStatus = "pending"
	GenerationRunRunning   GenerationRunStatus = "running"
	GenerationRunSucceeded GenerationRunStatus = "succeeded"
	GenerationRunFailed    GenerationRunStatus = "failed"
)

// GenerationRunResponse is the polling view of an asynchronous generation.
type GenerationRunResponse struct {
	ID          string                     `json:"id"`
	Status      GenerationRunStatus        `json:"status"`
	Request     GenerateTimetableRequest   `json:"request"`
	Result      *GenerateTimetableResponse `json:"result,omitempty"`
	Error       string                     `json:"error,omitempty"`
	Attempts    int                        `json:"attempts"`
	SubmittedAt time.Time                  `json:"submitted_at"`
	StartedAt   *time.Time                 `json:"started_at,omitempty"`
	FinishedAt  *time.Time                 `json:"finished_at,omitempty"`
}

// ActivateTimetableResponse confirms which timetable is active.
type ActivateTimetableResponse struct {
	Timetable models.Timetable `json:"timetable"`
}
