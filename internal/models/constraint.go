package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ConstraintType enumerates supported scheduling constraints.
type ConstraintType string

const (
	ConstraintInstructorUnavailable ConstraintType = "instructor_unavailable"
	ConstraintRoomUnavailable       ConstraintType = "room_unavailable"
	ConstraintCourseConflict        ConstraintType = "course_conflict"
)

// Valid reports whether the type is one of the supported kinds.
func (t ConstraintType) Valid() bool {
	switch t {
	case ConstraintInstructorUnavailable, ConstraintRoomUnavailable, ConstraintCourseConflict:
		return true
	}
	return false
}

// Constraint is the persisted constraint row. EntityID refers to an instructor,
// a classroom or a course depending on Type. For course_conflict rows TimeSlot
// holds the id of the conflicting course in decimal form.
type Constraint struct {
	ID       int64          `db:"id" json:"id" csv:"id"`
	Type     ConstraintType `db:"type" json:"type" csv:"type"`
	EntityID int64          `db:"entity_id" json:"entity_id" csv:"entity_id"`
	Day      string         `db:"day" json:"day" csv:"day"`
	TimeSlot string         `db:"time_slot" json:"time_slot" csv:"time_slot"`
}

// NewCourseConflict encodes a conflict between two courses in the stored row format.
func NewCourseConflict(courseID, conflictingCourseID int64, day string) Constraint {
	return Constraint{
		Type:     ConstraintCourseConflict,
		EntityID: courseID,
		Day:      day,
		TimeSlot: strconv.FormatInt(conflictingCourseID, 10),
	}
}

// ConflictingCourseID decodes the partner course of a course_conflict row.
func (c Constraint) ConflictingCourseID() (int64, error) {
	if c.Type != ConstraintCourseConflict {
		return 0, fmt.Errorf("constraint %d is %s, not %s", c.ID, c.Type, ConstraintCourseConflict)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(c.TimeSlot), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("constraint %d: conflicting course id %q: %w", c.ID, c.TimeSlot, err)
	}
	return id, nil
}
