package models

import "time"

// ScheduledClass is one class meeting placed on the grid. ID stays 0 until the
// row is persisted.
type ScheduledClass struct {
	ID           int64   `db:"id" json:"id"`
	CourseID     int64   `db:"course_id" json:"course_id"`
	InstructorID int64   `db:"instructor_id" json:"instructor_id"`
	ClassroomID  int64   `db:"classroom_id" json:"classroom_id"`
	Day          string  `db:"day" json:"day"`
	StartTime    string  `db:"start_time" json:"start_time"`
	EndTime      string  `db:"end_time" json:"end_time"`
	TimetableID  int64   `db:"timetable_id" json:"timetable_id"`
	Section      *string `db:"section" json:"section,omitempty"`
}

// SectionLabel returns the section or an empty string when unset.
func (s ScheduledClass) SectionLabel() string {
	if s.Section == nil {
		return ""
	}
	return *s.Section
}

// Timetable groups the scheduled classes of one generation.
type Timetable struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Semester  string    `db:"semester" json:"semester"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DetailedClass joins a scheduled class with the records it references.
type DetailedClass struct {
	ScheduledClass
	Course     Course     `db:"course" json:"course"`
	Instructor Instructor `db:"instructor" json:"instructor"`
	Classroom  Classroom  `db:"classroom" json:"classroom"`
}

// TimetableWithClasses is a timetable together with its detailed classes.
type TimetableWithClasses struct {
	Timetable
	Classes []DetailedClass `json:"classes"`
}
