package models

import "strings"

const labKeyword = "lab"

// Course is a unit of teaching that is scheduled once per section.
type Course struct {
	ID           int64  `db:"id" json:"id" csv:"id"`
	Code         string `db:"code" json:"code" csv:"code"`
	Name         string `db:"name" json:"name" csv:"name"`
	Department   string `db:"department" json:"department" csv:"department"`
	InstructorID int64  `db:"instructor_id" json:"instructor_id" csv:"instructor_id"`
	Credits      int    `db:"credits" json:"credits" csv:"credits"`
	Capacity     int    `db:"capacity" json:"capacity" csv:"capacity"`
	Lab          *bool  `db:"is_lab" json:"is_lab,omitempty" csv:"is_lab,omitempty"`
}

// SlotsNeeded returns how many consecutive slots one placement occupies.
func (c Course) SlotsNeeded() int {
	switch {
	case c.Credits >= 4:
		return 3
	case c.Credits >= 3:
		return 2
	default:
		return 1
	}
}

// IsLab reports whether the course must be taught in a lab room. The explicit
// flag wins; rows without it fall back to the name/code keyword match.
func (c Course) IsLab() bool {
	if c.Lab != nil {
		return *c.Lab
	}
	return containsLabKeyword(c.Name) || containsLabKeyword(c.Code)
}

// Instructor teaches courses.
type Instructor struct {
	ID         int64  `db:"id" json:"id" csv:"id"`
	Name       string `db:"name" json:"name" csv:"name"`
	Department string `db:"department" json:"department" csv:"department"`
	Email      string `db:"email" json:"email" csv:"email"`
}

// Classroom is a bookable room.
type Classroom struct {
	ID           int64  `db:"id" json:"id" csv:"id"`
	Name         string `db:"name" json:"name" csv:"name"`
	Building     string `db:"building" json:"building" csv:"building"`
	Capacity     int    `db:"capacity" json:"capacity" csv:"capacity"`
	HasProjector bool   `db:"has_projector" json:"has_projector" csv:"has_projector"`
	HasComputers bool   `db:"has_computers" json:"has_computers" csv:"has_computers"`
	Lab          *bool  `db:"is_lab" json:"is_lab,omitempty" csv:"is_lab,omitempty"`
}

// IsLab reports whether the room is a lab, preferring the explicit flag.
func (r Classroom) IsLab() bool {
	if r.Lab != nil {
		return *r.Lab
	}
	return containsLabKeyword(r.Name)
}

func containsLabKeyword(value string) bool {
	return strings.Contains(strings.ToLower(value), labKeyword)
}
