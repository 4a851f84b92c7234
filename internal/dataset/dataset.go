// Package dataset loads scheduling inputs from CSV files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

// DefaultDelimiter separates CSV fields unless overridden.
const DefaultDelimiter = ','

var (
	// ErrMissingFile is returned when a required input path is empty.
	ErrMissingFile = errors.New("required dataset file not provided")
	// ErrUnknownCell is returned for an unavailability row whose day or time
	// slot addresses no cell of the grid.
	ErrUnknownCell = errors.New("constraint does not address a grid cell")
)

// Files names the CSV inputs. Instructors and constraints are optional.
type Files struct {
	Courses     string
	Instructors string
	Classrooms  string
	Constraints string
}

// Dataset is the decoded catalogue.
type Dataset struct {
	Courses     []models.Course
	Instructors []models.Instructor
	Classrooms  []models.Classroom
	Constraints []models.Constraint
}

// Input converts the dataset into engine input.
func (d *Dataset) Input(timetableID int64) scheduler.Input {
	return scheduler.Input{
		Courses:     d.Courses,
		Instructors: d.Instructors,
		Classrooms:  d.Classrooms,
		Constraints: d.Constraints,
		TimetableID: timetableID,
	}
}

// Load reads every file in files using the given delimiter. Unavailability
// rows are rewritten onto the labels of grid; a zero grid means the default one.
func Load(files Files, delim rune, grid models.Grid) (*Dataset, error) {
	if files.Courses == "" {
		return nil, fmt.Errorf("courses: %w", ErrMissingFile)
	}
	if files.Classrooms == "" {
		return nil, fmt.Errorf("classrooms: %w", ErrMissingFile)
	}

	var (
		ds  Dataset
		err error
	)
	if ds.Courses, err = loadFile[models.Course](files.Courses, delim); err != nil {
		return nil, err
	}
	if ds.Classrooms, err = loadFile[models.Classroom](files.Classrooms, delim); err != nil {
		return nil, err
	}
	if files.Instructors != "" {
		if ds.Instructors, err = loadFile[models.Instructor](files.Instructors, delim); err != nil {
			return nil, err
		}
	}
	if files.Constraints != "" {
		if ds.Constraints, err = loadFile[models.Constraint](files.Constraints, delim); err != nil {
			return nil, err
		}
		if grid.IsZero() {
			grid = models.DefaultGrid()
		}
		if err = resolveConstraints(ds.Constraints, grid); err != nil {
			return nil, fmt.Errorf("%s: %w", files.Constraints, err)
		}
	}
	return &ds, nil
}

// Decode reads one CSV table with a header row into a slice of T.
func Decode[T any](r io.Reader, delim rune) ([]T, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.TrimLeadingSpace = true

	var rows []T
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []T{}, nil
		}
		return nil, err
	}
	return rows, nil
}

func loadFile[T any](path string, delim rune) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := Decode[T](f, delim)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// resolveConstraints replaces the day and time slot of every unavailability
// row with the grid's own spelling, so "monday" and "9:00" become "Monday" and
// "9:00-10:00". Course conflicts carry a course id and are only trimmed.
func resolveConstraints(constraints []models.Constraint, grid models.Grid) error {
	for i := range constraints {
		c := &constraints[i]
		c.Day = strings.TrimSpace(c.Day)
		c.TimeSlot = strings.TrimSpace(c.TimeSlot)
		switch c.Type {
		case models.ConstraintInstructorUnavailable, models.ConstraintRoomUnavailable:
		default:
			continue
		}
		cell, ok := grid.ResolveCell(c.Day, c.TimeSlot)
		if !ok {
			return fmt.Errorf("constraint %d (%s %q %q): %w", c.ID, c.Type, c.Day, c.TimeSlot, ErrUnknownCell)
		}
		c.Day = cell.Day
		c.TimeSlot = cell.Slot.Label
	}
	return nil
}
