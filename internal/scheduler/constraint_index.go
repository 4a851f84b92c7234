package scheduler

import (
	"errors"
	"fmt"
	"sort"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ErrMalformedConstraint marks constraint rows whose payload cannot be decoded.
var ErrMalformedConstraint = errors.New("malformed constraint")

// SlotRef addresses a grid cell by day name and slot label.
type SlotRef struct {
	Day      string `json:"day"`
	TimeSlot string `json:"time_slot"`
}

type slotSet map[SlotRef]struct{}

func (s slotSet) has(ref SlotRef) bool {
	_, ok := s[ref]
	return ok
}

type unavailability struct {
	list []SlotRef
	set  slotSet
}

func (u *unavailability) add(ref SlotRef) {
	if u.set == nil {
		u.set = make(slotSet)
	}
	u.list = append(u.list, ref)
	u.set[ref] = struct{}{}
}

// ConstraintIndex holds constraint rows in lookup form for one generation run.
type ConstraintIndex struct {
	instructorUnavailable map[int64]*unavailability
	roomUnavailable       map[int64]*unavailability
	courseConflicts       map[int64]map[int64]struct{}
}

// BuildConstraintIndex translates stored constraint rows into lookup tables.
// Course conflicts are recorded in both directions. Rows of unknown type are
// ignored; a course_conflict row with an undecodable partner id is an error.
func BuildConstraintIndex(constraints []models.Constraint) (*ConstraintIndex, error) {
	idx := &ConstraintIndex{
		instructorUnavailable: make(map[int64]*unavailability),
		roomUnavailable:       make(map[int64]*unavailability),
		courseConflicts:       make(map[int64]map[int64]struct{}),
	}
	for _, c := range constraints {
		switch c.Type {
		case models.ConstraintInstructorUnavailable:
			addUnavailable(idx.instructorUnavailable, c.EntityID, SlotRef{Day: c.Day, TimeSlot: c.TimeSlot})
		case models.ConstraintRoomUnavailable:
			addUnavailable(idx.roomUnavailable, c.EntityID, SlotRef{Day: c.Day, TimeSlot: c.TimeSlot})
		case models.ConstraintCourseConflict:
			other, err := c.ConflictingCourseID()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedConstraint, err)
			}
			idx.addConflict(c.EntityID, other)
		}
	}
	return idx, nil
}

func addUnavailable(target map[int64]*unavailability, id int64, ref SlotRef) {
	entry, ok := target[id]
	if !ok {
		entry = &unavailability{}
		target[id] = entry
	}
	entry.add(ref)
}

func (idx *ConstraintIndex) addConflict(a, b int64) {
	if a == b {
		return
	}
	for _, pair := range [][2]int64{{a, b}, {b, a}} {
		set, ok := idx.courseConflicts[pair[0]]
		if !ok {
			set = make(map[int64]struct{})
			idx.courseConflicts[pair[0]] = set
		}
		set[pair[1]] = struct{}{}
	}
}

// InstructorUnavailable lists the blocked cells of an instructor in row order.
func (idx *ConstraintIndex) InstructorUnavailable(instructorID int64) []SlotRef {
	if entry, ok := idx.instructorUnavailable[instructorID]; ok {
		return entry.list
	}
	return nil
}

// RoomUnavailable lists the blocked cells of a classroom in row order.
func (idx *ConstraintIndex) RoomUnavailable(classroomID int64) []SlotRef {
	if entry, ok := idx.roomUnavailable[classroomID]; ok {
		return entry.list
	}
	return nil
}

// ConflictsOf returns the courses that may not share a cell with courseID, ascending.
func (idx *ConstraintIndex) ConflictsOf(courseID int64) []int64 {
	set := idx.courseConflicts[courseID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Pressure scores how hard a course is to place: its conflict edges plus the
// unavailability rows of its instructor.
func (idx *ConstraintIndex) Pressure(course models.Course) int {
	score := len(idx.courseConflicts[course.ID])
	if entry, ok := idx.instructorUnavailable[course.InstructorID]; ok {
		score += len(entry.list)
	}
	return score
}

func (idx *ConstraintIndex) instructorBlocked(instructorID int64, ref SlotRef) bool {
	entry, ok := idx.instructorUnavailable[instructorID]
	return ok && entry.set.has(ref)
}

func (idx *ConstraintIndex) roomBlocked(classroomID int64, ref SlotRef) bool {
	entry, ok := idx.roomUnavailable[classroomID]
	return ok && entry.set.has(ref)
}
