package scheduler

import "github.com/noah-isme/timetable-api/internal/models"

// Assignments tracks the cells taken so far in a single generation run.
type Assignments struct {
	instructors map[int64]slotSet
	classrooms  map[int64]slotSet
	courses     map[int64]slotSet
	sections    map[string]slotSet
}

// NewAssignments returns empty running-assignment maps.
func NewAssignments() *Assignments {
	return &Assignments{
		instructors: make(map[int64]slotSet),
		classrooms:  make(map[int64]slotSet),
		courses:     make(map[int64]slotSet),
		sections:    make(map[string]slotSet),
	}
}

// Record marks the cell as used by the course, its instructor, the room and the section.
func (a *Assignments) Record(course models.Course, ref SlotRef, classroomID int64, section string) {
	markInt(a.instructors, course.InstructorID, ref)
	markInt(a.classrooms, classroomID, ref)
	markInt(a.courses, course.ID, ref)
	if section != "" {
		set, ok := a.sections[section]
		if !ok {
			set = make(slotSet)
			a.sections[section] = set
		}
		set[ref] = struct{}{}
	}
}

func markInt(target map[int64]slotSet, id int64, ref SlotRef) {
	set, ok := target[id]
	if !ok {
		set = make(slotSet)
		target[id] = set
	}
	set[ref] = struct{}{}
}

func usedInt(target map[int64]slotSet, id int64, ref SlotRef) bool {
	set, ok := target[id]
	return ok && set.has(ref)
}

// Oracle answers whether a (course, cell, room) placement is legal given the
// constraint index and the assignments already made in the run.
type Oracle struct {
	index               *ConstraintIndex
	assigned            *Assignments
	allowSectionOverlap bool
}

// NewOracle binds an oracle to a run's index and assignments.
func NewOracle(index *ConstraintIndex, assigned *Assignments, allowSectionOverlap bool) *Oracle {
	return &Oracle{index: index, assigned: assigned, allowSectionOverlap: allowSectionOverlap}
}

// IsAvailable reports whether the course may take the cell in the given room.
// It holds when none of these apply:
//   - the instructor is marked unavailable for the cell
//   - the instructor already teaches in the cell
//   - the room is marked unavailable for the cell
//   - the room is already booked in the cell
//   - a course declared as conflicting already occupies the cell
//   - another course of the same section occupies the cell
//
// The last check goes beyond pairwise course conflicts: it keeps one section's
// students out of two rooms at once, so a run without constraints produces no
// student conflicts. Options.AllowSectionOverlap disables it. IsAvailable never
// mutates state.
func (o *Oracle) IsAvailable(course models.Course, ref SlotRef, classroomID int64, section string) bool {
	if o.index.instructorBlocked(course.InstructorID, ref) {
		return false
	}
	if usedInt(o.assigned.instructors, course.InstructorID, ref) {
		return false
	}
	if o.index.roomBlocked(classroomID, ref) {
		return false
	}
	if usedInt(o.assigned.classrooms, classroomID, ref) {
		return false
	}
	for other := range o.index.courseConflicts[course.ID] {
		if usedInt(o.assigned.courses, other, ref) {
			return false
		}
	}
	if !o.allowSectionOverlap && section != "" {
		if set, ok := o.assigned.sections[section]; ok && set.has(ref) {
			return false
		}
	}
	return true
}
