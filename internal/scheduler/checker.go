package scheduler

import (
	"github.com/samber/lo"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ClassWindow identifies the meeting window shared by a conflicting group.
type ClassWindow struct {
	Day       string `json:"day"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// InstructorConflict lists classes booking one instructor in the same window.
type InstructorConflict struct {
	InstructorID int64 `json:"instructor_id"`
	ClassWindow
	Classes []models.ScheduledClass `json:"classes"`
}

// ClassroomConflict lists classes booking one room in the same window.
type ClassroomConflict struct {
	ClassroomID int64 `json:"classroom_id"`
	ClassWindow
	Classes []models.ScheduledClass `json:"classes"`
}

// SectionConflict lists classes a single section would have to attend at once.
type SectionConflict struct {
	Section string `json:"section"`
	ClassWindow
	Classes []models.ScheduledClass `json:"classes"`
}

// ConflictReport is the outcome of auditing a schedule snapshot.
type ConflictReport struct {
	InstructorConflicts []InstructorConflict `json:"instructor_conflicts"`
	ClassroomConflicts  []ClassroomConflict  `json:"classroom_conflicts"`
	StudentConflicts    []SectionConflict    `json:"student_conflicts"`
}

// HasConflicts reports whether any category holds an entry.
func (r ConflictReport) HasConflicts() bool {
	return len(r.InstructorConflicts) > 0 || len(r.ClassroomConflicts) > 0 || len(r.StudentConflicts) > 0
}

// Total counts conflict groups across categories.
func (r ConflictReport) Total() int {
	return len(r.InstructorConflicts) + len(r.ClassroomConflicts) + len(r.StudentConflicts)
}

// CheckConflicts audits any set of scheduled classes for double bookings. Each
// group of two or more classes sharing a resource and window is reported once,
// members in input order and groups in order of first appearance.
func CheckConflicts(classes []models.ScheduledClass) ConflictReport {
	report := ConflictReport{
		InstructorConflicts: make([]InstructorConflict, 0),
		ClassroomConflicts:  make([]ClassroomConflict, 0),
		StudentConflicts:    make([]SectionConflict, 0),
	}

	for _, g := range groupBy(classes, func(c models.ScheduledClass) (int64, bool) { return c.InstructorID, true }) {
		report.InstructorConflicts = append(report.InstructorConflicts, InstructorConflict{
			InstructorID: g.key, ClassWindow: g.window, Classes: g.members,
		})
	}
	for _, g := range groupBy(classes, func(c models.ScheduledClass) (int64, bool) { return c.ClassroomID, true }) {
		report.ClassroomConflicts = append(report.ClassroomConflicts, ClassroomConflict{
			ClassroomID: g.key, ClassWindow: g.window, Classes: g.members,
		})
	}
	for _, g := range groupBy(classes, func(c models.ScheduledClass) (string, bool) {
		label := c.SectionLabel()
		return label, label != ""
	}) {
		report.StudentConflicts = append(report.StudentConflicts, SectionConflict{
			Section: g.key, ClassWindow: g.window, Classes: g.members,
		})
	}
	return report
}

type groupKey[K comparable] struct {
	key    K
	window ClassWindow
}

type group[K comparable] struct {
	key     K
	window  ClassWindow
	members []models.ScheduledClass
}

func groupBy[K comparable](classes []models.ScheduledClass, keyOf func(models.ScheduledClass) (K, bool)) []group[K] {
	order := make([]groupKey[K], 0)
	members := make(map[groupKey[K]][]models.ScheduledClass)
	for _, class := range classes {
		key, ok := keyOf(class)
		if !ok {
			continue
		}
		gk := groupKey[K]{key: key, window: ClassWindow{Day: class.Day, StartTime: class.StartTime, EndTime: class.EndTime}}
		if _, seen := members[gk]; !seen {
			order = append(order, gk)
		}
		members[gk] = append(members[gk], class)
	}

	clashing := lo.Filter(order, func(gk groupKey[K], _ int) bool { return len(members[gk]) > 1 })
	return lo.Map(clashing, func(gk groupKey[K], _ int) group[K] {
		return group[K]{key: gk.key, window: gk.window, members: members[gk]}
	})
}
