package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestOracleIsAvailable(t *testing.T) {
	monday9 := SlotRef{Day: "Monday", TimeSlot: "9:00-10:00"}
	monday10 := SlotRef{Day: "Monday", TimeSlot: "10:00-11:00"}
	physics := models.Course{ID: 1, Code: "PHY101", InstructorID: 10}
	chemistry := models.Course{ID: 2, Code: "CHM101", InstructorID: 20}
	biology := models.Course{ID: 3, Code: "BIO101", InstructorID: 30}

	idx, err := BuildConstraintIndex([]models.Constraint{
		{Type: models.ConstraintInstructorUnavailable, EntityID: 20, Day: "Monday", TimeSlot: "9:00-10:00"},
		{Type: models.ConstraintRoomUnavailable, EntityID: 200, Day: "Monday", TimeSlot: "10:00-11:00"},
		models.NewCourseConflict(1, 3, "Monday"),
	})
	require.NoError(t, err)

	cases := []struct {
		name    string
		setup   func(*Assignments)
		course  models.Course
		ref     SlotRef
		room    int64
		section string
		overlap bool
		want    bool
	}{
		{name: "free cell", course: physics, ref: monday9, room: 100, section: "A", want: true},
		{name: "instructor unavailable", course: chemistry, ref: monday9, room: 100, section: "A", want: false},
		{name: "room unavailable", course: physics, ref: monday10, room: 200, section: "A", want: false},
		{
			name:    "instructor already teaching",
			setup:   func(a *Assignments) { a.Record(physics, monday9, 101, "B") },
			course:  models.Course{ID: 4, InstructorID: 10},
			ref:     monday9,
			room:    100,
			section: "C",
			want:    false,
		},
		{
			name:    "room already booked",
			setup:   func(a *Assignments) { a.Record(chemistry, monday10, 100, "B") },
			course:  physics,
			ref:     monday10,
			room:    100,
			section: "A",
			want:    false,
		},
		{
			name:    "conflicting course in cell",
			setup:   func(a *Assignments) { a.Record(physics, monday9, 101, "B") },
			course:  biology,
			ref:     monday9,
			room:    100,
			section: "A",
			want:    false,
		},
		{
			name:    "section busy",
			setup:   func(a *Assignments) { a.Record(chemistry, monday10, 101, "A") },
			course:  physics,
			ref:     monday10,
			room:    100,
			section: "A",
			want:    false,
		},
		{
			name:    "section overlap allowed",
			setup:   func(a *Assignments) { a.Record(chemistry, monday10, 101, "A") },
			course:  physics,
			ref:     monday10,
			room:    100,
			section: "A",
			overlap: true,
			want:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assigned := NewAssignments()
			if tc.setup != nil {
				tc.setup(assigned)
			}
			oracle := NewOracle(idx, assigned, tc.overlap)
			assert.Equal(t, tc.want, oracle.IsAvailable(tc.course, tc.ref, tc.room, tc.section))
		})
	}
}

func TestOracleDoesNotMutateAssignments(t *testing.T) {
	idx, err := BuildConstraintIndex(nil)
	require.NoError(t, err)
	assigned := NewAssignments()
	oracle := NewOracle(idx, assigned, false)

	course := models.Course{ID: 1, InstructorID: 10}
	ref := SlotRef{Day: "Monday", TimeSlot: "9:00-10:00"}
	assert.True(t, oracle.IsAvailable(course, ref, 100, "A"))
	assert.True(t, oracle.IsAvailable(course, ref, 100, "A"))
	assert.Empty(t, assigned.instructors)
	assert.Empty(t, assigned.sections)
}
