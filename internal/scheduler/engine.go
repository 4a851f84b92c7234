package scheduler

import (
	"math/rand"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
)

// UnplacedReason explains why a course section is missing from the output.
type UnplacedReason string

const (
	ReasonNoSuitableRoom    UnplacedReason = "no_suitable_room"
	ReasonUnknownInstructor UnplacedReason = "unknown_instructor"
	ReasonNoFreeSlot        UnplacedReason = "no_free_slot"
	ReasonPartialPlacement  UnplacedReason = "partial_placement"
)

// Unplaced is a course section the engine could not fully schedule.
type Unplaced struct {
	CourseID    int64          `json:"course_id"`
	CourseCode  string         `json:"course_code"`
	Section     string         `json:"section"`
	Reason      UnplacedReason `json:"reason"`
	SlotsNeeded int            `json:"slots_needed"`
	SlotsPlaced int            `json:"slots_placed"`
}

// Stats summarises one generation run.
type Stats struct {
	Courses              int `json:"courses"`
	SectionsRequested    int `json:"sections_requested"`
	SectionsPlaced       int `json:"sections_placed"`
	ContiguousPlacements int `json:"contiguous_placements"`
	ScatteredPlacements  int `json:"scattered_placements"`
	ClassesEmitted       int `json:"classes_emitted"`
}

// Input carries the read-only records a run schedules.
type Input struct {
	Courses     []models.Course
	Instructors []models.Instructor
	Classrooms  []models.Classroom
	Constraints []models.Constraint
	TimetableID int64
}

// Result is the placed schedule plus the sections that could not be placed.
type Result struct {
	Classes  []models.ScheduledClass `json:"classes"`
	Unplaced []Unplaced              `json:"unplaced"`
	Stats    Stats                   `json:"stats"`
	Seed     int64                   `json:"seed"`
}

// Complete reports whether every requested section received all its slots.
func (r *Result) Complete() bool {
	return len(r.Unplaced) == 0
}

// Options configures an Engine.
type Options struct {
	Grid     models.Grid
	Sections []string
	// Seed fixes the random source; nil draws a fresh seed per run.
	Seed                *int64
	AllowSectionOverlap bool
	Logger              *zap.Logger
}

// Engine assigns course sections to grid cells, rooms and instructors. It keeps
// no state between runs and may be shared by concurrent callers.
type Engine struct {
	grid                models.Grid
	sections            []string
	seed                *int64
	allowSectionOverlap bool
	logger              *zap.Logger
}

// NewEngine applies defaults: the reference grid and sections A, B and C.
func NewEngine(opts Options) *Engine {
	if opts.Grid.IsZero() {
		opts.Grid = models.DefaultGrid()
	}
	if len(opts.Sections) == 0 {
		opts.Sections = models.DefaultSections
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		grid:                opts.Grid,
		sections:            append([]string(nil), opts.Sections...),
		seed:                opts.Seed,
		allowSectionOverlap: opts.AllowSectionOverlap,
		logger:              opts.Logger,
	}
}

// WithSeed returns a copy of the engine bound to a fixed seed.
func (e *Engine) WithSeed(seed int64) *Engine {
	clone := *e
	clone.seed = &seed
	return &clone
}

// WithSections returns a copy of the engine scheduling the given sections.
func (e *Engine) WithSections(sections []string) *Engine {
	if len(sections) == 0 {
		return e
	}
	clone := *e
	clone.sections = append([]string(nil), sections...)
	return &clone
}

// Grid exposes the weekly grid the engine schedules into.
func (e *Engine) Grid() models.Grid {
	return e.grid
}

// Generate runs one best-effort placement pass. Only malformed constraints fail
// the run; sections that cannot be placed are reported in Result.Unplaced.
func (e *Engine) Generate(in Input) (*Result, error) {
	index, err := BuildConstraintIndex(alignToGrid(e.grid, in.Constraints))
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if e.seed != nil {
		seed = *e.seed
	}
	assigned := NewAssignments()
	r := &run{
		engine:      e,
		rng:         rand.New(rand.NewSource(seed)),
		index:       index,
		oracle:      NewOracle(index, assigned, e.allowSectionOverlap),
		assigned:    assigned,
		timetableID: in.TimetableID,
		result: &Result{
			Classes:  make([]models.ScheduledClass, 0),
			Unplaced: make([]Unplaced, 0),
			Seed:     seed,
		},
	}

	var known map[int64]struct{}
	if len(in.Instructors) > 0 {
		known = make(map[int64]struct{}, len(in.Instructors))
		for _, instructor := range in.Instructors {
			known[instructor.ID] = struct{}{}
		}
	}

	for _, course := range r.orderCourses(in.Courses) {
		r.result.Stats.Courses++
		rooms := candidateRooms(course, in.Classrooms)
		for _, section := range e.sections {
			r.placeSection(course, section, rooms, known)
		}
	}
	r.result.Stats.ClassesEmitted = len(r.result.Classes)

	e.logger.Debug("timetable generation finished",
		zap.Int64("timetable_id", in.TimetableID),
		zap.Int64("seed", seed),
		zap.Int("classes", r.result.Stats.ClassesEmitted),
		zap.Int("unplaced", len(r.result.Unplaced)),
	)
	return r.result, nil
}

type run struct {
	engine      *Engine
	rng         *rand.Rand
	index       *ConstraintIndex
	oracle      *Oracle
	assigned    *Assignments
	timetableID int64
	result      *Result
}

// orderCourses puts the most constrained courses first. The shuffle before the
// stable sort randomises the order among equally pressured courses.
func (r *run) orderCourses(courses []models.Course) []models.Course {
	ordered := append([]models.Course(nil), courses...)
	r.rng.Shuffle(len(ordered), func(i, j int) {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		return r.index.Pressure(ordered[i]) > r.index.Pressure(ordered[j])
	})
	return ordered
}

// candidateRooms keeps rooms of the course's type that seat everyone, tightest first.
func candidateRooms(course models.Course, classrooms []models.Classroom) []models.Classroom {
	lab := course.IsLab()
	rooms := lo.Filter(classrooms, func(room models.Classroom, _ int) bool {
		return room.IsLab() == lab && room.Capacity >= course.Capacity
	})
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].Capacity == rooms[j].Capacity {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Capacity < rooms[j].Capacity
	})
	return rooms
}

// alignToGrid rewrites unavailability rows written as "monday"/"09:00" onto the
// grid's labels. Rows that address no cell are kept as they are.
func alignToGrid(grid models.Grid, constraints []models.Constraint) []models.Constraint {
	aligned := make([]models.Constraint, len(constraints))
	copy(aligned, constraints)
	for i := range aligned {
		c := &aligned[i]
		if c.Type != models.ConstraintInstructorUnavailable && c.Type != models.ConstraintRoomUnavailable {
			continue
		}
		if cell, ok := grid.ResolveCell(c.Day, c.TimeSlot); ok {
			c.Day = cell.Day
			c.TimeSlot = cell.Slot.Label
		}
	}
	return aligned
}

func (r *run) placeSection(course models.Course, section string, rooms []models.Classroom, known map[int64]struct{}) {
	r.result.Stats.SectionsRequested++
	needed := course.SlotsNeeded()

	if known != nil {
		if _, ok := known[course.InstructorID]; !ok {
			r.skip(course, section, ReasonUnknownInstructor, needed, 0)
			return
		}
	}
	if len(rooms) == 0 {
		r.skip(course, section, ReasonNoSuitableRoom, needed, 0)
		return
	}

	if r.placeContiguous(course, section, rooms, needed) {
		r.result.Stats.ContiguousPlacements++
		r.result.Stats.SectionsPlaced++
		return
	}

	placed := r.placeScattered(course, section, rooms, needed)
	if placed > 0 {
		r.result.Stats.ScatteredPlacements++
	}
	switch {
	case placed >= needed:
		r.result.Stats.SectionsPlaced++
	case placed == 0:
		r.skip(course, section, ReasonNoFreeSlot, needed, 0)
	default:
		r.skip(course, section, ReasonPartialPlacement, needed, placed)
	}
}

func (r *run) placeContiguous(course models.Course, section string, rooms []models.Classroom, needed int) bool {
	days := append([]string(nil), r.engine.grid.Days...)
	r.rng.Shuffle(len(days), func(i, j int) {
		days[i], days[j] = days[j], days[i]
	})
	slots := r.engine.grid.Slots

	for _, room := range rooms {
		for _, day := range days {
			for start := 0; start+needed <= len(slots); start++ {
				block := slots[start : start+needed]
				if !r.blockAvailable(course, day, block, room.ID, section) {
					continue
				}
				for j, slot := range block {
					end := slot.End
					if j < len(block)-1 {
						end = block[j+1].Start
					}
					r.commit(course, day, slot, slot.Start, end, room.ID, section)
				}
				return true
			}
		}
	}
	return false
}

func (r *run) blockAvailable(course models.Course, day string, block []models.TimeSlot, classroomID int64, section string) bool {
	for _, slot := range block {
		if !r.oracle.IsAvailable(course, SlotRef{Day: day, TimeSlot: slot.Label}, classroomID, section) {
			return false
		}
	}
	return true
}

func (r *run) placeScattered(course models.Course, section string, rooms []models.Classroom, needed int) int {
	cells := r.engine.grid.Cells()
	r.rng.Shuffle(len(cells), func(i, j int) {
		cells[i], cells[j] = cells[j], cells[i]
	})

	placed := 0
	for _, room := range rooms {
		for _, cell := range cells {
			if placed >= needed {
				return placed
			}
			ref := SlotRef{Day: cell.Day, TimeSlot: cell.Slot.Label}
			if r.oracle.IsAvailable(course, ref, room.ID, section) {
				r.commit(course, cell.Day, cell.Slot, cell.Slot.Start, cell.Slot.End, room.ID, section)
				placed++
			}
		}
	}
	return placed
}

func (r *run) commit(course models.Course, day string, slot models.TimeSlot, start, end string, classroomID int64, section string) {
	r.assigned.Record(course, SlotRef{Day: day, TimeSlot: slot.Label}, classroomID, section)

	class := models.ScheduledClass{
		CourseID:     course.ID,
		InstructorID: course.InstructorID,
		ClassroomID:  classroomID,
		Day:          day,
		StartTime:    start,
		EndTime:      end,
		TimetableID:  r.timetableID,
	}
	if section != "" {
		label := section
		class.Section = &label
	}
	r.result.Classes = append(r.result.Classes, class)
}

func (r *run) skip(course models.Course, section string, reason UnplacedReason, needed, placed int) {
	r.result.Unplaced = append(r.result.Unplaced, Unplaced{
		CourseID:    course.ID,
		CourseCode:  course.Code,
		Section:     section,
		Reason:      reason,
		SlotsNeeded: needed,
		SlotsPlaced: placed,
	})
	r.engine.logger.Warn("course section not fully scheduled",
		zap.String("course", course.Code),
		zap.String("section", section),
		zap.String("reason", string(reason)),
		zap.Int("slots_needed", needed),
		zap.Int("slots_placed", placed),
	)
}
