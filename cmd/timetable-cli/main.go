package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dataset"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/scheduler"
	"github.com/noah-isme/timetable-api/pkg/logger"
)

type output struct {
	Result    *scheduler.Result        `json:"result"`
	Conflicts scheduler.ConflictReport `json:"conflicts"`
}

type options struct {
	files        dataset.Files
	delim        string
	seed         int64
	seedSet      bool
	sections     []string
	timetableID  int64
	allowOverlap bool
	logLevel     string
	pretty       bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logr, err := logger.NewConsole(opts.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(opts, os.Stdout, logr); err != nil {
		logr.Error("generation failed", zap.Error(err))
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("timetable-cli", pflag.ContinueOnError)
	fs.StringVar(&opts.files.Courses, "courses", "", "path to the courses CSV (required)")
	fs.StringVar(&opts.files.Instructors, "instructors", "", "path to the instructors CSV")
	fs.StringVar(&opts.files.Classrooms, "classrooms", "", "path to the classrooms CSV (required)")
	fs.StringVar(&opts.files.Constraints, "constraints", "", "path to the constraints CSV")
	fs.StringVar(&opts.delim, "delim", string(dataset.DefaultDelimiter), "CSV field delimiter")
	fs.Int64Var(&opts.seed, "seed", 0, "random seed; omit for a fresh one")
	fs.StringSliceVar(&opts.sections, "sections", models.DefaultSections, "section labels")
	fs.Int64Var(&opts.timetableID, "timetable", 0, "timetable id stamped on every class")
	fs.BoolVar(&opts.allowOverlap, "allow-section-overlap", false, "let sections with the same label share a slot")
	fs.StringVar(&opts.logLevel, "log-level", "info", "log level")
	fs.BoolVar(&opts.pretty, "pretty", false, "indent JSON output")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.seedSet = fs.Changed("seed")

	if utf8.RuneCountInString(opts.delim) != 1 {
		return opts, fmt.Errorf("delimiter must be a single character, got %q", opts.delim)
	}
	return opts, nil
}

func run(opts options, stdout io.Writer, logr *zap.Logger) error {
	engineOpts := scheduler.Options{
		Sections:            trimSections(opts.sections),
		AllowSectionOverlap: opts.allowOverlap,
		Logger:              logr,
	}
	if opts.seedSet {
		seed := opts.seed
		engineOpts.Seed = &seed
	}
	engine := scheduler.NewEngine(engineOpts)

	delim, _ := utf8.DecodeRuneInString(opts.delim)
	ds, err := dataset.Load(opts.files, delim, engine.Grid())
	if err != nil {
		return err
	}
	logr.Info("dataset loaded",
		zap.Int("courses", len(ds.Courses)),
		zap.Int("instructors", len(ds.Instructors)),
		zap.Int("classrooms", len(ds.Classrooms)),
		zap.Int("constraints", len(ds.Constraints)),
	)

	result, err := engine.Generate(ds.Input(opts.timetableID))
	if err != nil {
		return err
	}
	report := scheduler.CheckConflicts(result.Classes)

	logr.Info("timetable generated",
		zap.Int64("seed", result.Seed),
		zap.Int("classes", len(result.Classes)),
		zap.Int("unplaced", len(result.Unplaced)),
		zap.Int("conflicts", report.Total()),
	)

	enc := json.NewEncoder(stdout)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(output{Result: result, Conflicts: report})
}

func trimSections(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
