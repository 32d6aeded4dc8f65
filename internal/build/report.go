package build

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/tscdualbuild/internal/config"
	"git.home.luguber.info/inful/tscdualbuild/internal/version"
)

// ReportSchemaVersion is bumped whenever the JSON layout changes incompatibly.
const ReportSchemaVersion = 1

// Outcome is the final state of a run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// StageRecord is the result of one executed stage.
type StageRecord struct {
	Name     StageName
	Result   StageResult
	Duration time.Duration
}

// Invocation records one compiler run.
type Invocation struct {
	Target   string
	Args     []string
	Duration time.Duration
	Success  bool
}

// Report describes a single run of the pipeline.
type Report struct {
	RunID           string
	Start           time.Time
	End             time.Time
	ToolVersion     string
	CompilerVersion string // empty when not detected
	Shape           config.Shape
	DryRun          bool
	Stages          []StageRecord
	Invocations     []Invocation
	Manifests       []string
	Outcome         Outcome
	Err             error
}

// NewReport starts a report for the given run.
func NewReport(runID string) *Report {
	return &Report{
		RunID:       runID,
		Start:       time.Now(),
		ToolVersion: version.Version,
	}
}

// RecordStage appends a stage result.
func (r *Report) RecordStage(stage StageName, d time.Duration, res StageResult) {
	r.Stages = append(r.Stages, StageRecord{Name: stage, Result: res, Duration: d})
}

// AddInvocation appends a compiler invocation.
func (r *Report) AddInvocation(inv Invocation) {
	r.Invocations = append(r.Invocations, inv)
}

// Stage returns the record of the named stage, if it ran.
func (r *Report) Stage(name StageName) (StageRecord, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageRecord{}, false
}

// Finish stamps the end time and derives the outcome from err.
func (r *Report) Finish(err error) {
	r.End = time.Now()
	r.Err = err
	r.Outcome = deriveOutcome(err)
}

func deriveOutcome(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var se *StageError
	if errors.As(err, &se) && se.Kind == StageErrorCanceled {
		return OutcomeCanceled
	}
	return OutcomeFailed
}

// Duration is the wall time of the run; zero until Finish.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("run=%s shape=%s stages=%d compiles=%d manifests=%d duration=%s outcome=%s",
		r.RunID, r.Shape, len(r.Stages), len(r.Invocations), len(r.Manifests),
		r.Duration().Truncate(time.Millisecond), r.Outcome)
}

// WriteJSON writes the report to path atomically.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("ensure report directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic rename report json: %w", err)
	}
	return nil
}

type reportJSON struct {
	SchemaVersion   int              `json:"schema_version"`
	RunID           string           `json:"run_id"`
	ToolVersion     string           `json:"tool_version"`
	CompilerVersion string           `json:"compiler_version,omitempty"`
	Shape           string           `json:"shape,omitempty"`
	DryRun          bool             `json:"dry_run"`
	Start           time.Time        `json:"start"`
	End             time.Time        `json:"end"`
	DurationMS      int64            `json:"duration_ms"`
	Stages          []stageJSON      `json:"stages"`
	Invocations     []invocationJSON `json:"invocations"`
	Manifests       []string         `json:"manifests"`
	Outcome         string           `json:"outcome"`
	Error           string           `json:"error,omitempty"`
}

type stageJSON struct {
	Name       string `json:"name"`
	Result     string `json:"result"`
	DurationMS int64  `json:"duration_ms"`
}

type invocationJSON struct {
	Target     string   `json:"target"`
	Args       []string `json:"args"`
	DurationMS int64    `json:"duration_ms"`
	Success    bool     `json:"success"`
}

func (r *Report) serializable() reportJSON {
	out := reportJSON{
		SchemaVersion:   ReportSchemaVersion,
		RunID:           r.RunID,
		ToolVersion:     r.ToolVersion,
		CompilerVersion: r.CompilerVersion,
		Shape:           string(r.Shape),
		DryRun:          r.DryRun,
		Start:           r.Start,
		End:             r.End,
		DurationMS:      r.Duration().Milliseconds(),
		Stages:          make([]stageJSON, 0, len(r.Stages)),
		Invocations:     make([]invocationJSON, 0, len(r.Invocations)),
		Manifests:       append([]string{}, r.Manifests...),
		Outcome:         string(r.Outcome),
	}
	for _, s := range r.Stages {
		out.Stages = append(out.Stages, stageJSON{Name: string(s.Name), Result: string(s.Result), DurationMS: s.Duration.Milliseconds()})
	}
	for _, inv := range r.Invocations {
		out.Invocations = append(out.Invocations, invocationJSON{Target: inv.Target, Args: inv.Args, DurationMS: inv.Duration.Milliseconds(), Success: inv.Success})
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}
