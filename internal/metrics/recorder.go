package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
	ResultSkipped  ResultLabel = "skipped"
)

// BuildOutcomeLabel enumerates final run outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for build, stage and compiler metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	ObserveCompilerDuration(target string, d time.Duration, success bool)
	IncManifestWritten(target string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)           {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                   {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                   {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)                    {}
func (NoopRecorder) ObserveCompilerDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncManifestWritten(string)                            {}
