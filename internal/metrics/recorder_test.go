package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	stageDurations map[string]int
	stageResults   map[string]map[ResultLabel]int
	buildDurations int
	buildOutcomes  map[BuildOutcomeLabel]int
	compiler       map[string]int
	manifests      map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		stageResults:   map[string]map[ResultLabel]int{},
		buildOutcomes:  map[BuildOutcomeLabel]int{},
		compiler:       map[string]int{},
		manifests:      map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveBuildDuration(_ time.Duration) { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) { t.buildOutcomes[outcome]++ }
func (t *testRecorder) ObserveCompilerDuration(target string, _ time.Duration, _ bool) {
	t.compiler[target]++
}
func (t *testRecorder) IncManifestWritten(target string) { t.manifests[target]++ }

func TestRecorderInterfaceSatisfied(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = (*PrometheusRecorder)(nil)

	var r Recorder = newTestRecorder()
	r.IncStageResult("build_esm", ResultSuccess)
	r.IncStageResult("build_esm", ResultSuccess)
	r.IncBuildOutcome(BuildOutcomeSuccess)

	tr := r.(*testRecorder)
	if tr.stageResults["build_esm"][ResultSuccess] != 2 {
		t.Fatalf("expected 2 success results, got %d", tr.stageResults["build_esm"][ResultSuccess])
	}
	if tr.buildOutcomes[BuildOutcomeSuccess] != 1 {
		t.Fatalf("expected 1 success outcome")
	}
}
