package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("build_esm", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("build_esm", ResultSuccess)
	pr.IncStageResult("build_cjs", ResultFatal)
	pr.IncBuildOutcome(BuildOutcomeFailed)
	pr.ObserveCompilerDuration("esm", 2*time.Second, true)
	pr.IncManifestWritten("esm")
	pr.IncManifestWritten("esm")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 6)

	assert.InDelta(t, 1, testutil.ToFloat64(pr.stageResults.WithLabelValues("build_cjs", "fatal")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("failed")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.manifests.WithLabelValues("esm")), 0)
}

func TestPrometheusRecorderNilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveStageDuration("x", time.Second)
		pr.ObserveBuildDuration(time.Second)
		pr.IncStageResult("x", ResultSuccess)
		pr.IncBuildOutcome(BuildOutcomeSuccess)
		pr.ObserveCompilerDuration("esm", time.Second, false)
		pr.IncManifestWritten("cjs")
	})
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome(BuildOutcomeSuccess)

	path := filepath.Join(t.TempDir(), "tsc_dual_build.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tsc_dual_build_build_outcomes_total{outcome="success"} 1`)
}

func TestWriteTextfileMissingDir(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	err := pr.WriteTextfile(filepath.Join(t.TempDir(), "missing", "m.prom"))
	require.Error(t, err)
}
