package build

import (
	"time"

	"git.home.luguber.info/inful/tscdualbuild/internal/metrics"
)

// BuildObserver receives callbacks around stage execution and the end of a run.
type BuildObserver interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnBuildComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(_ StageName)                                    {}
func (NoopObserver) OnStageComplete(_ StageName, _ time.Duration, _ StageResult) {}
func (NoopObserver) OnBuildComplete(_ *Report)                                   {}

// RecorderObserver adapts metrics.Recorder into a BuildObserver.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(_ StageName) {}

func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveStageDuration(string(stage), d)
	r.Recorder.IncStageResult(string(stage), resultLabel(res))
}

func (r RecorderObserver) OnBuildComplete(report *Report) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveBuildDuration(report.Duration())
	r.Recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
}

func resultLabel(res StageResult) metrics.ResultLabel {
	switch res {
	case StageResultSuccess:
		return metrics.ResultSuccess
	case StageResultCanceled:
		return metrics.ResultCanceled
	case StageResultFatal:
		return metrics.ResultFatal
	}
	return metrics.ResultSkipped
}

// multiObserver fans callbacks out to several observers in order.
type multiObserver []BuildObserver

func (m multiObserver) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m multiObserver) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, res)
	}
}

func (m multiObserver) OnBuildComplete(report *Report) {
	for _, o := range m {
		o.OnBuildComplete(report)
	}
}
