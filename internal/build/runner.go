package build

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/tscdualbuild/internal/logfields"
	"git.home.luguber.info/inful/tscdualbuild/internal/observability"
)

// RunStages executes stages in order, recording timing and stopping on the
// first error. Nothing already done is rolled back.
func RunStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	obs := bs.observer()
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := NewCanceledStageError(st.Name, ctx.Err())
			bs.Report.RecordStage(st.Name, 0, StageResultCanceled)
			obs.OnStageComplete(st.Name, 0, StageResultCanceled)
			return se
		default:
		}

		obs.OnStageStart(st.Name)
		stageCtx := observability.WithStage(ctx, string(st.Name))

		t0 := time.Now()
		err := st.Fn(stageCtx, bs)
		dur := time.Since(t0)

		se := classifyStageError(ctx, st.Name, err)
		res := StageResultSuccess
		if se != nil {
			res = StageResult(se.Kind)
		}
		bs.Report.RecordStage(st.Name, dur, res)
		obs.OnStageComplete(st.Name, dur, res)

		observability.DebugContext(stageCtx, "Stage finished",
			logfields.Result(string(res)),
			logfields.DurationMS(float64(dur.Microseconds())/1000))

		if se != nil {
			return se
		}
	}
	return nil
}

// classifyStageError wraps err in a StageError unless it already is one.
func classifyStageError(ctx context.Context, stage StageName, err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return NewCanceledStageError(stage, err)
	}
	return NewFatalStageError(stage, err)
}
