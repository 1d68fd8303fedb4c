// Package rules implements the suggestion-generating rule engine: an
// ordered catalogue of independent rules evaluated against an
// exercise's performance history and its current prescription.
package rules

import (
	"context"
	"math"
	"time"

	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/tracing"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/analysis"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// weight considered "the same" / "attempted as prescribed"
	weightTolerance = 2.5
	// consistent deviation that makes the prescription stale
	deviationThreshold = 5.0
	// rep margins for the large-overshoot rule
	overshootRangeMargin  = 4
	overshootTargetMargin = 5
	// rest bump applied by the rest rules
	restIncrementSeconds = 15
	// weight-jump multipliers
	largeOvershootMultiplier = 1.5
	topSetBackoffsMultiplier = 1.25
	// one-rep-max drift below which the lifter is considered stuck
	stagnationDriftRatio = 0.02
	// a proposal this close to the previous value is a no-op
	noopEpsilon = 0.0001
)

// Context bundles everything a rule may look at during one evaluation
// pass. Window is most-recent-first with the current performance
// prepended as entry 0.
type Context struct {
	Session      *training.Session
	Performance  *training.Performance
	Prescription *training.Prescription
	Window       training.EvidenceWindow
	Style        training.TrainingStyle
	Now          time.Time
}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs the full rule catalogue in precedence order and returns
// the concatenated candidate changes. Rules with insufficient evidence
// abstain silently; the result may be empty but is never an error.
func (e *Engine) Evaluate(ctx context.Context, evalCtx Context) []training.PrescriptionChange {
	_, span := tracing.GlobalTracer.Start(ctx, "rules.engine.evaluate")
	defer span.End()

	if evalCtx.Performance == nil || evalCtx.Prescription == nil {
		return nil
	}
	if evalCtx.Now.IsZero() {
		evalCtx.Now = time.Now()
	}
	if evalCtx.Style == "" || evalCtx.Style == training.StyleUnknown {
		evalCtx.Style = analysis.DetectTrainingStyle(evalCtx.Performance.CompletedSets())
	}

	span.SetAttributes(attribute.String("exercise_id", evalCtx.Prescription.ExerciseID))
	span.SetAttributes(attribute.String("style", string(evalCtx.Style)))
	span.SetAttributes(attribute.Int("window_size", len(evalCtx.Window)))

	pass := &evaluation{
		ctx:              evalCtx,
		progressionCache: make(map[int][]training.PerformedSet),
		weightIncreased:  make(map[int]bool),
	}

	catalogue := []func() []training.PrescriptionChange{
		pass.largeOvershootProgression,
		pass.doubleProgressionRange,
		pass.doubleProgressionTarget,
		pass.steadyRepIncrease,
		pass.belowRangeWeightDecrease,
		pass.reducedWeightToHitReps,
		pass.matchActualWeight,
		pass.stagnationIncreaseRest,
		pass.volumeRegression,
		pass.shortRestRepDrop,
		pass.dropSetWithoutBase,
		pass.warmupActingAsWorking,
		pass.workingActingAsWarmup,
		pass.setTypeMismatch,
	}

	var candidates []training.PrescriptionChange
	for _, rule := range catalogue {
		candidates = append(candidates, rule()...)
	}

	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	log.Debugf(
		"rules engine: %d candidate changes for exercise [%s], prescription %d",
		len(candidates), evalCtx.Prescription.ExerciseID, evalCtx.Prescription.ID,
	)

	return candidates
}

// evaluation is the per-pass state shared by the rule functions.
type evaluation struct {
	ctx              Context
	progressionCache map[int][]training.PerformedSet
	// set indices that already received a weight increase from the
	// progression rules in this pass; the steady-rep rule must not
	// touch them again
	weightIncreased map[int]bool
}

// progressionSets returns the progression evidence of window entry i,
// memoized per pass.
func (e *evaluation) progressionSets(i int) []training.PerformedSet {
	if sets, ok := e.progressionCache[i]; ok {
		return sets
	}
	if i >= len(e.ctx.Window) {
		return nil
	}
	sets := analysis.SelectProgressionSets(&e.ctx.Window[i], e.ctx.Style)
	e.progressionCache[i] = sets
	return sets
}

// prescribedProgressionSets returns the prescribed sets that the
// progression rules operate on: the working sets, or all sets when none
// are labeled working.
func (e *evaluation) prescribedProgressionSets() []training.SetPrescription {
	if working := e.ctx.Prescription.WorkingSets(); len(working) > 0 {
		return working
	}
	return e.ctx.Prescription.Sets
}

// newChange stamps a rule-sourced change with the pass context.
func (e *evaluation) newChange(t training.ChangeType, prev, next float64, reason string) training.PrescriptionChange {
	change := training.NewChange(t, prev, next, training.SourceRules, e.ctx.Now)
	change.Reason = reason
	change.SessionID = e.ctx.Session.ID
	change.PerformanceID = e.ctx.Performance.ID
	change.PrescriptionID = e.ctx.Prescription.ID
	return change
}

func (e *evaluation) newSetChange(t training.ChangeType, setIndex int, prev, next float64, reason string) training.PrescriptionChange {
	change := e.newChange(t, prev, next, reason)
	idx := setIndex
	change.TargetSetIndex = &idx
	return change
}

// increment returns the weight-jump granularity for the prescription.
func (e *evaluation) increment(currentWeight float64) float64 {
	return analysis.WeightIncrement(
		currentWeight,
		e.ctx.Prescription.MuscleGroup,
		e.ctx.Prescription.Equipment,
	)
}

func isNoop(change training.PrescriptionChange) bool {
	return math.Abs(change.NewValue-change.PreviousValue) < noopEpsilon
}

// appendChange drops no-op proposals before adding them to the batch.
func appendChange(batch []training.PrescriptionChange, change training.PrescriptionChange) []training.PrescriptionChange {
	if isNoop(change) {
		return batch
	}
	return append(batch, change)
}

// performedSetAt finds the completed set with the given index within a
// performance, if it exists.
func performedSetAt(perf *training.Performance, index int) (*training.PerformedSet, bool) {
	for i := range perf.Sets {
		if perf.Sets[i].Index == index && perf.Sets[i].Complete {
			return &perf.Sets[i], true
		}
	}
	return nil, false
}
