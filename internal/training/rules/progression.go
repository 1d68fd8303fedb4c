package rules

import (
	"fmt"
	"math"

	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/analysis"
)

// sessionsSatisfy reports whether every progression set of each of the
// window entries [0, count) satisfies pred. A session without
// progression evidence fails the check.
func (e *evaluation) sessionsSatisfy(count int, pred func(training.PerformedSet) bool) bool {
	if len(e.ctx.Window) < count {
		return false
	}
	for i := 0; i < count; i++ {
		sets := e.progressionSets(i)
		if len(sets) == 0 {
			return false
		}
		for _, s := range sets {
			if !pred(s) {
				return false
			}
		}
	}
	return true
}

// sessionsCountSatisfying counts how many of the window entries
// [0, total) have all their progression sets satisfying pred.
func (e *evaluation) sessionsCountSatisfying(total int, pred func(training.PerformedSet) bool) int {
	if len(e.ctx.Window) < total {
		total = len(e.ctx.Window)
	}
	matched := 0
	for i := 0; i < total; i++ {
		sets := e.progressionSets(i)
		if len(sets) == 0 {
			continue
		}
		all := true
		for _, s := range sets {
			if !pred(s) {
				all = false
				break
			}
		}
		if all {
			matched++
		}
	}
	return matched
}

// emitWeightJump produces an increaseWeight change per prescribed
// progression set, plus a reps reset to the range floor in range mode.
func (e *evaluation) emitWeightJump(multiplier float64, reason string) []training.PrescriptionChange {
	var changes []training.PrescriptionChange
	rr := e.ctx.Prescription.RepRange
	floor, hasFloor := rr.Floor()

	for _, set := range e.prescribedProgressionSets() {
		inc := e.increment(set.TargetWeight)
		if inc == 0 {
			continue
		}
		newWeight := analysis.RoundToNearestPlate(set.TargetWeight+multiplier*inc, analysis.DefaultPlate)
		change := e.newSetChange(training.ChangeIncreaseWeight, set.Index, set.TargetWeight, newWeight, reason)
		if isNoop(change) {
			continue
		}
		changes = append(changes, change)
		e.weightIncreased[set.Index] = true

		if rr.Mode == training.RepRangeRange && hasFloor && set.TargetReps != floor {
			changes = appendChange(changes, e.newSetChange(
				training.ChangeDecreaseReps, set.Index,
				float64(set.TargetReps), float64(floor),
				"reset reps to the bottom of the range after a weight increase",
			))
		}
	}
	return changes
}

// Rule 1: both of the last two sessions blew far past the rep ceiling
// (or target) on every progression set, so a standard increment is too
// timid.
func (e *evaluation) largeOvershootProgression() []training.PrescriptionChange {
	rr := e.ctx.Prescription.RepRange

	var overshoot func(training.PerformedSet) bool
	switch rr.Mode {
	case training.RepRangeRange:
		overshoot = func(s training.PerformedSet) bool {
			return s.Reps >= rr.Upper+overshootRangeMargin
		}
	case training.RepRangeTarget:
		overshoot = func(s training.PerformedSet) bool {
			return s.Reps >= rr.Target+overshootTargetMargin
		}
	default:
		return nil
	}

	if !e.sessionsSatisfy(2, overshoot) {
		return nil
	}

	return e.emitWeightJump(
		largeOvershootMultiplier,
		"reps far above the target two sessions in a row, time for a bigger weight jump",
	)
}

// Rule 2: classic double progression in range mode. Hitting the top of
// the range twice in a row earns a weight increase and a reps reset.
func (e *evaluation) doubleProgressionRange() []training.PrescriptionChange {
	rr := e.ctx.Prescription.RepRange
	if rr.Mode != training.RepRangeRange {
		return nil
	}

	hitCeiling := func(s training.PerformedSet) bool { return s.Reps >= rr.Upper }
	if !e.sessionsSatisfy(2, hitCeiling) {
		return nil
	}

	multiplier := 1.0
	if e.ctx.Style == training.StyleTopSetBackoffs {
		multiplier = topSetBackoffsMultiplier
	}

	return e.emitWeightJump(
		multiplier,
		fmt.Sprintf("hit the top of the %d-%d range two sessions in a row", rr.Lower, rr.Upper),
	)
}

// Rule 3: double progression in target mode; exceeding the rep target
// twice in a row earns a standard weight increment.
func (e *evaluation) doubleProgressionTarget() []training.PrescriptionChange {
	rr := e.ctx.Prescription.RepRange
	if rr.Mode != training.RepRangeTarget {
		return nil
	}

	aboveTarget := func(s training.PerformedSet) bool { return s.Reps >= rr.Target+1 }
	if !e.sessionsSatisfy(2, aboveTarget) {
		return nil
	}

	return e.emitWeightJump(
		1.0,
		fmt.Sprintf("exceeded the %d rep target two sessions in a row", rr.Target),
	)
}

// Rule 4: reps and weight flat across two sessions inside the range,
// and no weight increase already queued for the set, so nudge the rep
// target up by one.
func (e *evaluation) steadyRepIncrease() []training.PrescriptionChange {
	rr := e.ctx.Prescription.RepRange
	if rr.Mode != training.RepRangeRange || len(e.ctx.Window) < 2 {
		return nil
	}

	var changes []training.PrescriptionChange
	for _, set := range e.prescribedProgressionSets() {
		if e.weightIncreased[set.Index] {
			continue
		}

		current, okCurrent := performedSetAt(&e.ctx.Window[0], set.Index)
		previous, okPrevious := performedSetAt(&e.ctx.Window[1], set.Index)
		if !okCurrent || !okPrevious {
			continue
		}
		if current.Reps != previous.Reps {
			continue
		}
		if math.Abs(current.Weight-previous.Weight) > weightTolerance {
			continue
		}
		if current.Reps < rr.Lower || current.Reps >= rr.Upper {
			continue
		}

		newReps := current.Reps + 1
		if newReps > rr.Upper {
			newReps = rr.Upper
		}
		changes = appendChange(changes, e.newSetChange(
			training.ChangeIncreaseReps, set.Index,
			float64(set.TargetReps), float64(newReps),
			"steady reps at the same weight, add one rep within the range",
		))
	}
	return changes
}
