package rules

import (
	"math"

	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/analysis"
)

// Rule 8: the estimated one-rep max has been flat for three sessions
// while the lifter struggles at the bottom of the range; more rest may
// unlock the stalled sets.
func (e *evaluation) stagnationIncreaseRest() []training.PrescriptionChange {
	rr := e.ctx.Prescription.RepRange
	floor, hasFloor := rr.Floor()
	if !hasFloor || len(e.ctx.Window) < 3 {
		return nil
	}

	baseline := analysis.EstimateOneRepMax(e.progressionSets(0))
	if baseline <= 0 {
		return nil
	}
	for i := 1; i < 3; i++ {
		estimate := analysis.EstimateOneRepMax(e.progressionSets(i))
		if estimate <= 0 {
			return nil
		}
		if math.Abs(estimate-baseline)/baseline >= stagnationDriftRatio {
			return nil
		}
	}

	// struggling: at least 2 of the last 3 sessions show a progression
	// set at or below the rep floor
	struggling := 0
	for i := 0; i < 3; i++ {
		for _, s := range e.progressionSets(i) {
			if s.Reps <= floor {
				struggling++
				break
			}
		}
	}
	if struggling < 2 {
		return nil
	}

	if e.ctx.Prescription.RestTime.Mode == training.RestTimeAllSame {
		seconds := e.ctx.Prescription.RestTime.Seconds
		return []training.PrescriptionChange{e.newChange(
			training.ChangeRestTimeSeconds,
			float64(seconds), float64(seconds+restIncrementSeconds),
			"strength has been flat while reps sit at the floor, adding rest",
		)}
	}

	var changes []training.PrescriptionChange
	for _, set := range e.prescribedProgressionSets() {
		if set.TargetRestSeconds == 0 {
			// zero rest is intentional (supersets, drop sets)
			continue
		}
		changes = appendChange(changes, e.newSetChange(
			training.ChangeIncreaseSetRest, set.Index,
			float64(set.TargetRestSeconds), float64(set.TargetRestSeconds+restIncrementSeconds),
			"strength has been flat while reps sit at the floor, adding rest",
		))
	}
	return changes
}

// Rule 10: cutting rest well short of the target and then dropping reps
// right after suggests the short rest is the cause.
func (e *evaluation) shortRestRepDrop() []training.PrescriptionChange {
	if len(e.ctx.Window) < 2 {
		return nil
	}
	rr := e.ctx.Prescription.RepRange
	floor, hasFloor := rr.Floor()

	var changes []training.PrescriptionChange
	for _, set := range e.prescribedProgressionSets() {
		if set.TargetRestSeconds == 0 {
			continue
		}

		current, okCurrent := performedSetAt(&e.ctx.Window[0], set.Index)
		previous, okPrevious := performedSetAt(&e.ctx.Window[1], set.Index)
		if !okCurrent || !okPrevious {
			continue
		}

		shortRest := func(s *training.PerformedSet) bool {
			return s.TargetRestSeconds > 0 && s.RestSeconds <= s.TargetRestSeconds-restIncrementSeconds
		}
		if !shortRest(current) || !shortRest(previous) {
			continue
		}

		repDrop := current.Reps <= previous.Reps-2
		belowFloor := hasFloor && current.Reps < floor
		if !repDrop && !belowFloor {
			continue
		}

		changes = appendChange(changes, e.newSetChange(
			training.ChangeIncreaseSetRest, set.Index,
			float64(set.TargetRestSeconds), float64(set.TargetRestSeconds+restIncrementSeconds),
			"rest is being cut short and reps are falling with it",
		))
	}
	return changes
}
