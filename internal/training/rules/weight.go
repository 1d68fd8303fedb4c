package rules

import (
	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/analysis"
)

// Rule 5: the lifter keeps attempting the prescribed weight but lands
// under the range floor, so back the weight off by one increment.
func (e *evaluation) belowRangeWeightDecrease() []training.PrescriptionChange {
	rr := e.ctx.Prescription.RepRange
	if rr.Mode != training.RepRangeRange || len(e.ctx.Window) < 3 {
		return nil
	}

	belowFloorAtWeight := func(s training.PerformedSet) bool {
		attempted := s.Weight >= s.TargetWeight-weightTolerance && s.Weight <= s.TargetWeight+weightTolerance
		return attempted && s.Reps < rr.Lower
	}
	if e.sessionsCountSatisfying(3, belowFloorAtWeight) < 2 {
		return nil
	}

	var changes []training.PrescriptionChange
	for _, set := range e.prescribedProgressionSets() {
		inc := e.increment(set.TargetWeight)
		if inc == 0 {
			continue
		}
		newWeight := analysis.RoundToNearestPlate(set.TargetWeight-inc, analysis.DefaultPlate)
		if newWeight < 0 {
			newWeight = 0
		}
		changes = appendChange(changes, e.newSetChange(
			training.ChangeDecreaseWeight, set.Index,
			set.TargetWeight, newWeight,
			"reps keep landing below the range at the prescribed weight",
		))
	}
	return changes
}

// Rule 6: the lifter has been self-reducing the load to reach the reps,
// so bring the prescription down to what is actually being lifted.
func (e *evaluation) reducedWeightToHitReps() []training.PrescriptionChange {
	rr := e.ctx.Prescription.RepRange
	floor, ok := rr.Floor()
	if !ok || len(e.ctx.Window) < 2 {
		return nil
	}

	var changes []training.PrescriptionChange
	for _, set := range e.prescribedProgressionSets() {
		var observedSum float64
		matched := 0
		for i := 0; i < 2; i++ {
			performed, found := performedSetAt(&e.ctx.Window[i], set.Index)
			if !found {
				continue
			}
			if performed.Weight < set.TargetWeight-weightTolerance && performed.Reps <= floor {
				observedSum += performed.Weight
				matched++
			}
		}
		if matched < 2 {
			continue
		}

		newWeight := analysis.RoundToNearestPlate(observedSum/float64(matched), analysis.DefaultPlate)
		changes = appendChange(changes, e.newSetChange(
			training.ChangeDecreaseWeight, set.Index,
			set.TargetWeight, newWeight,
			"weight is being reduced below the prescription to reach the reps",
		))
	}
	return changes
}

// Rule 7: three consecutive sessions deviate from the prescribed weight
// by more than 5 in the same direction, so the prescription is stale;
// snap it to the observed average.
func (e *evaluation) matchActualWeight() []training.PrescriptionChange {
	if len(e.ctx.Window) < 3 {
		return nil
	}

	var changes []training.PrescriptionChange
	for _, set := range e.ctx.Prescription.WorkingSets() {
		if e.weightIncreased[set.Index] {
			continue
		}

		var observedSum float64
		above, below := 0, 0
		matched := 0
		for i := 0; i < 3; i++ {
			performed, found := performedSetAt(&e.ctx.Window[i], set.Index)
			if !found {
				break
			}
			deviation := performed.Weight - set.TargetWeight
			switch {
			case deviation > deviationThreshold:
				above++
			case deviation < -deviationThreshold:
				below++
			default:
				// deviation inside the tolerance, not a stale target
			}
			observedSum += performed.Weight
			matched++
		}
		if matched < 3 || (above != 3 && below != 3) {
			continue
		}

		newWeight := analysis.RoundToNearestPlate(observedSum/3, analysis.DefaultPlate)
		changeType := training.ChangeIncreaseWeight
		if below == 3 {
			changeType = training.ChangeDecreaseWeight
		}
		changes = appendChange(changes, e.newSetChange(
			changeType, set.Index,
			set.TargetWeight, newWeight,
			"logged weight consistently differs from the prescription, syncing the target",
		))
	}
	return changes
}
