// Package outcomes retroactively scores previously issued prescription
// changes: a deterministic rule engine per change, and a resolver that
// fuses rule verdicts with the external classifier's.
package outcomes

import (
	"fmt"
	"math"

	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/analysis"
)

const (
	confidenceInRange   = 0.90
	confidenceOffRange  = 0.85
	confidenceIgnored   = 0.90
	confidenceAbandoned = 0.70

	repTolerance         = 1
	restToleranceSeconds = 15
	inRangeMajority      = 0.5
)

// Engine deterministically scores a single change against the
// performance that followed it. A nil signal means the engine has no
// opinion (insufficient or inapplicable evidence).
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate routes by change type to the matching evaluator.
func (e *Engine) Evaluate(change *training.PrescriptionChange, followUp *training.Performance, prescription *training.Prescription) *training.OutcomeSignal {
	if change == nil || followUp == nil || prescription == nil {
		return nil
	}

	switch change.Type {
	case training.ChangeIncreaseWeight, training.ChangeDecreaseWeight:
		return e.evaluateWeightChange(change, followUp, prescription)
	case training.ChangeIncreaseReps, training.ChangeDecreaseReps:
		return e.evaluateRepsChange(change, followUp, prescription)
	case training.ChangeIncreaseSetRest, training.ChangeDecreaseSetRest:
		return e.evaluateSetRestChange(change, followUp, prescription)
	case training.ChangeIncreaseExerciseRest, training.ChangeDecreaseExerciseRest,
		training.ChangeRestTimeSeconds, training.ChangeRestTimeMode:
		return e.evaluateExerciseRestChange(change, followUp, prescription)
	case training.ChangeIncreaseRangeLower, training.ChangeDecreaseRangeLower,
		training.ChangeIncreaseRangeUpper, training.ChangeDecreaseRangeUpper,
		training.ChangeRepRangeTarget, training.ChangeRepRangeMode:
		return e.evaluateRepRangeChange(change, followUp, prescription)
	case training.ChangeSetType:
		return e.evaluateSetTypeChange(change, followUp)
	case training.ChangeRemoveSet:
		return e.evaluateRemoveSetChange(change, followUp, prescription)
	}
	return nil
}

// overshootBuffer widens the acceptable ceiling with the range span so
// wider ranges tolerate larger overshoot before reading "too easy".
func overshootBuffer(policy training.RepRangePolicy) int {
	span := 0
	if policy.Mode == training.RepRangeRange {
		span = policy.Upper - policy.Lower
	}
	switch {
	case span <= 3:
		return 1
	case span <= 6:
		return 2
	default:
		return 3
	}
}

// evaluateRepsInRange is the shared scoring sub-algorithm: where did
// the actual reps land relative to the active policy.
func evaluateRepsInRange(actualReps int, policy training.RepRangePolicy) *training.OutcomeSignal {
	floor, hasFloor := policy.Floor()
	ceiling, hasCeiling := policy.Ceiling()
	if !hasFloor || !hasCeiling {
		return nil
	}

	buffer := overshootBuffer(policy)
	switch {
	case actualReps < floor:
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeTooAggressive,
			Confidence: confidenceOffRange,
			Reason:     fmt.Sprintf("reps fell to %d, below the floor of %d", actualReps, floor),
		}
	case actualReps > ceiling+buffer:
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeTooEasy,
			Confidence: confidenceOffRange,
			Reason:     fmt.Sprintf("reps reached %d, well above the ceiling of %d", actualReps, ceiling),
		}
	default:
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeGood,
			Confidence: confidenceInRange,
			Reason:     fmt.Sprintf("reps landed at %d, inside the target range", actualReps),
		}
	}
}

func ignoredSignal(matchedOldTarget bool, what string) *training.OutcomeSignal {
	if matchedOldTarget {
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeIgnored,
			Confidence: confidenceIgnored,
			Reason:     fmt.Sprintf("the old %s was kept, the change was deliberately not adopted", what),
		}
	}
	return &training.OutcomeSignal{
		Outcome:    training.OutcomeIgnored,
		Confidence: confidenceAbandoned,
		Reason:     fmt.Sprintf("neither the new nor the old %s was attempted", what),
	}
}

// targetSet finds the followed-up set for a set-level change; a change
// referencing a set no longer performed yields no opinion.
func targetSet(change *training.PrescriptionChange, followUp *training.Performance) *training.PerformedSet {
	if change.TargetSetIndex == nil {
		return nil
	}
	for i := range followUp.Sets {
		if followUp.Sets[i].Index == *change.TargetSetIndex && followUp.Sets[i].Complete {
			return &followUp.Sets[i]
		}
	}
	return nil
}

func (e *Engine) evaluateWeightChange(change *training.PrescriptionChange, followUp *training.Performance, prescription *training.Prescription) *training.OutcomeSignal {
	set := targetSet(change, followUp)
	if set == nil {
		return nil
	}

	// attempted means within one realistic increment of the target
	tolerance := analysis.WeightIncrement(change.NewValue, prescription.MuscleGroup, prescription.Equipment)
	if tolerance <= 0 {
		tolerance = analysis.DefaultPlate
	}

	switch {
	case math.Abs(set.Weight-change.NewValue) <= tolerance:
		return evaluateRepsInRange(set.Reps, prescription.RepRange)
	case math.Abs(set.Weight-change.PreviousValue) <= tolerance:
		return ignoredSignal(true, "weight target")
	default:
		return ignoredSignal(false, "weight target")
	}
}

func (e *Engine) evaluateRepsChange(change *training.PrescriptionChange, followUp *training.Performance, prescription *training.Prescription) *training.OutcomeSignal {
	set := targetSet(change, followUp)
	if set == nil {
		return nil
	}

	newTarget := int(change.NewValue)
	oldTarget := int(change.PreviousValue)
	switch {
	case abs(set.Reps-newTarget) <= repTolerance:
		return evaluateRepsInRange(set.Reps, prescription.RepRange)
	case abs(set.Reps-oldTarget) <= repTolerance:
		return ignoredSignal(true, "rep target")
	default:
		return ignoredSignal(false, "rep target")
	}
}

func (e *Engine) evaluateSetRestChange(change *training.PrescriptionChange, followUp *training.Performance, prescription *training.Prescription) *training.OutcomeSignal {
	set := targetSet(change, followUp)
	if set == nil {
		return nil
	}

	newRest := int(change.NewValue)
	oldRest := int(change.PreviousValue)
	switch {
	case abs(set.RestSeconds-newRest) <= restToleranceSeconds:
		if signal := evaluateRepsInRange(set.Reps, prescription.RepRange); signal != nil {
			return signal
		}
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeGood,
			Confidence: confidenceInRange,
			Reason:     "the new rest time was followed",
		}
	case abs(set.RestSeconds-oldRest) <= restToleranceSeconds:
		return ignoredSignal(true, "rest time")
	default:
		return ignoredSignal(false, "rest time")
	}
}

func (e *Engine) evaluateExerciseRestChange(change *training.PrescriptionChange, followUp *training.Performance, prescription *training.Prescription) *training.OutcomeSignal {
	working := followUp.CompletedWorkingSets()
	if len(working) == 0 {
		working = followUp.CompletedSets()
	}
	if len(working) == 0 {
		return nil
	}

	var restSum int
	for _, s := range working {
		restSum += s.RestSeconds
	}
	avgRest := restSum / len(working)

	newRest := int(change.NewValue)
	oldRest := int(change.PreviousValue)
	switch {
	case abs(avgRest-newRest) <= restToleranceSeconds:
		if signal := e.aggregateRepsVerdict(working, prescription.RepRange); signal != nil {
			return signal
		}
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeGood,
			Confidence: confidenceInRange,
			Reason:     "the new exercise rest time was followed",
		}
	case abs(avgRest-oldRest) <= restToleranceSeconds:
		return ignoredSignal(true, "exercise rest time")
	default:
		return ignoredSignal(false, "exercise rest time")
	}
}

// aggregateRepsVerdict scores all working sets against the active
// policy: at least half in range reads good, with a directional
// majority below the floor or above the buffered ceiling overriding.
func (e *Engine) aggregateRepsVerdict(sets []training.PerformedSet, policy training.RepRangePolicy) *training.OutcomeSignal {
	floor, hasFloor := policy.Floor()
	ceiling, hasCeiling := policy.Ceiling()
	if !hasFloor || !hasCeiling || len(sets) == 0 {
		return nil
	}

	buffer := overshootBuffer(policy)
	below, above, inRange := 0, 0, 0
	for _, s := range sets {
		switch {
		case s.Reps < floor:
			below++
		case s.Reps > ceiling+buffer:
			above++
		default:
			inRange++
		}
	}

	total := float64(len(sets))
	switch {
	case float64(below)/total > inRangeMajority:
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeTooAggressive,
			Confidence: confidenceOffRange,
			Reason:     fmt.Sprintf("%d of %d working sets fell below the rep floor", below, len(sets)),
		}
	case float64(above)/total > inRangeMajority:
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeTooEasy,
			Confidence: confidenceOffRange,
			Reason:     fmt.Sprintf("%d of %d working sets overshot the range", above, len(sets)),
		}
	case float64(inRange)/total >= inRangeMajority:
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeGood,
			Confidence: confidenceInRange,
			Reason:     fmt.Sprintf("%d of %d working sets landed in range", inRange, len(sets)),
		}
	default:
		// split between both extremes, lean on the worse reading
		if below >= above {
			return &training.OutcomeSignal{
				Outcome:    training.OutcomeTooAggressive,
				Confidence: confidenceOffRange,
				Reason:     "working sets split below and above the range",
			}
		}
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeTooEasy,
			Confidence: confidenceOffRange,
			Reason:     "working sets split above and below the range",
		}
	}
}

func (e *Engine) evaluateRepRangeChange(change *training.PrescriptionChange, followUp *training.Performance, prescription *training.Prescription) *training.OutcomeSignal {
	working := followUp.CompletedWorkingSets()
	if len(working) == 0 {
		working = followUp.CompletedSets()
	}
	return e.aggregateRepsVerdict(working, prescription.RepRange)
}

func (e *Engine) evaluateSetTypeChange(change *training.PrescriptionChange, followUp *training.Performance) *training.OutcomeSignal {
	set := targetSet(change, followUp)
	if set == nil {
		return nil
	}

	logged := set.Type.ChangeValue()
	switch logged {
	case change.NewValue:
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeGood,
			Confidence: confidenceInRange,
			Reason:     "the set is now logged with the suggested type",
		}
	case change.PreviousValue:
		return ignoredSignal(true, "set type")
	default:
		return ignoredSignal(false, "set type")
	}
}

func (e *Engine) evaluateRemoveSetChange(change *training.PrescriptionChange, followUp *training.Performance, prescription *training.Prescription) *training.OutcomeSignal {
	completed := len(followUp.CompletedWorkingSets())
	wanted := int(change.NewValue)
	previous := int(change.PreviousValue)
	switch {
	case completed <= wanted:
		return &training.OutcomeSignal{
			Outcome:    training.OutcomeGood,
			Confidence: confidenceInRange,
			Reason:     fmt.Sprintf("working volume settled at %d sets", completed),
		}
	case completed >= previous:
		return ignoredSignal(true, "set count")
	default:
		return ignoredSignal(false, "set count")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
