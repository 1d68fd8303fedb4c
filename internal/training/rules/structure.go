package rules

import (
	"sort"

	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
)

const (
	warmupAsWorkingRatio = 0.90
	workingAsWarmupRatio = 0.70
)

// Rule 9: the prescription calls for more working sets than the lifter
// ever completes; drop the last one.
func (e *evaluation) volumeRegression() []training.PrescriptionChange {
	working := e.ctx.Prescription.WorkingSets()
	if len(working) < 3 || len(e.ctx.Window) < 3 {
		return nil
	}

	for i := 0; i < 3; i++ {
		if len(e.ctx.Window[i].CompletedWorkingSets()) >= len(working) {
			return nil
		}
	}

	sort.Slice(working, func(i, j int) bool { return working[i].Index < working[j].Index })
	last := working[len(working)-1]
	return []training.PrescriptionChange{e.newSetChange(
		training.ChangeRemoveSet, last.Index,
		float64(len(working)), float64(len(working)-1),
		"prescribed working volume is never completed, removing the last working set",
	)}
}

// Rule 11: a drop set needs a preceding working set to drop from.
func (e *evaluation) dropSetWithoutBase() []training.PrescriptionChange {
	sets := make([]training.SetPrescription, len(e.ctx.Prescription.Sets))
	copy(sets, e.ctx.Prescription.Sets)
	sort.Slice(sets, func(i, j int) bool { return sets[i].Index < sets[j].Index })

	workingSeen := false
	for _, set := range sets {
		if set.Type == training.SetTypeWorking {
			workingSeen = true
			continue
		}
		if set.Type != training.SetTypeDropSet {
			continue
		}
		if workingSeen {
			return nil
		}
		return []training.PrescriptionChange{e.newSetChange(
			training.ChangeSetType, set.Index,
			training.SetTypeDropSet.ChangeValue(), training.SetTypeWorking.ChangeValue(),
			"a drop set with no working set before it is really a working set",
		)}
	}
	return nil
}

// Rule 12: a warmup loaded at working weight in both of the last two
// sessions is working volume in disguise.
func (e *evaluation) warmupActingAsWorking() []training.PrescriptionChange {
	if len(e.ctx.Window) < 2 {
		return nil
	}

	var changes []training.PrescriptionChange
	for _, set := range e.ctx.Prescription.Sets {
		if set.Type != training.SetTypeWarmup {
			continue
		}

		heavyBoth := true
		for i := 0; i < 2; i++ {
			performed, found := performedSetAt(&e.ctx.Window[i], set.Index)
			if !found {
				heavyBoth = false
				break
			}
			top := e.ctx.Window[i].TopWorkingWeight()
			if top <= 0 || performed.Weight < warmupAsWorkingRatio*top {
				heavyBoth = false
				break
			}
		}
		if !heavyBoth {
			continue
		}

		changes = appendChange(changes, e.newSetChange(
			training.ChangeSetType, set.Index,
			training.SetTypeWarmup.ChangeValue(), training.SetTypeWorking.ChangeValue(),
			"warmup set is loaded at working weight",
		))
	}
	return changes
}

// Rule 13: an early working set far below the top working weight in
// both of the last two sessions is effectively a warmup.
func (e *evaluation) workingActingAsWarmup() []training.PrescriptionChange {
	if len(e.ctx.Window) < 2 {
		return nil
	}

	working := e.ctx.Prescription.WorkingSets()
	if len(working) < 2 {
		return nil
	}
	sort.Slice(working, func(i, j int) bool { return working[i].Index < working[j].Index })

	var changes []training.PrescriptionChange
	// the last working set is never a warmup candidate
	for _, set := range working[:len(working)-1] {
		lightBoth := true
		for i := 0; i < 2; i++ {
			performed, found := performedSetAt(&e.ctx.Window[i], set.Index)
			if !found {
				lightBoth = false
				break
			}
			top := e.ctx.Window[i].TopWorkingWeight()
			if top <= 0 || performed.Weight >= workingAsWarmupRatio*top {
				lightBoth = false
				break
			}
		}
		if !lightBoth {
			continue
		}

		changes = appendChange(changes, e.newSetChange(
			training.ChangeSetType, set.Index,
			training.SetTypeWorking.ChangeValue(), training.SetTypeWarmup.ChangeValue(),
			"early working set is loaded like a warmup",
		))
	}
	return changes
}

// Rule 14: the logged set type consistently disagrees with the
// prescription; trust the log and sync the prescription.
func (e *evaluation) setTypeMismatch() []training.PrescriptionChange {
	if len(e.ctx.Window) < 2 {
		return nil
	}

	var changes []training.PrescriptionChange
	for _, set := range e.ctx.Prescription.Sets {
		current, okCurrent := performedSetAt(&e.ctx.Window[0], set.Index)
		previous, okPrevious := performedSetAt(&e.ctx.Window[1], set.Index)
		if !okCurrent || !okPrevious {
			continue
		}
		if current.Type == set.Type || current.Type != previous.Type {
			continue
		}

		changes = appendChange(changes, e.newSetChange(
			training.ChangeSetType, set.Index,
			set.Type.ChangeValue(), current.Type.ChangeValue(),
			"logged set type keeps disagreeing with the prescription",
		))
	}
	return changes
}
