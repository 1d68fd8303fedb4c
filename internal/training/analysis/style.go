// Package analysis holds the pure training-metrics functions: style
// detection from weight patterns, progression-set selection, weight
// increment sizing and plate rounding. No state, no I/O.
package analysis

import (
	"sort"

	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
)

const (
	straightSetsMeanBand = 0.10
	topSetThreshold      = 0.90
	backoffThreshold     = 0.80
	pyramidTopThreshold  = 0.95
	monotonicExceptions  = 2
)

// DetectTrainingStyle classifies the weight-loading pattern of the
// completed sets. Fewer than 3 completed sets is not enough evidence
// and yields StyleUnknown.
func DetectTrainingStyle(sets []training.PerformedSet) training.TrainingStyle {
	var weights []float64
	for _, s := range sets {
		if s.Complete {
			weights = append(weights, s.Weight)
		}
	}
	if len(weights) < 3 {
		return training.StyleUnknown
	}

	var sum, max float64
	maxIdx := 0
	for i, w := range weights {
		sum += w
		if w > max {
			max = w
			maxIdx = i
		}
	}
	mean := sum / float64(len(weights))

	if allWithinBandOfMean(weights, mean, straightSetsMeanBand) {
		return training.StyleStraightSets
	}

	if max > 0 {
		topSets := 0
		firstTopIdx := -1
		for i, w := range weights {
			if w >= topSetThreshold*max {
				topSets++
				if firstTopIdx == -1 {
					firstTopIdx = i
				}
			}
		}
		// backoffs only count when they follow the top set, otherwise a
		// plain ascending ramp would be misread as top-set work
		backoffSets := 0
		for i := firstTopIdx + 1; i < len(weights); i++ {
			if weights[i] < backoffThreshold*max {
				backoffSets++
			}
		}
		if topSets >= 1 && topSets <= 3 && backoffSets >= 1 {
			return training.StyleTopSetBackoffs
		}
	}

	if nonDecreasing(weights, monotonicExceptions) && weights[len(weights)-1] == max {
		return training.StyleAscending
	}
	if nonIncreasing(weights, monotonicExceptions) && weights[0] == max {
		return training.StyleDescendingPyramid
	}
	if maxIdx > 0 && maxIdx < len(weights)-1 {
		return training.StyleAscendingPyramid
	}

	return training.StyleUnknown
}

func allWithinBandOfMean(weights []float64, mean, band float64) bool {
	if mean == 0 {
		return true
	}
	for _, w := range weights {
		diff := w - mean
		if diff < 0 {
			diff = -diff
		}
		if diff > band*mean {
			return false
		}
	}
	return true
}

func nonDecreasing(weights []float64, allowedExceptions int) bool {
	exceptions := 0
	for i := 1; i < len(weights); i++ {
		if weights[i] < weights[i-1] {
			exceptions++
		}
	}
	return exceptions <= allowedExceptions
}

func nonIncreasing(weights []float64, allowedExceptions int) bool {
	exceptions := 0
	for i := 1; i < len(weights); i++ {
		if weights[i] > weights[i-1] {
			exceptions++
		}
	}
	return exceptions <= allowedExceptions
}

// SelectProgressionSets returns the subset of a performance's sets that
// represent progression evidence. Explicitly labeled working sets are
// authoritative; otherwise the detected (or overridden) style decides
// which sets matter.
func SelectProgressionSets(perf *training.Performance, styleOverride training.TrainingStyle) []training.PerformedSet {
	completed := perf.CompletedSets()
	if len(completed) == 0 {
		return nil
	}

	if working := perf.CompletedWorkingSets(); len(working) > 0 {
		return working
	}

	style := styleOverride
	if style == "" || style == training.StyleUnknown {
		style = DetectTrainingStyle(completed)
	}

	var max float64
	for _, s := range completed {
		if s.Weight > max {
			max = s.Weight
		}
	}

	switch style {
	case training.StyleTopSetBackoffs:
		var top []training.PerformedSet
		for _, s := range completed {
			if s.Weight >= topSetThreshold*max {
				top = append(top, s)
			}
		}
		sort.SliceStable(top, func(i, j int) bool { return top[i].Weight > top[j].Weight })
		return top
	case training.StyleAscendingPyramid:
		var top []training.PerformedSet
		for _, s := range completed {
			if s.Weight >= pyramidTopThreshold*max {
				top = append(top, s)
			}
		}
		return top
	case training.StyleAscending:
		return completed[len(completed)-1:]
	case training.StyleDescendingPyramid:
		return completed[:1]
	case training.StyleStraightSets:
		return completed
	default:
		// no recognizable pattern, fall back to the heaviest set
		heaviest := completed[0]
		for _, s := range completed[1:] {
			if s.Weight > heaviest.Weight {
				heaviest = s
			}
		}
		return []training.PerformedSet{heaviest}
	}
}
