package analysis

import (
	"math"

	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
)

// DefaultPlate is the smallest commonly available plate pair.
const DefaultPlate = 2.5

// WeightIncrement returns the realistic load-jump granularity for an
// exercise, by equipment first and muscle group as a fallback.
// Bodyweight work at zero load has no increment.
func WeightIncrement(currentWeight float64, muscleGroup string, equipment training.Equipment) float64 {
	if equipment == training.EquipmentBodyweight && currentWeight == 0 {
		return 0
	}

	switch equipment {
	case training.EquipmentDumbbellSingle:
		if currentWeight < 15 {
			return 2.5
		}
		return 5.0
	case training.EquipmentDumbbellPair:
		if currentWeight < 30 {
			return 5.0
		}
		return 10.0
	case training.EquipmentCable:
		// cable stacks scale their jumps with the loaded resistance
		switch {
		case currentWeight < 50:
			return 2.5
		case currentWeight < 100:
			return 5.0
		default:
			return 10.0
		}
	case training.EquipmentMachine:
		if currentWeight < 100 {
			return 5.0
		}
		return 10.0
	case training.EquipmentBarbell:
		return 5.0
	case training.EquipmentKettlebell:
		// kettlebells typically jump in 4 kg steps
		return 8.8
	}

	return muscleGroupIncrement(muscleGroup)
}

// compound movers take bigger jumps than isolation or forearm work
func muscleGroupIncrement(muscleGroup string) float64 {
	switch muscleGroup {
	case "quads", "hamstrings", "glutes", "back", "chest":
		return 5.0
	case "shoulders", "biceps", "triceps", "calves", "abs", "forearms":
		return 2.5
	}
	return 2.5
}

// RoundToNearestPlate rounds a weight to the nearest multiple of plate.
// A non-positive plate leaves the value untouched.
func RoundToNearestPlate(value, plate float64) float64 {
	if plate <= 0 {
		return value
	}
	return math.Round(value/plate) * plate
}

// EstimateOneRepMax returns the best Epley one-rep-max estimate over
// the given sets, or 0 when no completed set carries load.
func EstimateOneRepMax(sets []training.PerformedSet) float64 {
	var best float64
	for _, s := range sets {
		if !s.Complete || s.Weight <= 0 || s.Reps <= 0 {
			continue
		}
		estimate := s.Weight * (1 + float64(s.Reps)/30)
		if estimate > best {
			best = estimate
		}
	}
	return best
}
