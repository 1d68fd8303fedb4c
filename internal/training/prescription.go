package training

import (
	"errors"
	"fmt"
)

// SetType describes the role a set plays within an exercise.
type SetType string

const (
	SetTypeWarmup   SetType = "warmup"
	SetTypeWorking  SetType = "working"
	SetTypeSuperSet SetType = "superSet"
	SetTypeDropSet  SetType = "dropSet"
	SetTypeFailure  SetType = "failure"
)

// RepRangeMode is the target repetition scheme of a prescription.
type RepRangeMode string

const (
	RepRangeNotSet       RepRangeMode = "notSet"
	RepRangeTarget       RepRangeMode = "target"
	RepRangeRange        RepRangeMode = "range"
	RepRangeUntilFailure RepRangeMode = "untilFailure"
)

type RepRangePolicy struct {
	Mode   RepRangeMode `json:"mode"`
	Target int          `json:"target,omitempty"`
	Lower  int          `json:"lower,omitempty"`
	Upper  int          `json:"upper,omitempty"`
}

// Floor returns the lowest acceptable rep count, or false when the
// policy gives no bound (notSet / untilFailure).
func (p RepRangePolicy) Floor() (int, bool) {
	switch p.Mode {
	case RepRangeTarget:
		return p.Target, true
	case RepRangeRange:
		return p.Lower, true
	default:
		return 0, false
	}
}

// Ceiling returns the highest acceptable rep count, or false when the
// policy gives no bound.
func (p RepRangePolicy) Ceiling() (int, bool) {
	switch p.Mode {
	case RepRangeTarget:
		return p.Target, true
	case RepRangeRange:
		return p.Upper, true
	default:
		return 0, false
	}
}

type RestTimeMode string

const (
	RestTimeAllSame    RestTimeMode = "allSame"
	RestTimeByType     RestTimeMode = "byType"
	RestTimeIndividual RestTimeMode = "individual"
)

type RestTimePolicy struct {
	Mode    RestTimeMode `json:"mode"`
	Seconds int          `json:"seconds,omitempty"`
}

// SetPrescription is the target state of a single set within a prescription.
type SetPrescription struct {
	Index             int     `json:"index"`
	Type              SetType `json:"type"`
	TargetWeight      float64 `json:"targetWeight"`
	TargetReps        int     `json:"targetReps"`
	TargetRestSeconds int     `json:"targetRestSeconds"`
}

// Prescription is the full target state for one exercise.
type Prescription struct {
	ID          int               `json:"id"`
	ExerciseID  string            `json:"exerciseId"`
	MuscleGroup string            `json:"muscleGroup"`
	Equipment   Equipment         `json:"equipment"`
	RepRange    RepRangePolicy    `json:"repRange"`
	RestTime    RestTimePolicy    `json:"restTime"`
	Sets        []SetPrescription `json:"sets"`
}

var (
	ErrSetIndicesNotContiguous = errors.New("set indices must be unique and contiguous from 0")
	ErrInvalidRepRange         = errors.New("rep range lower bound must be below upper bound")
)

// Validate checks the structural invariants of a prescription.
func (p *Prescription) Validate() error {
	seen := make(map[int]bool, len(p.Sets))
	for _, s := range p.Sets {
		if s.Index < 0 || s.Index >= len(p.Sets) || seen[s.Index] {
			return fmt.Errorf("set index %d: %w", s.Index, ErrSetIndicesNotContiguous)
		}
		seen[s.Index] = true
	}
	if p.RepRange.Mode == RepRangeRange && p.RepRange.Lower >= p.RepRange.Upper {
		return fmt.Errorf("range [%d, %d]: %w", p.RepRange.Lower, p.RepRange.Upper, ErrInvalidRepRange)
	}
	return nil
}

// Set returns the set prescription with the given index.
func (p *Prescription) Set(index int) (*SetPrescription, bool) {
	for i := range p.Sets {
		if p.Sets[i].Index == index {
			return &p.Sets[i], true
		}
	}
	return nil, false
}

// WorkingSets returns the prescribed sets labeled as working, in index order.
func (p *Prescription) WorkingSets() []SetPrescription {
	var working []SetPrescription
	for _, s := range p.Sets {
		if s.Type == SetTypeWorking {
			working = append(working, s)
		}
	}
	return working
}

// Equipment is the load mechanism of an exercise, which determines
// realistic weight increments.
type Equipment string

const (
	EquipmentBarbell        Equipment = "barbell"
	EquipmentDumbbellSingle Equipment = "dumbbellSingle"
	EquipmentDumbbellPair   Equipment = "dumbbellPair"
	EquipmentCable          Equipment = "cable"
	EquipmentMachine        Equipment = "machine"
	EquipmentBodyweight     Equipment = "bodyweight"
	EquipmentKettlebell     Equipment = "kettlebell"
)
