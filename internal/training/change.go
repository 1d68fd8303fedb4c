package training

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType enumerates every kind of atomic prescription edit the
// engine can propose. The set is closed: each component that cares
// about change kinds switches over it exhaustively.
type ChangeType string

const (
	ChangeIncreaseWeight       ChangeType = "increaseWeight"
	ChangeDecreaseWeight       ChangeType = "decreaseWeight"
	ChangeIncreaseReps         ChangeType = "increaseReps"
	ChangeDecreaseReps         ChangeType = "decreaseReps"
	ChangeIncreaseSetRest      ChangeType = "increaseSetRest"
	ChangeDecreaseSetRest      ChangeType = "decreaseSetRest"
	ChangeIncreaseExerciseRest ChangeType = "increaseExerciseRest"
	ChangeDecreaseExerciseRest ChangeType = "decreaseExerciseRest"
	ChangeSetType              ChangeType = "changeSetType"
	ChangeRemoveSet            ChangeType = "removeSet"
	ChangeIncreaseRangeLower   ChangeType = "increaseRepRangeLower"
	ChangeDecreaseRangeLower   ChangeType = "decreaseRepRangeLower"
	ChangeIncreaseRangeUpper   ChangeType = "increaseRepRangeUpper"
	ChangeDecreaseRangeUpper   ChangeType = "decreaseRepRangeUpper"
	ChangeRepRangeTarget       ChangeType = "changeRepRangeTarget"
	ChangeRepRangeMode         ChangeType = "changeRepRangeMode"
	ChangeRestTimeMode         ChangeType = "changeRestTimeMode"
	ChangeRestTimeSeconds      ChangeType = "changeRestTimeSeconds"
)

// ChangeProperty is the prescription property a change edits. Two
// changes conflicting on the same (target, property) must be reduced
// to one before being persisted.
type ChangeProperty string

const (
	PropertyWeight          ChangeProperty = "weight"
	PropertyReps            ChangeProperty = "reps"
	PropertySetRest         ChangeProperty = "setRest"
	PropertyExerciseRest    ChangeProperty = "exerciseRest"
	PropertySetType         ChangeProperty = "setType"
	PropertyRemoveSet       ChangeProperty = "removeSet"
	PropertyRepRangeLower   ChangeProperty = "repRangeLower"
	PropertyRepRangeUpper   ChangeProperty = "repRangeUpper"
	PropertyRepRangeTarget  ChangeProperty = "repRangeTarget"
	PropertyRepRangeMode    ChangeProperty = "repRangeMode"
	PropertyRestTimeMode    ChangeProperty = "restTimeMode"
	PropertyRestTimeSeconds ChangeProperty = "restTimeSeconds"
)

// Property returns the prescription property this change type edits.
func (t ChangeType) Property() ChangeProperty {
	switch t {
	case ChangeIncreaseWeight, ChangeDecreaseWeight:
		return PropertyWeight
	case ChangeIncreaseReps, ChangeDecreaseReps:
		return PropertyReps
	case ChangeIncreaseSetRest, ChangeDecreaseSetRest:
		return PropertySetRest
	case ChangeIncreaseExerciseRest, ChangeDecreaseExerciseRest:
		return PropertyExerciseRest
	case ChangeSetType:
		return PropertySetType
	case ChangeRemoveSet:
		return PropertyRemoveSet
	case ChangeIncreaseRangeLower, ChangeDecreaseRangeLower:
		return PropertyRepRangeLower
	case ChangeIncreaseRangeUpper, ChangeDecreaseRangeUpper:
		return PropertyRepRangeUpper
	case ChangeRepRangeTarget:
		return PropertyRepRangeTarget
	case ChangeRepRangeMode:
		return PropertyRepRangeMode
	case ChangeRestTimeMode:
		return PropertyRestTimeMode
	case ChangeRestTimeSeconds:
		return PropertyRestTimeSeconds
	}
	return ""
}

// Priority ranks conflicting changes on the same property; lower wins.
// Safety-motivated decreases outrank progression, progression outranks
// structural edits, rest tweaks come last.
func (t ChangeType) Priority() int {
	switch t {
	case ChangeDecreaseWeight:
		return 1
	case ChangeIncreaseWeight, ChangeIncreaseReps, ChangeDecreaseReps:
		return 2
	case ChangeSetType, ChangeRemoveSet,
		ChangeIncreaseRangeLower, ChangeDecreaseRangeLower,
		ChangeIncreaseRangeUpper, ChangeDecreaseRangeUpper,
		ChangeRepRangeTarget, ChangeRepRangeMode:
		return 3
	case ChangeIncreaseSetRest, ChangeDecreaseSetRest,
		ChangeIncreaseExerciseRest, ChangeDecreaseExerciseRest,
		ChangeRestTimeMode, ChangeRestTimeSeconds:
		return 5
	}
	return 9
}

type ChangeSource string

const (
	SourceRules ChangeSource = "rules"
	SourceAI    ChangeSource = "ai"
	SourceUser  ChangeSource = "user"
)

// Decision is the user-facing acceptance state of a change, independent
// of its outcome.
type Decision string

const (
	DecisionPending      Decision = "pending"
	DecisionAccepted     Decision = "accepted"
	DecisionRejected     Decision = "rejected"
	DecisionDeferred     Decision = "deferred"
	DecisionUserOverride Decision = "userOverride"
)

// Outcome is the retrospective classification of how a performed
// session responded to a previously suggested change.
type Outcome string

const (
	OutcomePending       Outcome = "pending"
	OutcomeGood          Outcome = "good"
	OutcomeTooAggressive Outcome = "tooAggressive"
	OutcomeTooEasy       Outcome = "tooEasy"
	OutcomeIgnored       Outcome = "ignored"
	OutcomeUserModified  Outcome = "userModified"
)

// PrescriptionChange is a single atomic edit proposed against a
// prescription, together with its decision and outcome lifecycle.
type PrescriptionChange struct {
	ID             string       `json:"id"`
	Type           ChangeType   `json:"type"`
	PreviousValue  float64      `json:"previousValue"`
	NewValue       float64      `json:"newValue"`
	TargetSetIndex *int         `json:"targetSetIndex,omitempty"` // nil means exercise-level
	Source         ChangeSource `json:"source"`
	Decision       Decision     `json:"decision"`
	Outcome        Outcome      `json:"outcome"`
	Reason         string       `json:"reason"`
	CreatedAt      time.Time    `json:"createdAt"`
	EvaluatedAt    *time.Time   `json:"evaluatedAt,omitempty"`

	SessionID          int `json:"sessionId"`
	PerformanceID      int `json:"performanceId"`
	PrescriptionID     int `json:"prescriptionId"`
	EvaluatedSessionID int `json:"evaluatedSessionId,omitempty"`
}

// NewChange builds a pending change proposal with a fresh identity.
func NewChange(t ChangeType, prev, next float64, source ChangeSource, createdAt time.Time) PrescriptionChange {
	return PrescriptionChange{
		ID:            uuid.NewString(),
		Type:          t,
		PreviousValue: prev,
		NewValue:      next,
		Source:        source,
		Decision:      DecisionPending,
		Outcome:       OutcomePending,
		CreatedAt:     createdAt,
	}
}

// Applied reports whether the user enacted this change.
func (c *PrescriptionChange) Applied() bool {
	return c.Decision == DecisionAccepted || c.Decision == DecisionUserOverride
}

// ExerciseLevel reports whether the change targets the whole exercise
// rather than a single set.
func (c *PrescriptionChange) ExerciseLevel() bool {
	return c.TargetSetIndex == nil
}

// SameTarget reports whether two changes edit the same entity: the same
// prescription and the same set (or both exercise-level).
func (c *PrescriptionChange) SameTarget(other *PrescriptionChange) bool {
	if c.PrescriptionID != other.PrescriptionID {
		return false
	}
	if (c.TargetSetIndex == nil) != (other.TargetSetIndex == nil) {
		return false
	}
	if c.TargetSetIndex != nil && *c.TargetSetIndex != *other.TargetSetIndex {
		return false
	}
	return true
}

// OutcomeSignal is the ephemeral verdict produced by the deterministic
// outcome engine or the external classifier. Only the fused result is
// ever persisted.
type OutcomeSignal struct {
	Outcome    Outcome `json:"outcome"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// TrainingStyle is the detected weight-loading pattern across the sets
// of a performance.
type TrainingStyle string

const (
	StyleStraightSets      TrainingStyle = "straightSets"
	StyleAscendingPyramid  TrainingStyle = "ascendingPyramid"
	StyleDescendingPyramid TrainingStyle = "descendingPyramid"
	StyleAscending         TrainingStyle = "ascending"
	StyleTopSetBackoffs    TrainingStyle = "topSetBackoffs"
	StyleUnknown           TrainingStyle = "unknown"
)
