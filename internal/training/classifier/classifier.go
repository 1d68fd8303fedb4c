// Package classifier defines the contract with the external
// probabilistic classifier. The core consumes it, it never owns the
// model: every failure mode degrades to "no result", never to a hard
// error.
package classifier

import (
	"context"
	"strings"

	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
)

// ConfigurationRequest asks the classifier to infer a rep-range and/or
// training style for an exercise from a performance snapshot.
type ConfigurationRequest struct {
	ExerciseID  string                 `json:"exerciseId"`
	MuscleGroup string                 `json:"muscleGroup"`
	Snapshot    training.Performance   `json:"snapshot"`
	Recent      []training.Performance `json:"recent,omitempty"`
}

type ConfigurationResult struct {
	RepRange *training.RepRangePolicy `json:"repRange,omitempty"`
	Style    training.TrainingStyle   `json:"style,omitempty"`
}

// Valid reports whether the inferred configuration is usable: rep
// bounds positive, lower below upper for range mode.
func (r *ConfigurationResult) Valid() bool {
	if r == nil {
		return false
	}
	if r.RepRange != nil {
		switch r.RepRange.Mode {
		case training.RepRangeTarget:
			if r.RepRange.Target <= 0 {
				return false
			}
		case training.RepRangeRange:
			if r.RepRange.Lower <= 0 || r.RepRange.Lower >= r.RepRange.Upper {
				return false
			}
		default:
			return false
		}
	}
	return r.RepRange != nil || r.Style != ""
}

// ChangeSummary is the redacted view of one change shared with the
// classifier: formatted values, no user identifiers.
type ChangeSummary struct {
	ID            string              `json:"id"`
	Type          training.ChangeType `json:"type"`
	PreviousValue string              `json:"previousValue"`
	NewValue      string              `json:"newValue"`
	SetIndex      *int                `json:"setIndex,omitempty"`
	Applied       bool                `json:"applied"`
}

// OutcomeRequest is the change-group snapshot submitted for outcome
// inference.
type OutcomeRequest struct {
	GroupID            string                  `json:"groupId"`
	Changes            []ChangeSummary         `json:"changes"`
	BeforePrescription training.Prescription   `json:"beforePrescription"`
	TriggerPerformance training.Performance    `json:"triggerPerformance"`
	ActualPerformance  training.Performance    `json:"actualPerformance"`
	Style              training.TrainingStyle  `json:"style"`
	RuleSignal         *training.OutcomeSignal `json:"ruleSignal,omitempty"`
	Applied            bool                    `json:"applied"`
}

type OutcomeResult struct {
	Outcome    training.Outcome `json:"outcome"`
	Confidence float64          `json:"confidence"`
	Reason     string           `json:"reason"`
}

// Normalize clamps the confidence to [0,1] and reports whether the
// result is usable (a recognized outcome and a non-empty reason).
func (r *OutcomeResult) Normalize() bool {
	if r == nil {
		return false
	}
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
	if strings.TrimSpace(r.Reason) == "" {
		return false
	}
	switch r.Outcome {
	case training.OutcomeGood, training.OutcomeTooAggressive, training.OutcomeTooEasy, training.OutcomeIgnored:
		return true
	}
	return false
}

// Classifier is the injected capability interface. A (nil, nil) return
// means the capability is unavailable or inference failed; callers
// proceed without it.
type Classifier interface {
	InferConfiguration(ctx context.Context, req ConfigurationRequest) (*ConfigurationResult, error)
	InferOutcome(ctx context.Context, req OutcomeRequest) (*OutcomeResult, error)
}

// Unavailable is a Classifier that never has a result; the zero
// dependency used when no classifier is configured.
type Unavailable struct{}

func (Unavailable) InferConfiguration(context.Context, ConfigurationRequest) (*ConfigurationResult, error) {
	return nil, nil
}

func (Unavailable) InferOutcome(context.Context, OutcomeRequest) (*OutcomeResult, error) {
	return nil, nil
}
