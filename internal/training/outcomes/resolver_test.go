package outcomes_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/classifier"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/outcomes"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClassifier answers outcome inference with a canned result.
type stubClassifier struct {
	result *classifier.OutcomeResult
	err    error
}

func (s stubClassifier) InferConfiguration(context.Context, classifier.ConfigurationRequest) (*classifier.ConfigurationResult, error) {
	return nil, nil
}

func (s stubClassifier) InferOutcome(context.Context, classifier.OutcomeRequest) (*classifier.OutcomeResult, error) {
	return s.result, s.err
}

var sessionStart = time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)

func pendingWeightIncrease() training.PrescriptionChange {
	idx := 0
	return training.PrescriptionChange{
		ID:             "ch-1",
		Type:           training.ChangeIncreaseWeight,
		PreviousValue:  100,
		NewValue:       110,
		TargetSetIndex: &idx,
		Source:         training.SourceRules,
		Decision:       training.DecisionAccepted,
		Outcome:        training.OutcomePending,
		CreatedAt:      sessionStart.Add(-48 * time.Hour),
		SessionID:      9,
		PerformanceID:  20,
		PrescriptionID: 1,
	}
}

func followUpSession(reps int) *training.Session {
	return &training.Session{
		ID:        50,
		StartedAt: sessionStart,
		Performances: []training.Performance{{
			ID:             30,
			SessionID:      50,
			PrescriptionID: 1,
			Sets: []training.PerformedSet{{
				Index: 0, Type: training.SetTypeWorking, Weight: 110, Reps: reps, Complete: true,
			}},
		}},
	}
}

func expectGroupLookups(store *MockchangesStore, pending []training.PrescriptionChange) {
	store.EXPECT().
		ListPendingOutcomes(gomock.Any(), sessionStart).
		Return(pending, nil)
	store.EXPECT().
		GetPrescription(gomock.Any(), 1).
		Return(benchPrescription(), nil)
	store.EXPECT().
		GetPerformance(gomock.Any(), 20).
		Return(&training.Performance{ID: 20, PrescriptionID: 1}, nil)
}

func TestResolveOutcomes_RuleVerdictCommitted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	expectGroupLookups(store, []training.PrescriptionChange{pendingWeightIncrease()})

	var applied outcomes.ApplyOutcomeParams
	store.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params outcomes.ApplyOutcomeParams) (bool, error) {
			applied = params
			return true, nil
		})

	resolver := outcomes.NewResolver(store, nil)
	resolver.NowFunc = func() time.Time { return sessionStart.Add(time.Hour) }

	err := resolver.ResolveOutcomes(context.Background(), followUpSession(10))
	require.NoError(t, err)

	assert.Equal(t, "ch-1", applied.ChangeID)
	assert.Equal(t, training.OutcomeGood, applied.Outcome)
	assert.True(t, strings.HasPrefix(applied.Reason, "[Rules] "), applied.Reason)
	assert.Equal(t, 50, applied.EvaluatedSessionID)
	assert.Equal(t, sessionStart.Add(time.Hour), applied.EvaluatedAt)
}

func TestResolveOutcomes_LowConfidenceClassifierDoesNotOverride(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	expectGroupLookups(store, []training.PrescriptionChange{pendingWeightIncrease()})

	var applied outcomes.ApplyOutcomeParams
	store.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params outcomes.ApplyOutcomeParams) (bool, error) {
			applied = params
			return true, nil
		})

	resolver := outcomes.NewResolver(store, stubClassifier{result: &classifier.OutcomeResult{
		Outcome:    training.OutcomeTooAggressive,
		Confidence: 0.4,
		Reason:     "bar speed dropped sharply",
	}})

	err := resolver.ResolveOutcomes(context.Background(), followUpSession(10))
	require.NoError(t, err)

	assert.Equal(t, training.OutcomeGood, applied.Outcome)
	assert.True(t, strings.HasPrefix(applied.Reason, "[Rules] "), applied.Reason)
}

func TestResolveOutcomes_ConfidentClassifierOverrides(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	expectGroupLookups(store, []training.PrescriptionChange{pendingWeightIncrease()})

	var applied outcomes.ApplyOutcomeParams
	store.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params outcomes.ApplyOutcomeParams) (bool, error) {
			applied = params
			return true, nil
		})

	resolver := outcomes.NewResolver(store, stubClassifier{result: &classifier.OutcomeResult{
		Outcome:    training.OutcomeTooAggressive,
		Confidence: 0.9,
		Reason:     "form broke down on every rep",
	}})

	err := resolver.ResolveOutcomes(context.Background(), followUpSession(10))
	require.NoError(t, err)

	assert.Equal(t, training.OutcomeTooAggressive, applied.Outcome)
	assert.Equal(t, "[AI override] form broke down on every rep", applied.Reason)
}

func TestResolveOutcomes_ClassifierFailureIsSoft(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	expectGroupLookups(store, []training.PrescriptionChange{pendingWeightIncrease()})

	var applied outcomes.ApplyOutcomeParams
	store.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params outcomes.ApplyOutcomeParams) (bool, error) {
			applied = params
			return true, nil
		})

	resolver := outcomes.NewResolver(store, stubClassifier{err: errors.New("model timeout")})

	err := resolver.ResolveOutcomes(context.Background(), followUpSession(10))
	require.NoError(t, err)
	assert.Equal(t, training.OutcomeGood, applied.Outcome)
}

func TestResolveOutcomes_AlreadyEvaluatedSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	evaluatedAt := sessionStart.Add(-time.Hour)
	change := pendingWeightIncrease()
	change.EvaluatedAt = &evaluatedAt

	store.EXPECT().
		ListPendingOutcomes(gomock.Any(), sessionStart).
		Return([]training.PrescriptionChange{change}, nil)

	resolver := outcomes.NewResolver(store, nil)
	require.NoError(t, resolver.ResolveOutcomes(context.Background(), followUpSession(10)))
}

func TestResolveOutcomes_ExerciseNotPerformedStaysPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	change := pendingWeightIncrease()
	change.PrescriptionID = 77

	store.EXPECT().
		ListPendingOutcomes(gomock.Any(), sessionStart).
		Return([]training.PrescriptionChange{change}, nil)

	resolver := outcomes.NewResolver(store, nil)
	require.NoError(t, resolver.ResolveOutcomes(context.Background(), followUpSession(10)))
}

func TestResolveOutcomes_NoSignalStaysPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	// the change targets a set the follow-up session never performed,
	// so the deterministic engine abstains; with no classifier either,
	// the change must not be finalized
	idx := 2
	change := pendingWeightIncrease()
	change.TargetSetIndex = &idx

	expectGroupLookups(store, []training.PrescriptionChange{change})

	resolver := outcomes.NewResolver(store, nil)
	require.NoError(t, resolver.ResolveOutcomes(context.Background(), followUpSession(10)))
}

func TestResolveOutcomes_MinAgeTightensCutoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	store.EXPECT().
		ListPendingOutcomes(gomock.Any(), sessionStart.Add(-24*time.Hour)).
		Return(nil, nil)

	resolver := outcomes.NewResolver(store, nil)
	resolver.MinAge = 24 * time.Hour
	resolver.NowFunc = func() time.Time { return sessionStart }

	require.NoError(t, resolver.ResolveOutcomes(context.Background(), followUpSession(10)))
}

func TestResolveOutcomes_ApplyFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	expectGroupLookups(store, []training.PrescriptionChange{pendingWeightIncrease()})
	store.EXPECT().
		ApplyOutcome(gomock.Any(), gomock.Any()).
		Return(false, errors.New("db gone"))

	resolver := outcomes.NewResolver(store, nil)

	err := resolver.ResolveOutcomes(context.Background(), followUpSession(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply outcome to change ch-1")
}

func TestResolveOutcomes_NoPendingChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := NewMockchangesStore(ctrl)

	store.EXPECT().
		ListPendingOutcomes(gomock.Any(), sessionStart).
		Return(nil, nil)

	resolver := outcomes.NewResolver(store, nil)
	require.NoError(t, resolver.ResolveOutcomes(context.Background(), followUpSession(10)))
}
