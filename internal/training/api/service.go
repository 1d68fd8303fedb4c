// Package api is the application layer of the training engine: it
// coordinates the rule engine, the suggestion processor, the outcome
// resolver and the store behind the HTTP handler.
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/metrics"
	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/tracing"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/analysis"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/classifier"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/outcomes"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/rules"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/suggestions"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=service.go -destination=service_mocks_test.go -package=api_test

// trainingStore is the persistence surface the service needs.
type trainingStore interface {
	GetSession(ctx context.Context, id int) (*training.Session, error)
	GetPrescription(ctx context.Context, id int) (*training.Prescription, error)
	EvidenceWindow(ctx context.Context, prescriptionID int, before time.Time) (training.EvidenceWindow, error)
	AddSession(ctx context.Context, session *training.Session) error
	AddChanges(ctx context.Context, changes []training.PrescriptionChange) error
	ListChanges(ctx context.Context, prescriptionID int) ([]training.PrescriptionChange, error)
	UpdateDecision(ctx context.Context, changeID string, decision training.Decision) error
}

type Service struct {
	store      trainingStore
	engine     *rules.Engine
	processor  *suggestions.Processor
	resolver   *outcomes.Resolver
	classifier classifier.Classifier
	metrics    *metrics.Manager

	// NowFunc is injectable for deterministic change timestamps.
	NowFunc func() time.Time
}

type NewServiceParams struct {
	Store      trainingStore
	Processor  *suggestions.Processor
	Resolver   *outcomes.Resolver
	Classifier classifier.Classifier
	Metrics    *metrics.Manager
}

func NewService(params NewServiceParams) *Service {
	cls := params.Classifier
	if cls == nil {
		cls = classifier.Unavailable{}
	}
	return &Service{
		store:      params.Store,
		engine:     rules.NewEngine(),
		processor:  params.Processor,
		resolver:   params.Resolver,
		classifier: cls,
		metrics:    params.Metrics,
		NowFunc:    time.Now,
	}
}

// SessionResult is what a finished session produces: the persisted
// session and the new suggestions it triggered.
type SessionResult struct {
	Session     *training.Session            `json:"session"`
	Suggestions []training.PrescriptionChange `json:"suggestions"`
}

// CommitSession persists a finished session, resolves the outcomes of
// prior pending changes against it and generates fresh suggestions.
func (s *Service) CommitSession(ctx context.Context, session *training.Session) (_ *SessionResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.commitSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err = s.store.AddSession(ctx, session); err != nil {
		return nil, fmt.Errorf("add session: %w", err)
	}
	span.SetAttributes(attribute.Int("session.id", session.ID))

	// outcomes first: pending changes are judged against this session
	// before the session spawns successors for the same prescriptions
	if err = s.resolver.ResolveOutcomes(ctx, session); err != nil {
		return nil, fmt.Errorf("resolve outcomes: %w", err)
	}

	suggested, err := s.generateSuggestions(ctx, session)
	if err != nil {
		return nil, err
	}

	return &SessionResult{
		Session:     session,
		Suggestions: suggested,
	}, nil
}

// SuggestionsForSession re-runs suggestion generation for an already
// stored session.
func (s *Service) SuggestionsForSession(ctx context.Context, sessionID int) (_ []training.PrescriptionChange, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.suggestionsForSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", sessionID, err)
	}
	return s.generateSuggestions(ctx, session)
}

// ResolveOutcomesForSession re-runs outcome resolution against an
// already stored session. Safe to repeat: evaluated changes stay put.
func (s *Service) ResolveOutcomesForSession(ctx context.Context, sessionID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.resolveOutcomesForSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session.id", sessionID))

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session %d: %w", sessionID, err)
	}
	return s.resolver.ResolveOutcomes(ctx, session)
}

// Changes lists the change history of a prescription, newest first.
func (s *Service) Changes(ctx context.Context, prescriptionID int) ([]training.PrescriptionChange, error) {
	return s.store.ListChanges(ctx, prescriptionID)
}

// Decide records the user's verdict on a suggestion.
func (s *Service) Decide(ctx context.Context, changeID string, decision training.Decision) error {
	switch decision {
	case training.DecisionAccepted, training.DecisionRejected,
		training.DecisionDeferred, training.DecisionUserOverride:
	default:
		return fmt.Errorf("unknown decision: %s", decision)
	}
	return s.store.UpdateDecision(ctx, changeID, decision)
}

// generateSuggestions runs the rule catalogue per performance, lets the
// processor deduplicate the batch and persists the survivors. A broken
// prescription or missing history skips that exercise, never the batch.
func (s *Service) generateSuggestions(ctx context.Context, session *training.Session) (_ []training.PrescriptionChange, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.generateSuggestions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	now := s.NowFunc()
	var candidates []training.PrescriptionChange
	for i := range session.Performances {
		performance := &session.Performances[i]

		prescription, err := s.store.GetPrescription(ctx, performance.PrescriptionID)
		if err != nil {
			log.Errorf("get prescription %d: %s", performance.PrescriptionID, err)
			continue
		}
		if err := prescription.Validate(); err != nil {
			log.Warnf("prescription %d is invalid, skipping: %s", prescription.ID, err)
			continue
		}

		window, err := s.store.EvidenceWindow(ctx, prescription.ID, session.StartedAt)
		if err != nil {
			log.Errorf("evidence window for prescription %d: %s", prescription.ID, err)
			window = nil
		}
		window = window.Prepend(*performance)

		style := analysis.DetectTrainingStyle(performance.CompletedSets())
		candidates = append(candidates, s.inferConfiguration(ctx, prescription, performance, window, &style, now)...)

		candidates = append(candidates, s.engine.Evaluate(ctx, rules.Context{
			Session:      session,
			Performance:  performance,
			Prescription: prescription,
			Window:       window,
			Style:        style,
			Now:          now,
		})...)
	}

	kept := s.processor.Process(ctx, candidates)
	if err = s.store.AddChanges(ctx, kept); err != nil {
		return nil, fmt.Errorf("add changes: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CounterSuggestions.Add(float64(len(kept)))
		if dropped := len(candidates) - len(kept); dropped > 0 {
			s.metrics.CounterSuggestionsDropped.WithLabelValues("dedup").Add(float64(dropped))
		}
	}

	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	span.SetAttributes(attribute.Int("kept", len(kept)))
	return kept, nil
}

// inferConfiguration consults the classifier when the prescription has
// no usable rep-range policy or the style could not be detected. Any
// classifier failure leaves things as they are.
func (s *Service) inferConfiguration(
	ctx context.Context,
	prescription *training.Prescription,
	performance *training.Performance,
	window training.EvidenceWindow,
	style *training.TrainingStyle,
	now time.Time,
) []training.PrescriptionChange {
	needsRepRange := prescription.RepRange.Mode == training.RepRangeNotSet
	needsStyle := *style == training.StyleUnknown
	if !needsRepRange && !needsStyle {
		return nil
	}

	result, err := s.classifier.InferConfiguration(ctx, classifier.ConfigurationRequest{
		ExerciseID:  prescription.ExerciseID,
		MuscleGroup: prescription.MuscleGroup,
		Snapshot:    *performance,
		Recent:      window.Latest(3),
	})
	if err != nil {
		log.Warnf("classifier configuration inference for exercise %s: %s", prescription.ExerciseID, err)
		return nil
	}
	if !result.Valid() {
		return nil
	}

	if needsStyle && result.Style != "" {
		*style = result.Style
	}

	if !needsRepRange || result.RepRange == nil {
		return nil
	}

	inferred := *result.RepRange
	reason := fmt.Sprintf("classifier inferred a %s rep scheme from recent history", inferred.Mode)

	modeChange := training.NewChange(
		training.ChangeRepRangeMode,
		prescription.RepRange.Mode.ChangeValue(),
		inferred.Mode.ChangeValue(),
		training.SourceAI,
		now,
	)
	modeChange.Reason = reason
	modeChange.SessionID = performance.SessionID
	modeChange.PerformanceID = performance.ID
	modeChange.PrescriptionID = prescription.ID
	changes := []training.PrescriptionChange{modeChange}

	bound := func(t training.ChangeType, prev, next int) training.PrescriptionChange {
		c := training.NewChange(t, float64(prev), float64(next), training.SourceAI, now)
		c.Reason = reason
		c.SessionID = performance.SessionID
		c.PerformanceID = performance.ID
		c.PrescriptionID = prescription.ID
		return c
	}

	switch inferred.Mode {
	case training.RepRangeTarget:
		changes = append(changes, bound(training.ChangeRepRangeTarget, prescription.RepRange.Target, inferred.Target))
	case training.RepRangeRange:
		changes = append(changes,
			bound(training.ChangeIncreaseRangeLower, prescription.RepRange.Lower, inferred.Lower),
			bound(training.ChangeIncreaseRangeUpper, prescription.RepRange.Upper, inferred.Upper),
		)
	}
	return changes
}
