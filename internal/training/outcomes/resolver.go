package outcomes

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/metrics"
	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/tracing"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/analysis"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/classifier"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// DefaultOverrideConfidence is the classifier confidence needed to
// override a disagreeing rule verdict. A tuning constant, not a law.
const DefaultOverrideConfidence = 0.5

//go:generate mockgen -source=resolver.go -destination=resolver_mocks_test.go -package=outcomes_test

// ApplyOutcomeParams carries one finalized verdict to the store.
type ApplyOutcomeParams struct {
	ChangeID           string
	Outcome            training.Outcome
	Reason             string
	EvaluatedAt        time.Time
	EvaluatedSessionID int
}

// changesStore is the persistence collaborator surface the resolver
// needs. ApplyOutcome must be idempotent per change: it reports false
// without error when the change was already evaluated.
type changesStore interface {
	ListPendingOutcomes(ctx context.Context, createdBefore time.Time) ([]training.PrescriptionChange, error)
	GetPrescription(ctx context.Context, id int) (*training.Prescription, error)
	GetPerformance(ctx context.Context, id int) (*training.Performance, error)
	ApplyOutcome(ctx context.Context, params ApplyOutcomeParams) (bool, error)
}

// Resolver orchestrates outcome evaluation for a session: it groups
// eligible pending changes, runs the deterministic engine, consults the
// external classifier concurrently per group, and commits the fused
// verdicts.
type Resolver struct {
	store      changesStore
	classifier classifier.Classifier
	engine     *Engine

	// OverrideConfidence gates when a disagreeing classifier verdict
	// beats the rule verdict.
	OverrideConfidence float64
	// MinAge keeps freshly created changes pending until they are at
	// least this old. Zero disables the floor.
	MinAge time.Duration
	// NowFunc is injectable for deterministic evaluatedAt stamps.
	NowFunc func() time.Time
	// Metrics is optional; resolved outcomes are counted when set.
	Metrics *metrics.Manager
}

func NewResolver(store changesStore, cls classifier.Classifier) *Resolver {
	if cls == nil {
		cls = classifier.Unavailable{}
	}
	return &Resolver{
		store:              store,
		classifier:         cls,
		engine:             NewEngine(),
		OverrideConfidence: DefaultOverrideConfidence,
		NowFunc:            time.Now,
	}
}

// changeGroup is one unit of classifier consultation: the changes that
// share a prescription and a set (or exercise-level policy property).
type changeGroup struct {
	key          string
	prescription *training.Prescription
	performance  *training.Performance
	changes      []*training.PrescriptionChange

	ruleSignal *training.OutcomeSignal
	aiResult   *classifier.OutcomeResult
}

func (g *changeGroup) applied() bool {
	for _, c := range g.changes {
		if c.Applied() {
			return true
		}
	}
	return false
}

// ResolveOutcomes finalizes every eligible pending change that the
// given session's performances can speak to. Classifier failures are
// soft; only store failures surface in the returned error.
func (r *Resolver) ResolveOutcomes(ctx context.Context, session *training.Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "outcomes.resolver.resolve")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cutoff := r.eligibilityCutoff(session)
	pending, err := r.store.ListPendingOutcomes(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list pending outcomes: %w", err)
	}
	span.SetAttributes(attribute.Int("pending_changes", len(pending)))
	if len(pending) == 0 {
		return nil
	}

	groups := r.buildGroups(ctx, session, pending, cutoff)
	if len(groups) == 0 {
		return nil
	}

	r.evaluateRules(groups)
	r.consultClassifier(ctx, session, groups)

	now := r.NowFunc()
	var applyErr error
	for _, group := range groups {
		verdict, reason, ok := r.merge(group)
		if !ok {
			log.Debugf("no verdict for group %s, leaving %d change(s) pending", group.key, len(group.changes))
			continue
		}
		for _, change := range group.changes {
			if change.EvaluatedAt != nil {
				continue
			}
			applied, err := r.store.ApplyOutcome(ctx, ApplyOutcomeParams{
				ChangeID:           change.ID,
				Outcome:            verdict,
				Reason:             reason,
				EvaluatedAt:        now,
				EvaluatedSessionID: session.ID,
			})
			if err != nil {
				applyErr = multierr.Append(applyErr, fmt.Errorf("apply outcome to change %s: %w", change.ID, err))
				continue
			}
			if !applied {
				log.Debugf("change %s was already evaluated, skipping", change.ID)
				continue
			}
			if r.Metrics != nil {
				r.Metrics.CounterOutcomesResolved.WithLabelValues(string(verdict)).Inc()
			}
		}
	}

	return applyErr
}

// eligibilityCutoff is the createdBefore bound for pending changes: the
// session start, pulled further back when a minimum change age is set.
func (r *Resolver) eligibilityCutoff(session *training.Session) time.Time {
	cutoff := session.StartedAt
	if r.MinAge <= 0 {
		return cutoff
	}
	if ageCutoff := r.NowFunc().Add(-r.MinAge); ageCutoff.Before(cutoff) {
		return ageCutoff
	}
	return cutoff
}

// buildGroups gathers the eligible changes into classifier groups.
// Changes for exercises not performed this session stay pending;
// changes referencing missing prescriptions are skipped, not fatal.
func (r *Resolver) buildGroups(ctx context.Context, session *training.Session, pending []training.PrescriptionChange, cutoff time.Time) []*changeGroup {
	seen := make(map[string]bool, len(pending))
	groupsByKey := make(map[string]*changeGroup)
	var order []string

	for i := range pending {
		change := &pending[i]
		if seen[change.ID] {
			continue
		}
		seen[change.ID] = true
		if change.Outcome != training.OutcomePending || change.EvaluatedAt != nil {
			continue
		}
		if !change.CreatedAt.Before(cutoff) {
			continue
		}

		performance, performed := session.PerformanceFor(change.PrescriptionID)
		if !performed {
			continue
		}

		key := groupKey(change)
		group, ok := groupsByKey[key]
		if !ok {
			prescription, err := r.store.GetPrescription(ctx, change.PrescriptionID)
			if err != nil {
				log.Errorf("get prescription %d for change %s: %s", change.PrescriptionID, change.ID, err)
				continue
			}
			group = &changeGroup{
				key:          key,
				prescription: prescription,
				performance:  performance,
			}
			groupsByKey[key] = group
			order = append(order, key)
		}
		group.changes = append(group.changes, change)
	}

	groups := make([]*changeGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, groupsByKey[key])
	}
	return groups
}

func groupKey(change *training.PrescriptionChange) string {
	if change.TargetSetIndex != nil {
		return fmt.Sprintf("%d/set/%d", change.PrescriptionID, *change.TargetSetIndex)
	}
	return fmt.Sprintf("%d/policy/%s", change.PrescriptionID, change.Type.Property())
}

// evaluateRules runs the deterministic engine per change, memoized by
// change identity, and aggregates each group's signals.
func (r *Resolver) evaluateRules(groups []*changeGroup) {
	signalCache := make(map[string]*training.OutcomeSignal)
	for _, group := range groups {
		var signals []*training.OutcomeSignal
		for _, change := range group.changes {
			signal, ok := signalCache[change.ID]
			if !ok {
				signal = r.engine.Evaluate(change, group.performance, group.prescription)
				signalCache[change.ID] = signal
			}
			if signal != nil {
				signals = append(signals, signal)
			}
		}
		group.ruleSignal = aggregateSignals(signals)
	}
}

// outcomeRank orders outcomes for aggregation: a too-aggressive signal
// always dominates a group's verdict.
func outcomeRank(o training.Outcome) int {
	switch o {
	case training.OutcomeTooAggressive:
		return 4
	case training.OutcomeGood:
		return 3
	case training.OutcomeTooEasy:
		return 2
	case training.OutcomeIgnored:
		return 1
	}
	return 0
}

func aggregateSignals(signals []*training.OutcomeSignal) *training.OutcomeSignal {
	var best *training.OutcomeSignal
	for _, s := range signals {
		if best == nil || outcomeRank(s.Outcome) > outcomeRank(best.Outcome) {
			best = s
		}
	}
	return best
}

// consultClassifier fans the group requests out concurrently. Every
// failure is soft: the group simply keeps a nil classifier result.
func (r *Resolver) consultClassifier(ctx context.Context, session *training.Session, groups []*changeGroup) {
	eg, egCtx := errgroup.WithContext(ctx)
	for _, group := range groups {
		group := group
		eg.Go(func() error {
			request := r.buildRequest(egCtx, session, group)
			result, err := r.classifier.InferOutcome(egCtx, request)
			if err != nil {
				log.Warnf("classifier outcome inference for group %s: %s", group.key, err)
				return nil
			}
			group.aiResult = result
			return nil
		})
	}
	// the workers only ever return nil, soft failures are logged
	_ = eg.Wait()
}

func (r *Resolver) buildRequest(ctx context.Context, session *training.Session, group *changeGroup) classifier.OutcomeRequest {
	applied := group.applied()

	summaries := make([]classifier.ChangeSummary, 0, len(group.changes))
	for _, change := range group.changes {
		summaries = append(summaries, classifier.ChangeSummary{
			ID:            change.ID,
			Type:          change.Type,
			PreviousValue: formatValue(change.Type, change.PreviousValue),
			NewValue:      formatValue(change.Type, change.NewValue),
			SetIndex:      change.TargetSetIndex,
			Applied:       change.Applied(),
		})
	}

	var trigger training.Performance
	if len(group.changes) > 0 {
		if perf, err := r.store.GetPerformance(ctx, group.changes[0].PerformanceID); err != nil {
			log.Debugf("get trigger performance %d: %s", group.changes[0].PerformanceID, err)
		} else if perf != nil {
			trigger = *perf
		}
	}

	return classifier.OutcomeRequest{
		GroupID:            group.key,
		Changes:            summaries,
		BeforePrescription: reconstructBefore(group.prescription, group.changes),
		TriggerPerformance: trigger,
		ActualPerformance:  *group.performance,
		Style:              analysis.DetectTrainingStyle(group.performance.CompletedSets()),
		RuleSignal:         group.ruleSignal,
		Applied:            applied,
	}
}

func formatValue(t training.ChangeType, v float64) string {
	switch t.Property() {
	case training.PropertySetType:
		if st, ok := training.SetTypeFromChangeValue(v); ok {
			return string(st)
		}
	case training.PropertyRepRangeMode:
		if mode, ok := training.RepRangeModeFromChangeValue(v); ok {
			return string(mode)
		}
	case training.PropertyRestTimeMode:
		if mode, ok := training.RestTimeModeFromChangeValue(v); ok {
			return string(mode)
		}
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// reconstructBefore reverts the applied changes field-by-field to
// recover the prescription as it stood when the changes were proposed.
func reconstructBefore(current *training.Prescription, changes []*training.PrescriptionChange) training.Prescription {
	before := *current
	before.Sets = make([]training.SetPrescription, len(current.Sets))
	copy(before.Sets, current.Sets)

	for _, change := range changes {
		if !change.Applied() {
			continue
		}
		revertChange(&before, change)
	}
	return before
}

func revertChange(p *training.Prescription, change *training.PrescriptionChange) {
	var set *training.SetPrescription
	if change.TargetSetIndex != nil {
		s, ok := p.Set(*change.TargetSetIndex)
		if !ok && change.Type != training.ChangeRemoveSet {
			return
		}
		set = s
	}

	switch change.Type {
	case training.ChangeIncreaseWeight, training.ChangeDecreaseWeight:
		if set != nil {
			set.TargetWeight = change.PreviousValue
		}
	case training.ChangeIncreaseReps, training.ChangeDecreaseReps:
		if set != nil {
			set.TargetReps = int(change.PreviousValue)
		}
	case training.ChangeIncreaseSetRest, training.ChangeDecreaseSetRest:
		if set != nil {
			set.TargetRestSeconds = int(change.PreviousValue)
		}
	case training.ChangeSetType:
		if set != nil {
			if st, ok := training.SetTypeFromChangeValue(change.PreviousValue); ok {
				set.Type = st
			}
		}
	case training.ChangeRemoveSet:
		if change.TargetSetIndex != nil && set == nil {
			// the removal went through, put a placeholder working set back
			p.Sets = append(p.Sets, training.SetPrescription{
				Index: *change.TargetSetIndex,
				Type:  training.SetTypeWorking,
			})
		}
	case training.ChangeIncreaseRangeLower, training.ChangeDecreaseRangeLower:
		p.RepRange.Lower = int(change.PreviousValue)
	case training.ChangeIncreaseRangeUpper, training.ChangeDecreaseRangeUpper:
		p.RepRange.Upper = int(change.PreviousValue)
	case training.ChangeRepRangeTarget:
		p.RepRange.Target = int(change.PreviousValue)
	case training.ChangeRepRangeMode:
		if mode, ok := training.RepRangeModeFromChangeValue(change.PreviousValue); ok {
			p.RepRange.Mode = mode
		}
	case training.ChangeRestTimeMode:
		if mode, ok := training.RestTimeModeFromChangeValue(change.PreviousValue); ok {
			p.RestTime.Mode = mode
		}
	case training.ChangeRestTimeSeconds, training.ChangeIncreaseExerciseRest, training.ChangeDecreaseExerciseRest:
		p.RestTime.Seconds = int(change.PreviousValue)
	}
}

// merge fuses the rule and classifier signals per the override policy:
// a lone signal wins by default, a disagreeing classifier wins only
// with enough confidence. The reason is prefixed with its source. With
// no signal from either side it reports no verdict at all, so the
// group's changes stay pending for a later session.
func (r *Resolver) merge(group *changeGroup) (training.Outcome, string, bool) {
	rule := group.ruleSignal
	ai := group.aiResult

	switch {
	case rule == nil && ai == nil:
		return training.OutcomePending, "", false
	case rule == nil:
		return ai.Outcome, "[AI] " + ai.Reason, true
	case ai == nil:
		return rule.Outcome, "[Rules] " + rule.Reason, true
	case ai.Outcome != rule.Outcome && ai.Confidence >= r.OverrideConfidence:
		return ai.Outcome, "[AI override] " + ai.Reason, true
	default:
		return rule.Outcome, "[Rules] " + rule.Reason, true
	}
}
