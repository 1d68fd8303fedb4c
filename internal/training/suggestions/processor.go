// Package suggestions filters the rule engine's raw candidate list:
// cooldown windows against recent history, mutually exclusive strategy
// pairs, policy supersession and same-property conflicts.
package suggestions

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/tracing"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// a change of the same kind on the same target blocks new
	// suggestions for this long
	cooldownWindow = 7 * 24 * time.Hour
	// accepted changes get a shorter cooldown, the user is engaged
	acceptedCooldownWindow = 3 * 24 * time.Hour
)

//go:generate mockgen -source=processor.go -destination=processor_mocks_test.go -package=suggestions_test

// recentChangesRepo supplies the existing changes considered for
// cooldown filtering.
type recentChangesRepo interface {
	ListRecent(ctx context.Context, prescriptionID int, since time.Time) ([]training.PrescriptionChange, error)
}

type Processor struct {
	repo recentChangesRepo

	// NowFunc is injectable so cooldown windows are deterministic in
	// tests; defaults to time.Now.
	NowFunc func() time.Time
}

func NewProcessor(repo recentChangesRepo) *Processor {
	return &Processor{
		repo:    repo,
		NowFunc: time.Now,
	}
}

// Process reduces the candidate list to the set worth persisting.
// A failing history lookup degrades to skipping cooldown filtering for
// that prescription rather than dropping the batch.
func (p *Processor) Process(ctx context.Context, candidates []training.PrescriptionChange) []training.PrescriptionChange {
	ctx, span := tracing.GlobalTracer.Start(ctx, "suggestions.processor.process")
	defer span.End()

	span.SetAttributes(attribute.Int("candidates_in", len(candidates)))

	kept := p.filterCooldowns(ctx, candidates)
	kept = filterStrategyConflicts(kept)
	kept = filterPolicyConflicts(kept)
	kept = resolveSamePropertyConflicts(kept)

	span.SetAttributes(attribute.Int("candidates_out", len(kept)))
	if dropped := len(candidates) - len(kept); dropped > 0 {
		log.Debugf("suggestions processor dropped %d of %d candidates", dropped, len(candidates))
	}

	return kept
}

func (p *Processor) filterCooldowns(ctx context.Context, candidates []training.PrescriptionChange) []training.PrescriptionChange {
	now := p.NowFunc()

	recentByPrescription := make(map[int][]training.PrescriptionChange)
	for _, c := range candidates {
		if _, ok := recentByPrescription[c.PrescriptionID]; ok {
			continue
		}
		recent, err := p.repo.ListRecent(ctx, c.PrescriptionID, now.Add(-cooldownWindow))
		if err != nil {
			log.Errorf("list recent changes for prescription %d: %s", c.PrescriptionID, err)
			recent = nil
		}
		recentByPrescription[c.PrescriptionID] = recent
	}

	var kept []training.PrescriptionChange
	for i := range candidates {
		candidate := &candidates[i]
		if !p.onCooldown(candidate, recentByPrescription[candidate.PrescriptionID], now) {
			kept = append(kept, *candidate)
		}
	}
	return kept
}

func (p *Processor) onCooldown(candidate *training.PrescriptionChange, recent []training.PrescriptionChange, now time.Time) bool {
	for i := range recent {
		prior := &recent[i]
		if prior.Type != candidate.Type || !prior.SameTarget(candidate) {
			continue
		}

		age := now.Sub(prior.CreatedAt)
		switch prior.Decision {
		case training.DecisionPending, training.DecisionDeferred:
			if age <= cooldownWindow {
				return true
			}
		case training.DecisionAccepted, training.DecisionUserOverride:
			if age <= acceptedCooldownWindow {
				return true
			}
		case training.DecisionRejected:
			if age <= cooldownWindow {
				return true
			}
		}
	}
	return false
}

func isRestIncrease(c *training.PrescriptionChange) bool {
	switch c.Type {
	case training.ChangeIncreaseSetRest, training.ChangeIncreaseExerciseRest:
		return true
	case training.ChangeRestTimeSeconds:
		return c.NewValue > c.PreviousValue
	}
	return false
}

// filterStrategyConflicts arbitrates mutually exclusive pairs per
// exercise: progression beats a rest increase, a safety-motivated
// weight decrease beats a weight increase.
func filterStrategyConflicts(candidates []training.PrescriptionChange) []training.PrescriptionChange {
	hasWeightIncrease := make(map[int]bool)
	hasWeightDecrease := make(map[int]bool)
	for i := range candidates {
		switch candidates[i].Type {
		case training.ChangeIncreaseWeight:
			hasWeightIncrease[candidates[i].PrescriptionID] = true
		case training.ChangeDecreaseWeight:
			hasWeightDecrease[candidates[i].PrescriptionID] = true
		}
	}

	var kept []training.PrescriptionChange
	for i := range candidates {
		c := candidates[i]
		if isRestIncrease(&c) && hasWeightIncrease[c.PrescriptionID] && !hasWeightDecrease[c.PrescriptionID] {
			continue
		}
		if c.Type == training.ChangeIncreaseWeight && hasWeightDecrease[c.PrescriptionID] {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// filterPolicyConflicts drops per-set rest changes when an
// exercise-level rest policy change is present for the prescription.
func filterPolicyConflicts(candidates []training.PrescriptionChange) []training.PrescriptionChange {
	policyChange := make(map[int]bool)
	for i := range candidates {
		switch candidates[i].Type {
		case training.ChangeRestTimeMode, training.ChangeRestTimeSeconds:
			policyChange[candidates[i].PrescriptionID] = true
		}
	}
	if len(policyChange) == 0 {
		return candidates
	}

	var kept []training.PrescriptionChange
	for i := range candidates {
		c := candidates[i]
		if policyChange[c.PrescriptionID] {
			switch c.Type {
			case training.ChangeIncreaseSetRest, training.ChangeDecreaseSetRest:
				continue
			}
		}
		kept = append(kept, c)
	}
	return kept
}

type propertyKey struct {
	prescriptionID int
	setIndex       int // -1 for exercise-level
	property       training.ChangeProperty
}

func keyFor(c *training.PrescriptionChange) propertyKey {
	idx := -1
	if c.TargetSetIndex != nil {
		idx = *c.TargetSetIndex
	}
	return propertyKey{
		prescriptionID: c.PrescriptionID,
		setIndex:       idx,
		property:       c.Type.Property(),
	}
}

// resolveSamePropertyConflicts keeps exactly one candidate per
// (target, property) group: lowest priority value wins, then rules over
// ai, then the larger magnitude, then the earliest createdAt.
func resolveSamePropertyConflicts(candidates []training.PrescriptionChange) []training.PrescriptionChange {
	groups := make(map[propertyKey][]training.PrescriptionChange)
	var order []propertyKey
	for i := range candidates {
		k := keyFor(&candidates[i])
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], candidates[i])
	}

	var kept []training.PrescriptionChange
	for _, k := range order {
		group := groups[k]
		sort.SliceStable(group, func(i, j int) bool {
			return lessByPrecedence(&group[i], &group[j])
		})
		kept = append(kept, group[0])
		if len(group) > 1 {
			log.Tracef(
				"same-property conflict on %s: kept %s, dropped %d other(s)",
				fmt.Sprintf("prescription %d / set %d / %s", k.prescriptionID, k.setIndex, k.property),
				group[0].Type, len(group)-1,
			)
		}
	}
	return kept
}

func lessByPrecedence(a, b *training.PrescriptionChange) bool {
	if pa, pb := a.Type.Priority(), b.Type.Priority(); pa != pb {
		return pa < pb
	}
	if a.Source != b.Source {
		if a.Source == training.SourceRules {
			return true
		}
		if b.Source == training.SourceRules {
			return false
		}
	}
	magA := math.Abs(a.NewValue - a.PreviousValue)
	magB := math.Abs(b.NewValue - b.PreviousValue)
	if magA != magB {
		return magA > magB
	}
	return a.CreatedAt.Before(b.CreatedAt)
}
