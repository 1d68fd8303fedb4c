package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/tracing"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training/outcomes"
	"github.com/fcttechnologies/VillainArc-sub000/pkg"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrChangeNotFound  = errors.New("prescription change not found")
	ErrDuplicateChange = errors.New("prescription change already exists")
)

const changeColumns = `id, type, previous_value, new_value, target_set_index,
	source, decision, outcome, reason, created_at, evaluated_at,
	session_id, performance_id, prescription_id, evaluated_session_id`

// AddChanges persists a batch of new change suggestions in one
// transaction, so a batch is either fully visible or not at all.
func (r *Repo) AddChanges(ctx context.Context, changes []training.PrescriptionChange) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.addChanges")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("changes", len(changes)))

	if len(changes) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w [rollback: %s]", err, rollbackErr)
			}
		}
	}()

	for i := range changes {
		c := &changes[i]
		if _, err = tx.Exec(
			ctx,
			`INSERT INTO prescription_change
				(id, type, previous_value, new_value, target_set_index,
				source, decision, outcome, reason, created_at,
				session_id, performance_id, prescription_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
			c.ID, c.Type, c.PreviousValue, c.NewValue, c.TargetSetIndex,
			c.Source, c.Decision, c.Outcome, c.Reason, c.CreatedAt,
			c.SessionID, c.PerformanceID, c.PrescriptionID,
		); err != nil {
			if pkg.IsUniqueViolationError(err) {
				return fmt.Errorf("insert change %s: %w", c.ID, ErrDuplicateChange)
			}
			return fmt.Errorf("insert change %s: %w", c.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// ListRecent returns the changes of a prescription created at or after
// the given moment, newest first.
func (r *Repo) ListRecent(ctx context.Context, prescriptionID int, since time.Time) (_ []training.PrescriptionChange, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.listRecentChanges")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("prescription_id", prescriptionID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+changeColumns+`
			FROM prescription_change
			WHERE prescription_id = $1 AND created_at >= $2
			ORDER BY created_at DESC;`,
		prescriptionID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChanges(rows)
}

// ListChanges returns all changes of a prescription, newest first.
func (r *Repo) ListChanges(ctx context.Context, prescriptionID int) (_ []training.PrescriptionChange, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.listChanges")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("prescription_id", prescriptionID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+changeColumns+`
			FROM prescription_change
			WHERE prescription_id = $1
			ORDER BY created_at DESC;`,
		prescriptionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChanges(rows)
}

// ListPendingOutcomes returns every change still awaiting an outcome
// that was created before the given moment.
func (r *Repo) ListPendingOutcomes(ctx context.Context, createdBefore time.Time) (_ []training.PrescriptionChange, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.listPendingOutcomes")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+changeColumns+`
			FROM prescription_change
			WHERE outcome = $1 AND evaluated_at IS NULL AND created_at < $2
			ORDER BY created_at;`,
		training.OutcomePending, createdBefore,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes, err := scanChanges(rows)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("pending", len(changes)))
	return changes, nil
}

// UpdateDecision records the user's verdict on a suggestion.
func (r *Repo) UpdateDecision(ctx context.Context, changeID string, decision training.Decision) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.updateDecision")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("change_id", changeID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE prescription_change SET decision = $1 WHERE id = $2;`,
		decision, changeID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrChangeNotFound
	}
	return nil
}

// ApplyOutcome finalizes a change's outcome. The update is guarded on
// evaluated_at being unset, so re-running a resolution is a no-op; it
// reports false when the change was already evaluated.
func (r *Repo) ApplyOutcome(ctx context.Context, params outcomes.ApplyOutcomeParams) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.applyOutcome")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("change_id", params.ChangeID))
	span.SetAttributes(attribute.String("outcome", string(params.Outcome)))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE prescription_change
			SET outcome = $1, reason = $2, evaluated_at = $3, evaluated_session_id = $4
			WHERE id = $5 AND evaluated_at IS NULL;`,
		params.Outcome, params.Reason, params.EvaluatedAt, params.EvaluatedSessionID, params.ChangeID,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func scanChanges(rows pgx.Rows) ([]training.PrescriptionChange, error) {
	var changes []training.PrescriptionChange
	for rows.Next() {
		var c training.PrescriptionChange
		if err := rows.Scan(
			&c.ID, &c.Type, &c.PreviousValue, &c.NewValue, &c.TargetSetIndex,
			&c.Source, &c.Decision, &c.Outcome, &c.Reason, &c.CreatedAt, &c.EvaluatedAt,
			&c.SessionID, &c.PerformanceID, &c.PrescriptionID, &c.EvaluatedSessionID,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}
