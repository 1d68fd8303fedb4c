// Package store is the postgres persistence layer for prescriptions,
// sessions, performances and prescription changes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fcttechnologies/VillainArc-sub000/internal/telemetry/tracing"
	"github.com/fcttechnologies/VillainArc-sub000/internal/training"
	"github.com/fcttechnologies/VillainArc-sub000/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrPerformanceNotFound  = errors.New("performance not found")
	ErrSessionNotFound      = errors.New("session not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) GetPrescription(ctx context.Context, id int) (_ *training.Prescription, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.getPrescription")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var (
		p            training.Prescription
		repRangeJson []byte
		restTimeJson []byte
		setsJson     []byte
	)
	err = r.db.QueryRow(
		ctx,
		`SELECT id, exercise_id, muscle_group, equipment, rep_range, rest_time, sets
			FROM prescription WHERE id = $1;`,
		id,
	).Scan(&p.ID, &p.ExerciseID, &p.MuscleGroup, &p.Equipment, &repRangeJson, &restTimeJson, &setsJson)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(repRangeJson, &p.RepRange); err != nil {
		return nil, fmt.Errorf("unmarshal rep range: %w", err)
	}
	if err := json.Unmarshal(restTimeJson, &p.RestTime); err != nil {
		return nil, fmt.Errorf("unmarshal rest time: %w", err)
	}
	if err := json.Unmarshal(setsJson, &p.Sets); err != nil {
		return nil, fmt.Errorf("unmarshal sets: %w", err)
	}

	return &p, nil
}

func (r *Repo) GetPerformance(ctx context.Context, id int) (_ *training.Performance, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.getPerformance")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var (
		p        training.Performance
		setsJson []byte
	)
	err = r.db.QueryRow(
		ctx,
		`SELECT id, session_id, prescription_id, exercise_id, completed_at, sets
			FROM performance WHERE id = $1;`,
		id,
	).Scan(&p.ID, &p.SessionID, &p.PrescriptionID, &p.ExerciseID, &p.CompletedAt, &setsJson)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPerformanceNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(setsJson, &p.Sets); err != nil {
		return nil, fmt.Errorf("unmarshal sets: %w", err)
	}

	return &p, nil
}

// GetSession returns the session together with all its performances.
func (r *Repo) GetSession(ctx context.Context, id int) (_ *training.Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.getSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var session training.Session
	err = r.db.QueryRow(
		ctx,
		`SELECT id, started_at, finished_at FROM training_session WHERE id = $1;`,
		id,
	).Scan(&session.ID, &session.StartedAt, &session.FinishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, session_id, prescription_id, exercise_id, completed_at, sets
			FROM performance WHERE session_id = $1 ORDER BY completed_at;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p        training.Performance
			setsJson []byte
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &p.PrescriptionID, &p.ExerciseID, &p.CompletedAt, &setsJson); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if err := json.Unmarshal(setsJson, &p.Sets); err != nil {
			return nil, fmt.Errorf("unmarshal sets: %w", err)
		}
		session.Performances = append(session.Performances, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &session, nil
}

// EvidenceWindow returns the most recent completed performances of the
// prescription before the given moment, most recent first, capped at
// the evidence window size.
func (r *Repo) EvidenceWindow(ctx context.Context, prescriptionID int, before time.Time) (_ training.EvidenceWindow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.evidenceWindow")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("prescription_id", prescriptionID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, session_id, prescription_id, exercise_id, completed_at, sets
			FROM performance
			WHERE prescription_id = $1 AND completed_at < $2
			ORDER BY completed_at DESC
			LIMIT $3;`,
		prescriptionID, before, training.EvidenceWindowSize,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var window training.EvidenceWindow
	for rows.Next() {
		var (
			p        training.Performance
			setsJson []byte
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &p.PrescriptionID, &p.ExerciseID, &p.CompletedAt, &setsJson); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		if err := json.Unmarshal(setsJson, &p.Sets); err != nil {
			return nil, fmt.Errorf("unmarshal sets: %w", err)
		}
		window = append(window, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("window_size", len(window)))
	return window, nil
}

// AddSession persists a session and its performances in one transaction.
func (r *Repo) AddSession(ctx context.Context, session *training.Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.training.addSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

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

	if err = tx.QueryRow(
		ctx,
		`INSERT INTO training_session (started_at, finished_at) VALUES ($1, $2) RETURNING id;`,
		session.StartedAt, session.FinishedAt,
	).Scan(&session.ID); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for i := range session.Performances {
		perf := &session.Performances[i]
		perf.SessionID = session.ID

		var setsJson []byte
		setsJson, err = json.Marshal(perf.Sets)
		if err != nil {
			return fmt.Errorf("marshal sets: %w", err)
		}

		if err = tx.QueryRow(
			ctx,
			`INSERT INTO performance (session_id, prescription_id, exercise_id, completed_at, sets)
				VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
			perf.SessionID, perf.PrescriptionID, perf.ExerciseID, perf.CompletedAt, setsJson,
		).Scan(&perf.ID); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return fmt.Errorf("insert performance: %w", ErrPrescriptionNotFound)
			}
			return fmt.Errorf("insert performance: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("session.id", session.ID))
	return nil
}
