// Package postgres persists aggregation results in PostgreSQL through
// sqlx. The table is append-only, keyed by (survey_id, subject_id,
// computed_at); per-trait breakdowns and clamp flags are stored as
// JSONB documents.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/orbita-hq/feedback-engine/internal/domain"
	"github.com/orbita-hq/feedback-engine/internal/ports"
)

var _ ports.ResultStore = (*ResultStore)(nil)

// Schema creates the results table. Callers run it once at deploy time
// or through their migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS aggregation_results (
    id              UUID PRIMARY KEY,
    survey_id       TEXT        NOT NULL,
    subject_id      TEXT        NOT NULL,
    computed_at     TIMESTAMPTZ NOT NULL,
    completeness    TEXT        NOT NULL,
    composite_score DOUBLE PRECISION,
    per_trait       JSONB       NOT NULL,
    clamped         JSONB,
    UNIQUE (survey_id, subject_id, computed_at)
);
CREATE INDEX IF NOT EXISTS aggregation_results_pair_idx
    ON aggregation_results (survey_id, subject_id, computed_at DESC);
`

// ResultStore is the PostgreSQL-backed append-only result store.
type ResultStore struct {
	db *sqlx.DB
}

// NewResultStore wraps an open database handle.
func NewResultStore(db *sqlx.DB) *ResultStore {
	return &ResultStore{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the results table when it does not exist.
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensuring results schema: %w", err)
	}
	return nil
}

type resultRow struct {
	ID           string          `db:"id"`
	SurveyID     string          `db:"survey_id"`
	SubjectID    string          `db:"subject_id"`
	ComputedAt   sql.NullTime    `db:"computed_at"`
	Completeness string          `db:"completeness"`
	Composite    sql.NullFloat64 `db:"composite_score"`
	PerTrait     []byte          `db:"per_trait"`
	Clamped      []byte          `db:"clamped"`
}

// Save implements ports.ResultStore. The unique constraint on
// (survey_id, subject_id, computed_at) guarantees the append-only
// contract at the database level.
func (s *ResultStore) Save(ctx context.Context, result *domain.AggregationResult) error {
	perTrait, err := json.Marshal(result.PerTrait)
	if err != nil {
		return fmt.Errorf("encoding per-trait scores: %w", err)
	}
	var clamped []byte
	if len(result.Clamped) > 0 {
		if clamped, err = json.Marshal(result.Clamped); err != nil {
			return fmt.Errorf("encoding clamp flags: %w", err)
		}
	}

	composite := sql.NullFloat64{}
	if result.Composite != nil {
		composite = sql.NullFloat64{Float64: *result.Composite, Valid: true}
	}

	const insert = `
        INSERT INTO aggregation_results
            (id, survey_id, subject_id, computed_at, completeness, composite_score, per_trait, clamped)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.db.ExecContext(ctx, insert,
		result.ID, result.SurveyID, result.SubjectID, result.ComputedAt,
		string(result.Completeness), composite, perTrait, clamped)
	if err != nil {
		return fmt.Errorf("inserting aggregation result: %w", err)
	}
	return nil
}

// GetLatest implements ports.ResultStore.
func (s *ResultStore) GetLatest(ctx context.Context, surveyID, subjectID string) (*domain.AggregationResult, error) {
	const query = `
        SELECT id, survey_id, subject_id, computed_at, completeness, composite_score, per_trait, clamped
        FROM aggregation_results
        WHERE survey_id = $1 AND subject_id = $2
        ORDER BY computed_at DESC
        LIMIT 1`

	var row resultRow
	if err := s.db.GetContext(ctx, &row, query, surveyID, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ports.ErrResultNotFound
		}
		return nil, fmt.Errorf("querying latest result: %w", err)
	}
	return row.toDomain()
}

func (r resultRow) toDomain() (*domain.AggregationResult, error) {
	result := &domain.AggregationResult{
		ID:           r.ID,
		SurveyID:     r.SurveyID,
		SubjectID:    r.SubjectID,
		Completeness: domain.CompletenessFlag(r.Completeness),
	}
	if r.ComputedAt.Valid {
		result.ComputedAt = r.ComputedAt.Time
	}
	if r.Composite.Valid {
		v := r.Composite.Float64
		result.Composite = &v
	}
	if err := json.Unmarshal(r.PerTrait, &result.PerTrait); err != nil {
		return nil, fmt.Errorf("decoding per-trait scores: %w", err)
	}
	if len(r.Clamped) > 0 {
		if err := json.Unmarshal(r.Clamped, &result.Clamped); err != nil {
			return nil, fmt.Errorf("decoding clamp flags: %w", err)
		}
	}
	return result, nil
}
