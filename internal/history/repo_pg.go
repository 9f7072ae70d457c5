package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"biasbuster-backend/internal/analyses"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a history entry.
func (r *PGRepo) Create(ctx context.Context, entry Entry) error {
	const query = `
INSERT INTO bias_analyses (
    id,
    fingerprint_hash,
    scenario_id,
    filename,
    bias_score,
    feedback,
    recommendations,
    fallback,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	feedback, err := json.Marshal(entry.Analysis.Feedback)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	var recommendations sql.NullString
	if len(entry.Analysis.Recommendations) > 0 {
		raw, err := json.Marshal(entry.Analysis.Recommendations)
		if err != nil {
			return fmt.Errorf("marshal recommendations: %w", err)
		}
		recommendations = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.FingerprintHash,
		entry.ScenarioID,
		entry.Filename,
		entry.Analysis.BiasScore,
		string(feedback),
		recommendations,
		entry.Fallback,
		entry.CreatedAt,
	)
	return err
}

// ListByFingerprint returns entries newest first.
func (r *PGRepo) ListByFingerprint(ctx context.Context, fingerprintHash string, filter ListFilter) ([]Entry, error) {
	var b strings.Builder
	b.WriteString(`
SELECT id, fingerprint_hash, scenario_id, filename, bias_score, feedback, recommendations, fallback, created_at
FROM bias_analyses
WHERE fingerprint_hash = $1`)
	args := []any{fingerprintHash}
	if filter.ScenarioID != "" {
		args = append(args, filter.ScenarioID)
		fmt.Fprintf(&b, " AND scenario_id = $%d", len(args))
	}
	b.WriteString("\nORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, "\nLIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	rows, err := r.DB.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var feedback []byte
		var recommendations sql.NullString
		if err := rows.Scan(
			&e.ID,
			&e.FingerprintHash,
			&e.ScenarioID,
			&e.Filename,
			&e.Analysis.BiasScore,
			&feedback,
			&recommendations,
			&e.Fallback,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(feedback, &e.Analysis.Feedback); err != nil {
			return nil, fmt.Errorf("history %s feedback: %w", e.ID, err)
		}
		if recommendations.Valid {
			if err := json.Unmarshal([]byte(recommendations.String), &e.Analysis.Recommendations); err != nil {
				return nil, fmt.Errorf("history %s recommendations: %w", e.ID, err)
			}
		}
		e.Level = analyses.LevelForScore(e.Analysis.BiasScore)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
