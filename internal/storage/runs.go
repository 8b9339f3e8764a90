package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
	"github.com/ramonehamilton/mtg-metagame/internal/batch"
)

// ErrRunNotFound is returned when a run ID has no stored run.
var ErrRunNotFound = errors.New("run not found")

// RunSummary describes a stored run without its per-deck results.
type RunSummary struct {
	ID         uuid.UUID `json:"id"`
	Format     string    `json:"format"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DeckCount  int       `json:"deck_count"`
}

// SaveRun stores a run and all its classifications in one transaction.
func (db *DB) SaveRun(ctx context.Context, run *batch.Run) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}

	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, format, started_at, finished_at, deck_count)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID.String(), run.Format, run.StartedAt, run.FinishedAt, len(run.Results))
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO classifications (
				run_id, deck_index, deck_id, source, label, match_kind,
				archetype, variant, colors, fallback_overlap
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare classification insert: %w", err)
		}
		defer stmt.Close()

		for _, res := range run.Results {
			_, err := stmt.ExecContext(ctx,
				run.ID.String(),
				res.Index,
				res.DeckID,
				nullString(res.Source),
				res.FinalLabel,
				res.MatchKind.String(),
				nullString(res.Archetype),
				nullString(res.Variant),
				res.Colors.String(),
				nullFloat(res.FallbackOverlap),
			)
			if err != nil {
				return fmt.Errorf("failed to insert classification for deck %s: %w", res.DeckID, err)
			}
		}
		return nil
	})
}

// LabelCounts returns how many decks of a run received each label, most
// frequent first.
func (db *DB) LabelCounts(ctx context.Context, runID uuid.UUID) ([]batch.LabelCount, error) {
	if _, err := db.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT label, COUNT(*) AS n
		FROM classifications
		WHERE run_id = ?
		GROUP BY label
		ORDER BY n DESC, label ASC
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query label counts: %w", err)
	}
	defer rows.Close()

	var counts []batch.LabelCount
	for rows.Next() {
		var lc batch.LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		counts = append(counts, lc)
	}
	return counts, rows.Err()
}

// GetRun returns the summary of a stored run.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*RunSummary, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, format, started_at, finished_at, deck_count
		FROM runs
		WHERE id = ?
	`, runID.String())

	summary, err := scanRunSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return summary, nil
}

// ListRuns returns the most recent runs of a format, newest first. An empty
// format lists every format.
func (db *DB) ListRuns(ctx context.Context, format string, limit int) ([]*RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, format, started_at, finished_at, deck_count
		FROM runs
		WHERE ? = '' OR format = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, format, format, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunSummary
	for rows.Next() {
		summary, err := scanRunSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, summary)
	}
	return runs, rows.Err()
}

// Classifications returns the stored results of a run in input order.
func (db *DB) Classifications(ctx context.Context, runID uuid.UUID) ([]batch.Result, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT deck_index, deck_id, source, label, match_kind, archetype, variant, colors, fallback_overlap
		FROM classifications
		WHERE run_id = ?
		ORDER BY deck_index
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query classifications: %w", err)
	}
	defer rows.Close()

	var results []batch.Result
	for rows.Next() {
		var (
			res                   batch.Result
			source, arch, variant sql.NullString
			matchKind, colors     string
			overlap               sql.NullFloat64
		)
		if err := rows.Scan(&res.Index, &res.DeckID, &source, &res.FinalLabel, &matchKind, &arch, &variant, &colors, &overlap); err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		if err := res.MatchKind.UnmarshalText([]byte(matchKind)); err != nil {
			return nil, fmt.Errorf("invalid match kind for deck %s: %w", res.DeckID, err)
		}
		identity, err := archetype.ParseColorIdentity(colors)
		if err != nil {
			return nil, fmt.Errorf("invalid colors for deck %s: %w", res.DeckID, err)
		}
		res.Colors = identity
		res.Source = source.String
		res.Archetype = arch.String
		res.Variant = variant.String
		res.FallbackOverlap = overlap.Float64
		results = append(results, res)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunSummary(row rowScanner) (*RunSummary, error) {
	var (
		summary RunSummary
		id      string
	)
	if err := row.Scan(&id, &summary.Format, &summary.StartedAt, &summary.FinishedAt, &summary.DeckCount); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", id, err)
	}
	summary.ID = parsed
	return &summary, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}
