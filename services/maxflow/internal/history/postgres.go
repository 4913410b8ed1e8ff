package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"

	"maxflow/pkg/database"
	"maxflow/pkg/telemetry"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var arcColumns = []string{"run_id", "arc_id", "tail", "head", "flow", "capacity"}

// PostgresRepository PostgreSQL реализация
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository создаёт новый репозиторий
func NewPostgresRepository(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the run and, when present, its arc flows in one
// transaction. run.CreatedAt is filled from the database.
func (r *PostgresRepository) Create(ctx context.Context, run *Run) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.Create")
	defer span.End()

	if run == nil || run.ID == "" {
		return errors.New("run id is required")
	}

	query := `
		INSERT INTO flow_runs (
			id, input_path, network_hash, vertex_count, arc_count,
			source, sink, max_flow, rounds, duration_ms, cached
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, query,
			run.ID,
			run.InputPath,
			run.NetworkHash,
			run.Vertices,
			run.Arcs,
			run.Source,
			run.Sink,
			run.MaxFlow,
			run.Rounds,
			run.DurationMs,
			run.Cached,
		).Scan(&run.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		if len(run.ArcFlows) == 0 {
			return nil
		}

		rows := make([][]any, len(run.ArcFlows))
		for i, a := range run.ArcFlows {
			rows[i] = []any{run.ID, a.ArcID, a.From, a.To, a.Flow, a.Capacity}
		}
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"flow_run_arcs"}, arcColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("failed to copy arc flows: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.SetError(ctx, err)
		return err
	}

	telemetry.SetAttributes(ctx, attribute.String(telemetry.AttrRunID, run.ID))
	return nil
}

// ListByNetwork returns the most recent runs of one network, newest first.
func (r *PostgresRepository) ListByNetwork(ctx context.Context, networkHash string, limit int) ([]*Run, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresRepository.ListByNetwork")
	defer span.End()

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT
			id, input_path, network_hash, vertex_count, arc_count,
			source, sink, max_flow, rounds, duration_ms, cached, created_at
		FROM flow_runs
		WHERE network_hash = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, networkHash, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*Run, error) {
	run := &Run{}
	err := row.Scan(
		&run.ID,
		&run.InputPath,
		&run.NetworkHash,
		&run.Vertices,
		&run.Arcs,
		&run.Source,
		&run.Sink,
		&run.MaxFlow,
		&run.Rounds,
		&run.DurationMs,
		&run.Cached,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
