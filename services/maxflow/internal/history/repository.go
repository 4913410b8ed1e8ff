// Package history records solve runs in PostgreSQL.
package history

import (
	"context"
	"embed"
	"time"
)

// Migrations holds the goose migrations for the history schema.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

// Run is one recorded solve.
type Run struct {
	ID          string
	InputPath   string
	NetworkHash string
	Vertices    int
	Arcs        int
	Source      int
	Sink        int
	MaxFlow     int64
	Rounds      int
	DurationMs  float64
	Cached      bool
	CreatedAt   time.Time

	// ArcFlows is stored only when non-empty.
	ArcFlows []ArcFlow
}

// ArcFlow is the final flow on one network arc.
type ArcFlow struct {
	ArcID    int
	From     int
	To       int
	Flow     int64
	Capacity int64
}

// Repository stores and reads runs.
type Repository interface {
	Create(ctx context.Context, run *Run) error
	ListByNetwork(ctx context.Context, networkHash string, limit int) ([]*Run, error)
}
