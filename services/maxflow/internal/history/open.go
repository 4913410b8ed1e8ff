package history

import (
	"context"
	"fmt"

	"maxflow/pkg/config"
	"maxflow/pkg/database"
)

// Store is a repository that owns its connection pool.
type Store struct {
	*PostgresRepository
	db *database.PostgresDB
}

// Open connects to PostgreSQL and, when cfg.AutoMigrate is set, brings the
// schema up to date.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	if err := database.RunMigrations(ctx, db.Pool, cfg, Migrations, MigrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("history store: %w", err)
	}

	return &Store{PostgresRepository: NewPostgresRepository(db), db: db}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.db.Close()
}
