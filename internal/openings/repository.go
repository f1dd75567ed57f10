package openings

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/othello-trainer/internal/othello"
)

const schema = `CREATE TABLE IF NOT EXISTS othello_openings (
    board_id   TEXT PRIMARY KEY,
    best_child TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const upsertQuery = `INSERT INTO othello_openings (board_id, best_child, updated_at)
    VALUES ($1, $2, now())
    ON CONFLICT (board_id) DO UPDATE SET
        best_child = EXCLUDED.best_child,
        updated_at = EXCLUDED.updated_at`

// Repository keeps the tree in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *Repository) Tree(ctx context.Context) (*Tree, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT board_id, best_child FROM othello_openings`)
	if err != nil {
		return nil, fmt.Errorf("query openings: %w", err)
	}
	defer rows.Close()

	t := NewTree()
	for rows.Next() {
		var id, child string
		if err := rows.Scan(&id, &child); err != nil {
			return nil, fmt.Errorf("scan opening: %w", err)
		}
		t.entries[id] = child
	}
	return t, rows.Err()
}

func (r *Repository) Upsert(ctx context.Context, board, bestChild othello.Board) error {
	_, err := r.db.ExecContext(ctx, upsertQuery, board.NormalizedID(), bestChild.NormalizedID())
	return err
}

// Import validates t and writes all of its entries in one transaction.
func (r *Repository) Import(ctx context.Context, t *Tree) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for id, child := range t.Entries() {
		if _, err := stmt.ExecContext(ctx, id, child); err != nil {
			return n, fmt.Errorf("import %s: %w", id, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}
