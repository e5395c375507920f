package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps tables as JSONB rows (see migrations/001_panel_tables.sql).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) LoadTable(ctx context.Context, name string) (*Table, error) {
	t := &Table{Name: name}
	err := s.pool.QueryRow(ctx,
		"SELECT columns FROM panel_tables WHERE name = $1", name,
	).Scan(&t.Columns)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load header for %s: %w", name, err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT data FROM panel_rows WHERE table_name = $1 ORDER BY position", name,
	)
	if err != nil {
		return nil, fmt.Errorf("load rows for %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan row for %s: %w", name, err)
		}
		row := Row{}
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decode row for %s: %w", name, err)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows for %s: %w", name, err)
	}
	return t, nil
}

// SaveTable replaces the header and every row of t in one transaction.
func (s *PostgresStore) SaveTable(ctx context.Context, t *Table) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save %s: %w", t.Name, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO panel_tables (name, columns, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET columns = EXCLUDED.columns, updated_at = now()`,
		t.Name, t.Columns,
	)
	if err != nil {
		return fmt.Errorf("save header for %s: %w", t.Name, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM panel_rows WHERE table_name = $1", t.Name); err != nil {
		return fmt.Errorf("clear rows for %s: %w", t.Name, err)
	}

	if len(t.Rows) > 0 {
		batch := &pgx.Batch{}
		for i, row := range t.Rows {
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode row %d of %s: %w", i, t.Name, err)
			}
			batch.Queue(
				"INSERT INTO panel_rows (table_name, position, data) VALUES ($1, $2, $3::jsonb)",
				t.Name, i, string(data),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert rows for %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save %s: %w", t.Name, err)
	}
	return nil
}
