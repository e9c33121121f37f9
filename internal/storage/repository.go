package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"saldo/internal/core"
	"saldo/internal/remote"
)

// Fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository is the remote store backed by a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ remote.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serializes them anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, kind, amount, category_id, category_label, category_detail, created_at
		FROM transactions
		WHERE owner_id = ?
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t         core.Transaction
			kind      string
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.OwnerID, &kind, &t.Amount.Minor, &t.CategoryID,
			&t.CategoryLabel, &t.CategoryDetail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.Kind(kind)
		if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at of transaction %s: %w", t.ID, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.CreatedAt = t.CreatedAt.UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, kind, amount, category_id, category_label, category_detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, string(t.Kind), t.Amount.Minor, t.CategoryID,
		t.CategoryLabel, t.CategoryDetail, t.CreatedAt.Format(timeLayout))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"kind", t.Kind,
		"amount", t.Amount.Minor,
		"category_id", t.CategoryID)
	return t, nil
}

func (r *SQLiteRepository) ListTargets(ctx context.Context, ownerID string) ([]core.Target, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_id, name, icon, color, target_amount, status, created_at, completed_at
		FROM targets
		WHERE owner_id = ?
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	var out []core.Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targets: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateTarget(ctx context.Context, t core.Target) (core.Target, error) {
	if err := t.Validate(); err != nil {
		return core.Target{}, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = core.Ongoing
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.CreatedAt = t.CreatedAt.UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO targets (id, owner_id, name, icon, color, target_amount, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Name, t.Icon, t.Color, t.TargetAmount.Minor, string(t.Status),
		t.CreatedAt.Format(timeLayout), nullTime(t.CompletedAt))
	if err != nil {
		return core.Target{}, fmt.Errorf("create target: %w", err)
	}

	slog.InfoContext(ctx, "Target saved to SQLite",
		"id", t.ID,
		"name", t.Name,
		"target_amount", t.TargetAmount.Minor)
	return t, nil
}

func (r *SQLiteRepository) UpdateTarget(ctx context.Context, id string, patch remote.TargetPatch) (core.Target, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Target{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, owner_id, name, icon, color, target_amount, status, created_at, completed_at
		FROM targets WHERE id = ?`, id)
	current, err := scanTarget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Target{}, fmt.Errorf("%w: target %s", remote.ErrNotFound, id)
	}
	if err != nil {
		return core.Target{}, err
	}

	updated := patch.Apply(current)
	_, err = tx.ExecContext(ctx, `
		UPDATE targets
		SET name = ?, icon = ?, color = ?, status = ?, completed_at = ?
		WHERE id = ?`,
		updated.Name, updated.Icon, updated.Color, string(updated.Status),
		nullTime(updated.CompletedAt), id)
	if err != nil {
		return core.Target{}, fmt.Errorf("update target: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Target{}, fmt.Errorf("commit target update: %w", err)
	}
	return updated, nil
}

func (r *SQLiteRepository) DeleteTarget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM targets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete target: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete target: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: target %s", remote.ErrNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTarget(row rowScanner) (core.Target, error) {
	var (
		t           core.Target
		status      string
		createdAt   string
		completedAt sql.NullString
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Icon, &t.Color, &t.TargetAmount.Minor,
		&status, &createdAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Target{}, err
	}
	if err != nil {
		return core.Target{}, fmt.Errorf("scan target: %w", err)
	}
	t.Status = core.Status(status)
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return core.Target{}, fmt.Errorf("parse created_at of target %s: %w", t.ID, err)
	}
	if completedAt.Valid {
		if t.CompletedAt, err = time.Parse(timeLayout, completedAt.String); err != nil {
			return core.Target{}, fmt.Errorf("parse completed_at of target %s: %w", t.ID, err)
		}
	}
	return t, nil
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}
