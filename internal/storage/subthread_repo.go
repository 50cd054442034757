package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_subthread_store.go -package=mocks threadqa/internal/storage SubthreadStore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// SubthreadStore defines the interface for subthread storage operations.
type SubthreadStore interface {
	// ReplaceAll atomically replaces every stored subthread with records.
	// Positions are reassigned from slice order.
	ReplaceAll(ctx context.Context, records []SubthreadRecord) error
	// ListAll returns all subthreads in canonical (position) order.
	ListAll(ctx context.Context) ([]SubthreadRecord, error)
	// GetByID gets a subthread by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*SubthreadRecord, error)
	// Count returns the number of stored subthreads.
	Count(ctx context.Context) (int, error)
}

// SubthreadRepo provides methods for subthread operations.
// It implements the SubthreadStore interface.
type SubthreadRepo struct {
	db *sql.DB
}

// NewSubthreadRepo creates a new SubthreadRepo.
func NewSubthreadRepo(db *sql.DB) *SubthreadRepo {
	return &SubthreadRepo{db: db}
}

// ReplaceAll atomically replaces every stored subthread with records.
func (r *SubthreadRepo) ReplaceAll(ctx context.Context, records []SubthreadRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM subthreads"); err != nil {
		return fmt.Errorf("failed to clear subthreads: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO subthreads (id, position, title, text, source, created_at, likes, embedding) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i, rec := range records {
		var createdAt sql.NullTime
		if !rec.CreatedAt.IsZero() {
			createdAt = sql.NullTime{Time: rec.CreatedAt.UTC(), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			rec.ID, i, rec.Title, rec.Text, rec.Source, createdAt, rec.Likes, encodeVector(rec.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert subthread %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subthreads: %w", err)
	}
	return nil
}

// ListAll returns all subthreads ordered by position.
// Returns an empty slice if the table is empty (not an error).
func (r *SubthreadRepo) ListAll(ctx context.Context) ([]SubthreadRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, position, title, text, source, created_at, likes, embedding FROM subthreads ORDER BY position, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query subthreads: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []SubthreadRecord{}
	for rows.Next() {
		rec, err := scanSubthread(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// GetByID gets a subthread by its ID. Returns ErrNotFound if not found.
func (r *SubthreadRepo) GetByID(ctx context.Context, id string) (*SubthreadRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, position, title, text, source, created_at, likes, embedding FROM subthreads WHERE id = ?",
		id,
	)
	rec, err := scanSubthread(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Count returns the number of stored subthreads.
func (r *SubthreadRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM subthreads").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count subthreads: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubthread(s scanner) (*SubthreadRecord, error) {
	var (
		rec       SubthreadRecord
		createdAt sql.NullTime
		embedding []byte
	)
	err := s.Scan(&rec.ID, &rec.Position, &rec.Title, &rec.Text, &rec.Source, &createdAt, &rec.Likes, &embedding)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subthread: %w", err)
	}
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time.In(time.UTC)
	}
	rec.Embedding, err = decodeVector(embedding)
	if err != nil {
		return nil, fmt.Errorf("subthread %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// encodeVector packs a vector as little-endian float32 bytes. nil stays nil (NULL).
func encodeVector(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(buf))
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec, nil
}
