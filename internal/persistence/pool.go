package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScopedPool runs every statement on a connection checked out for exactly that
// unit of work. Checkout waits at most acquireTimeout; the connection goes back
// to the pool once the statement, its rows or its transaction are finished.
type ScopedPool struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// NewScopedPool wraps pool. A non-positive timeout leaves checkout bounded only by ctx.
func NewScopedPool(pool *pgxpool.Pool, acquireTimeout time.Duration) *ScopedPool {
	return &ScopedPool{pool: pool, acquireTimeout: acquireTimeout}
}

func (s *ScopedPool) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	if s.acquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.acquireTimeout)
		defer cancel()
	}
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// Exec runs a statement that returns no rows.
func (s *ScopedPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer conn.Release()
	return conn.Exec(ctx, sql, args...)
}

// Query runs a statement returning rows. The connection is released when the
// rows are closed or exhausted.
func (s *ScopedPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &scopedRows{Rows: rows, release: conn.Release}, nil
}

// QueryRow runs a statement expected to return at most one row. The
// connection is released after Scan.
func (s *ScopedPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	conn, err := s.acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return &scopedRow{row: conn.QueryRow(ctx, sql, args...), release: conn.Release}
}

// Begin starts a transaction pinned to one connection until Commit or Rollback.
func (s *ScopedPool) Begin(ctx context.Context) (pgx.Tx, error) {
	conn, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &scopedTx{Tx: tx, release: conn.Release}, nil
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error { return r.err }

type scopedRow struct {
	row     pgx.Row
	release func()
}

func (r *scopedRow) Scan(dest ...any) error {
	defer r.release()
	return r.row.Scan(dest...)
}

type scopedRows struct {
	pgx.Rows
	release func()
	once    sync.Once
}

func (r *scopedRows) Next() bool {
	if r.Rows.Next() {
		return true
	}
	r.Close()
	return false
}

func (r *scopedRows) Close() {
	r.Rows.Close()
	r.once.Do(r.release)
}

type scopedTx struct {
	pgx.Tx
	release func()
	once    sync.Once
}

func (t *scopedTx) Commit(ctx context.Context) error {
	defer t.once.Do(t.release)
	return t.Tx.Commit(ctx)
}

func (t *scopedTx) Rollback(ctx context.Context) error {
	defer t.once.Do(t.release)
	return t.Tx.Rollback(ctx)
}
