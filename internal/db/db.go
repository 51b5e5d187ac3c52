package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned by Get* lookups with no matching row.
var ErrNotFound = errors.New("not found")

type DB struct {
	Bun bun.IDB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

// RunInTx runs fn against a transaction-scoped DB.
func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *DB) error) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &DB{Bun: tx})
	})
}

// IsUniqueViolation reports a UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Fields is a partial update: column name to value.
type Fields map[string]any

func (d *DB) updateFields(ctx context.Context, table string, id int64, fields Fields) (int64, error) {
	q := d.Bun.NewUpdate().Table(table)
	for column, value := range fields {
		q = q.Set("? = ?", bun.Ident(column), value)
	}
	res, err := q.Where("id = ?", id).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
