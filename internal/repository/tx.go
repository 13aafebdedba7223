package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// withTx runs fn in the provided tx, or starts a new transaction when tx is nil.
func withTx(ctx context.Context, db *sqlx.DB, tx *sqlx.Tx, fn func(*sqlx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}

	t, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() { _ = t.Rollback() }()
	if err := fn(t); err != nil {
		return err
	}

	return t.Commit()
}

// TxRunner runs fn inside one transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

type dbTxRunner struct{ db *sqlx.DB }

func NewTxRunner(db *sqlx.DB) TxRunner { return dbTxRunner{db: db} }

func (r dbTxRunner) InTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	return withTx(ctx, r.db, nil, fn)
}
