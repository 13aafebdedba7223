package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/rohnsht/PhoneNumber/internal/model"
)

type ClientsRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*model.Client, error)
	Upsert(ctx context.Context, tx *sqlx.Tx, c model.Client) error
}

type ClientsRepositoryImpl struct {
	db *sqlx.DB
}

func NewClientsRepository(db *sqlx.DB) *ClientsRepositoryImpl {
	return &ClientsRepositoryImpl{db: db}
}

var _ ClientsRepository = (*ClientsRepositoryImpl)(nil)

// GetByAPIKey returns nil without error when no client owns the key.
func (r *ClientsRepositoryImpl) GetByAPIKey(ctx context.Context, apiKey string) (*model.Client, error) {
	var c model.Client
	err := r.db.GetContext(ctx, &c, `
		SELECT id, name, api_key, status, rate_limit_rps, created_at, updated_at
		  FROM clients
		 WHERE api_key = ? LIMIT 1
	`, apiKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert inserts a client or refreshes the one holding the same api_key.
func (r *ClientsRepositoryImpl) Upsert(ctx context.Context, tx *sqlx.Tx, c model.Client) error {
	const q = `
		INSERT INTO clients
		    (name, api_key, status, rate_limit_rps, created_at, updated_at)
		VALUES
		    (?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
		    name           = VALUES(name),
		    status         = VALUES(status),
		    rate_limit_rps = VALUES(rate_limit_rps),
		    updated_at     = VALUES(updated_at)
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, c.Name, c.APIKey, c.Status, c.RateLimitRPS)
		return err
	})
}
