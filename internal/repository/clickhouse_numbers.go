package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rohnsht/PhoneNumber/internal/model"
)

// NumbersFilter narrows a numbers report. Zero values mean no filter.
type NumbersFilter struct {
	JobID  string
	Region string
	Type   string
	Valid  *bool
	Limit  int
	Offset int
}

// CHNumbersRepository stores and lists normalized numbers in ClickHouse.
type CHNumbersRepository interface {
	InsertBatch(ctx context.Context, rows []model.NormalizedNumber) error
	ListByClient(ctx context.Context, clientID int64, f NumbersFilter) ([]model.NormalizedNumber, error)
}

type chNumbersRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHNumbersRepository(ch *sqlx.DB) CHNumbersRepository {
	return &chNumbersRepository{ch: ch}
}

const numberColumns = `job_id, client_id, input, valid, type, e164, international, national,
	country_code, region_code, national_number, created_at`

// InsertBatch sends rows as one ClickHouse block: the driver buffers the
// prepared statement's rows and flushes them on commit.
func (r *chNumbersRepository) InsertBatch(ctx context.Context, rows []model.NormalizedNumber) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.ch.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO phonenum.numbers ("+numberColumns+")")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, n := range rows {
		if _, err := stmt.ExecContext(ctx,
			n.JobID, n.ClientID, n.Input, n.Valid, n.Type, n.E164, n.International, n.National,
			n.CountryCode, n.RegionCode, n.NationalNumber, n.CreatedAt,
		); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	return tx.Commit()
}

func (r *chNumbersRepository) ListByClient(ctx context.Context, clientID int64, f NumbersFilter) ([]model.NormalizedNumber, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := "SELECT " + numberColumns + " FROM phonenum.numbers WHERE client_id = ?"
	args := []any{clientID}

	if f.JobID != "" {
		q += " AND job_id = ?"
		args = append(args, f.JobID)
	}
	if f.Region != "" {
		q += " AND region_code = ?"
		args = append(args, f.Region)
	}
	if f.Type != "" {
		q += " AND type = ?"
		args = append(args, f.Type)
	}
	if f.Valid != nil {
		q += " AND valid = ?"
		args = append(args, *f.Valid)
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	var rows []model.NormalizedNumber
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
