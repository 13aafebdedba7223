package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/rohnsht/PhoneNumber/internal/model"
)

var ErrJobNotFound = errors.New("job not found")

// JobUpdate is the outcome of one processed job.
type JobUpdate struct {
	ID     string
	Status model.JobStatus
	Valid  int
}

// JobsRepository persists normalization jobs.
type JobsRepository interface {
	InsertQueued(ctx context.Context, tx *sqlx.Tx, j model.Job) error
	Get(ctx context.Context, clientID int64, id string) (model.Job, error)
	BatchFinish(ctx context.Context, tx *sqlx.Tx, updates []JobUpdate) error
}

type JobsRepositoryImpl struct {
	db *sqlx.DB
}

func NewJobsRepository(db *sqlx.DB) *JobsRepositoryImpl {
	return &JobsRepositoryImpl{db: db}
}

var _ JobsRepository = (*JobsRepositoryImpl)(nil)

// InsertQueued inserts a new job row with status=queued.
func (r *JobsRepositoryImpl) InsertQueued(ctx context.Context, tx *sqlx.Tx, j model.Job) error {
	const q = `
		INSERT INTO jobs
		    (id, client_id, region, status, total, valid, created_at, updated_at)
		VALUES
		    (?,  ?,         ?,      'queued', ?,   0,     NOW(),      NOW())
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, q, j.ID, j.ClientID, j.Region, j.Total)
		return err
	})
}

// Get loads a job owned by clientID.
func (r *JobsRepositoryImpl) Get(ctx context.Context, clientID int64, id string) (model.Job, error) {
	var j model.Job
	err := r.db.GetContext(ctx, &j, `
		SELECT id, client_id, region, status, total, valid, created_at, updated_at
		  FROM jobs
		 WHERE id = ? AND client_id = ?
	`, id, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, ErrJobNotFound
	}
	return j, err
}

// BatchFinish records the outcome of many jobs in one transaction. Jobs
// already finished are left untouched, so redelivered messages are harmless.
func (r *JobsRepositoryImpl) BatchFinish(ctx context.Context, tx *sqlx.Tx, updates []JobUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	const q = `
		UPDATE jobs
		   SET status = ?, valid = ?, updated_at = NOW()
		 WHERE id = ? AND status = 'queued'
	`
	return withTx(ctx, r.db, tx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, q)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, u := range updates {
			if _, err := stmt.ExecContext(ctx, u.Status.String(), u.Valid, u.ID); err != nil {
				return err
			}
		}
		return nil
	})
}
