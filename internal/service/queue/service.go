package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/rohnsht/PhoneNumber/internal/metrics"
	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/repository"
	"github.com/rohnsht/PhoneNumber/internal/util"
)

const NormalizeKafkaTopic = "phone.normalize"

var (
	ErrEmptyJob    = errors.New("job has no strings")
	ErrJobTooLarge = errors.New("job has too many strings")
)

// Service atomically persists normalization jobs and their outbox events.
type Service struct {
	tx         repository.TxRunner
	jobs       repository.JobsRepository
	outbox     repository.OutboxRepository
	maxStrings int
}

// New constructs the queue service.
func New(
	tx repository.TxRunner,
	jobsRepo repository.JobsRepository,
	outboxRepo repository.OutboxRepository,
	maxStrings int,
) *Service {
	if maxStrings <= 0 {
		maxStrings = 10000
	}
	return &Service{tx: tx, jobs: jobsRepo, outbox: outboxRepo, maxStrings: maxStrings}
}

// Enqueue generates a ULID and writes the job row and its outbox event
// within a single transaction. Returns the job ID.
func (s *Service) Enqueue(ctx context.Context, clientID int64, texts []string, region string) (string, error) {
	if len(texts) == 0 {
		return "", ErrEmptyJob
	}
	if len(texts) > s.maxStrings {
		return "", fmt.Errorf("%w: %d > %d", ErrJobTooLarge, len(texts), s.maxStrings)
	}

	jobID := util.NewID()
	region = strings.ToUpper(strings.TrimSpace(region))

	job := model.Job{
		ID:       jobID,
		ClientID: clientID,
		Region:   region,
		Status:   model.JobQueued,
		Total:    len(texts),
	}

	payload, err := json.Marshal(model.JobEnvelope{
		ID:       jobID,
		ClientID: clientID,
		Region:   region,
		Strings:  texts,
	})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	err = s.tx.InTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.jobs.InsertQueued(ctx, tx, job); err != nil {
			return fmt.Errorf("insert job queued: %w", err)
		}
		ev := model.OutboxEvent{
			Aggregate:   "job",
			AggregateID: jobID,
			Topic:       NormalizeKafkaTopic,
			Payload:     payload,
		}
		if err := s.outbox.Insert(ctx, tx, ev); err != nil {
			return fmt.Errorf("insert outbox: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.JobsTotal.WithLabelValues("queued").Inc()
	return jobID, nil
}

// Get returns a job owned by clientID.
func (s *Service) Get(ctx context.Context, clientID int64, id string) (model.Job, error) {
	return s.jobs.Get(ctx, clientID, id)
}
