package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/repository"
)

type fakeTx struct{ committed int }

func (f *fakeTx) InTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	f.committed++
	return nil
}

type fakeJobs struct {
	inserted []model.Job
	err      error
}

func (f *fakeJobs) InsertQueued(ctx context.Context, tx *sqlx.Tx, j model.Job) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, j)
	return nil
}

func (f *fakeJobs) Get(ctx context.Context, clientID int64, id string) (model.Job, error) {
	for _, j := range f.inserted {
		if j.ID == id && j.ClientID == clientID {
			return j, nil
		}
	}
	return model.Job{}, repository.ErrJobNotFound
}

func (f *fakeJobs) BatchFinish(ctx context.Context, tx *sqlx.Tx, updates []repository.JobUpdate) error {
	return nil
}

type fakeOutbox struct{ events []model.OutboxEvent }

func (f *fakeOutbox) Insert(ctx context.Context, tx *sqlx.Tx, ev model.OutboxEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func TestEnqueue(t *testing.T) {
	tx, jobs, outbox := &fakeTx{}, &fakeJobs{}, &fakeOutbox{}
	s := New(tx, jobs, outbox, 10)

	id, err := s.Enqueue(context.Background(), 7, []string{"+14155552671", "020 7946 0958"}, " gb ")
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, tx.committed)

	require.Len(t, jobs.inserted, 1)
	assert.Equal(t, model.Job{ID: id, ClientID: 7, Region: "GB", Status: model.JobQueued, Total: 2}, jobs.inserted[0])

	require.Len(t, outbox.events, 1)
	ev := outbox.events[0]
	assert.Equal(t, "job", ev.Aggregate)
	assert.Equal(t, id, ev.AggregateID)
	assert.Equal(t, NormalizeKafkaTopic, ev.Topic)

	var env model.JobEnvelope
	require.NoError(t, json.Unmarshal(ev.Payload, &env))
	assert.Equal(t, model.JobEnvelope{ID: id, ClientID: 7, Region: "GB", Strings: []string{"+14155552671", "020 7946 0958"}}, env)

	job, err := s.Get(context.Background(), 7, id)
	require.NoError(t, err)
	assert.Equal(t, id, job.ID)

	_, err = s.Get(context.Background(), 8, id)
	require.ErrorIs(t, err, repository.ErrJobNotFound)
}

func TestEnqueueRejects(t *testing.T) {
	s := New(&fakeTx{}, &fakeJobs{}, &fakeOutbox{}, 2)

	_, err := s.Enqueue(context.Background(), 1, nil, "US")
	require.ErrorIs(t, err, ErrEmptyJob)

	_, err = s.Enqueue(context.Background(), 1, []string{"1", "2", "3"}, "US")
	require.ErrorIs(t, err, ErrJobTooLarge)
}

func TestEnqueueRollsBack(t *testing.T) {
	boom := errors.New("boom")
	tx, outbox := &fakeTx{}, &fakeOutbox{}
	s := New(tx, &fakeJobs{err: boom}, outbox, 0)

	_, err := s.Enqueue(context.Background(), 1, []string{"+14155552671"}, "")
	require.ErrorIs(t, err, boom)
	assert.Zero(t, tx.committed)
	assert.Empty(t, outbox.events)
}
