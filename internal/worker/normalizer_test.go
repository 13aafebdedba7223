package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/catalog"
	"github.com/rohnsht/PhoneNumber/internal/kafka"
	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/phonenumber"
	"github.com/rohnsht/PhoneNumber/internal/registry"
	"github.com/rohnsht/PhoneNumber/internal/repository"
	"github.com/rohnsht/PhoneNumber/internal/service/phone"
)

type fakeSource struct {
	ch chan kafka.Message

	mu        sync.Mutex
	committed []int64
}

func newFakeSource(msgs ...kafka.Message) *fakeSource {
	s := &fakeSource{ch: make(chan kafka.Message, len(msgs))}
	for _, m := range msgs {
		s.ch <- m
	}
	return s
}

func (s *fakeSource) Fetch(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-s.ch:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (s *fakeSource) Commit(ctx context.Context, m kafka.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, m.Offset)
	return nil
}

func (s *fakeSource) commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed)
}

func (s *fakeSource) offsets() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.committed...)
}

type fakeJobs struct {
	mu      sync.Mutex
	updates map[string]repository.JobUpdate
}

func (f *fakeJobs) InsertQueued(context.Context, *sqlx.Tx, model.Job) error { return nil }

func (f *fakeJobs) Get(context.Context, int64, string) (model.Job, error) {
	return model.Job{}, repository.ErrJobNotFound
}

func (f *fakeJobs) BatchFinish(ctx context.Context, tx *sqlx.Tx, updates []repository.JobUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = map[string]repository.JobUpdate{}
	}
	for _, u := range updates {
		f.updates[u.ID] = u
	}
	return nil
}

func (f *fakeJobs) get(id string) (repository.JobUpdate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.updates[id]
	return u, ok
}

type fakeNumbers struct {
	mu    sync.Mutex
	rows  []model.NormalizedNumber
	err   error
	calls int
}

func (f *fakeNumbers) InsertBatch(ctx context.Context, rows []model.NormalizedNumber) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeNumbers) inserts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeNumbers) ListByClient(context.Context, int64, repository.NumbersFilter) ([]model.NormalizedNumber, error) {
	return nil, nil
}

func (f *fakeNumbers) byJob(id string) []model.NormalizedNumber {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.NormalizedNumber
	for _, r := range f.rows {
		if r.JobID == id {
			out = append(out, r)
		}
	}
	return out
}

func envelope(t *testing.T, offset int64, env model.JobEnvelope) kafka.Message {
	t.Helper()
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: b}
}

func TestNormalizerRun(t *testing.T) {
	reg, err := registry.Load("")
	require.NoError(t, err)
	svc := phone.New(phonenumber.New(reg), catalog.New(reg, catalog.CLDRNamer{}, "en", nil), nil, zap.NewNop())

	src := newFakeSource(
		envelope(t, 1, model.JobEnvelope{ID: "job-a", ClientID: 3, Region: "US", Strings: []string{"(415) 555-2671", "abc", "(415) 555-2671"}}),
		kafka.Message{Offset: 2, Value: []byte("{not json")},
		envelope(t, 3, model.JobEnvelope{ID: "job-b", ClientID: 3, Region: "US"}),
	)
	jobs, numbers := &fakeJobs{}, &fakeNumbers{}

	w := NewNormalizer(src, svc, jobs, numbers, zap.NewNop())
	w.Workers = 2
	w.BatchWait = 10 * time.Millisecond
	fixed := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, a := jobs.get("job-a")
		_, b := jobs.get("job-b")
		return a && b && src.commits() == 3
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	a, _ := jobs.get("job-a")
	assert.Equal(t, repository.JobUpdate{ID: "job-a", Status: model.JobDone, Valid: 1}, a)
	b, _ := jobs.get("job-b")
	assert.Equal(t, model.JobFailed, b.Status)

	rows := numbers.byJob("job-a")
	require.Len(t, rows, 2)
	assert.Equal(t, model.NormalizedNumber{
		JobID:          "job-a",
		ClientID:       3,
		Input:          "(415) 555-2671",
		Valid:          true,
		Type:           "fixedOrMobile",
		E164:           "+14155552671",
		International:  "+1 415-555-2671",
		National:       "(415) 555-2671",
		CountryCode:    "1",
		RegionCode:     "US",
		NationalNumber: "4155552671",
		CreatedAt:      fixed,
	}, rows[0])
	assert.Equal(t, "abc", rows[1].Input)
	assert.False(t, rows[1].Valid)
	assert.Equal(t, "notParsed", rows[1].Type)

	assert.Empty(t, numbers.byJob("job-b"))
}

func TestNormalizerFailedFlushLeavesOffsetUncommitted(t *testing.T) {
	reg, err := registry.Load("")
	require.NoError(t, err)
	svc := phone.New(phonenumber.New(reg), catalog.New(reg, catalog.CLDRNamer{}, "en", nil), nil, zap.NewNop())

	src := newFakeSource(
		envelope(t, 1, model.JobEnvelope{ID: "job-a", ClientID: 3, Region: "US", Strings: []string{"(415) 555-2671"}}),
		kafka.Message{Offset: 2, Value: []byte("{not json")},
	)
	jobs := &fakeJobs{}
	numbers := &fakeNumbers{err: errors.New("clickhouse down")}

	w := NewNormalizer(src, svc, jobs, numbers, zap.NewNop())
	w.Workers = 1
	w.BatchWait = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return numbers.inserts() >= 2 && src.commits() == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}

	assert.Equal(t, []int64{2}, src.offsets(), "only the bad envelope is committed")
	_, finished := jobs.get("job-a")
	assert.False(t, finished)
	assert.Empty(t, numbers.byJob("job-a"))
}
