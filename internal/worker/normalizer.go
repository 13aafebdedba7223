package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/kafka"
	"github.com/rohnsht/PhoneNumber/internal/metrics"
	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/repository"
)

// Source is the subset of the Kafka consumer the worker needs.
type Source interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// ListParser parses a batch of strings; failing strings map to nil.
type ListParser interface {
	ParseList(texts []string, region string) (map[string]*model.ParseResult, error)
}

// Normalizer:
// - fetches job envelopes from Kafka,
// - parses every string of the job,
// - batches result rows into ClickHouse and job outcomes into MySQL.
type Normalizer struct {
	Consumer Source
	Parser   ListParser
	Jobs     repository.JobsRepository
	Numbers  repository.CHNumbersRepository
	Log      *zap.Logger

	Workers   int           // goroutines parsing jobs
	BatchSize int           // buffered result rows that force a flush
	BatchWait time.Duration // max time to wait before flush

	now func() time.Time
}

// NewNormalizer builds a worker with sane defaults.
func NewNormalizer(
	consumer Source,
	parser ListParser,
	jobsRepo repository.JobsRepository,
	numbersRepo repository.CHNumbersRepository,
	log *zap.Logger,
) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{
		Consumer:  consumer,
		Parser:    parser,
		Jobs:      jobsRepo,
		Numbers:   numbersRepo,
		Log:       log,
		Workers:   8,
		BatchSize: 1000,
		BatchWait: 500 * time.Millisecond,
		now:       time.Now,
	}
}

type jobResult struct {
	update repository.JobUpdate
	rows   []model.NormalizedNumber
	msg    kafka.Message
}

// Run starts the worker and blocks until ctx is cancelled and buffered
// results have been flushed.
func (w *Normalizer) Run(ctx context.Context) error {
	if w.Consumer == nil || w.Parser == nil || w.Jobs == nil || w.Numbers == nil {
		return errors.New("normalizer: missing dependency")
	}
	if w.Workers <= 0 {
		w.Workers = 8
	}
	if w.BatchSize <= 0 {
		w.BatchSize = 1000
	}
	if w.BatchWait <= 0 {
		w.BatchWait = 500 * time.Millisecond
	}
	if w.now == nil {
		w.now = time.Now
	}

	results := make(chan jobResult, w.Workers*2)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		w.runBatchWriter(results)
	}()

	msgCh := make(chan kafka.Message, w.Workers*2)
	go w.runFetcher(ctx, msgCh)

	var wg sync.WaitGroup
	for i := 0; i < w.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.runProcessor(ctx, msgCh, results)
		}()
	}

	wg.Wait()
	close(results)
	<-writerDone
	return nil
}

func (w *Normalizer) runFetcher(ctx context.Context, out chan<- kafka.Message) {
	defer close(out)
	for {
		m, err := w.Consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.Log.Warn("kafka fetch failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
			continue
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return
		}
	}
}

func (w *Normalizer) runProcessor(ctx context.Context, in <-chan kafka.Message, out chan<- jobResult) {
	for m := range in {
		w.processOne(ctx, m, out)
	}
}

func (w *Normalizer) processOne(ctx context.Context, m kafka.Message, out chan<- jobResult) {
	var env model.JobEnvelope
	if err := json.Unmarshal(m.Value, &env); err != nil || env.ID == "" {
		_ = w.Consumer.Commit(ctx, m) // poison: commit and skip
		w.Log.Warn("bad job envelope", zap.Int64("offset", m.Offset), zap.Error(err))
		return
	}

	r := w.normalize(env)
	r.msg = m
	out <- r
}

func (w *Normalizer) normalize(env model.JobEnvelope) jobResult {
	parsed, err := w.Parser.ParseList(env.Strings, env.Region)
	if err != nil {
		metrics.JobsTotal.WithLabelValues("failed").Inc()
		w.Log.Warn("job rejected", zap.String("job_id", env.ID), zap.Error(err))
		return jobResult{update: repository.JobUpdate{ID: env.ID, Status: model.JobFailed}}
	}

	now := w.now().UTC()
	rows := make([]model.NormalizedNumber, 0, len(parsed))
	valid := 0
	for _, input := range env.Strings {
		res, ok := parsed[input]
		if !ok {
			continue
		}
		delete(parsed, input)

		row := model.NormalizedNumber{
			JobID:     env.ID,
			ClientID:  env.ClientID,
			Input:     input,
			Type:      model.TypeNotParsed.String(),
			CreatedAt: now,
		}
		if res != nil {
			valid++
			row.Valid = true
			row.Type = res.Type
			row.E164 = res.E164
			row.International = res.International
			row.National = res.National
			row.CountryCode = res.CountryCode
			row.RegionCode = res.RegionCode
			row.NationalNumber = res.NationalNumber
			metrics.NumbersNormalized.WithLabelValues("valid").Inc()
		} else {
			metrics.NumbersNormalized.WithLabelValues("invalid").Inc()
		}
		rows = append(rows, row)
	}

	metrics.JobsTotal.WithLabelValues("done").Inc()
	return jobResult{
		update: repository.JobUpdate{ID: env.ID, Status: model.JobDone, Valid: valid},
		rows:   rows,
	}
}

// runBatchWriter does size/time-based flushes: result rows to ClickHouse
// first, then job outcomes to MySQL, so a finished job always has its rows.
// Offsets are committed only after both writes succeed; a failed flush keeps
// everything buffered for the next one and the messages stay uncommitted.
func (w *Normalizer) runBatchWriter(in <-chan jobResult) {
	tick := time.NewTicker(w.BatchWait)
	defer tick.Stop()

	var (
		rows    []model.NormalizedNumber
		updates []repository.JobUpdate
		msgs    []kafka.Message
	)

	flush := func() {
		if len(updates) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := w.Numbers.InsertBatch(ctx, rows); err != nil {
			w.Log.Error("clickhouse insert failed", zap.Int("rows", len(rows)), zap.Error(err))
			return
		}
		rows = rows[:0]

		if err := w.Jobs.BatchFinish(ctx, nil, updates); err != nil {
			w.Log.Error("job finish failed", zap.Int("jobs", len(updates)), zap.Error(err))
			return
		}
		w.Log.Info("flushed", zap.Int("jobs", len(updates)))
		updates = updates[:0]

		for _, m := range msgs {
			if err := w.Consumer.Commit(ctx, m); err != nil {
				w.Log.Warn("kafka commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
			}
		}
		msgs = msgs[:0]
	}

	for {
		select {
		case r, ok := <-in:
			if !ok {
				flush()
				return
			}
			rows = append(rows, r.rows...)
			updates = append(updates, r.update)
			msgs = append(msgs, r.msg)
			if len(rows) >= w.BatchSize {
				flush()
			}
		case <-tick.C:
			flush()
		}
	}
}
