package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-dashboard/internal/form"
	"github.com/noah-isme/sma-dashboard/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
	"github.com/noah-isme/sma-dashboard/pkg/jobs"
)

// Creator creates one record remotely.
type Creator[T any] interface {
	Create(ctx context.Context, payload T) (T, error)
}

// Options tunes an import run.
type Options struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// RowResult is the outcome of one data row. Row is the 1-based spreadsheet
// row, so the first data row is 2.
type RowResult struct {
	Row int
	ID  string
	Err error
}

// Report summarizes an import.
type Report struct {
	Rows    []RowResult
	Created int
	Failed  int
}

// Failures returns the rows that were not created.
func (r Report) Failures() []RowResult {
	var out []RowResult
	for _, row := range r.Rows {
		if row.Err != nil {
			out = append(out, row)
		}
	}
	return out
}

type pending[T any] struct {
	row     int
	payload T
}

// Run validates every row, then creates the valid ones concurrently. Server
// and network failures are retried; validation and auth failures are not.
// A cancelled ctx marks unfinished rows with the context error.
func Run[T any](ctx context.Context, creator Creator[T], res models.Resource, table Table, opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	keys := Columns(res, table.Header)
	if missing := missingColumns(res, keys); len(missing) > 0 {
		return Report{}, fmt.Errorf("import %s: missing columns %s", res.Name, strings.Join(missing, ", "))
	}
	results := make(map[int]*RowResult)
	var queued []pending[T]

	for i, row := range table.Rows {
		if blank(row) {
			continue
		}
		number := i + 2
		result := &RowResult{Row: number}
		results[number] = result

		payload, err := decodeRow[T](res, keys, row)
		if err != nil {
			result.Err = &appErrors.MutationError{Kind: appErrors.KindValidation, Message: err.Error(), Err: err}
			continue
		}
		queued = append(queued, pending[T]{row: number, payload: payload})
	}

	if len(queued) > 0 {
		create(ctx, creator, res, queued, results, opts, logger)
	}

	report := Report{Rows: make([]RowResult, 0, len(results))}
	for _, r := range results {
		report.Rows = append(report.Rows, *r)
		if r.Err != nil {
			report.Failed++
		} else {
			report.Created++
		}
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Row < report.Rows[j].Row })

	logger.Info("import finished",
		zap.String("resource", res.Name), zap.Int("created", report.Created), zap.Int("failed", report.Failed))
	return report, nil
}

func missingColumns(res models.Resource, keys []string) []string {
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}
	var missing []string
	for _, f := range res.Required {
		if !present[f.Key] {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

func decodeRow[T any](res models.Resource, keys, row []string) (T, error) {
	var zero T
	f, err := RowForm(res, keys, row)
	if err != nil {
		return zero, err
	}
	if err := f.Validate(); err != nil {
		return zero, err
	}
	return form.Decode[T](f)
}

func create[T any](ctx context.Context, creator Creator[T], res models.Resource, queued []pending[T], results map[int]*RowResult, opts Options, logger *zap.Logger) {
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		remaining = make(map[int]struct{}, len(queued))
		ids       = make(map[int]string)
	)
	for _, p := range queued {
		remaining[p.row] = struct{}{}
	}

	settle := func(row int, err error) {
		mu.Lock()
		defer mu.Unlock()
		if _, open := remaining[row]; !open {
			return
		}
		delete(remaining, row)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			results[row].Err = err
		case err != nil:
			results[row].Err = appErrors.Classify(err)
		default:
			results[row].ID = ids[row]
		}
		wg.Done()
	}

	queue := jobs.NewQueue("import-"+res.Name, func(ctx context.Context, job jobs.Job) error {
		p := job.Payload.(pending[T])
		record, err := creator.Create(ctx, p.payload)
		if err != nil {
			return err
		}
		mu.Lock()
		ids[p.row] = recordID(record)
		mu.Unlock()
		return nil
	}, jobs.QueueConfig{
		Workers:    opts.Workers,
		BufferSize: len(queued),
		MaxRetries: opts.Retries,
		RetryDelay: opts.RetryDelay,
		Retryable:  retryable,
		OnSettled: func(job jobs.Job, err error) {
			settle(job.Payload.(pending[T]).row, err)
		},
		Logger: logger,
	})

	queue.Start(ctx)
	defer queue.Stop()

	wg.Add(len(queued))
	for _, p := range queued {
		if err := queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: res.Name, Payload: p}); err != nil {
			settle(p.row, err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		mu.Lock()
		rows := make([]int, 0, len(remaining))
		for row := range remaining {
			rows = append(rows, row)
		}
		mu.Unlock()
		for _, row := range rows {
			settle(row, ctx.Err())
		}
		<-done
	}
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return appErrors.Classify(err).Kind == appErrors.KindServer
}

func recordID[T any](record T) string {
	if entity, ok := any(&record).(models.Entity); ok {
		return entity.RecordID()
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return ""
	}
	var probe struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &probe)
	return probe.ID
}
