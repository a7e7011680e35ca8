// Package batch fetches the menus of many halls over many days.
//
// Halls are fetched in parallel, the days of one hall run one after another in
// date order since a source and its cache are not safe for concurrent use.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"menufetcher/internal/components/assert"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/menu"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("menufetcher.internal.batch")
var meter = otel.Meter("menufetcher.internal.batch")
var fetchCounter, _ = meter.Int64Counter("menu_fetches")

const (
	report_batch_failed  = "batch.failed"
	report_batch_fetched = "batch.fetched"
)

const (
	outcomeOk           = "ok"
	outcomeNotAvailable = "not_available"
	outcomeMalformed    = "malformed"
)

type Options struct {
	// Parallelism bounds how many halls are fetched at once, 0 means GOMAXPROCS.
	Parallelism int
}

// Failure is a hall that had no menu on a day.
type Failure struct {
	HallID   string
	HallName string
	Err      error
}

type Day struct {
	Date time.Time
	// Menus holds the menu of every hall that did not fail, in source order.
	Menus    []menu.Menu
	Failures []Failure
}

type Result struct {
	RunID string
	Days  []Day
}

func (r Result) Failures() int {
	n := 0
	for _, d := range r.Days {
		n += len(d.Failures)
	}
	return n
}

type cell struct {
	menu menu.Menu
	err  error
}

// Run fetches every source on every day. Menus that are not available or are
// malformed are reported and recorded as failures, any other error (including
// ctx ending) stops the run and is returned.
func Run(ctx context.Context, sources []menu.Source, days []time.Time, tel telemetry.API, opts Options) (Result, error) {
	assert.NotNil(tel)

	runId := uuid.New().String()
	tel = telemetry.NewScopedAPI(fmt.Sprintf("batch(%s)", runId[:8]), tel)

	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runId),
		attribute.Int("halls", len(sources)),
		attribute.Int("days", len(days)),
	)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	// cells[hall][day], every goroutine writes only its own row
	cells := make([][]cell, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, src := range sources {
		cells[i] = make([]cell, len(days))
		g.Go(func() error {
			return fetchHall(gctx, src, days, cells[i], tel)
		})
	}
	err := g.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch aborted")
		return Result{RunID: runId}, err
	}

	result := Result{RunID: runId, Days: make([]Day, len(days))}
	for d, day := range days {
		result.Days[d] = Day{Date: day, Menus: []menu.Menu{}}
		for i, src := range sources {
			c := cells[i][d]
			if c.err != nil {
				result.Days[d].Failures = append(result.Days[d].Failures, Failure{
					HallID:   src.ID(),
					HallName: src.Name(),
					Err:      c.err,
				})
				continue
			}
			result.Days[d].Menus = append(result.Days[d].Menus, c.menu)
		}
	}
	tel.ReportCount(report_batch_failed, int64(result.Failures()))
	return result, nil
}

func fetchHall(ctx context.Context, src menu.Source, days []time.Time, row []cell, tel telemetry.API) error {
	for d, day := range days {
		if err := ctx.Err(); err != nil {
			return err
		}

		spanCtx, span := tracer.Start(ctx, "GetMenu")
		span.SetAttributes(
			attribute.String("hall", src.ID()),
			attribute.String("date", day.Format(time.DateOnly)),
		)
		m, err := src.GetMenu(spanCtx, day)
		span.End()
		// a request cut short by cancellation is not the hall's failure
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}

		outcome := outcomeOk
		switch {
		case err == nil:
			row[d] = cell{menu: m}
			tel.ReportDebug(report_batch_fetched, src.ID(), day.Format(time.DateOnly), len(m.Meals))
		case errors.Is(err, menu.ErrNotAvailable):
			outcome = outcomeNotAvailable
		case errors.Is(err, menu.ErrMalformed):
			outcome = outcomeMalformed
		default:
			return fmt.Errorf("%s on %s: %w", src.ID(), day.Format(time.DateOnly), err)
		}
		if err != nil {
			row[d] = cell{err: err}
			tel.ReportWarning(report_batch_failed, fmt.Errorf("%s on %s: %w", src.ID(), day.Format(time.DateOnly), err))
		}
		fetchCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("hall", src.ID()),
			attribute.String("outcome", outcome),
		))
	}
	return nil
}
