package query

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"slotwise/internal/dispatch"
	"slotwise/internal/dispcache"
	"slotwise/internal/trace"
)

// Status is the progress state of one query.
type Status uint8

const (
	StatusQueued Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Event reports progress of a batch. Label identifies the query as shown to
// the user; it is unique within a batch.
type Event struct {
	Label  string
	Status Status
	Detail string
}

// Options configures Run.
type Options struct {
	Jobs   int              // <= 0 means GOMAXPROCS
	Cache  *dispcache.Cache // nil resolves without memoizing
	Events chan<- Event     // optional; never closed by Run
}

// Outcome is the answer to one query.
type Outcome struct {
	Query  Query
	Result dispcache.Result
	Dur    time.Duration
}

// Passed reports whether the answer satisfies the expectation.
func (o Outcome) Passed() bool {
	if o.Result.Err != nil && o.Query.Expect != ExpectError {
		return false
	}
	return o.Query.Matches(o.Result)
}

// Status classifies the outcome for progress reporting.
func (o Outcome) Status() Status {
	switch {
	case o.Result.Err != nil && o.Query.Expect != ExpectError:
		return StatusError
	case o.Passed():
		return StatusPassed
	}
	return StatusFailed
}

// Label returns the name shown for q in progress output.
func Label(q Query) string {
	return q.Subject.File + ": " + q.Name
}

// Run resolves qs in parallel. Outcomes come back in input order. Run stops
// early only on context cancellation; resolver errors are part of the
// outcomes.
func Run(ctx context.Context, qs []Query, opts Options) ([]Outcome, error) {
	tracer := trace.FromContext(ctx)
	batch := trace.Begin(tracer, trace.ScopePhase, "queries", trace.ParentID(ctx))
	batch.WithExtra("count", strconv.Itoa(len(qs)))
	defer batch.End("")

	outcomes := make([]Outcome, len(qs))
	if len(qs) == 0 {
		return outcomes, nil
	}
	emit(ctx, opts.Events, qs, StatusQueued)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(qs)))

	for i := range qs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			q := qs[i]
			send(gctx, opts.Events, Event{Label: Label(q), Status: StatusRunning})

			span := trace.Begin(tracer, trace.ScopeQuery, "query:"+q.Name, batch.ID())
			start := time.Now()
			res := opts.Cache.Resolve(q.Op, q.Method, q.Type)
			out := Outcome{Query: q, Result: res, Dur: time.Since(start)}
			span.WithExtra("op", q.Op.String()).WithExtra("outcome", res.Outcome()).End(out.Status().String())

			// index i is owned by this goroutine
			outcomes[i] = out
			send(gctx, opts.Events, Event{Label: Label(q), Status: out.Status(), Detail: res.Outcome()})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, fmt.Errorf("query batch interrupted: %w", err)
	}
	return outcomes, nil
}

func emit(ctx context.Context, ch chan<- Event, qs []Query, st Status) {
	for _, q := range qs {
		send(ctx, ch, Event{Label: Label(q), Status: st})
	}
}

func send(ctx context.Context, ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}

// IsMalformed reports whether the outcome failed on a corrupt hierarchy.
func (o Outcome) IsMalformed() bool {
	return errors.Is(o.Result.Err, dispatch.ErrMalformedType)
}
