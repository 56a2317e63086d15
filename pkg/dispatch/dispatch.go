// Package dispatch fans reconciled items out to the remote catalog API on
// a bounded worker pool. Submissions are independent: sequence numbers are
// assigned before dispatch, outcomes are aggregated explicitly, and one
// item's failure never aborts its siblings.
package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quickmart/shelfsync/pkg/catalog"
	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
	"github.com/quickmart/shelfsync/pkg/logging"
)

// DefaultWorkers is the default submission pool size.
const DefaultWorkers = 10

// Submitter submits one catalog item and reports the API status code.
type Submitter interface {
	SendProduct(ctx context.Context, item *catalog.Item) (int, error)
}

// Outcome records one item's submission result.
type Outcome struct {
	Seq        int
	SKU        string
	StatusCode int
	Err        error
}

// OK reports whether the submission succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Report aggregates the outcomes of one dispatch run, ordered by sequence
// number.
type Report struct {
	Outcomes []Outcome
}

// Succeeded counts successful submissions.
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed counts failed submissions.
func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Dispatcher submits items in parallel on a bounded worker pool.
type Dispatcher struct {
	submitter Submitter
	workers   int
}

// New creates a dispatcher; workers <= 0 selects DefaultWorkers.
func New(submitter Submitter, workers int) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Dispatcher{submitter: submitter, workers: workers}
}

type job struct {
	seq  int
	item *catalog.Item
}

// Dispatch enumerates items 1-based and submits each independently. The
// returned report holds one outcome per item in sequence order; logged
// order reflects completion order, which carries no guarantee.
func (d *Dispatcher) Dispatch(ctx context.Context, items []*catalog.Item) *Report {
	log := logging.FromContext(ctx)

	jobs := make(chan job)
	results := make(chan Outcome)
	var wg sync.WaitGroup

	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- d.submit(ctx, j, log)
			}
		}()
	}

	go func() {
		for seq, item := range items {
			jobs <- job{seq: seq + 1, item: item}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	report := &Report{Outcomes: make([]Outcome, 0, len(items))}
	for o := range results {
		report.Outcomes = append(report.Outcomes, o)
	}
	sort.Slice(report.Outcomes, func(i, j int) bool {
		return report.Outcomes[i].Seq < report.Outcomes[j].Seq
	})

	log.Info().
		Int("succeeded", report.Succeeded()).
		Int("failed", report.Failed()).
		Msg("Dispatch finished")
	return report
}

// submit sends one item, converting any panic into that item's failure so
// a broken submission never terminates sibling workers.
func (d *Dispatcher) submit(ctx context.Context, j job, log *zerolog.Logger) (out Outcome) {
	out = Outcome{Seq: j.seq, SKU: j.item.SKU}
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("submission panicked: %v", r)
			log.Error().Err(out.Err).Int("seq", j.seq).Str("sku", j.item.SKU).Msg("Product has not been ingested")
		}
	}()

	status, err := d.submitter.SendProduct(ctx, j.item)
	out.StatusCode = status
	if err != nil {
		out.Err = err
		log.Error().Err(err).Int("seq", j.seq).Str("sku", j.item.SKU).
			Interface("item", j.item).Msg("Product has not been ingested")
		return out
	}
	if status != http.StatusOK {
		out.Err = pkgerrors.NewSubmissionError(j.item.SKU, status)
		log.Error().Err(out.Err).Int("seq", j.seq).Str("sku", j.item.SKU).
			Interface("item", j.item).Msg("Product has not been ingested")
		return out
	}

	log.Info().Int("seq", j.seq).Str("sku", j.item.SKU).Msg("Ingested product")
	return out
}
