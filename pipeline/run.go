// Package pipeline schedules full clustering runs over LHC Olympics event
// tables. The input is split into fixed-size chunks, chunks are processed
// concurrently into per-chunk partial files, and the partials are merged
// into background and signal outputs keyed by the event truth labels.
//
// A chunk either completes in full or contributes nothing: failures are
// recorded in the Report rather than retried, and the final reconciliation
// turns any shortfall into ErrIncompleteRun. The temporary directory is
// recreated at the start of every run and left in place afterwards, so a
// failed run can be inspected.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/imdinu/clustering-lhco/jetimage"
	"github.com/imdinu/clustering-lhco/jetminer"
	"github.com/imdinu/clustering-lhco/lhcodata"
)

// KindCounts are the merged row counts of one output kind.
type KindCounts struct {
	Background int
	Signal     int
}

// A ChunkError records one failed chunk.
type ChunkError struct {
	Chunk int
	Err   error
}

// A Report summarises a run. It is returned populated even when Run fails
// after scheduling began, so callers can see how far the run got.
type Report struct {
	// RunID stamps every partial and merged file of this run.
	RunID uuid.UUID

	// Events is the number of events scheduled (Chunks times ChunkSize);
	// Dropped counts the trailing events that did not fill a chunk.
	Events  int
	Dropped int

	// Chunks and ChunkSize describe the schedule.
	Chunks    int
	ChunkSize int

	// Merged holds the per-kind partition row counts after merging.
	Merged map[string]KindCounts

	// Failed lists the chunks that produced no output, in index order.
	Failed []ChunkError
}

// Run executes a full clustering run: open the input and its truth
// source, split the events into chunks, process them on a bounded worker
// pool, merge the per-chunk partials into the final partition files, and
// reconcile the merged counts against the schedule.
//
// Chunk failures do not abort the run; they surface through the Report
// and through reconciliation, which returns ErrIncompleteRun when an
// output kind covers fewer events than were scheduled. Cancelling ctx
// stops scheduling and fails the run with ErrRunCancelled before any
// merge happens.
func Run(ctx context.Context, p Params) (*Report, error) {
	if p.Progress == nil {
		p.Progress = NopProgress{}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	extractor, err := jetminer.NewExtractor(p.Extract)
	if err != nil {
		return nil, err
	}
	var raster *jetimage.Rasterizer
	if p.Images {
		if raster, err = jetimage.NewRasterizer(p.Image); err != nil {
			return nil, err
		}
	}

	table, err := lhcodata.OpenEventTable(p.InputPath)
	if err != nil {
		return nil, err
	}
	defer table.Close()

	var key *lhcodata.Masterkey
	if p.MasterkeyPath != "" {
		if table.HasTruth() {
			return nil, ErrMasterkeyConflict
		}
		if key, err = lhcodata.LoadMasterkey(p.MasterkeyPath); err != nil {
			return nil, err
		}
	}
	if key == nil && !table.HasTruth() && !p.UnlabeledAsBackground {
		return nil, ErrUnlabeled
	}

	nEvents := table.NumRows()
	if p.MaxEvents > 0 && p.MaxEvents < nEvents {
		nEvents = p.MaxEvents
	}
	workers := p.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	chunkSize := p.ChunkSize
	if chunkSize == 0 {
		chunkSize = nEvents / workers
	}
	if chunkSize < 1 {
		chunkSize = 1
	}
	ranges := Chunks(nEvents, chunkSize)

	if err := os.RemoveAll(p.TmpDir); err != nil {
		return nil, fmt.Errorf("pipeline: reset tmp dir: %w", err)
	}
	if err := os.MkdirAll(p.TmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: create tmp dir: %w", err)
	}

	cfg := &runConfig{
		params:    p,
		runID:     uuid.New(),
		table:     table,
		key:       key,
		extractor: extractor,
		raster:    raster,
		sink:      p.Progress,
		channels:  imageChannels(p),
	}
	report := &Report{
		RunID:     cfg.runID,
		Events:    len(ranges) * chunkSize,
		Dropped:   nEvents - len(ranges)*chunkSize,
		Chunks:    len(ranges),
		ChunkSize: chunkSize,
		Merged:    make(map[string]KindCounts),
	}
	p.Progress.RunStarted(report.Chunks, report.ChunkSize)

	runPool(ctx, cfg, report, ranges, workers)

	if cerr := ctx.Err(); cerr != nil {
		return report, fmt.Errorf("%w: %v", ErrRunCancelled, cerr)
	}
	if err := mergeOutputs(cfg, report); err != nil {
		return report, err
	}
	return report, reconcile(cfg, report)
}

// runPool processes the chunk ranges on a bounded pool of workers,
// recording every completion in arrival order.
func runPool(ctx context.Context, cfg *runConfig, report *Report, ranges []Range, workers int) {
	if len(ranges) == 0 {
		return
	}
	if workers > len(ranges) {
		workers = len(ranges)
	}

	type completion struct {
		chunk int
		err   error
	}
	tasks := make(chan chunkTask)
	results := make(chan completion)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for task := range tasks {
				results <- completion{task.index, processChunk(ctx, cfg, task)}
			}
		}()
	}
	go func() {
		defer close(tasks)
		for i, r := range ranges {
			select {
			case tasks <- chunkTask{index: i, Range: r}:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.err != nil {
			report.Failed = append(report.Failed, ChunkError{Chunk: res.chunk, Err: res.err})
		}
		cfg.sink.ChunkDone(res.chunk, res.err)
	}
	sort.Slice(report.Failed, func(i, j int) bool {
		return report.Failed[i].Chunk < report.Failed[j].Chunk
	})
}

// reconcile checks the merged row counts against the schedule. Every
// enabled kind must cover exactly the scheduled events; anything less
// means chunks failed or partials went missing.
func reconcile(cfg *runConfig, report *Report) error {
	for _, kind := range enabledKinds(cfg.params) {
		counts := report.Merged[kind]
		if got := counts.Background + counts.Signal; got != report.Events {
			return fmt.Errorf("%w: %s holds %d of %d events",
				ErrIncompleteRun, kind, got, report.Events)
		}
	}
	return nil
}
