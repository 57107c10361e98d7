// Command lhco runs the LHC Olympics feature-extraction pipeline over a
// binary event table, producing merged background and signal outputs.
//
// Usage:
//
//	lhco [flags] <events file>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/imdinu/clustering-lhco/jetimage"
	"github.com/imdinu/clustering-lhco/lhcodata"
	"github.com/imdinu/clustering-lhco/pipeline"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "lhco:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	p := pipeline.DefaultParams()

	fs := flag.NewFlagSet("lhco", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: lhco [flags] <events file>")
		fs.PrintDefaults()
	}
	radius := fs.Float64("R", p.Extract.Clustering.R, "primary clustering radius")
	njets := fs.Int("njets", p.Extract.NJets, "jet slots per event")
	workers := fs.Int("j", 0, "concurrent workers (0 = all CPUs)")
	maxEvents := fs.Int("max-events", 0, "cap on events read (0 = all)")
	chunkSize := fs.Int("chunk-size", 0, "events per chunk (0 = derive from workers)")
	tmpDir := fs.String("tmp-dir", p.TmpDir, "directory for per-chunk partial files")
	outDir := fs.String("out-dir", p.OutDir, "directory for merged outputs")
	outPrefix := fs.String("out-prefix", p.OutPrefix, "merged output name prefix")
	masterkey := fs.String("masterkey", "", "external truth key path")
	images := fs.Bool("images", false, "write jet images as well")
	noScalars := fs.Bool("no-scalars", false, "skip the scalar feature table")
	imgConfig := fs.String("image-config", "", "JSON rasterizer options path")
	half := fs.Bool("half", false, "store image pixels in half precision")
	quiet := fs.Bool("quiet", false, "suppress progress output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("exactly one events file expected, got %d", fs.NArg())
	}

	p.InputPath = fs.Arg(0)
	p.MasterkeyPath = *masterkey
	p.TmpDir = *tmpDir
	p.OutDir = *outDir
	p.OutPrefix = *outPrefix
	p.Workers = *workers
	p.ChunkSize = *chunkSize
	p.MaxEvents = *maxEvents
	p.Scalars = !*noScalars
	p.Images = *images
	p.Extract.Clustering.R = *radius
	p.Extract.NJets = *njets
	if *imgConfig != "" {
		opts, err := jetimage.LoadOptions(*imgConfig)
		if err != nil {
			return err
		}
		p.Image = opts
	}
	if *half {
		p.Encoding = lhcodata.EncFloat16
	}
	if !*quiet {
		p.Progress = newConsoleProgress(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := pipeline.Run(ctx, p)
	if report != nil && !*quiet {
		printReport(os.Stderr, report)
	}
	return err
}

// printReport writes the run summary reported by the pipeline.
func printReport(w io.Writer, r *pipeline.Report) {
	fmt.Fprintf(w, "run %s: %d events in %d chunks of %d", r.RunID, r.Events, r.Chunks, r.ChunkSize)
	if r.Dropped > 0 {
		fmt.Fprintf(w, " (%d trailing events dropped)", r.Dropped)
	}
	fmt.Fprintln(w)
	for _, kind := range []string{pipeline.KindScalars, pipeline.KindImages} {
		counts, ok := r.Merged[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %s: %d background, %d signal\n", kind, counts.Background, counts.Signal)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "  chunk %d failed: %v\n", f.Chunk, f.Err)
	}
}

// consoleProgress keeps a single self-overwriting status line on w.
// Workers report concurrently, so every update locks.
type consoleProgress struct {
	w      io.Writer
	mu     sync.Mutex
	total  int
	chunks int
	events int
}

func newConsoleProgress(w io.Writer) *consoleProgress {
	return &consoleProgress{w: w}
}

func (c *consoleProgress) RunStarted(chunks, chunkSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = chunks
	fmt.Fprintf(c.w, "scheduled %d chunks of %d events\n", chunks, chunkSize)
}

func (c *consoleProgress) EventDone(int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events++
	if c.events%64 == 0 {
		c.redraw()
	}
}

func (c *consoleProgress) ChunkDone(chunk int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		fmt.Fprintf(c.w, "\nchunk %d failed: %v\n", chunk, err)
	}
	c.chunks++
	c.redraw()
	if c.chunks == c.total {
		fmt.Fprintln(c.w)
	}
}

func (c *consoleProgress) redraw() {
	fmt.Fprintf(c.w, "\r%d/%d chunks, %d events", c.chunks, c.total, c.events)
}
