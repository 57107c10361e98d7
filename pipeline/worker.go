package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/imdinu/clustering-lhco/jetimage"
	"github.com/imdinu/clustering-lhco/jetminer"
	"github.com/imdinu/clustering-lhco/lhcodata"
)

// Output kind names, shared by partial and merged file names.
const (
	KindScalars = "scalars"
	KindImages  = "images"
)

// partitions maps the signal flag to the partition tag.
var partitions = [2]string{"bkg", "sig"}

// runConfig is the state one run shares across its workers. Everything in
// it is immutable or safe for concurrent use once scheduling starts.
type runConfig struct {
	params    Params
	runID     uuid.UUID
	table     *lhcodata.EventTable
	key       *lhcodata.Masterkey
	extractor *jetminer.Extractor
	raster    *jetimage.Rasterizer
	sink      ProgressSink
	channels  int
}

// A chunkTask is one scheduled slice of the input.
type chunkTask struct {
	index int
	Range
}

// chunkFiles opens the partial writers of one chunk lazily: a writer comes
// into being on the first event of its partition, so an empty partition
// leaves no file behind.
type chunkFiles struct {
	cfg     *runConfig
	index   int
	scalars [2]*lhcodata.FeatureTableWriter
	images  [2]*lhcodata.ImageSetWriter
	paths   []string
}

func (c *chunkFiles) path(kind string, sig bool) string {
	name := fmt.Sprintf("%s_%s%04d.zst", kind, partitions[b2i(sig)], c.index)
	return filepath.Join(c.cfg.params.TmpDir, name)
}

func (c *chunkFiles) scalarsFor(sig bool) (*lhcodata.FeatureTableWriter, error) {
	if w := c.scalars[b2i(sig)]; w != nil {
		return w, nil
	}
	path := c.path(KindScalars, sig)
	w, err := lhcodata.CreateFeatureTable(path, c.cfg.runID, c.cfg.extractor.Columns())
	if err != nil {
		return nil, err
	}
	c.scalars[b2i(sig)] = w
	c.paths = append(c.paths, path)
	return w, nil
}

func (c *chunkFiles) imagesFor(sig bool) (*lhcodata.ImageSetWriter, error) {
	if w := c.images[b2i(sig)]; w != nil {
		return w, nil
	}
	path := c.path(KindImages, sig)
	w, err := lhcodata.CreateImageSet(path, c.cfg.runID,
		c.cfg.params.Image.NPix, c.cfg.channels, c.cfg.params.Encoding)
	if err != nil {
		return nil, err
	}
	c.images[b2i(sig)] = w
	c.paths = append(c.paths, path)
	return w, nil
}

// close seals every open writer, patching their row counts.
func (c *chunkFiles) close() error {
	var first error
	for _, w := range c.scalars {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	for _, w := range c.images {
		if w == nil {
			continue
		}
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// discard removes every file the chunk created. A failed chunk must leave
// no output at all, or the merge would splice part of an event range into
// the results.
func (c *chunkFiles) discard() {
	c.close()
	for _, p := range c.paths {
		os.Remove(p)
	}
}

// processChunk runs one chunk start to finish: read the rows, resolve the
// truth partition of every event, extract features and images, and seal
// the chunk's partial files. Any failure discards the partials.
func processChunk(ctx context.Context, cfg *runConfig, task chunkTask) (err error) {
	if cfg.params.ChunkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.params.ChunkTimeout)
		defer cancel()
	}

	if cfg.key != nil && task.Stop > cfg.key.Len() {
		return fmt.Errorf("%w: masterkey labels %d events, chunk %d needs [%d, %d)",
			ErrTruthIntegrity, cfg.key.Len(), task.index, task.Start, task.Stop)
	}

	rows, err := cfg.table.ReadRows(task.Start, task.Stop)
	if err != nil {
		return fmt.Errorf("chunk %d: %w", task.index, err)
	}

	files := &chunkFiles{cfg: cfg, index: task.index}
	defer func() {
		if err != nil {
			files.discard()
		}
	}()

	for i, row := range rows {
		select {
		case <-ctx.Done():
			return fmt.Errorf("chunk %d: %w", task.index, ctx.Err())
		default:
		}

		sig, raw, err := resolveTruth(cfg, task.Start+i, row)
		if err != nil {
			return err
		}
		if err := processEvent(cfg, files, sig, raw); err != nil {
			return fmt.Errorf("chunk %d event %d: %w", task.index, task.Start+i, err)
		}
		cfg.sink.EventDone(task.index)
	}

	if cerr := files.close(); cerr != nil {
		err = fmt.Errorf("chunk %d: %w", task.index, cerr)
		return err
	}
	return nil
}

// resolveTruth labels one event and returns its particle payload with any
// embedded label stripped. Embedded labels outrank the masterkey; with no
// source at all every event is background.
func resolveTruth(cfg *runConfig, event int, row []float64) (bool, []float64, error) {
	switch {
	case cfg.table.HasTruth():
		label := row[len(row)-1]
		if label != 0 && label != 1 {
			return false, nil, fmt.Errorf("%w: event %d label is %v", ErrTruthIntegrity, event, label)
		}
		return label == 1, row[:len(row)-1], nil
	case cfg.key != nil:
		return cfg.key.Signal(event), row, nil
	default:
		return false, row, nil
	}
}

// processEvent clusters one event and appends it to its partition writers.
func processEvent(cfg *runConfig, files *chunkFiles, sig bool, raw []float64) error {
	particles, err := jetminer.Particles(raw)
	if err != nil {
		return err
	}
	slots, err := cfg.extractor.ClusterSlots(particles)
	if err != nil {
		return err
	}

	if cfg.params.Scalars {
		vals, err := cfg.extractor.Row(slots)
		if err != nil {
			return err
		}
		w, err := files.scalarsFor(sig)
		if err != nil {
			return err
		}
		if err := w.WriteRow(vals); err != nil {
			return err
		}
	}
	if cfg.params.Images {
		grids, err := cfg.raster.EventImages(slots)
		if err != nil {
			return err
		}
		w, err := files.imagesFor(sig)
		if err != nil {
			return err
		}
		if err := w.WriteImage(grids); err != nil {
			return err
		}
	}
	return nil
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
