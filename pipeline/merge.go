package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/imdinu/clustering-lhco/lhcodata"
)

// imageChannels returns the channel count of one event's image stack.
func imageChannels(p Params) int {
	if p.Image.StitchJets {
		return 1
	}
	return p.Extract.NJets
}

// enabledKinds lists the output kinds of the run, scalars first.
func enabledKinds(p Params) []string {
	var kinds []string
	if p.Scalars {
		kinds = append(kinds, KindScalars)
	}
	if p.Images {
		kinds = append(kinds, KindImages)
	}
	return kinds
}

// mergeOutputs concatenates the per-chunk partials of every enabled kind
// into the final partition files and records the counts in the report.
// Partials are taken in file name order, which the zero-padded chunk tag
// makes the chunk order, so merged outputs are deterministic no matter how
// the chunks raced.
func mergeOutputs(cfg *runConfig, report *Report) error {
	if err := os.MkdirAll(cfg.params.OutDir, 0o755); err != nil {
		return fmt.Errorf("pipeline: create out dir: %w", err)
	}
	for _, kind := range enabledKinds(cfg.params) {
		counts, err := mergeKind(cfg, kind)
		if err != nil {
			return err
		}
		report.Merged[kind] = counts
	}
	return nil
}

// mergeKind merges both partitions of one kind. A partition with no
// partial files produces no merged file at all.
func mergeKind(cfg *runConfig, kind string) (KindCounts, error) {
	var counts KindCounts
	for sig := 0; sig < 2; sig++ {
		pattern := filepath.Join(cfg.params.TmpDir, kind+"_"+partitions[sig]+"*")
		files, err := filepath.Glob(pattern)
		if err != nil {
			return counts, fmt.Errorf("pipeline: scan partials: %w", err)
		}
		if len(files) == 0 {
			continue
		}
		sort.Strings(files)

		out := filepath.Join(cfg.params.OutDir,
			fmt.Sprintf("%s_%s_%s.zst", cfg.params.OutPrefix, kind, partitions[sig]))
		var n int
		switch kind {
		case KindScalars:
			n, err = mergeFeatureTables(cfg, files, out)
		case KindImages:
			n, err = mergeImageSets(cfg, files, out)
		}
		if err != nil {
			return counts, err
		}
		if sig == 1 {
			counts.Signal = n
		} else {
			counts.Background = n
		}
	}
	return counts, nil
}

// mergeFeatureTables streams the rows of the partial tables into one
// merged table.
func mergeFeatureTables(cfg *runConfig, files []string, out string) (int, error) {
	w, err := lhcodata.CreateFeatureTable(out, cfg.runID, cfg.extractor.Columns())
	if err != nil {
		return 0, err
	}
	var (
		buf   []float64
		total int
	)
	for _, path := range files {
		if buf, err = appendFeatures(cfg, w, path, buf, &total); err != nil {
			w.Close()
			return 0, err
		}
	}
	return total, w.Close()
}

// appendFeatures copies every row of one partial into the merged writer,
// verifying that the partial belongs to this run and carries the
// extractor's columns.
func appendFeatures(cfg *runConfig, w *lhcodata.FeatureTableWriter, path string, buf []float64, n *int) ([]float64, error) {
	r, err := lhcodata.OpenFeatureTable(path)
	if err != nil {
		return buf, fmt.Errorf("pipeline: open partial %s: %w", filepath.Base(path), err)
	}
	defer r.Close()

	if r.RunID() != cfg.runID {
		return buf, fmt.Errorf("%w: %s", ErrStalePartial, filepath.Base(path))
	}
	if !slices.Equal(r.Columns(), cfg.extractor.Columns()) {
		return buf, fmt.Errorf("%w: %s columns differ", ErrPartialMismatch, filepath.Base(path))
	}
	for {
		buf, err = r.ReadRow(buf)
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return buf, fmt.Errorf("pipeline: read partial %s: %w", filepath.Base(path), err)
		}
		if err := w.WriteRow(buf); err != nil {
			return buf, err
		}
		*n++
	}
}

// mergeImageSets streams the images of the partial sets into one merged
// set.
func mergeImageSets(cfg *runConfig, files []string, out string) (int, error) {
	w, err := lhcodata.CreateImageSet(out, cfg.runID,
		cfg.params.Image.NPix, cfg.channels, cfg.params.Encoding)
	if err != nil {
		return 0, err
	}
	var (
		buf   []float64
		total int
	)
	for _, path := range files {
		if buf, err = appendImages(cfg, w, path, buf, &total); err != nil {
			w.Close()
			return 0, err
		}
	}
	return total, w.Close()
}

// appendImages copies every image of one partial into the merged writer,
// verifying the run stamp and the pixel geometry.
func appendImages(cfg *runConfig, w *lhcodata.ImageSetWriter, path string, buf []float64, n *int) ([]float64, error) {
	r, err := lhcodata.OpenImageSet(path)
	if err != nil {
		return buf, fmt.Errorf("pipeline: open partial %s: %w", filepath.Base(path), err)
	}
	defer r.Close()

	if r.RunID() != cfg.runID {
		return buf, fmt.Errorf("%w: %s", ErrStalePartial, filepath.Base(path))
	}
	if r.NPix() != cfg.params.Image.NPix || r.Channels() != cfg.channels || r.Encoding() != cfg.params.Encoding {
		return buf, fmt.Errorf("%w: %s image shape differs", ErrPartialMismatch, filepath.Base(path))
	}
	for {
		buf, err = r.ReadFlat(buf)
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			return buf, fmt.Errorf("pipeline: read partial %s: %w", filepath.Base(path), err)
		}
		if err := w.WriteFlat(buf); err != nil {
			return buf, err
		}
		*n++
	}
}
