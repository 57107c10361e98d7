package pipeline

import (
	"time"

	"github.com/imdinu/clustering-lhco/jetimage"
	"github.com/imdinu/clustering-lhco/jetminer"
	"github.com/imdinu/clustering-lhco/lhcodata"
)

// Params configure one full run: where to read events, how to cluster and
// featurise them, which outputs to produce, and how the work is spread
// over workers.
//
// The scheduling zero values defer to the run: Workers 0 uses one worker
// per CPU, ChunkSize 0 divides the events evenly over the workers, and
// MaxEvents 0 processes the whole table.
type Params struct {
	// InputPath names the event table to process.
	InputPath string

	// MasterkeyPath optionally names an external truth key. It is
	// rejected when the input table embeds its own labels.
	MasterkeyPath string

	// TmpDir holds the per-chunk partial files. It is deleted and
	// recreated at the start of every run and left in place afterwards.
	TmpDir string

	// OutDir and OutPrefix place and name the merged outputs,
	// "<prefix>_<kind>_<partition>.zst".
	OutDir    string
	OutPrefix string

	// Workers caps the chunks processed concurrently.
	Workers int

	// ChunkSize is the number of events per chunk. Trailing events that
	// do not fill a chunk are dropped.
	ChunkSize int

	// MaxEvents caps the events read from the input.
	MaxEvents int

	// Scalars and Images select the output kinds. At least one must be
	// enabled.
	Scalars bool
	Images  bool

	// Extract configures clustering and the feature row.
	Extract jetminer.Options

	// Image configures the rasterizer. Only consulted when Images is set.
	Image jetimage.Options

	// Encoding selects the stored pixel width of image outputs.
	Encoding lhcodata.ImageEncoding

	// UnlabeledAsBackground routes every event to the background
	// partition when neither embedded labels nor a masterkey exist. When
	// false such inputs are rejected.
	UnlabeledAsBackground bool

	// ChunkTimeout bounds the processing time of a single chunk. 0 means
	// no limit.
	ChunkTimeout time.Duration

	// Progress receives run notifications. nil means quiet.
	Progress ProgressSink
}

// DefaultParams returns the conventional dijet run: scalar features only,
// default clustering and image settings, merged outputs named "results_*"
// in the current directory.
func DefaultParams() Params {
	return Params{
		TmpDir:                "tmp",
		OutDir:                ".",
		OutPrefix:             "results",
		Scalars:               true,
		Extract:               jetminer.DefaultOptions(),
		Image:                 jetimage.DefaultOptions(),
		Encoding:              lhcodata.EncFloat32,
		UnlabeledAsBackground: true,
	}
}

// Validate reports the first configuration problem.
func (p Params) Validate() error {
	if p.InputPath == "" {
		return ErrNoInput
	}
	if !p.Scalars && !p.Images {
		return ErrNoOutputs
	}
	if p.Workers < 0 {
		return ErrBadWorkerCount
	}
	if p.ChunkSize < 0 {
		return ErrBadChunkSize
	}
	if p.MaxEvents < 0 {
		return ErrBadMaxEvents
	}
	if err := p.Extract.Validate(); err != nil {
		return err
	}
	if p.Images {
		if err := p.Image.Validate(); err != nil {
			return err
		}
		if !p.Encoding.Valid() {
			return lhcodata.ErrBadEncoding
		}
	}
	return nil
}

// A Range is one half-open [Start, Stop) span of event indices.
type Range struct {
	Start, Stop int
}

// Chunks splits n events into consecutive chunks of c events each. Only
// full chunks are scheduled; the n%c trailing events are dropped.
func Chunks(n, c int) []Range {
	if c < 1 || n < c {
		return nil
	}
	ranges := make([]Range, 0, n/c)
	for start := 0; start+c <= n; start += c {
		ranges = append(ranges, Range{Start: start, Stop: start + c})
	}
	return ranges
}
