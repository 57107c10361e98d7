package lhcodata

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const (
	featureMagic      = "LHCOTAB1"
	featureVersion    = 1
	featureHeaderSize = 40

	// rowCountOffset locates the u64 row count shared by feature-table and
	// image-set headers, patched on Close.
	rowCountOffset = 28
)

// FeatureTableWriter streams scalar feature rows into a zstd-compressed
// table tagged with the run that produced it.
type FeatureTableWriter struct {
	f    *os.File
	bw   *bufio.Writer
	zw   *zstd.Encoder
	cols int
	rows uint64
	buf  []byte
}

// CreateFeatureTable creates path with the given column catalogue. Rows
// written afterwards must match the catalogue width.
func CreateFeatureTable(path string, runID uuid.UUID, columns []string) (*FeatureTableWriter, error) {
	if len(columns) == 0 {
		return nil, ErrBadHeader
	}
	for _, name := range columns {
		if len(name) > math.MaxUint16 {
			return nil, ErrBadHeader
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("lhcodata: create feature table: %w", err)
	}
	bw := bufio.NewWriterSize(f, 1<<20)

	hdr := make([]byte, featureHeaderSize)
	copy(hdr, featureMagic)
	binary.LittleEndian.PutUint32(hdr[8:12], featureVersion)
	copy(hdr[12:28], runID[:])
	binary.LittleEndian.PutUint32(hdr[36:40], uint32(len(columns)))
	if _, err := bw.Write(hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("lhcodata: write feature header: %w", err)
	}
	var nameLen [2]byte
	for _, name := range columns {
		binary.LittleEndian.PutUint16(nameLen[:], uint16(len(name)))
		bw.Write(nameLen[:])
		if _, err := bw.WriteString(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("lhcodata: write column names: %w", err)
		}
	}

	zw, err := zstd.NewWriter(bw)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("lhcodata: create zstd writer: %w", err)
	}
	return &FeatureTableWriter{
		f:    f,
		bw:   bw,
		zw:   zw,
		cols: len(columns),
		buf:  make([]byte, len(columns)*8),
	}, nil
}

// WriteRow appends one feature row.
func (w *FeatureTableWriter) WriteRow(row []float64) error {
	if len(row) != w.cols {
		return ErrColumnMismatch
	}
	for j, v := range row {
		binary.LittleEndian.PutUint64(w.buf[j*8:], math.Float64bits(v))
	}
	if _, err := w.zw.Write(w.buf); err != nil {
		return fmt.Errorf("lhcodata: write feature row: %w", err)
	}
	w.rows++
	return nil
}

// NumRows reports the rows written so far.
func (w *FeatureTableWriter) NumRows() int { return int(w.rows) }

// Close flushes the compressed payload, records the final row count and
// closes the file.
func (w *FeatureTableWriter) Close() error {
	if err := w.zw.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("lhcodata: close zstd writer: %w", err)
	}
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("lhcodata: flush feature table: %w", err)
	}
	var rows [8]byte
	binary.LittleEndian.PutUint64(rows[:], w.rows)
	if _, err := w.f.WriteAt(rows[:], rowCountOffset); err != nil {
		w.f.Close()
		return fmt.Errorf("lhcodata: patch feature row count: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("lhcodata: close feature table: %w", err)
	}
	return nil
}

// FeatureTableReader reads a feature table sequentially.
type FeatureTableReader struct {
	f       *os.File
	zr      *zstd.Decoder
	runID   uuid.UUID
	columns []string
	rows    int
	read    int
	buf     []byte
}

// OpenFeatureTable opens path and reads its header and column catalogue.
func OpenFeatureTable(path string) (*FeatureTableReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lhcodata: open feature table: %w", err)
	}
	br := bufio.NewReaderSize(f, 1<<20)

	hdr := make([]byte, featureHeaderSize)
	if _, err := io.ReadFull(br, hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("lhcodata: read feature header: %w", err)
	}
	if string(hdr[:8]) != featureMagic {
		f.Close()
		return nil, ErrBadMagic
	}
	if binary.LittleEndian.Uint32(hdr[8:12]) != featureVersion {
		f.Close()
		return nil, ErrBadVersion
	}
	cols := int(binary.LittleEndian.Uint32(hdr[36:40]))
	if cols == 0 {
		f.Close()
		return nil, ErrBadHeader
	}

	r := &FeatureTableReader{
		f:       f,
		columns: make([]string, cols),
		rows:    int(binary.LittleEndian.Uint64(hdr[28:36])),
		buf:     make([]byte, cols*8),
	}
	copy(r.runID[:], hdr[12:28])
	var nameLen [2]byte
	for i := range r.columns {
		if _, err := io.ReadFull(br, nameLen[:]); err != nil {
			f.Close()
			return nil, fmt.Errorf("lhcodata: read column names: %w", err)
		}
		name := make([]byte, binary.LittleEndian.Uint16(nameLen[:]))
		if _, err := io.ReadFull(br, name); err != nil {
			f.Close()
			return nil, fmt.Errorf("lhcodata: read column names: %w", err)
		}
		r.columns[i] = string(name)
	}

	zr, err := zstd.NewReader(br)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("lhcodata: create zstd reader: %w", err)
	}
	r.zr = zr
	return r, nil
}

// RunID returns the identifier of the run that wrote the table.
func (r *FeatureTableReader) RunID() uuid.UUID { return r.runID }

// Columns returns the column catalogue. The slice is shared; treat it as
// read-only.
func (r *FeatureTableReader) Columns() []string { return r.columns }

// NumRows reports the stored row count.
func (r *FeatureTableReader) NumRows() int { return r.rows }

// ReadRow returns the next row, reusing dst when it has the capacity. It
// returns io.EOF once all stored rows are consumed.
func (r *FeatureTableReader) ReadRow(dst []float64) ([]float64, error) {
	if r.read >= r.rows {
		return nil, io.EOF
	}
	if _, err := io.ReadFull(r.zr, r.buf); err != nil {
		return nil, fmt.Errorf("lhcodata: read feature row: %w", err)
	}
	if cap(dst) < len(r.columns) {
		dst = make([]float64, len(r.columns))
	}
	dst = dst[:len(r.columns)]
	for j := range dst {
		dst[j] = math.Float64frombits(binary.LittleEndian.Uint64(r.buf[j*8:]))
	}
	r.read++
	return dst, nil
}

// Close releases the decoder and the underlying file.
func (r *FeatureTableReader) Close() error {
	r.zr.Close()
	return r.f.Close()
}
