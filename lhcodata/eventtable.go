// Package lhcodata implements the pipeline's on-disk formats: the seekable
// event table workers slice row ranges from, the plain-text masterkey truth
// file, and the zstd-framed feature-table and image-set result files
// stamped with the run identifier.
//
// All integers are little-endian. Event tables keep an uncompressed header
// and a raw float32 payload at fixed stride, so reading a row range is one
// positioned read. Result files compress their payload and carry their
// shape in the header, so merging them is a header check plus a stream
// copy.
package lhcodata

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	eventMagic      = "LHCOEVT1"
	eventVersion    = 1
	eventHeaderSize = 28

	// flagTruth marks tables whose last column is the embedded truth bit.
	flagTruth = 1 << 0
)

// EventTable is a read-only view of a clustering input file. Row reads use
// positioned IO, so one open table may serve concurrent readers.
type EventTable struct {
	f        *os.File
	rows     int
	cols     int
	hasTruth bool
}

// OpenEventTable opens path and checks its header.
func OpenEventTable(path string) (*EventTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lhcodata: open event table: %w", err)
	}
	t := &EventTable{f: f}
	if err := t.readHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

func (t *EventTable) readHeader() error {
	hdr := make([]byte, eventHeaderSize)
	if _, err := io.ReadFull(t.f, hdr); err != nil {
		return fmt.Errorf("lhcodata: read event header: %w", err)
	}
	if string(hdr[:8]) != eventMagic {
		return ErrBadMagic
	}
	if binary.LittleEndian.Uint32(hdr[8:12]) != eventVersion {
		return ErrBadVersion
	}
	cols := binary.LittleEndian.Uint32(hdr[20:24])
	if cols == 0 {
		return ErrBadHeader
	}
	t.rows = int(binary.LittleEndian.Uint64(hdr[12:20]))
	t.cols = int(cols)
	t.hasTruth = binary.LittleEndian.Uint32(hdr[24:28])&flagTruth != 0
	return nil
}

// NumRows reports the number of stored events.
func (t *EventTable) NumRows() int { return t.rows }

// NumCols reports the row width, including an embedded truth column.
func (t *EventTable) NumCols() int { return t.cols }

// HasTruth reports whether the last column is the embedded truth bit.
func (t *EventTable) HasTruth() bool { return t.hasTruth }

// ReadRows returns rows [start, stop) as float64 vectors.
func (t *EventTable) ReadRows(start, stop int) ([][]float64, error) {
	if start < 0 || stop < start || stop > t.rows {
		return nil, ErrRowRange
	}
	n := stop - start
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n*t.cols*4)
	off := int64(eventHeaderSize) + int64(start)*int64(t.cols)*4
	if _, err := t.f.ReadAt(buf, off); err != nil {
		return nil, fmt.Errorf("lhcodata: read rows [%d, %d): %w", start, stop, err)
	}
	out := make([][]float64, n)
	for i := range out {
		row := make([]float64, t.cols)
		base := i * t.cols * 4
		for j := range row {
			bits := binary.LittleEndian.Uint32(buf[base+j*4:])
			row[j] = float64(math.Float32frombits(bits))
		}
		out[i] = row
	}
	return out, nil
}

// Close releases the underlying file.
func (t *EventTable) Close() error {
	return t.f.Close()
}

// EventTableWriter streams events into a new table file. The row count is
// patched into the header on Close, so an unclosed file reads as empty.
type EventTableWriter struct {
	f    *os.File
	bw   *bufio.Writer
	cols int
	rows uint64
	buf  []byte
}

// CreateEventTable creates path with a cols-wide layout. When hasTruth is
// set the last column is declared to hold the embedded truth bit.
func CreateEventTable(path string, cols int, hasTruth bool) (*EventTableWriter, error) {
	if cols < 1 {
		return nil, ErrBadHeader
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("lhcodata: create event table: %w", err)
	}
	hdr := make([]byte, eventHeaderSize)
	copy(hdr, eventMagic)
	binary.LittleEndian.PutUint32(hdr[8:12], eventVersion)
	binary.LittleEndian.PutUint32(hdr[20:24], uint32(cols))
	var flags uint32
	if hasTruth {
		flags |= flagTruth
	}
	binary.LittleEndian.PutUint32(hdr[24:28], flags)
	if _, err := f.Write(hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("lhcodata: write event header: %w", err)
	}
	return &EventTableWriter{
		f:    f,
		bw:   bufio.NewWriterSize(f, 1<<20),
		cols: cols,
		buf:  make([]byte, cols*4),
	}, nil
}

// WriteRow appends one event row, which must be exactly cols wide.
func (w *EventTableWriter) WriteRow(row []float64) error {
	if len(row) != w.cols {
		return ErrColumnMismatch
	}
	for j, v := range row {
		binary.LittleEndian.PutUint32(w.buf[j*4:], math.Float32bits(float32(v)))
	}
	if _, err := w.bw.Write(w.buf); err != nil {
		return fmt.Errorf("lhcodata: write event row: %w", err)
	}
	w.rows++
	return nil
}

// Close flushes the payload, records the final row count and closes the
// file.
func (w *EventTableWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("lhcodata: flush event table: %w", err)
	}
	var rows [8]byte
	binary.LittleEndian.PutUint64(rows[:], w.rows)
	if _, err := w.f.WriteAt(rows[:], 12); err != nil {
		w.f.Close()
		return fmt.Errorf("lhcodata: patch event row count: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("lhcodata: close event table: %w", err)
	}
	return nil
}
