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
	"github.com/x448/float16"
	"gonum.org/v1/gonum/mat"
)

const (
	imageMagic      = "LHCOIMG1"
	imageVersion    = 1
	imageHeaderSize = 45
)

// ImageEncoding selects the stored pixel width.
type ImageEncoding uint8

const (
	// EncFloat32 stores pixels as IEEE single precision.
	EncFloat32 ImageEncoding = iota
	// EncFloat16 stores pixels half precision, halving the payload at the
	// cost of roughly three significant digits.
	EncFloat16
)

// String returns the conventional encoding name.
func (e ImageEncoding) String() string {
	switch e {
	case EncFloat32:
		return "float32"
	case EncFloat16:
		return "float16"
	default:
		return "unknown"
	}
}

// Valid reports whether e names a declared encoding.
func (e ImageEncoding) Valid() bool {
	_, ok := e.pixelSize()
	return ok
}

// pixelSize returns the stored bytes per pixel, with ok false for
// undeclared encodings.
func (e ImageEncoding) pixelSize() (int, bool) {
	switch e {
	case EncFloat32:
		return 4, true
	case EncFloat16:
		return 2, true
	default:
		return 0, false
	}
}

// ImageSetWriter streams per-event image stacks into a zstd-compressed
// set. Every image holds channels square npix grids, stored channel-last.
type ImageSetWriter struct {
	f        *os.File
	bw       *bufio.Writer
	zw       *zstd.Encoder
	npix     int
	channels int
	enc      ImageEncoding
	rows     uint64
	buf      []byte
	scratch  []float64
}

// CreateImageSet creates path for npix×npix images of the given channel
// count and pixel encoding.
func CreateImageSet(path string, runID uuid.UUID, npix, channels int, enc ImageEncoding) (*ImageSetWriter, error) {
	if npix < 1 || channels < 1 {
		return nil, ErrBadHeader
	}
	width, ok := enc.pixelSize()
	if !ok {
		return nil, ErrBadEncoding
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("lhcodata: create image set: %w", err)
	}
	bw := bufio.NewWriterSize(f, 1<<20)

	hdr := make([]byte, imageHeaderSize)
	copy(hdr, imageMagic)
	binary.LittleEndian.PutUint32(hdr[8:12], imageVersion)
	copy(hdr[12:28], runID[:])
	binary.LittleEndian.PutUint32(hdr[36:40], uint32(npix))
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(channels))
	hdr[44] = byte(enc)
	if _, err := bw.Write(hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("lhcodata: write image header: %w", err)
	}

	zw, err := zstd.NewWriter(bw)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("lhcodata: create zstd writer: %w", err)
	}
	values := npix * npix * channels
	return &ImageSetWriter{
		f:        f,
		bw:       bw,
		zw:       zw,
		npix:     npix,
		channels: channels,
		enc:      enc,
		buf:      make([]byte, values*width),
		scratch:  make([]float64, values),
	}, nil
}

// WriteImage appends one event's channel stack. Exactly the declared
// number of npix×npix grids is required.
func (w *ImageSetWriter) WriteImage(grids []*mat.Dense) error {
	if len(grids) != w.channels {
		return ErrImageShape
	}
	for _, g := range grids {
		if r, c := g.Dims(); r != w.npix || c != w.npix {
			return ErrImageShape
		}
	}
	i := 0
	for row := 0; row < w.npix; row++ {
		for col := 0; col < w.npix; col++ {
			for _, g := range grids {
				w.scratch[i] = g.At(row, col)
				i++
			}
		}
	}
	return w.WriteFlat(w.scratch)
}

// WriteFlat appends one already-flattened channel-last image.
func (w *ImageSetWriter) WriteFlat(vals []float64) error {
	if len(vals) != w.npix*w.npix*w.channels {
		return ErrImageShape
	}
	switch w.enc {
	case EncFloat32:
		for i, v := range vals {
			binary.LittleEndian.PutUint32(w.buf[i*4:], math.Float32bits(float32(v)))
		}
	case EncFloat16:
		for i, v := range vals {
			binary.LittleEndian.PutUint16(w.buf[i*2:], float16.Fromfloat32(float32(v)).Bits())
		}
	}
	if _, err := w.zw.Write(w.buf); err != nil {
		return fmt.Errorf("lhcodata: write image: %w", err)
	}
	w.rows++
	return nil
}

// NumRows reports the images written so far.
func (w *ImageSetWriter) NumRows() int { return int(w.rows) }

// Close flushes the compressed payload, records the final image count and
// closes the file.
func (w *ImageSetWriter) Close() error {
	if err := w.zw.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("lhcodata: close zstd writer: %w", err)
	}
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("lhcodata: flush image set: %w", err)
	}
	var rows [8]byte
	binary.LittleEndian.PutUint64(rows[:], w.rows)
	if _, err := w.f.WriteAt(rows[:], rowCountOffset); err != nil {
		w.f.Close()
		return fmt.Errorf("lhcodata: patch image row count: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("lhcodata: close image set: %w", err)
	}
	return nil
}

// ImageSetReader reads an image set sequentially.
type ImageSetReader struct {
	f        *os.File
	zr       *zstd.Decoder
	runID    uuid.UUID
	rows     int
	npix     int
	channels int
	enc      ImageEncoding
	read     int
	buf      []byte
}

// OpenImageSet opens path and reads its header.
func OpenImageSet(path string) (*ImageSetReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lhcodata: open image set: %w", err)
	}
	br := bufio.NewReaderSize(f, 1<<20)

	hdr := make([]byte, imageHeaderSize)
	if _, err := io.ReadFull(br, hdr); err != nil {
		f.Close()
		return nil, fmt.Errorf("lhcodata: read image header: %w", err)
	}
	if string(hdr[:8]) != imageMagic {
		f.Close()
		return nil, ErrBadMagic
	}
	if binary.LittleEndian.Uint32(hdr[8:12]) != imageVersion {
		f.Close()
		return nil, ErrBadVersion
	}
	npix := int(binary.LittleEndian.Uint32(hdr[36:40]))
	channels := int(binary.LittleEndian.Uint32(hdr[40:44]))
	enc := ImageEncoding(hdr[44])
	width, ok := enc.pixelSize()
	if !ok {
		f.Close()
		return nil, ErrBadEncoding
	}
	if npix < 1 || channels < 1 {
		f.Close()
		return nil, ErrBadHeader
	}

	zr, err := zstd.NewReader(br)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("lhcodata: create zstd reader: %w", err)
	}
	r := &ImageSetReader{
		f:        f,
		zr:       zr,
		rows:     int(binary.LittleEndian.Uint64(hdr[28:36])),
		npix:     npix,
		channels: channels,
		enc:      enc,
		buf:      make([]byte, npix*npix*channels*width),
	}
	copy(r.runID[:], hdr[12:28])
	return r, nil
}

// RunID returns the identifier of the run that wrote the set.
func (r *ImageSetReader) RunID() uuid.UUID { return r.runID }

// NumRows reports the stored image count.
func (r *ImageSetReader) NumRows() int { return r.rows }

// NPix reports the pixel count per image edge.
func (r *ImageSetReader) NPix() int { return r.npix }

// Channels reports the channel count per image.
func (r *ImageSetReader) Channels() int { return r.channels }

// Encoding reports the stored pixel encoding.
func (r *ImageSetReader) Encoding() ImageEncoding { return r.enc }

// ReadFlat returns the next image as a flat channel-last vector, reusing
// dst when it has the capacity. It returns io.EOF once all stored images
// are consumed.
func (r *ImageSetReader) ReadFlat(dst []float64) ([]float64, error) {
	if r.read >= r.rows {
		return nil, io.EOF
	}
	if _, err := io.ReadFull(r.zr, r.buf); err != nil {
		return nil, fmt.Errorf("lhcodata: read image: %w", err)
	}
	values := r.npix * r.npix * r.channels
	if cap(dst) < values {
		dst = make([]float64, values)
	}
	dst = dst[:values]
	switch r.enc {
	case EncFloat32:
		for i := range dst {
			dst[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(r.buf[i*4:])))
		}
	case EncFloat16:
		for i := range dst {
			dst[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(r.buf[i*2:])).Float32())
		}
	}
	r.read++
	return dst, nil
}

// Close releases the decoder and the underlying file.
func (r *ImageSetReader) Close() error {
	r.zr.Close()
	return r.f.Close()
}
