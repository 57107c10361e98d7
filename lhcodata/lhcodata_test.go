package lhcodata_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/imdinu/clustering-lhco/lhcodata"
)

// TestEventTable_RoundTrip writes a small table and reads back row ranges,
// checking bounds handling on the way.
func TestEventTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.bin")
	rows := [][]float64{
		{10, 0.5, -1.25, 0, 0, 0},
		{20, 1.5, 2.75, 5, -0.5, 0.25},
		{30, -2.5, 0, 0, 0, 0},
	}

	w, err := lhcodata.CreateEventTable(path, 6, false)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, w.WriteRow(row))
	}
	require.NoError(t, w.Close())

	table, err := lhcodata.OpenEventTable(path)
	require.NoError(t, err)
	defer table.Close()

	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, 6, table.NumCols())
	assert.False(t, table.HasTruth())

	got, err := table.ReadRows(1, 3)
	require.NoError(t, err)
	assert.Equal(t, rows[1:], got, "values survive the float32 payload")

	empty, err := table.ReadRows(2, 2)
	require.NoError(t, err)
	assert.Empty(t, empty, "an empty range reads nothing")

	_, err = table.ReadRows(2, 4)
	assert.ErrorIs(t, err, lhcodata.ErrRowRange)
	_, err = table.ReadRows(-1, 2)
	assert.ErrorIs(t, err, lhcodata.ErrRowRange)
}

// TestEventTable_TruthFlag checks that the embedded-truth marker survives
// the header round trip.
func TestEventTable_TruthFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labelled.bin")
	w, err := lhcodata.CreateEventTable(path, 7, true)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]float64{10, 0, 0, 20, 1, 1, 1}))
	require.NoError(t, w.Close())

	table, err := lhcodata.OpenEventTable(path)
	require.NoError(t, err)
	defer table.Close()
	assert.True(t, table.HasTruth())
}

// TestEventTable_Malformed rejects files that are not event tables.
func TestEventTable_Malformed(t *testing.T) {
	dir := t.TempDir()

	junk := filepath.Join(dir, "junk.bin")
	require.NoError(t, os.WriteFile(junk, []byte("NOTANEVTxxxxxxxxxxxxxxxxxxxx"), 0o644))
	_, err := lhcodata.OpenEventTable(junk)
	assert.ErrorIs(t, err, lhcodata.ErrBadMagic)

	short := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(short, []byte("LHCO"), 0o644))
	_, err = lhcodata.OpenEventTable(short)
	assert.Error(t, err, "a truncated header cannot be read")

	_, err = lhcodata.CreateEventTable(filepath.Join(dir, "none.bin"), 0, false)
	assert.ErrorIs(t, err, lhcodata.ErrBadHeader, "a table needs at least one column")
}

// TestEventTableWriter_RowWidth rejects rows that do not match the layout.
func TestEventTableWriter_RowWidth(t *testing.T) {
	w, err := lhcodata.CreateEventTable(filepath.Join(t.TempDir(), "e.bin"), 3, false)
	require.NoError(t, err)
	defer w.Close()

	assert.ErrorIs(t, w.WriteRow([]float64{1, 2}), lhcodata.ErrColumnMismatch)
	assert.NoError(t, w.WriteRow([]float64{1, 2, 3}))
}

// TestMasterkey_Parse reads labels, tolerates blank lines and rejects
// anything that is not a 0/1 entry.
func TestMasterkey_Parse(t *testing.T) {
	key, err := lhcodata.ParseMasterkey(strings.NewReader("0\n1\n0\n1\n\n"))
	require.NoError(t, err)

	assert.Equal(t, 4, key.Len())
	assert.Equal(t, 2, key.NumSignal())
	assert.False(t, key.Signal(0))
	assert.True(t, key.Signal(1))
	assert.False(t, key.Signal(2))
	assert.True(t, key.Signal(3))
	assert.False(t, key.Signal(7), "indices beyond the key are background")
	assert.False(t, key.Signal(-1))

	_, err = lhcodata.ParseMasterkey(strings.NewReader("0\n2\n"))
	assert.ErrorIs(t, err, lhcodata.ErrMasterkeyDigit)
	_, err = lhcodata.ParseMasterkey(strings.NewReader("0\nsignal\n"))
	assert.ErrorIs(t, err, lhcodata.ErrMasterkeyDigit)
}

// TestMasterkey_LoadFile exercises the file front door.
func TestMasterkey_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.masterkey")
	require.NoError(t, os.WriteFile(path, []byte("1\n0\n1\n"), 0o644))

	key, err := lhcodata.LoadMasterkey(path)
	require.NoError(t, err)
	assert.Equal(t, 3, key.Len())
	assert.Equal(t, 2, key.NumSignal())

	_, err = lhcodata.LoadMasterkey(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

// TestFeatureTable_RoundTrip writes a feature table and reads it back,
// checking the run stamp, the column catalogue and exact float64 values.
func TestFeatureTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scalars_bkg0000.zst")
	runID := uuid.New()
	columns := []string{"pt_1", "eta_1", "nj"}

	w, err := lhcodata.CreateFeatureTable(path, runID, columns)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow([]float64{1.5, -2.25, 2}))
	require.NoError(t, w.WriteRow([]float64{3.5, 0.125, 2}))
	assert.Equal(t, 2, w.NumRows())
	require.NoError(t, w.Close())

	r, err := lhcodata.OpenFeatureTable(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, runID, r.RunID())
	assert.Equal(t, columns, r.Columns())
	assert.Equal(t, 2, r.NumRows())

	row, err := r.ReadRow(nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2.25, 2}, row)
	row, err = r.ReadRow(row)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.5, 0.125, 2}, row, "rows keep full float64 precision")
	_, err = r.ReadRow(row)
	assert.ErrorIs(t, err, io.EOF)
}

// TestFeatureTable_Validation covers catalogue and row-width faults.
func TestFeatureTable_Validation(t *testing.T) {
	dir := t.TempDir()

	_, err := lhcodata.CreateFeatureTable(filepath.Join(dir, "none.zst"), uuid.New(), nil)
	assert.ErrorIs(t, err, lhcodata.ErrBadHeader, "a table needs at least one column")

	w, err := lhcodata.CreateFeatureTable(filepath.Join(dir, "t.zst"), uuid.New(), []string{"a", "b"})
	require.NoError(t, err)
	defer w.Close()
	assert.ErrorIs(t, w.WriteRow([]float64{1}), lhcodata.ErrColumnMismatch)
}

// TestImageSet_RoundTripFloat32 checks the channel-last layout and exact
// single-precision values through WriteImage and WriteFlat.
func TestImageSet_RoundTripFloat32(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images_sig0001.zst")
	runID := uuid.New()

	w, err := lhcodata.CreateImageSet(path, runID, 4, 2, lhcodata.EncFloat32)
	require.NoError(t, err)

	ch0 := mat.NewDense(4, 4, nil)
	ch1 := mat.NewDense(4, 4, nil)
	ch0.Set(1, 2, 7.5)
	ch1.Set(1, 2, 8.5)
	ch0.Set(3, 0, 0.25)
	require.NoError(t, w.WriteImage([]*mat.Dense{ch0, ch1}))

	flat := make([]float64, 4*4*2)
	flat[0] = 1.5
	flat[31] = -2.5
	require.NoError(t, w.WriteFlat(flat))
	require.NoError(t, w.Close())

	r, err := lhcodata.OpenImageSet(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, runID, r.RunID())
	assert.Equal(t, 2, r.NumRows())
	assert.Equal(t, 4, r.NPix())
	assert.Equal(t, 2, r.Channels())
	assert.Equal(t, lhcodata.EncFloat32, r.Encoding())

	img, err := r.ReadFlat(nil)
	require.NoError(t, err)
	assert.Equal(t, 7.5, img[(1*4+2)*2+0], "channel 0 at (1,2)")
	assert.Equal(t, 8.5, img[(1*4+2)*2+1], "channel 1 at (1,2)")
	assert.Equal(t, 0.25, img[(3*4+0)*2+0], "channel 0 at (3,0)")

	img, err = r.ReadFlat(img)
	require.NoError(t, err)
	assert.Equal(t, flat, img)
	_, err = r.ReadFlat(img)
	assert.ErrorIs(t, err, io.EOF)
}

// TestImageSet_Float16 checks that half-precision storage reproduces
// pixels within half-precision tolerance.
func TestImageSet_Float16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.zst")

	w, err := lhcodata.CreateImageSet(path, uuid.New(), 2, 1, lhcodata.EncFloat16)
	require.NoError(t, err)
	in := []float64{0.1, 1.0, 123.456, 0}
	require.NoError(t, w.WriteFlat(in))
	require.NoError(t, w.Close())

	r, err := lhcodata.OpenImageSet(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, lhcodata.EncFloat16, r.Encoding())

	out, err := r.ReadFlat(nil)
	require.NoError(t, err)
	require.Len(t, out, 4)
	for i := range in {
		assert.InDelta(t, in[i], out[i], 1e-3*(1+in[i]), "pixel %d", i)
	}
}

// TestImageSet_ShapeErrors covers declared-shape enforcement on both
// write paths and header validation.
func TestImageSet_ShapeErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := lhcodata.CreateImageSet(filepath.Join(dir, "a.zst"), uuid.New(), 0, 1, lhcodata.EncFloat32)
	assert.ErrorIs(t, err, lhcodata.ErrBadHeader)
	_, err = lhcodata.CreateImageSet(filepath.Join(dir, "b.zst"), uuid.New(), 4, 1, lhcodata.ImageEncoding(9))
	assert.ErrorIs(t, err, lhcodata.ErrBadEncoding)

	w, err := lhcodata.CreateImageSet(filepath.Join(dir, "c.zst"), uuid.New(), 4, 2, lhcodata.EncFloat32)
	require.NoError(t, err)
	defer w.Close()

	assert.ErrorIs(t, w.WriteImage([]*mat.Dense{mat.NewDense(4, 4, nil)}),
		lhcodata.ErrImageShape, "channel count must match")
	assert.ErrorIs(t, w.WriteImage([]*mat.Dense{mat.NewDense(3, 3, nil), mat.NewDense(3, 3, nil)}),
		lhcodata.ErrImageShape, "grid dimensions must match")
	assert.ErrorIs(t, w.WriteFlat(make([]float64, 7)), lhcodata.ErrImageShape)
}
