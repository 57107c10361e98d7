package lhcodata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// Masterkey is the external truth source: one 0/1 entry per event of the
// full dataset, indexed globally. Signal events are held in a bitmap, so a
// key for millions of events stays small and membership is O(1).
type Masterkey struct {
	signal *roaring.Bitmap
	n      int
}

// LoadMasterkey reads a newline-separated masterkey file.
func LoadMasterkey(path string) (*Masterkey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lhcodata: open masterkey: %w", err)
	}
	defer f.Close()
	return ParseMasterkey(f)
}

// ParseMasterkey parses newline-separated 0/1 entries. Blank lines are
// skipped; any other content is ErrMasterkeyDigit.
func ParseMasterkey(r io.Reader) (*Masterkey, error) {
	key := &Masterkey{signal: roaring.New()}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
			continue
		case "0":
		case "1":
			key.signal.Add(uint32(key.n))
		default:
			return nil, fmt.Errorf("%w: entry %d is %q", ErrMasterkeyDigit, key.n, line)
		}
		key.n++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("lhcodata: read masterkey: %w", err)
	}
	return key, nil
}

// Len reports how many events the masterkey labels.
func (k *Masterkey) Len() int { return k.n }

// Signal reports whether global event index i is labelled signal. Indices
// outside the key are background.
func (k *Masterkey) Signal(i int) bool {
	if i < 0 || i >= k.n {
		return false
	}
	return k.signal.Contains(uint32(i))
}

// NumSignal reports the number of signal-labelled events.
func (k *Masterkey) NumSignal() int {
	return int(k.signal.GetCardinality())
}
