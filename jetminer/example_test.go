package jetminer_test

import (
	"fmt"
	"slices"

	"github.com/imdinu/clustering-lhco/jetminer"
)

////////////////////////////////////////////////////////////////////////////////
// Example: Extractor.EventRow
////////////////////////////////////////////////////////////////////////////////

// ExampleExtractor_EventRow featurises one flat event row under the
// default dijet setup.
// Scenario:
//
//   - The raw row holds two (pT, η, φ) triples, a hard parton on each
//     side of the detector.
//   - Anti-kt at R = 1.0 resolves them into the two jet slots; nj always
//     reports the padded slot count.
func ExampleExtractor_EventRow() {
	ex, err := jetminer.NewExtractor(jetminer.DefaultOptions())
	if err != nil {
		fmt.Println("extractor:", err)
		return
	}

	raw := []float64{
		500, 1.0, 0, // leading parton
		480, -1.0, 0, // recoiling parton
	}
	row, err := ex.EventRow(raw)
	if err != nil {
		fmt.Println("featurise:", err)
		return
	}

	cols := ex.Columns()
	for _, name := range []string{"pt_1", "pt_2", "nj"} {
		fmt.Printf("%s=%.0f\n", name, row[slices.Index(cols, name)])
	}

	// Output:
	// pt_1=500
	// pt_2=480
	// nj=2
}
