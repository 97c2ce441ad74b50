package budget

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Figure is an amount in a planning view that may be missing.
//
// It keeps apart "no data" (nothing to sum, or a manual null) from an actual
// zero. JSON encodes the former as null and the latter as 0.
type Figure struct {
	value decimal.Decimal
	set   bool
}

// NoData is the missing Figure.
var NoData = Figure{}

// Value returns a Figure holding v.
func Value(v decimal.Decimal) Figure { return Figure{value: v, set: true} }

// IsNoData reports whether f holds no value.
func (f Figure) IsNoData() bool { return !f.set }

// IsNull reports whether f would have been stored as null by the spreadsheet:
// either missing or not positive.
func (f Figure) IsNull() bool { return !f.set || !f.value.IsPositive() }

// Decimal returns the value, zero when missing.
func (f Figure) Decimal() decimal.Decimal {
	if !f.set {
		return decimal.Zero
	}
	return f.value
}

// Equal reports whether both figures are missing, or both hold equal values.
func (f Figure) Equal(g Figure) bool {
	if f.set != g.set {
		return false
	}
	return !f.set || f.value.Equal(g.value)
}

// String returns "null" for a missing figure, the decimal otherwise.
func (f Figure) String() string {
	if !f.set {
		return "null"
	}
	return f.value.String()
}

func (f Figure) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return f.value.MarshalJSON()
}

func (f *Figure) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = NoData
		return nil
	}
	var v decimal.Decimal
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Value(v)
	return nil
}

// sumFigures adds the values of figures, missing ones counting as zero.
func sumFigures(figures []Figure) decimal.Decimal {
	total := decimal.Zero
	for _, f := range figures {
		total = total.Add(f.Decimal())
	}
	return total
}
