package budget

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/budget/date"
)

// RemainingCashOverride is a manual remaining cash value for one account in
// one month. A NoData value is an explicit null override.
type RemainingCashOverride struct {
	Month     date.Month `json:"monthId"`
	AccountID string     `json:"accountId"`
	Value     Figure     `json:"value"`
}

type overrideKey struct {
	month   date.Month
	account string
}

// Overrides is the manual override map. It is stored apart from transactions
// and wins over any calculation.
type Overrides struct {
	values map[overrideKey]Figure
}

// NewOverrides creates an empty override map.
func NewOverrides() *Overrides {
	return &Overrides{values: make(map[overrideKey]Figure)}
}

// Set records v for (month, accountID), replacing any previous value.
func (o *Overrides) Set(month date.Month, accountID string, v Figure) {
	o.values[overrideKey{month, accountID}] = v
}

// Get returns the override for (month, accountID), if any.
func (o *Overrides) Get(month date.Month, accountID string) (Figure, bool) {
	if o == nil {
		return NoData, false
	}
	v, ok := o.values[overrideKey{month, accountID}]
	return v, ok
}

// Clear removes the override for (month, accountID). It reports whether there was one.
func (o *Overrides) Clear(month date.Month, accountID string) bool {
	k := overrideKey{month, accountID}
	_, ok := o.values[k]
	delete(o.values, k)
	return ok
}

// Len returns the number of overrides.
func (o *Overrides) Len() int { return len(o.values) }

// All returns every override, sorted by month then account.
func (o *Overrides) All() []RemainingCashOverride {
	list := make([]RemainingCashOverride, 0, len(o.values))
	for k, v := range o.values {
		list = append(list, RemainingCashOverride{Month: k.month, AccountID: k.account, Value: v})
	}
	slices.SortFunc(list, func(a, b RemainingCashOverride) int {
		if c := strings.Compare(a.Month.String(), b.Month.String()); c != 0 {
			return c
		}
		return strings.Compare(a.AccountID, b.AccountID)
	})
	return list
}

// DecodeOverrides reads overrides from a stream of JSONL data, one override per line.
func DecodeOverrides(r io.Reader) (*Overrides, error) {
	o := NewOverrides()
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ov RemainingCashOverride
		if err := json.Unmarshal(line, &ov); err != nil {
			return nil, fmt.Errorf("could not decode override on line %d: %w", n, err)
		}
		if ov.Month.IsZero() || ov.AccountID == "" {
			return nil, fmt.Errorf("override on line %d: monthId and accountId are required", n)
		}
		o.Set(ov.Month, ov.AccountID, ov.Value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return o, nil
}

// EncodeOverrides writes overrides as JSONL, sorted.
func EncodeOverrides(w io.Writer, o *Overrides) error {
	enc := json.NewEncoder(w)
	for _, ov := range o.All() {
		if err := enc.Encode(ov); err != nil {
			return fmt.Errorf("could not encode override %s/%s: %w", ov.Month, ov.AccountID, err)
		}
	}
	return nil
}
