package budget

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SeedAccount is one account row of a planning worksheet export.
type SeedAccount struct {
	Name              string             `json:"name"`
	RemainingCash     Figure             `json:"remaining_cash"`
	FixedBalance      Figure             `json:"fixed_balance"`
	SavingsTransfer   Figure             `json:"savings_transfer"`
	BucketAllocations map[string]Figure  `json:"bucket_allocations"`
	Formulas          map[string]*string `json:"formulas,omitempty"`
	BucketFormulas    map[string]*string `json:"bucket_formulas,omitempty"`
}

// SeedMonth is one month block of a planning worksheet export.
type SeedMonth struct {
	MonthStart         string             `json:"month_start"`
	FixedFactor        Figure             `json:"fixed_factor"`
	InflowTotal        Figure             `json:"inflow_total"`
	InflowFormula      *string            `json:"inflow_formula,omitempty"`
	FixedFactorFormula *string            `json:"fixed_factor_formula,omitempty"`
	StatusByBucket     map[string]string  `json:"status_by_bucket"`
	DueDates           map[string]*string `json:"due_dates"`
	BucketOrder        []string           `json:"bucket_order"`
	Accounts           []SeedAccount      `json:"accounts"`
	SourceRows         map[string]int     `json:"source_rows,omitempty"`
	RefErrors          []RefError         `json:"ref_errors"`
}

// DecodePlanningSeed reads a planning worksheet export: a JSON array of month blocks.
func DecodePlanningSeed(r io.Reader) ([]SeedMonth, error) {
	var months []SeedMonth
	if err := json.NewDecoder(r).Decode(&months); err != nil {
		return nil, fmt.Errorf("could not decode planning seed: %w", err)
	}
	for i, m := range months {
		if strings.TrimSpace(m.MonthStart) == "" {
			return nil, fmt.Errorf("planning seed month #%d has no month_start", i+1)
		}
	}
	return months, nil
}

// seedBucketID maps a worksheet column header to a configured bucket id.
// Headers are matched on id or display name, ignoring case and spaces.
func seedBucketID(header string) (string, bool) {
	norm := func(s string) string { return strings.ToLower(strings.ReplaceAll(s, " ", "")) }
	h := norm(header)
	for _, b := range Buckets {
		if norm(b.ID) == h || norm(b.Name) == h {
			return b.ID, true
		}
	}
	return "", false
}
