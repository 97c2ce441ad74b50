package budget

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/budget/date"
)

// Snapshots holds the stored planning views, one per month. They are what
// the remediation diffs fresh aggregations against.
type Snapshots struct {
	months map[date.Month]*AggregatedMonth
}

// NewSnapshots creates an empty store.
func NewSnapshots() *Snapshots {
	return &Snapshots{months: make(map[date.Month]*AggregatedMonth)}
}

// Get returns the stored view of month.
func (s *Snapshots) Get(month date.Month) (*AggregatedMonth, bool) {
	m, ok := s.months[month]
	return m, ok
}

// Put stores m, replacing any previous view of the same month.
func (s *Snapshots) Put(m *AggregatedMonth) { s.months[m.ID] = m }

// Months returns the stored months, sorted.
func (s *Snapshots) Months() []date.Month {
	return slices.SortedFunc(maps.Keys(s.months), compareMonths)
}

func compareMonths(a, b date.Month) int { return strings.Compare(a.String(), b.String()) }

// StoredRemainingCash returns the stored remaining cash of an account. It is
// NoData when the month or the account row is missing.
func (s *Snapshots) StoredRemainingCash(month date.Month, accountID string) Figure {
	m, ok := s.months[month]
	if !ok {
		return NoData
	}
	row, ok := m.Account(accountID)
	if !ok {
		return NoData
	}
	return row.RemainingCash
}

// Refresh copies the row of accountID from a fresh aggregation into the stored
// view of the same month, creating the view from fresh if there is none.
func (s *Snapshots) Refresh(fresh *AggregatedMonth, accountID string) {
	row, ok := fresh.Account(accountID)
	if !ok {
		return
	}
	stored, ok := s.months[fresh.ID]
	if !ok {
		stored = &AggregatedMonth{
			ID:             fresh.ID,
			MonthStart:     fresh.MonthStart,
			InflowTotal:    fresh.InflowTotal,
			FixedFactor:    fresh.FixedFactor,
			BucketOrder:    slices.Clone(fresh.BucketOrder),
			StatusByBucket: maps.Clone(fresh.StatusByBucket),
			DueDates:       maps.Clone(fresh.DueDates),
		}
		s.months[fresh.ID] = stored
	}
	row.BucketAmounts = maps.Clone(row.BucketAmounts)
	if i := slices.IndexFunc(stored.Accounts, func(a AggregatedAccount) bool { return a.ID == accountID }); i >= 0 {
		stored.Accounts[i] = row
	} else {
		stored.Accounts = append(stored.Accounts, row)
	}
}

// DecodeSnapshots reads the stored views from a JSON array.
func DecodeSnapshots(r io.Reader) (*Snapshots, error) {
	var list []*AggregatedMonth
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("could not decode snapshots: %w", err)
	}
	s := NewSnapshots()
	for _, m := range list {
		s.Put(m)
	}
	return s, nil
}

// EncodeSnapshots writes the stored views as a JSON array sorted by month.
func EncodeSnapshots(w io.Writer, s *Snapshots) error {
	list := make([]*AggregatedMonth, 0, len(s.months))
	for _, month := range s.Months() {
		list = append(list, s.months[month])
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return fmt.Errorf("could not encode snapshots: %w", err)
	}
	return nil
}

// SeedReport summarizes a planning seed import.
type SeedReport struct {
	Months          int      `json:"months"`
	Rows            int      `json:"rows"`
	UnknownAccounts []string `json:"unknownAccounts,omitempty"`
	UnknownBuckets  []string `json:"unknownBuckets,omitempty"`
	RefErrors       int      `json:"refErrors"`
}

// LoadSeed stores the months of a planning seed as snapshots. Seed rows are
// matched to accounts by name, ignoring case; rows and bucket headers that
// match nothing are reported and left out.
func (s *Snapshots) LoadSeed(months []SeedMonth, accounts []Account) (SeedReport, error) {
	var report SeedReport
	byName := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		byName[strings.ToLower(strings.TrimSpace(a.Name))] = a
	}
	unknownAccounts := make(map[string]bool)
	unknownBuckets := make(map[string]bool)

	bucketID := func(header string) (string, bool) {
		id, ok := seedBucketID(header)
		if !ok {
			unknownBuckets[header] = true
		}
		return id, ok
	}

	for _, sm := range months {
		start, err := date.Parse(sm.MonthStart)
		if err != nil {
			return report, fmt.Errorf("planning seed month %q: %w", sm.MonthStart, err)
		}
		m := &AggregatedMonth{
			ID:             date.MonthOf(start),
			MonthStart:     start,
			InflowTotal:    sm.InflowTotal.Decimal(),
			FixedFactor:    sm.FixedFactor,
			BucketOrder:    []string{},
			StatusByBucket: make(map[string]Status),
			DueDates:       make(map[string]*date.Date),
			RefErrors:      slices.Clone(sm.RefErrors),
		}
		for _, header := range sm.BucketOrder {
			id, ok := bucketID(header)
			if !ok || slices.Contains(m.BucketOrder, id) {
				continue
			}
			m.BucketOrder = append(m.BucketOrder, id)
		}
		for header, status := range sm.StatusByBucket {
			if id, ok := bucketID(header); ok {
				m.StatusByBucket[id] = Status(status)
			}
		}
		for header, due := range sm.DueDates {
			id, ok := bucketID(header)
			if !ok {
				continue
			}
			if due == nil {
				m.DueDates[id] = nil
				continue
			}
			d, err := date.Parse(*due)
			if err != nil {
				return report, fmt.Errorf("planning seed month %q due date of %q: %w", sm.MonthStart, header, err)
			}
			m.DueDates[id] = &d
		}
		for _, row := range sm.Accounts {
			a, ok := byName[strings.ToLower(strings.TrimSpace(row.Name))]
			if !ok {
				unknownAccounts[row.Name] = true
				continue
			}
			agg := AggregatedAccount{
				ID:              a.ID,
				AccountName:     a.Name,
				AccountType:     a.Type,
				FixedBalance:    row.FixedBalance.Decimal(),
				SavingsTransfer: row.SavingsTransfer,
				RemainingCash:   row.RemainingCash,
				BucketAmounts:   make(map[string]Figure),
			}
			for header, v := range row.BucketAllocations {
				if id, ok := bucketID(header); ok {
					agg.BucketAmounts[id] = v
				}
			}
			m.Accounts = append(m.Accounts, agg)
			report.Rows++
		}
		report.RefErrors += len(m.RefErrors)
		s.Put(m)
		report.Months++
	}
	report.UnknownAccounts = slices.Sorted(maps.Keys(unknownAccounts))
	report.UnknownBuckets = slices.Sorted(maps.Keys(unknownBuckets))
	return report, nil
}
