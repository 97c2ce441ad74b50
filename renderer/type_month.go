package renderer

import (
	"github.com/etnz/budget"
	"github.com/shopspring/decimal"
)

// Month is the planning view of a month, ready to be rendered.
type Month struct {
	ID          string
	MonthStart  string
	InflowTotal budget.Money
	FixedFactor string
	Buckets     []BucketColumn
	Accounts    []AccountRow
	Total       budget.Money
	RefErrors   []budget.RefError
}

// BucketColumn describes one bucket of the month, with its totals.
type BucketColumn struct {
	ID      string
	Name    string
	Status  budget.Status
	DueDate string
	Pending budget.Money
	Paid    budget.Money
	All     budget.Money
}

// AccountRow is one account line of the month.
type AccountRow struct {
	Name          string
	Type          budget.AccountType
	FixedBalance  budget.Money
	Inflow        string
	Savings       string
	RemainingCash string
	Overridden    bool
	Amounts       []string // in the order of the month buckets
}

// figure formats a figure, a dash standing for no data.
func figure(f budget.Figure, cur string) string {
	if f.IsNoData() {
		return "-"
	}
	return budget.M(f.Decimal(), cur).String()
}

// NewMonth builds the renderable view of m and of its bucket totals.
func NewMonth(m *budget.AggregatedMonth, totals budget.BucketTotals, cur string) *Month {
	money := func(d decimal.Decimal) budget.Money { return budget.M(d, cur) }
	v := &Month{
		ID:          m.ID.String(),
		MonthStart:  m.MonthStart.String(),
		InflowTotal: money(m.InflowTotal),
		FixedFactor: m.FixedFactor.String(),
		Total:       money(totals.Total()),
		RefErrors:   m.RefErrors,
	}
	if m.FixedFactor.IsNoData() {
		v.FixedFactor = "-"
	}
	for _, id := range m.BucketOrder {
		col := BucketColumn{
			ID:      id,
			Name:    id,
			Status:  m.StatusByBucket[id],
			DueDate: "-",
			Pending: money(totals.Pending[id]),
			Paid:    money(totals.Paid[id]),
			All:     money(totals.All[id]),
		}
		if b, ok := budget.LookupBucket(id); ok {
			col.Name = b.Name
		}
		if due := m.DueDates[id]; due != nil {
			col.DueDate = due.String()
		}
		v.Buckets = append(v.Buckets, col)
	}
	for _, a := range m.Accounts {
		row := AccountRow{
			Name:          a.AccountName,
			Type:          a.AccountType,
			FixedBalance:  money(a.FixedBalance),
			Inflow:        figure(a.Inflow, cur),
			Savings:       figure(a.SavingsTransfer, cur),
			RemainingCash: figure(a.RemainingCash, cur),
			Overridden:    a.Overridden,
		}
		for _, id := range m.BucketOrder {
			row.Amounts = append(row.Amounts, figure(a.BucketAmounts[id], cur))
		}
		v.Accounts = append(v.Accounts, row)
	}
	return v
}
