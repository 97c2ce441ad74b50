package budget

import (
	"slices"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// Universe is a read snapshot of the ledger collections the derived views are
// computed from. Derived computations take it as a parameter and never reach
// into a Ledger.
type Universe struct {
	Accounts  []Account
	Incomes   []Transaction
	Expenses  []Transaction
	Savings   []Transaction
	Transfers []Transfer
}

// OverrideReader looks up a manual remaining cash value.
type OverrideReader interface {
	Get(month date.Month, accountID string) (Figure, bool)
}

// Plan holds the month parameters that are not derived from transactions.
type Plan struct {
	FixedFactor    Figure
	StatusByBucket map[string]Status // falls back to the bucket default status
	Today          date.Date         // reference day for due-date zeroing
	Overrides      OverrideReader    // may be nil
	Adjustments    map[string][]decimal.Decimal
}

// AggregatedAccount is one account's row in a monthly plan.
type AggregatedAccount struct {
	ID              string            `json:"id"`
	AccountName     string            `json:"accountName"`
	AccountType     AccountType       `json:"accountType"`
	FixedBalance    decimal.Decimal   `json:"fixedBalance"`
	Inflow          Figure            `json:"inflow"`
	SavingsTransfer Figure            `json:"savingsTransfer"`
	RemainingCash   Figure            `json:"remainingCash"`
	BucketAmounts   map[string]Figure `json:"bucketAmounts"`
	Notes           string            `json:"notes,omitempty"`
	Overridden      bool              `json:"overridden,omitempty"`
}

// RefError records a broken reference found in the source workbook.
type RefError struct {
	Cell    string  `json:"cell"`
	Value   *string `json:"value"`
	Formula *string `json:"formula"`
}

// AggregatedMonth is the planning view of one month. It is derived: the only
// thing that can make it disagree with the ledger is an explicit override.
type AggregatedMonth struct {
	ID                date.Month                   `json:"id"`
	MonthStart        date.Date                    `json:"monthStart"`
	InflowTotal       decimal.Decimal              `json:"inflowTotal"`
	FixedFactor       Figure                       `json:"fixedFactor"`
	Accounts          []AggregatedAccount          `json:"accounts"`
	BucketOrder       []string                     `json:"bucketOrder"`
	StatusByBucket    map[string]Status            `json:"statusByBucket"`
	DueDates          map[string]*date.Date        `json:"dueDates"`
	ManualAdjustments map[string][]decimal.Decimal `json:"manualAdjustments,omitempty"`
	RefErrors         []RefError                   `json:"refErrors,omitempty"`
}

// Account returns the row of accountID.
func (m *AggregatedMonth) Account(accountID string) (AggregatedAccount, bool) {
	i := slices.IndexFunc(m.Accounts, func(a AggregatedAccount) bool { return a.ID == accountID })
	if i < 0 {
		return AggregatedAccount{}, false
	}
	return m.Accounts[i], true
}

// CalculateRemainingCash is base minus fixed balances minus savings transfers
// plus manual adjustments. Missing figures count as zero.
func CalculateRemainingCash(base decimal.Decimal, fixed, savings []Figure, adjustments []decimal.Decimal) decimal.Decimal {
	total := base.Sub(sumFigures(fixed)).Sub(sumFigures(savings))
	for _, adj := range adjustments {
		total = total.Add(adj)
	}
	return total
}

// AggregateMonth computes the planning view of month from the universe.
//
// It is a pure function of its arguments: the same inputs always produce a
// deep-equal result.
func AggregateMonth(month date.Month, u Universe, p Plan) *AggregatedMonth {
	incomes := slices.DeleteFunc(slices.Clone(u.Incomes), func(t Transaction) bool { return !month.Contains(t.Date) })
	expenses := slices.DeleteFunc(slices.Clone(u.Expenses), func(t Transaction) bool { return !month.Contains(t.Date) })
	savings := slices.DeleteFunc(slices.Clone(u.Savings), func(t Transaction) bool { return !month.Contains(t.Date) })

	m := &AggregatedMonth{
		ID:             month,
		MonthStart:     month.Start(),
		InflowTotal:    decimal.Zero,
		FixedFactor:    p.FixedFactor,
		Accounts:       make([]AggregatedAccount, 0, len(u.Accounts)),
		StatusByBucket: make(map[string]Status),
		DueDates:       make(map[string]*date.Date),
	}

	// Every income counts, whatever its status.
	for _, tx := range incomes {
		m.InflowTotal = m.InflowTotal.Add(tx.Amount)
	}

	used := make(map[string]bool)
	for _, tx := range expenses {
		used[tx.Bucket] = true
	}
	m.BucketOrder = []string{}
	for _, b := range Buckets {
		if used[b.ID] {
			m.BucketOrder = append(m.BucketOrder, b.ID)
		}
	}

	for _, id := range m.BucketOrder {
		status, ok := p.StatusByBucket[id]
		if !ok {
			b, _ := LookupBucket(id)
			status = b.DefaultStatus
		}
		m.StatusByBucket[id] = status

		var earliest *date.Date
		for _, tx := range expenses {
			if tx.Bucket != id || tx.DueDate == nil {
				continue
			}
			if earliest == nil || tx.DueDate.Before(*earliest) {
				due := *tx.DueDate
				earliest = &due
			}
		}
		m.DueDates[id] = earliest
	}

	for _, a := range u.Accounts {
		m.Accounts = append(m.Accounts, aggregateAccount(month, a, incomes, expenses, savings, m.BucketOrder, p))
	}

	if len(p.Adjustments) > 0 {
		m.ManualAdjustments = make(map[string][]decimal.Decimal, len(p.Adjustments))
		for id, adj := range p.Adjustments {
			m.ManualAdjustments[id] = slices.Clone(adj)
		}
	}
	return m
}

func aggregateAccount(month date.Month, a Account, incomes, expenses, savings []Transaction, order []string, p Plan) AggregatedAccount {
	row := AggregatedAccount{
		ID:            a.ID,
		AccountName:   a.Name,
		AccountType:   a.Type,
		FixedBalance:  a.CurrentBalance,
		BucketAmounts: make(map[string]Figure, len(order)),
		Notes:         a.Notes,
	}

	row.Inflow = sumAccount(incomes, a.ID, func(t Transaction) decimal.Decimal { return t.Amount })
	row.SavingsTransfer = sumAccount(savings, a.ID, func(t Transaction) decimal.Decimal { return t.Amount })

	for _, bucket := range order {
		var sum Figure
		for _, tx := range expenses {
			if tx.AccountID != a.ID || tx.Bucket != bucket {
				continue
			}
			sum = Value(sum.Decimal().Add(ApplyDueDateZeroing(tx.Amount, tx.DueDate, p.Today)))
		}
		if !sum.IsNoData() && !sum.Decimal().IsPositive() {
			sum = Value(decimal.Zero)
		}
		row.BucketAmounts[bucket] = sum
	}

	if p.Overrides != nil {
		if v, ok := p.Overrides.Get(month, a.ID); ok {
			row.RemainingCash = v
			row.Overridden = true
			return row
		}
	}
	row.RemainingCash = Value(CalculateRemainingCash(
		row.Inflow.Decimal(),
		[]Figure{Value(row.FixedBalance)},
		[]Figure{row.SavingsTransfer},
		p.Adjustments[a.ID],
	))
	return row
}

// sumAccount sums amount over the transactions of accountID. It is NoData when
// the account has none.
func sumAccount(list []Transaction, accountID string, amount func(Transaction) decimal.Decimal) Figure {
	var f Figure
	for _, tx := range list {
		if tx.AccountID == accountID {
			f = Value(f.Decimal().Add(amount(tx)))
		}
	}
	return f
}
