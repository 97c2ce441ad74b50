package budget

import (
	"testing"

	"github.com/etnz/budget/date"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var cmpDates = cmp.AllowUnexported(date.Date{}, date.Month{})

func TestAggregateMonth(t *testing.T) {
	f := newFixture(t)
	f.add(t, income("A", "2024-03-01", 10000, StatusReceived))
	f.add(t, income("A", "2024-03-20", 1500, StatusPending)) // counts toward inflow anyway
	f.add(t, income("A", "2024-04-01", 999, StatusPending))  // next month
	f.add(t, expense("A", "2024-03-05", 2000, StatusPaid, "Maintenance"))
	f.add(t, Transaction{Kind: Expense, AccountID: "A", Date: day("2024-03-06"), Amount: dec(700), Status: StatusPending, Bucket: "CCBill", DueDate: dayPtr("2024-03-25")})
	f.add(t, Transaction{Kind: Expense, AccountID: "B", Date: day("2024-03-07"), Amount: dec(300), Status: StatusPending, Bucket: "CCBill", DueDate: dayPtr("2024-03-15")})
	f.add(t, saving("A", "2024-03-10", 1000, StatusCompleted))

	m := AggregateMonth(mustMonth("2024-03"), f.Universe(), Plan{
		FixedFactor:    Value(dec(0.5)),
		StatusByBucket: map[string]Status{"CCBill": StatusPaid},
		Today:          day("2024-03-20"),
	})

	if !m.InflowTotal.Equal(dec(11500)) {
		t.Errorf("InflowTotal = %s, want 11500", m.InflowTotal)
	}
	if diff := cmp.Diff([]string{"CCBill", "Maintenance"}, m.BucketOrder); diff != "" {
		t.Errorf("BucketOrder mismatch (-want +got):\n%s", diff)
	}
	wantStatus := map[string]Status{"CCBill": StatusPaid, "Maintenance": StatusPending}
	if diff := cmp.Diff(wantStatus, m.StatusByBucket); diff != "" {
		t.Errorf("StatusByBucket mismatch (-want +got):\n%s", diff)
	}
	wantDue := map[string]*date.Date{"CCBill": dayPtr("2024-03-15"), "Maintenance": nil}
	if diff := cmp.Diff(wantDue, m.DueDates, cmpDates); diff != "" {
		t.Errorf("DueDates mismatch (-want +got):\n%s", diff)
	}

	// A: balance 10000 - 2000 - 1000 = 7000; inflow 11500; savings 1000.
	wantA := AggregatedAccount{
		ID:              "A",
		AccountName:     "Salary",
		AccountType:     AccountSavings,
		FixedBalance:    dec(7000),
		Inflow:          Value(dec(11500)),
		SavingsTransfer: Value(dec(1000)),
		RemainingCash:   Value(dec(3500)),
		BucketAmounts:   map[string]Figure{"CCBill": Value(dec(700)), "Maintenance": Value(dec(2000))},
	}
	// B: CCBill due on the 15th, zeroed on the 20th.
	wantB := AggregatedAccount{
		ID:            "B",
		AccountName:   "Household",
		AccountType:   AccountCurrent,
		FixedBalance:  decimal.Zero,
		RemainingCash: Value(decimal.Zero),
		BucketAmounts: map[string]Figure{"CCBill": Value(decimal.Zero), "Maintenance": NoData},
	}
	if diff := cmp.Diff([]AggregatedAccount{wantA, wantB}, m.Accounts); diff != "" {
		t.Errorf("Accounts mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateMonth_DueDateZeroing(t *testing.T) {
	f := newFixture(t)
	tx := f.add(t, Transaction{Kind: Expense, AccountID: "A", Date: day("2024-01-01"), Amount: dec(1000), Status: StatusPending, Bucket: "Expense", DueDate: dayPtr("2024-01-01")})

	m := AggregateMonth(mustMonth("2024-01"), f.Universe(), Plan{Today: day("2024-06-01")})
	row, _ := m.Account("A")
	if got := row.BucketAmounts["Expense"]; !got.Equal(Value(decimal.Zero)) {
		t.Errorf("bucket amount = %s, want 0", got)
	}
	if stored, _ := f.Transaction(tx.ID); !stored.Amount.Equal(dec(1000)) {
		t.Errorf("raw transaction amount = %s, want 1000", stored.Amount)
	}

	m = AggregateMonth(mustMonth("2024-01"), f.Universe(), Plan{Today: day("2024-01-01")})
	row, _ = m.Account("A")
	if got := row.BucketAmounts["Expense"]; !got.Equal(Value(dec(1000))) {
		t.Errorf("bucket amount on the due date = %s, want 1000", got)
	}
}

func TestAggregateMonth_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.add(t, income("A", "2024-03-01", 10000, StatusReceived))
	f.add(t, Transaction{Kind: Expense, AccountID: "B", Date: day("2024-03-07"), Amount: dec(300), Status: StatusPending, Bucket: "CCBill", DueDate: dayPtr("2024-03-15")})
	f.add(t, saving("B", "2024-03-10", 10, StatusPending))
	o := NewOverrides()
	o.Set(mustMonth("2024-03"), "B", Value(dec(12)))
	p := Plan{Today: day("2024-03-10"), Overrides: o, Adjustments: map[string][]decimal.Decimal{"A": {dec(5)}}}

	first := AggregateMonth(mustMonth("2024-03"), f.Universe(), p)
	second := AggregateMonth(mustMonth("2024-03"), f.Universe(), p)
	if diff := cmp.Diff(first, second, cmpDates); diff != "" {
		t.Errorf("AggregateMonth() is not idempotent (-first +second):\n%s", diff)
	}
}

func TestAggregateMonth_OverridePrecedence(t *testing.T) {
	f := newFixture(t)
	month := mustMonth("2024-03")
	o := NewOverrides()

	testCases := []struct {
		name     string
		override *Figure
		addTx    Transaction
		want     Figure
	}{
		{"explicit null", ptr(NoData), income("A", "2024-03-01", 100, StatusReceived), NoData},
		{"value survives a new income", ptr(Value(dec(42))), income("A", "2024-03-02", 500, StatusReceived), Value(dec(42))},
		{"zero survives a new expense", ptr(Value(decimal.Zero)), expense("A", "2024-03-03", 80, StatusPaid, "Expense"), Value(decimal.Zero)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			o.Set(month, "A", *tc.override)
			f.add(t, tc.addTx)
			m := AggregateMonth(month, f.Universe(), Plan{Today: day("2024-03-31"), Overrides: o})
			row, _ := m.Account("A")
			if !row.RemainingCash.Equal(tc.want) || !row.Overridden {
				t.Errorf("RemainingCash = %s (overridden %v), want %s", row.RemainingCash, row.Overridden, tc.want)
			}
		})
	}

	o.Clear(month, "A")
	m := AggregateMonth(month, f.Universe(), Plan{Today: day("2024-03-31"), Overrides: o})
	row, _ := m.Account("A")
	if row.Overridden {
		t.Errorf("after Clear the account is still overridden")
	}
	// inflow 600, balance 600 - 80 = 520
	if !row.RemainingCash.Equal(Value(dec(80))) {
		t.Errorf("after Clear RemainingCash = %s, want 80", row.RemainingCash)
	}
}

func TestAggregateMonth_LexicographicBounds(t *testing.T) {
	u := Universe{
		Accounts: []Account{{ID: "A", Name: "A", Type: AccountSavings}},
		Incomes: []Transaction{
			{Kind: Income, AccountID: "A", Date: day("2024-02-29"), Amount: dec(1), Status: StatusReceived},
			{Kind: Income, AccountID: "A", Date: day("2024-03-01"), Amount: dec(10), Status: StatusReceived},
			{Kind: Income, AccountID: "A", Date: day("2024-03-31"), Amount: dec(100), Status: StatusReceived},
			{Kind: Income, AccountID: "A", Date: day("2024-04-01"), Amount: dec(1000), Status: StatusReceived},
		},
	}
	testCases := []struct {
		month string
		want  string
	}{
		{"2024-02", "1"},
		{"2024-03", "110"},
		{"2024-04", "1000"},
		{"2024-05", "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.month, func(t *testing.T) {
			m := AggregateMonth(mustMonth(tc.month), u, Plan{})
			if got := m.InflowTotal.String(); got != tc.want {
				t.Errorf("InflowTotal = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestAggregateMonth_EmptyAccount(t *testing.T) {
	u := Universe{Accounts: []Account{{ID: "A", Name: "A", Type: AccountWallet, CurrentBalance: dec(50)}}}
	m := AggregateMonth(mustMonth("2024-03"), u, Plan{})
	row, _ := m.Account("A")
	if !row.SavingsTransfer.IsNoData() || !row.Inflow.IsNoData() {
		t.Errorf("empty account savings, inflow = %s, %s, want null, null", row.SavingsTransfer, row.Inflow)
	}
	if !row.RemainingCash.Equal(Value(dec(-50))) {
		t.Errorf("RemainingCash = %s, want -50", row.RemainingCash)
	}
	if len(m.BucketOrder) != 0 || len(row.BucketAmounts) != 0 {
		t.Errorf("bucket order %v and amounts %v, want none", m.BucketOrder, row.BucketAmounts)
	}
}

func TestCalculateRemainingCash(t *testing.T) {
	got := CalculateRemainingCash(dec(1000), []Figure{Value(dec(300)), NoData}, []Figure{Value(dec(100))}, []decimal.Decimal{dec(25), dec(-5)})
	if !got.Equal(dec(620)) {
		t.Errorf("CalculateRemainingCash() = %s, want 620", got)
	}
}

func ptr[T any](v T) *T { return &v }
