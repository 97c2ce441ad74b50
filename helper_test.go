package budget

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/etnz/budget/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// dec is a helper for tests to create decimals from constants.
func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// day is a helper for tests to parse ISO dates.
func day(s string) date.Date { return date.MustParse(s) }

// dayPtr returns a pointer to the parsed date.
func dayPtr(s string) *date.Date {
	d := date.MustParse(s)
	return &d
}

// fixedClock returns a clock always returning the same instant.
func fixedClock() func() time.Time {
	t := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

// fixture is a ledger with one bank holding two accounts, A and B.
type fixture struct {
	*Ledger
	bank Bank
	a, b Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := NewLedger(WithClock(fixedClock()))
	bank, err := l.CreateBank(Bank{ID: "hdfc", Name: "HDFC", Type: BankTypeBank})
	if err != nil {
		t.Fatalf("CreateBank() error = %v", err)
	}
	a, err := l.CreateAccount(Account{ID: "A", BankID: bank.ID, Name: "Salary", Type: AccountSavings})
	if err != nil {
		t.Fatalf("CreateAccount(A) error = %v", err)
	}
	b, err := l.CreateAccount(Account{ID: "B", BankID: bank.ID, Name: "Household", Type: AccountCurrent})
	if err != nil {
		t.Fatalf("CreateAccount(B) error = %v", err)
	}
	return &fixture{Ledger: l, bank: bank, a: a, b: b}
}

// add creates a transaction or fails the test.
func (f *fixture) add(t *testing.T, tx Transaction) Transaction {
	t.Helper()
	tx, err := f.CreateTransaction(tx)
	if err != nil {
		t.Fatalf("CreateTransaction(%+v) error = %v", tx, err)
	}
	return tx
}

func income(account, on string, amount float64, status Status) Transaction {
	return Transaction{Kind: Income, AccountID: account, Date: day(on), Amount: dec(amount), Status: status, Category: "Salary"}
}

func expense(account, on string, amount float64, status Status, bucket string) Transaction {
	return Transaction{Kind: Expense, AccountID: account, Date: day(on), Amount: dec(amount), Status: status, Bucket: bucket}
}

func saving(account, on string, amount float64, status Status) Transaction {
	return Transaction{Kind: Savings, AccountID: account, Date: day(on), Amount: dec(amount), Status: status, Category: "SIP"}
}

func mustMonth(s string) date.Month { return date.MustParseMonth(s) }

func monthStrings(months []date.Month) []string {
	list := make([]string, len(months))
	for i, m := range months {
		list[i] = m.String()
	}
	return list
}

// warnBuffer captures log output.
type warnBuffer struct{ bytes.Buffer }

func (b *warnBuffer) logger() zerolog.Logger { return zerolog.New(b).Level(zerolog.WarnLevel) }

func (b *warnBuffer) contains(s string) bool { return strings.Contains(b.String(), s) }
