package budget

import (
	"errors"
	"testing"
)

func TestRecalculateAccountBalance(t *testing.T) {
	f := newFixture(t)
	f.add(t, income("A", "2024-03-01", 5000, StatusReceived))
	f.add(t, income("A", "2024-03-02", 3000, StatusReceived))
	f.add(t, income("A", "2024-03-03", 2000, StatusPending))

	if got := f.RecalculateAccountBalance("A"); !got.Equal(dec(8000)) {
		t.Errorf("RecalculateAccountBalance() = %s, want 8000", got)
	}
	if got := f.RecalculateAccountBalance("unknown"); !got.IsZero() {
		t.Errorf("RecalculateAccountBalance(unknown) = %s, want 0", got)
	}
}

func TestCalculateBalance(t *testing.T) {
	f := newFixture(t)
	f.add(t, income("A", "2024-03-01", 1000, StatusReceived))
	f.add(t, expense("A", "2024-03-02", 100.255, StatusPaid, "Expense"))
	f.add(t, expense("A", "2024-03-02", 999, StatusPending, "Expense"))
	f.add(t, saving("A", "2024-03-03", 200, StatusCompleted))
	f.add(t, saving("A", "2024-03-03", 999, StatusPending))
	for _, tr := range []Transfer{
		{FromAccountID: "A", ToAccountID: "B", Amount: dec(50), Date: day("2024-03-04"), Status: StatusCompleted},
		{FromAccountID: "B", ToAccountID: "A", Amount: dec(20), Date: day("2024-03-04"), Status: StatusCompleted},
		{FromAccountID: "A", ToAccountID: "B", Amount: dec(999), Date: day("2024-03-04"), Status: StatusPending},
	} {
		if _, err := f.CreateTransfer(tr); err != nil {
			t.Fatalf("CreateTransfer() error = %v", err)
		}
	}

	testCases := []struct {
		account string
		want    string
	}{
		{"A", "669.75"}, // 1000 - 100.255 - 200 - 50 + 20, rounded
		{"B", "30.00"},
	}
	for _, tc := range testCases {
		t.Run(tc.account, func(t *testing.T) {
			if got := CalculateBalance(tc.account, f.Universe()).StringFixed(2); got != tc.want {
				t.Errorf("CalculateBalance(%s) = %s, want %s", tc.account, got, tc.want)
			}
		})
	}
}

func TestValidateAccountBalance(t *testing.T) {
	f := newFixture(t)
	f.add(t, income("A", "2024-03-01", 1000, StatusReceived))

	check, err := f.ValidateAccountBalance("A")
	if err != nil {
		t.Fatalf("ValidateAccountBalance() error = %v", err)
	}
	if !check.IsValid {
		t.Errorf("ValidateAccountBalance() = %+v, want valid", check)
	}

	drift := dec(1000.005)
	if _, err := f.UpdateAccount("A", AccountPatch{CurrentBalance: &drift}); err != nil {
		t.Fatal(err)
	}
	if check, _ := f.ValidateAccountBalance("A"); !check.IsValid {
		t.Errorf("ValidateAccountBalance() with sub-cent noise = %+v, want valid", check)
	}

	drift = dec(1200)
	if _, err := f.UpdateAccount("A", AccountPatch{CurrentBalance: &drift}); err != nil {
		t.Fatal(err)
	}
	check, _ = f.ValidateAccountBalance("A")
	if check.IsValid || !check.Difference.Equal(dec(200)) {
		t.Errorf("ValidateAccountBalance() = %+v, want invalid with difference 200", check)
	}

	if _, err := f.ValidateAccountBalance("unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ValidateAccountBalance(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestRecalculateAllAccountBalances(t *testing.T) {
	f := newFixture(t)
	f.add(t, income("A", "2024-03-01", 1000, StatusReceived))
	f.add(t, expense("B", "2024-03-01", 250, StatusPaid, "CCBill"))
	wrong := dec(42)
	for _, id := range []string{"A", "B"} {
		if _, err := f.UpdateAccount(id, AccountPatch{CurrentBalance: &wrong}); err != nil {
			t.Fatal(err)
		}
	}

	if got := len(f.ValidateAllAccountBalances()); got != 2 {
		t.Fatalf("ValidateAllAccountBalances() = %d discrepancies, want 2", got)
	}

	checks := f.RecalculateAllAccountBalances()
	if len(checks) != 2 || checks[0].IsValid || checks[1].IsValid {
		t.Errorf("RecalculateAllAccountBalances() = %+v, want the two stale checks", checks)
	}

	for _, id := range []string{"A", "B"} {
		check, err := f.ValidateAccountBalance(id)
		if err != nil || !check.IsValid {
			t.Errorf("after recalc ValidateAccountBalance(%s) = %+v, %v, want valid", id, check, err)
		}
	}
	if got := f.ValidateAllAccountBalances(); len(got) != 0 {
		t.Errorf("after recalc ValidateAllAccountBalances() = %+v, want none", got)
	}
	if b, _ := f.Account("B"); !b.CurrentBalance.Equal(dec(-250)) {
		t.Errorf("balance of B = %s, want -250", b.CurrentBalance)
	}
}

func TestIncrementalMatchesFullRecompute(t *testing.T) {
	f := newFixture(t)
	tx1 := f.add(t, income("A", "2024-03-01", 1234.56, StatusPending))
	tx2 := f.add(t, expense("A", "2024-03-02", 78.9, StatusPending, "Maintenance"))
	f.add(t, saving("A", "2024-03-03", 100, StatusCompleted))
	received, paid := StatusReceived, StatusPaid
	amount := dec(80.1)
	steps := []func() error{
		func() error { _, err := f.UpdateTransaction(tx1.ID, TransactionPatch{Status: &received}); return err },
		func() error { _, err := f.UpdateTransaction(tx2.ID, TransactionPatch{Status: &paid}); return err },
		func() error { _, err := f.UpdateTransaction(tx2.ID, TransactionPatch{Amount: &amount}); return err },
		func() error { return f.DeleteTransaction(tx1.ID) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d error = %v", i, err)
		}
		if got := f.ValidateAllAccountBalances(); len(got) != 0 {
			t.Errorf("step %d: incremental and full balances differ: %+v", i, got)
		}
	}
}

func TestNegativeBalanceIsOnlyAWarning(t *testing.T) {
	var buf warnBuffer
	l := NewLedger(WithLogger(buf.logger()))
	if _, err := l.CreateBank(Bank{ID: "b", Name: "Bank", Type: BankTypeBank}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.CreateAccount(Account{ID: "cc", BankID: "b", Name: "Card", Type: AccountCreditCard}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.CreateAccount(Account{ID: "sav", BankID: "b", Name: "Savings", Type: AccountSavings}); err != nil {
		t.Fatal(err)
	}

	if _, err := l.CreateTransaction(Transaction{Kind: Expense, AccountID: "cc", Date: day("2024-03-01"), Amount: dec(10), Status: StatusPaid, Bucket: "CCBill"}); err != nil {
		t.Fatalf("CreateTransaction(credit card) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("negative credit card balance logged %q, want nothing", buf.String())
	}

	if _, err := l.CreateTransaction(Transaction{Kind: Expense, AccountID: "sav", Date: day("2024-03-01"), Amount: dec(10), Status: StatusPaid, Bucket: "Expense"}); err != nil {
		t.Fatalf("CreateTransaction(savings) error = %v", err)
	}
	if a, _ := l.Account("sav"); !a.CurrentBalance.Equal(dec(-10)) {
		t.Errorf("balance = %s, want -10", a.CurrentBalance)
	}
	if !buf.contains("account balance is negative") {
		t.Errorf("negative savings balance logged %q, want a warning", buf.String())
	}
}
