package budget

import "github.com/shopspring/decimal"

// balanceEpsilon absorbs rounding noise when comparing balances.
var balanceEpsilon = decimal.NewFromFloat(0.01)

// BalanceCheck compares the persisted balance of an account with the one
// derived from its history.
type BalanceCheck struct {
	AccountID         string          `json:"accountId"`
	AccountName       string          `json:"accountName"`
	IsValid           bool            `json:"isValid"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	CalculatedBalance decimal.Decimal `json:"calculatedBalance"`
	Difference        decimal.Decimal `json:"difference"`
}

// CalculateBalance sums the settled effects touching accountID: received
// incomes add, paid expenses and completed savings subtract, completed
// transfers subtract on the source and add on the destination. The result is
// rounded to 2 decimal places.
func CalculateBalance(accountID string, u Universe) decimal.Decimal {
	total := decimal.Zero
	for _, list := range [][]Transaction{u.Incomes, u.Expenses, u.Savings} {
		for _, tx := range list {
			if tx.AccountID == accountID {
				total = total.Add(tx.effect())
			}
		}
	}
	for _, tr := range u.Transfers {
		from, to := tr.effects()
		if tr.FromAccountID == accountID {
			total = total.Add(from)
		}
		if tr.ToAccountID == accountID {
			total = total.Add(to)
		}
	}
	return total.Round(2)
}

// RecalculateAccountBalance returns the balance derived from the account
// history. An unknown account yields 0.
func (l *Ledger) RecalculateAccountBalance(accountID string) decimal.Decimal {
	if _, ok := l.Account(accountID); !ok {
		return decimal.Zero
	}
	return CalculateBalance(accountID, l.Universe())
}

func checkBalance(a Account, calculated decimal.Decimal) BalanceCheck {
	diff := a.CurrentBalance.Sub(calculated)
	return BalanceCheck{
		AccountID:         a.ID,
		AccountName:       a.Name,
		IsValid:           diff.Abs().LessThan(balanceEpsilon),
		CurrentBalance:    a.CurrentBalance,
		CalculatedBalance: calculated,
		Difference:        diff,
	}
}

// ValidateAccountBalance compares the persisted balance with the derived one.
func (l *Ledger) ValidateAccountBalance(accountID string) (BalanceCheck, error) {
	a, ok := l.Account(accountID)
	if !ok {
		return BalanceCheck{}, &NotFoundError{Entity: "account", ID: accountID}
	}
	return checkBalance(a, CalculateBalance(accountID, l.Universe())), nil
}

// ValidateAllAccountBalances returns the accounts whose persisted balance
// disagrees with their history.
func (l *Ledger) ValidateAllAccountBalances() []BalanceCheck {
	u := l.Universe()
	var discrepancies []BalanceCheck
	for _, a := range l.accounts {
		if c := checkBalance(a, CalculateBalance(a.ID, u)); !c.IsValid {
			discrepancies = append(discrepancies, c)
		}
	}
	return discrepancies
}

// RecalculateAllAccountBalances overwrites every balance with the derived one
// and returns the checks as they stood before the overwrite.
//
// It is a bulk repair. Normal writes keep balances in sync incrementally.
func (l *Ledger) RecalculateAllAccountBalances() []BalanceCheck {
	u := l.Universe()
	checks := make([]BalanceCheck, 0, len(l.accounts))
	for i := range l.accounts {
		a := &l.accounts[i]
		c := checkBalance(*a, CalculateBalance(a.ID, u))
		checks = append(checks, c)
		a.CurrentBalance = c.CalculatedBalance
		if a.CurrentBalance.IsNegative() && a.Type != AccountCreditCard {
			l.log.Warn().Str("account", a.ID).Str("name", a.Name).Str("balance", a.CurrentBalance.StringFixed(2)).Msg("account balance is negative")
		}
	}
	return checks
}
