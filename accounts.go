package budget

import (
	"github.com/shopspring/decimal"
)

// BankType classifies a Bank.
type BankType string

const (
	BankTypeBank       BankType = "Bank"
	BankTypeCreditCard BankType = "CreditCard"
	BankTypeWallet     BankType = "Wallet"
)

func (t BankType) valid() bool {
	switch t {
	case BankTypeBank, BankTypeCreditCard, BankTypeWallet:
		return true
	}
	return false
}

// Bank is an institution holding accounts.
type Bank struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Type    BankType `json:"type"`
	Country string   `json:"country,omitempty"`
	Notes   string   `json:"notes,omitempty"`
}

// BankPatch lists the fields to change on a Bank. Nil fields are left untouched.
type BankPatch struct {
	Name    *string
	Type    *BankType
	Country *string
	Notes   *string
}

// AccountType classifies an Account.
type AccountType string

const (
	AccountSavings    AccountType = "Savings"
	AccountCurrent    AccountType = "Current"
	AccountCreditCard AccountType = "CreditCard"
	AccountWallet     AccountType = "Wallet"
)

func (t AccountType) valid() bool {
	switch t {
	case AccountSavings, AccountCurrent, AccountCreditCard, AccountWallet:
		return true
	}
	return false
}

// Account is held at a Bank. CurrentBalance is the persisted balance; it must
// stay reconcilable with the settled transactions touching the account.
type Account struct {
	ID                 string           `json:"id"`
	BankID             string           `json:"bankId"`
	Name               string           `json:"name"`
	Type               AccountType      `json:"accountType"`
	CurrentBalance     decimal.Decimal  `json:"currentBalance"`
	CreditLimit        *decimal.Decimal `json:"creditLimit,omitempty"`
	OutstandingBalance *decimal.Decimal `json:"outstandingBalance,omitempty"`
	StatementDate      int              `json:"statementDate,omitempty"` // day of month
	DueDate            int              `json:"dueDate,omitempty"`       // day of month
	AccountNumber      string           `json:"accountNumber,omitempty"`
	Notes              string           `json:"notes,omitempty"`
}

// AccountPatch lists the fields to change on an Account. Nil fields are left untouched.
type AccountPatch struct {
	BankID             *string
	Name               *string
	Type               *AccountType
	CurrentBalance     *decimal.Decimal
	CreditLimit        *decimal.Decimal
	OutstandingBalance *decimal.Decimal
	StatementDate      *int
	DueDate            *int
	AccountNumber      *string
	Notes              *string
}
