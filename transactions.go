package budget

import (
	"slices"
	"time"

	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// Kind is the variant of a Transaction.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
	Savings Kind = "savings"
)

// Status is the lifecycle state of a transaction or a transfer.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusReceived  Status = "Received"  // settled income
	StatusPaid      Status = "Paid"      // settled expense
	StatusCompleted Status = "Completed" // settled savings or transfer
)

// Statuses returns the statuses allowed for this kind.
func (k Kind) Statuses() []Status {
	return []Status{StatusPending, k.Settled()}
}

// Settled returns the status that makes a transaction of this kind count
// toward the account balance and the "paid" totals.
func (k Kind) Settled() Status {
	switch k {
	case Income:
		return StatusReceived
	case Expense:
		return StatusPaid
	default:
		return StatusCompleted
	}
}

func (k Kind) valid() bool { return k == Income || k == Expense || k == Savings }

// Transaction is an income, an expense or a savings/investment movement on one account.
type Transaction struct {
	ID                  string          `json:"id"`
	Kind                Kind            `json:"kind"`
	AccountID           string          `json:"accountId"`
	Date                date.Date       `json:"date"`
	Amount              decimal.Decimal `json:"amount"`
	Status              Status          `json:"status"`
	Category            string          `json:"category,omitempty"` // income source, or savings type
	Bucket              string          `json:"bucket,omitempty"`   // expenses only
	Description         string          `json:"description,omitempty"`
	RecurringTemplateID string          `json:"recurringTemplateId,omitempty"`
	EMIID               string          `json:"emiId,omitempty"`
	DueDate             *date.Date      `json:"dueDate,omitempty"` // expenses only
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// IsSettled reports whether the transaction counts toward the account balance.
func (t Transaction) IsSettled() bool { return t.Status == t.Kind.Settled() }

// effect returns the signed change the transaction brings to its account balance.
func (t Transaction) effect() decimal.Decimal {
	if !t.IsSettled() {
		return decimal.Zero
	}
	if t.Kind == Income {
		return t.Amount
	}
	return t.Amount.Neg()
}

// MarshalJSON writes the fields in a stable order, and only the fields that
// make sense for the transaction kind.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var o orderedObject
	o.Set("id", t.ID).
		Set("kind", t.Kind).
		Set("accountId", t.AccountID).
		Set("date", t.Date).
		Set("amount", t.Amount).
		Set("status", t.Status).
		SetNonZero("category", t.Category)
	if t.Kind == Expense {
		o.SetNonZero("bucket", t.Bucket).SetNonZero("dueDate", t.DueDate)
	}
	o.SetNonZero("description", t.Description).
		SetNonZero("recurringTemplateId", t.RecurringTemplateID).
		SetNonZero("emiId", t.EMIID).
		Set("createdAt", t.CreatedAt).
		Set("updatedAt", t.UpdatedAt)
	return o.MarshalJSON()
}

// TransactionPatch lists the fields to change on a Transaction. Nil fields are
// left untouched. A DueDate pointing to the zero date clears the due date.
type TransactionPatch struct {
	AccountID           *string
	Date                *date.Date
	Amount              *decimal.Decimal
	Status              *Status
	Category            *string
	Bucket              *string
	Description         *string
	RecurringTemplateID *string
	EMIID               *string
	DueDate             *date.Date
}

// Transfer moves money between two accounts.
type Transfer struct {
	ID            string          `json:"id"`
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Date          date.Date       `json:"date"`
	Status        Status          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// effects returns the signed change on the source and on the destination account.
func (t Transfer) effects() (from, to decimal.Decimal) {
	if t.Status != StatusCompleted {
		return decimal.Zero, decimal.Zero
	}
	return t.Amount.Neg(), t.Amount
}

// TransferPatch lists the fields to change on a Transfer.
type TransferPatch struct {
	FromAccountID *string
	ToAccountID   *string
	Amount        *decimal.Decimal
	Date          *date.Date
	Status        *Status
	Notes         *string
}

// TemplateKind is the variant of a Template.
type TemplateKind string

const (
	RecurringIncome  TemplateKind = "recurringIncome"
	RecurringExpense TemplateKind = "recurringExpense"
	RecurringSavings TemplateKind = "recurringSavingsInvestment"
	ExpenseEMI       TemplateKind = "expenseEMI"
	SavingsEMI       TemplateKind = "savingsInvestmentEMI"
)

// IsEMI reports whether transactions point to such a template through EMIID
// rather than RecurringTemplateID.
func (k TemplateKind) IsEMI() bool { return k == ExpenseEMI || k == SavingsEMI }

// Generates returns the kind of the transactions the template stands for.
func (k TemplateKind) Generates() Kind {
	switch k {
	case RecurringIncome:
		return Income
	case RecurringExpense, ExpenseEMI:
		return Expense
	default:
		return Savings
	}
}

func (k TemplateKind) valid() bool {
	return slices.Contains([]TemplateKind{RecurringIncome, RecurringExpense, RecurringSavings, ExpenseEMI, SavingsEMI}, k)
}

// Template is a recurring transaction or an installment plan (EMI). Only its
// identity matters here: transactions reference it, and it cannot be deleted
// while they do.
type Template struct {
	ID           string          `json:"id"`
	Kind         TemplateKind    `json:"kind"`
	AccountID    string          `json:"accountId"`
	Name         string          `json:"name"`
	Amount       decimal.Decimal `json:"amount"`
	Bucket       string          `json:"bucket,omitempty"`
	Category     string          `json:"category,omitempty"`
	StartDate    date.Date       `json:"startDate"`
	EndDate      *date.Date      `json:"endDate,omitempty"`
	Installments int             `json:"installments,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

// TemplatePatch lists the fields to change on a Template.
type TemplatePatch struct {
	Name    *string
	Amount  *decimal.Decimal
	EndDate *date.Date
	Notes   *string
}

// ByAccount returns a predicate that keeps transactions of an account.
func ByAccount(accountID string) func(Transaction) bool {
	return func(t Transaction) bool { return t.AccountID == accountID }
}

// ByKind returns a predicate that keeps transactions of a kind.
func ByKind(k Kind) func(Transaction) bool {
	return func(t Transaction) bool { return t.Kind == k }
}

// InMonth returns a predicate that keeps transactions dated in month m.
func InMonth(m date.Month) func(Transaction) bool {
	return func(t Transaction) bool { return m.Contains(t.Date) }
}
