package budget

import (
	"errors"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/etnz/budget/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Ledger is the store of banks, accounts, transactions, transfers and
// templates. It is the single source of truth: every other view is derived
// from it.
//
// Collections keep their insertion order. Accessors return copies.
type Ledger struct {
	banks        []Bank
	accounts     []Account
	transactions []Transaction
	transfers    []Transfer
	templates    []Template

	log zerolog.Logger
	now func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger receiving non-fatal warnings.
func WithLogger(log zerolog.Logger) Option { return func(l *Ledger) { l.log = log } }

// WithClock sets the clock used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option { return func(l *Ledger) { l.now = now } }

// NewLedger creates an empty ledger.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func newID() string { return uuid.NewString() }

func indexByID[T any](list []T, id string, key func(T) string) int {
	return slices.IndexFunc(list, func(v T) bool { return key(v) == id })
}

func bankID(b Bank) string           { return b.ID }
func accountID(a Account) string     { return a.ID }
func transactionID(t Transaction) string { return t.ID }
func transferID(t Transfer) string   { return t.ID }
func templateID(t Template) string   { return t.ID }

// --- read access ---

// Bank returns the bank with this id.
func (l *Ledger) Bank(id string) (Bank, bool) {
	i := indexByID(l.banks, id, bankID)
	if i < 0 {
		return Bank{}, false
	}
	return l.banks[i], true
}

// Account returns the account with this id.
func (l *Ledger) Account(id string) (Account, bool) {
	i := indexByID(l.accounts, id, accountID)
	if i < 0 {
		return Account{}, false
	}
	return l.accounts[i], true
}

// Transaction returns the transaction with this id.
func (l *Ledger) Transaction(id string) (Transaction, bool) {
	i := indexByID(l.transactions, id, transactionID)
	if i < 0 {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

// Transfer returns the transfer with this id.
func (l *Ledger) Transfer(id string) (Transfer, bool) {
	i := indexByID(l.transfers, id, transferID)
	if i < 0 {
		return Transfer{}, false
	}
	return l.transfers[i], true
}

// Template returns the template with this id.
func (l *Ledger) Template(id string) (Template, bool) {
	i := indexByID(l.templates, id, templateID)
	if i < 0 {
		return Template{}, false
	}
	return l.templates[i], true
}

// Banks returns all banks.
func (l *Ledger) Banks() []Bank { return slices.Clone(l.banks) }

// Accounts returns all accounts.
func (l *Ledger) Accounts() []Account { return slices.Clone(l.accounts) }

// Transfers returns all transfers.
func (l *Ledger) Transfers() []Transfer { return slices.Clone(l.transfers) }

// Templates returns all templates.
func (l *Ledger) Templates() []Template { return slices.Clone(l.templates) }

// Transactions returns an iterator over the transactions accepted by all filters.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
	next:
		for _, tx := range l.transactions {
			for _, filter := range filters {
				if !filter(tx) {
					continue next
				}
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// Incomes returns all income transactions.
func (l *Ledger) Incomes() []Transaction { return slices.Collect(l.Transactions(ByKind(Income))) }

// Expenses returns all expense transactions.
func (l *Ledger) Expenses() []Transaction { return slices.Collect(l.Transactions(ByKind(Expense))) }

// Savings returns all savings/investment transactions.
func (l *Ledger) Savings() []Transaction { return slices.Collect(l.Transactions(ByKind(Savings))) }

// Universe returns a read snapshot of the ledger for the derived computations.
func (l *Ledger) Universe() Universe {
	return Universe{
		Accounts:  l.Accounts(),
		Incomes:   l.Incomes(),
		Expenses:  l.Expenses(),
		Savings:   l.Savings(),
		Transfers: l.Transfers(),
	}
}

// Months returns the months holding at least one transaction or transfer, sorted.
func (l *Ledger) Months() []date.Month {
	seen := make(map[date.Month]struct{})
	for _, tx := range l.transactions {
		seen[date.MonthOf(tx.Date)] = struct{}{}
	}
	for _, tr := range l.transfers {
		seen[date.MonthOf(tr.Date)] = struct{}{}
	}
	months := make([]date.Month, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	slices.SortFunc(months, func(a, b date.Month) int { return strings.Compare(a.String(), b.String()) })
	return months
}

// --- banks ---

func (l *Ledger) validateBank(b Bank, all bool, p BankPatch) error {
	var errs error
	if all || p.Name != nil {
		if strings.TrimSpace(b.Name) == "" {
			errs = errors.Join(errs, invalid("bank", b.ID, "name", "must not be empty"))
		}
	}
	if all || p.Type != nil {
		if !b.Type.valid() {
			errs = errors.Join(errs, invalid("bank", b.ID, "type", "must be one of Bank, CreditCard, Wallet, got %q", b.Type))
		}
	}
	return errs
}

// CreateBank validates and inserts a bank. An empty ID is generated.
func (l *Ledger) CreateBank(b Bank) (Bank, error) {
	if b.ID == "" {
		b.ID = newID()
	} else if _, exists := l.Bank(b.ID); exists {
		return Bank{}, invalid("bank", b.ID, "id", "already exists")
	}
	if err := l.validateBank(b, true, BankPatch{}); err != nil {
		return Bank{}, err
	}
	l.banks = append(l.banks, b)
	return b, nil
}

// UpdateBank applies the patch after validating the patched fields.
func (l *Ledger) UpdateBank(id string, p BankPatch) (Bank, error) {
	i := indexByID(l.banks, id, bankID)
	if i < 0 {
		return Bank{}, &NotFoundError{Entity: "bank", ID: id}
	}
	b := l.banks[i]
	setIf(&b.Name, p.Name)
	setIf(&b.Type, p.Type)
	setIf(&b.Country, p.Country)
	setIf(&b.Notes, p.Notes)
	if err := l.validateBank(b, false, p); err != nil {
		return Bank{}, err
	}
	l.banks[i] = b
	return b, nil
}

// DeleteBank deletes a bank that no account references.
func (l *Ledger) DeleteBank(id string) error {
	i := indexByID(l.banks, id, bankID)
	if i < 0 {
		return &NotFoundError{Entity: "bank", ID: id}
	}
	n := 0
	for _, a := range l.accounts {
		if a.BankID == id {
			n++
		}
	}
	if n > 0 {
		return &ReferentialError{Entity: "bank", ID: id, Dependents: n, Dependent: "account"}
	}
	l.banks = slices.Delete(l.banks, i, i+1)
	return nil
}

// --- accounts ---

func (l *Ledger) validateAccount(a Account, all bool, p AccountPatch) error {
	var errs error
	if all || p.BankID != nil {
		if _, ok := l.Bank(a.BankID); !ok {
			errs = errors.Join(errs, invalid("account", a.ID, "bankId", "references unknown bank %q", a.BankID))
		}
	}
	if all || p.Name != nil {
		if strings.TrimSpace(a.Name) == "" {
			errs = errors.Join(errs, invalid("account", a.ID, "name", "must not be empty"))
		}
	}
	if all || p.Type != nil {
		if !a.Type.valid() {
			errs = errors.Join(errs, invalid("account", a.ID, "accountType", "must be one of Savings, Current, CreditCard, Wallet, got %q", a.Type))
		}
	}
	if all || p.CreditLimit != nil {
		if a.CreditLimit != nil && a.CreditLimit.IsNegative() {
			errs = errors.Join(errs, invalid("account", a.ID, "creditLimit", "must not be negative"))
		}
	}
	if all || p.StatementDate != nil {
		if a.StatementDate < 0 || a.StatementDate > 31 {
			errs = errors.Join(errs, invalid("account", a.ID, "statementDate", "must be a day of month, got %d", a.StatementDate))
		}
	}
	if all || p.DueDate != nil {
		if a.DueDate < 0 || a.DueDate > 31 {
			errs = errors.Join(errs, invalid("account", a.ID, "dueDate", "must be a day of month, got %d", a.DueDate))
		}
	}
	return errs
}

// CreateAccount validates and inserts an account.
func (l *Ledger) CreateAccount(a Account) (Account, error) {
	if a.ID == "" {
		a.ID = newID()
	} else if _, exists := l.Account(a.ID); exists {
		return Account{}, invalid("account", a.ID, "id", "already exists")
	}
	if err := l.validateAccount(a, true, AccountPatch{}); err != nil {
		return Account{}, err
	}
	a.CurrentBalance = a.CurrentBalance.Round(2)
	l.accounts = append(l.accounts, a)
	return a, nil
}

// UpdateAccount applies the patch after validating the patched fields.
func (l *Ledger) UpdateAccount(id string, p AccountPatch) (Account, error) {
	i := indexByID(l.accounts, id, accountID)
	if i < 0 {
		return Account{}, &NotFoundError{Entity: "account", ID: id}
	}
	a := l.accounts[i]
	setIf(&a.BankID, p.BankID)
	setIf(&a.Name, p.Name)
	setIf(&a.Type, p.Type)
	setIf(&a.CurrentBalance, p.CurrentBalance)
	setPtrIf(&a.CreditLimit, p.CreditLimit)
	setPtrIf(&a.OutstandingBalance, p.OutstandingBalance)
	setIf(&a.StatementDate, p.StatementDate)
	setIf(&a.DueDate, p.DueDate)
	setIf(&a.AccountNumber, p.AccountNumber)
	setIf(&a.Notes, p.Notes)
	if err := l.validateAccount(a, false, p); err != nil {
		return Account{}, err
	}
	l.accounts[i] = a
	return a, nil
}

// DeleteAccount deletes an account that no transaction, transfer or template references.
func (l *Ledger) DeleteAccount(id string) error {
	i := indexByID(l.accounts, id, accountID)
	if i < 0 {
		return &NotFoundError{Entity: "account", ID: id}
	}
	n := 0
	for _, tx := range l.transactions {
		if tx.AccountID == id {
			n++
		}
	}
	for _, tr := range l.transfers {
		if tr.FromAccountID == id || tr.ToAccountID == id {
			n++
		}
	}
	for _, tp := range l.templates {
		if tp.AccountID == id {
			n++
		}
	}
	if n > 0 {
		return &ReferentialError{Entity: "account", ID: id, Dependents: n, Dependent: "transaction, transfer or template"}
	}
	l.accounts = slices.Delete(l.accounts, i, i+1)
	return nil
}

// adjustBalance adds delta to the account balance. A negative result on a
// non credit account is only a warning.
func (l *Ledger) adjustBalance(id string, delta decimal.Decimal) {
	if delta.IsZero() {
		return
	}
	i := indexByID(l.accounts, id, accountID)
	if i < 0 {
		return
	}
	a := &l.accounts[i]
	a.CurrentBalance = a.CurrentBalance.Add(delta).Round(2)
	if a.CurrentBalance.IsNegative() && a.Type != AccountCreditCard {
		l.log.Warn().
			Str("account", a.ID).
			Str("name", a.Name).
			Str("balance", a.CurrentBalance.StringFixed(2)).
			Msg("account balance is negative")
	}
}

// --- transactions ---

func (l *Ledger) validateTransaction(t Transaction, all bool, p TransactionPatch) error {
	var errs error
	add := func(field, constraint string, args ...any) {
		errs = errors.Join(errs, invalid("transaction", t.ID, field, constraint, args...))
	}
	if all && !t.Kind.valid() {
		add("kind", "must be one of income, expense, savings, got %q", t.Kind)
		return errs
	}
	if all || p.AccountID != nil {
		if _, ok := l.Account(t.AccountID); !ok {
			add("accountId", "references unknown account %q", t.AccountID)
		}
	}
	if all || p.Date != nil {
		if t.Date.IsZero() {
			add("date", "must not be empty")
		}
	}
	if all || p.Amount != nil {
		if !t.Amount.IsPositive() {
			add("amount", "must be positive, got %s", t.Amount)
		}
	}
	if all || p.Status != nil {
		if !slices.Contains(t.Kind.Statuses(), t.Status) {
			add("status", "must be one of %v for %s, got %q", t.Kind.Statuses(), t.Kind, t.Status)
		}
	}
	if all || p.Bucket != nil {
		switch {
		case t.Kind == Expense && t.Bucket == "":
			add("bucket", "must not be empty for an expense")
		case t.Kind == Expense:
			if _, ok := LookupBucket(t.Bucket); !ok {
				add("bucket", "references unknown bucket %q", t.Bucket)
			}
		case t.Bucket != "":
			add("bucket", "only applies to expenses")
		}
	}
	if all || p.DueDate != nil {
		if t.DueDate != nil && t.Kind != Expense {
			add("dueDate", "only applies to expenses")
		}
	}
	if all || p.RecurringTemplateID != nil {
		if t.RecurringTemplateID != "" {
			if tp, ok := l.Template(t.RecurringTemplateID); !ok || tp.Kind.IsEMI() {
				add("recurringTemplateId", "references unknown recurring template %q", t.RecurringTemplateID)
			}
		}
	}
	if all || p.EMIID != nil {
		if t.EMIID != "" {
			if tp, ok := l.Template(t.EMIID); !ok || !tp.Kind.IsEMI() {
				add("emiId", "references unknown EMI %q", t.EMIID)
			}
		}
	}
	return errs
}

// CreateTransaction validates and inserts a transaction, then applies its
// settled effect to the account balance.
func (l *Ledger) CreateTransaction(t Transaction) (Transaction, error) {
	if t.ID == "" {
		t.ID = newID()
	} else if _, exists := l.Transaction(t.ID); exists {
		return Transaction{}, invalid("transaction", t.ID, "id", "already exists")
	}
	if t.DueDate != nil && t.DueDate.IsZero() {
		t.DueDate = nil
	}
	if err := l.validateTransaction(t, true, TransactionPatch{}); err != nil {
		return Transaction{}, err
	}
	now := l.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	l.transactions = append(l.transactions, t)
	l.adjustBalance(t.AccountID, t.effect())
	return t, nil
}

// UpdateTransaction applies the patch after validating the patched fields,
// and moves the balance by the difference between the old and new effects.
func (l *Ledger) UpdateTransaction(id string, p TransactionPatch) (Transaction, error) {
	i := indexByID(l.transactions, id, transactionID)
	if i < 0 {
		return Transaction{}, &NotFoundError{Entity: "transaction", ID: id}
	}
	old := l.transactions[i]
	t := old
	setIf(&t.AccountID, p.AccountID)
	setIf(&t.Date, p.Date)
	setIf(&t.Amount, p.Amount)
	setIf(&t.Status, p.Status)
	setIf(&t.Category, p.Category)
	setIf(&t.Bucket, p.Bucket)
	setIf(&t.Description, p.Description)
	setIf(&t.RecurringTemplateID, p.RecurringTemplateID)
	setIf(&t.EMIID, p.EMIID)
	if p.DueDate != nil {
		if p.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			due := *p.DueDate
			t.DueDate = &due
		}
	}
	if err := l.validateTransaction(t, false, p); err != nil {
		return Transaction{}, err
	}
	t.UpdatedAt = l.now().UTC()
	l.transactions[i] = t
	l.adjustBalance(old.AccountID, old.effect().Neg())
	l.adjustBalance(t.AccountID, t.effect())
	return t, nil
}

// DeleteTransaction removes a transaction and reverts its settled effect.
func (l *Ledger) DeleteTransaction(id string) error {
	i := indexByID(l.transactions, id, transactionID)
	if i < 0 {
		return &NotFoundError{Entity: "transaction", ID: id}
	}
	old := l.transactions[i]
	l.transactions = slices.Delete(l.transactions, i, i+1)
	l.adjustBalance(old.AccountID, old.effect().Neg())
	return nil
}

// --- transfers ---

func (l *Ledger) validateTransfer(t Transfer, all bool, p TransferPatch) error {
	var errs error
	add := func(field, constraint string, args ...any) {
		errs = errors.Join(errs, invalid("transfer", t.ID, field, constraint, args...))
	}
	if all || p.FromAccountID != nil {
		if _, ok := l.Account(t.FromAccountID); !ok {
			add("fromAccountId", "references unknown account %q", t.FromAccountID)
		}
	}
	if all || p.ToAccountID != nil {
		if _, ok := l.Account(t.ToAccountID); !ok {
			add("toAccountId", "references unknown account %q", t.ToAccountID)
		}
	}
	if all || p.FromAccountID != nil || p.ToAccountID != nil {
		if t.FromAccountID == t.ToAccountID {
			add("toAccountId", "must differ from fromAccountId")
		}
	}
	if all || p.Amount != nil {
		if !t.Amount.IsPositive() {
			add("amount", "must be positive, got %s", t.Amount)
		}
	}
	if all || p.Date != nil {
		if t.Date.IsZero() {
			add("date", "must not be empty")
		}
	}
	if all || p.Status != nil {
		if t.Status != StatusPending && t.Status != StatusCompleted {
			add("status", "must be one of Pending, Completed, got %q", t.Status)
		}
	}
	return errs
}

// CreateTransfer validates and inserts a transfer and applies it to both balances when completed.
func (l *Ledger) CreateTransfer(t Transfer) (Transfer, error) {
	if t.ID == "" {
		t.ID = newID()
	} else if _, exists := l.Transfer(t.ID); exists {
		return Transfer{}, invalid("transfer", t.ID, "id", "already exists")
	}
	if err := l.validateTransfer(t, true, TransferPatch{}); err != nil {
		return Transfer{}, err
	}
	now := l.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	l.transfers = append(l.transfers, t)
	from, to := t.effects()
	l.adjustBalance(t.FromAccountID, from)
	l.adjustBalance(t.ToAccountID, to)
	return t, nil
}

// UpdateTransfer applies the patch and moves both balances accordingly.
func (l *Ledger) UpdateTransfer(id string, p TransferPatch) (Transfer, error) {
	i := indexByID(l.transfers, id, transferID)
	if i < 0 {
		return Transfer{}, &NotFoundError{Entity: "transfer", ID: id}
	}
	old := l.transfers[i]
	t := old
	setIf(&t.FromAccountID, p.FromAccountID)
	setIf(&t.ToAccountID, p.ToAccountID)
	setIf(&t.Amount, p.Amount)
	setIf(&t.Date, p.Date)
	setIf(&t.Status, p.Status)
	setIf(&t.Notes, p.Notes)
	if err := l.validateTransfer(t, false, p); err != nil {
		return Transfer{}, err
	}
	t.UpdatedAt = l.now().UTC()
	l.transfers[i] = t
	oldFrom, oldTo := old.effects()
	l.adjustBalance(old.FromAccountID, oldFrom.Neg())
	l.adjustBalance(old.ToAccountID, oldTo.Neg())
	from, to := t.effects()
	l.adjustBalance(t.FromAccountID, from)
	l.adjustBalance(t.ToAccountID, to)
	return t, nil
}

// DeleteTransfer removes a transfer and reverts its effects.
func (l *Ledger) DeleteTransfer(id string) error {
	i := indexByID(l.transfers, id, transferID)
	if i < 0 {
		return &NotFoundError{Entity: "transfer", ID: id}
	}
	old := l.transfers[i]
	l.transfers = slices.Delete(l.transfers, i, i+1)
	from, to := old.effects()
	l.adjustBalance(old.FromAccountID, from.Neg())
	l.adjustBalance(old.ToAccountID, to.Neg())
	return nil
}

// --- templates ---

func (l *Ledger) validateTemplate(t Template, all bool, p TemplatePatch) error {
	var errs error
	add := func(field, constraint string, args ...any) {
		errs = errors.Join(errs, invalid("template", t.ID, field, constraint, args...))
	}
	if all {
		if !t.Kind.valid() {
			add("kind", "unknown template kind %q", t.Kind)
		}
		if _, ok := l.Account(t.AccountID); !ok {
			add("accountId", "references unknown account %q", t.AccountID)
		}
		if t.StartDate.IsZero() {
			add("startDate", "must not be empty")
		}
		if t.Bucket != "" {
			if _, ok := LookupBucket(t.Bucket); !ok {
				add("bucket", "references unknown bucket %q", t.Bucket)
			}
		}
		if t.Installments < 0 {
			add("installments", "must not be negative")
		}
	}
	if all || p.Name != nil {
		if strings.TrimSpace(t.Name) == "" {
			add("name", "must not be empty")
		}
	}
	if all || p.Amount != nil {
		if !t.Amount.IsPositive() {
			add("amount", "must be positive, got %s", t.Amount)
		}
	}
	if all || p.EndDate != nil {
		if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
			add("endDate", "must not be before startDate %s", t.StartDate)
		}
	}
	return errs
}

// CreateTemplate validates and inserts a recurring template or an EMI.
func (l *Ledger) CreateTemplate(t Template) (Template, error) {
	if t.ID == "" {
		t.ID = newID()
	} else if _, exists := l.Template(t.ID); exists {
		return Template{}, invalid("template", t.ID, "id", "already exists")
	}
	if err := l.validateTemplate(t, true, TemplatePatch{}); err != nil {
		return Template{}, err
	}
	l.templates = append(l.templates, t)
	return t, nil
}

// UpdateTemplate applies the patch after validating the patched fields.
func (l *Ledger) UpdateTemplate(id string, p TemplatePatch) (Template, error) {
	i := indexByID(l.templates, id, templateID)
	if i < 0 {
		return Template{}, &NotFoundError{Entity: "template", ID: id}
	}
	t := l.templates[i]
	setIf(&t.Name, p.Name)
	setIf(&t.Amount, p.Amount)
	setIf(&t.Notes, p.Notes)
	if p.EndDate != nil {
		if p.EndDate.IsZero() {
			t.EndDate = nil
		} else {
			end := *p.EndDate
			t.EndDate = &end
		}
	}
	if err := l.validateTemplate(t, false, p); err != nil {
		return Template{}, err
	}
	l.templates[i] = t
	return t, nil
}

// DeleteTemplate deletes a template that no transaction references.
func (l *Ledger) DeleteTemplate(id string) error {
	i := indexByID(l.templates, id, templateID)
	if i < 0 {
		return &NotFoundError{Entity: "template", ID: id}
	}
	n := 0
	for _, tx := range l.transactions {
		if tx.RecurringTemplateID == id || tx.EMIID == id {
			n++
		}
	}
	if n > 0 {
		return &ReferentialError{Entity: "template", ID: id, Dependents: n, Dependent: "transaction"}
	}
	l.templates = slices.Delete(l.templates, i, i+1)
	return nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setPtrIf[T any](dst **T, v *T) {
	if v != nil {
		c := *v
		*dst = &c
	}
}
