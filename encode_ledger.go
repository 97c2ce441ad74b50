package budget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// BackupVersion is the version of the backup documents written by this package.
const BackupVersion = "2.0"

// BackupData holds every ledger collection, under the names of the backup format.
type BackupData struct {
	Banks                         []Bank        `json:"banks"`
	BankAccounts                  []Account     `json:"bankAccounts"`
	IncomeTransactions            []Transaction `json:"incomeTransactions"`
	ExpenseTransactions           []Transaction `json:"expenseTransactions"`
	SavingsInvestmentTransactions []Transaction `json:"savingsInvestmentTransactions"`
	ExpenseEMIs                   []Template    `json:"expenseEMIs"`
	SavingsInvestmentEMIs         []Template    `json:"savingsInvestmentEMIs"`
	RecurringIncomes              []Template    `json:"recurringIncomes"`
	RecurringExpenses             []Template    `json:"recurringExpenses"`
	RecurringSavingsInvestments   []Template    `json:"recurringSavingsInvestments"`
	Transfers                     []Transfer    `json:"transfers"`
}

// Backup is the whole ledger as one JSON document.
type Backup struct {
	Version   string     `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
	Data      BackupData `json:"data"`
}

// ImportMode tells what to do with the collections already in the ledger.
type ImportMode int

const (
	// Replace drops every local record first.
	Replace ImportMode = iota
	// Merge keeps local records and skips incoming ones whose id already exists.
	Merge
)

// OrphanRecord is an incoming record refused on import, usually because it
// references a record that is not there.
type OrphanRecord struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Reason     string `json:"reason"`
}

// ImportReport summarizes an import.
type ImportReport struct {
	Imported map[string]int `json:"imported"`
	Skipped  map[string]int `json:"skipped"` // already present, in Merge mode
	Orphaned []OrphanRecord `json:"orphaned,omitempty"`
	Balances []BalanceCheck `json:"balances,omitempty"`
}

// NewBackup captures the ledger as a backup document stamped with now.
func NewBackup(l *Ledger, now time.Time) Backup {
	b := Backup{Version: BackupVersion, Timestamp: now.UTC()}
	b.Data.Banks = l.Banks()
	b.Data.BankAccounts = l.Accounts()
	b.Data.IncomeTransactions = l.Incomes()
	b.Data.ExpenseTransactions = l.Expenses()
	b.Data.SavingsInvestmentTransactions = l.Savings()
	b.Data.Transfers = l.Transfers()
	for _, t := range l.templates {
		switch t.Kind {
		case ExpenseEMI:
			b.Data.ExpenseEMIs = append(b.Data.ExpenseEMIs, t)
		case SavingsEMI:
			b.Data.SavingsInvestmentEMIs = append(b.Data.SavingsInvestmentEMIs, t)
		case RecurringIncome:
			b.Data.RecurringIncomes = append(b.Data.RecurringIncomes, t)
		case RecurringExpense:
			b.Data.RecurringExpenses = append(b.Data.RecurringExpenses, t)
		case RecurringSavings:
			b.Data.RecurringSavingsInvestments = append(b.Data.RecurringSavingsInvestments, t)
		}
	}
	return b
}

// ExportBackup writes the ledger as an indented backup document.
func ExportBackup(w io.Writer, l *Ledger, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewBackup(l, now)); err != nil {
		return fmt.Errorf("could not encode backup: %w", err)
	}
	return nil
}

// EncodeLedger writes the ledger in the backup format, stamped with the ledger clock.
func EncodeLedger(w io.Writer, l *Ledger) error { return ExportBackup(w, l, l.now()) }

// legacyCollections are collection names used by older backup versions.
var legacyCollections = map[string]string{
	"$.data.accounts":            "bankAccounts",
	"$.data.savingsTransactions": "savingsInvestmentTransactions",
}

// DecodeBackup reads a backup document. Documents of a newer major version
// are refused; older ones have their legacy collection names mapped.
func DecodeBackup(r io.Reader) (Backup, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Backup{}, fmt.Errorf("error reading from input: %w", err)
	}
	var b Backup
	if err := json.Unmarshal(raw, &b); err != nil {
		return Backup{}, fmt.Errorf("could not decode backup: %w", err)
	}
	major, err := majorVersion(b.Version)
	if err != nil {
		return Backup{}, err
	}
	supported, _ := majorVersion(BackupVersion)
	if major > supported {
		return Backup{}, fmt.Errorf("backup version %q is newer than supported version %q", b.Version, BackupVersion)
	}
	if major < supported {
		if err := decodeLegacy(raw, &b.Data); err != nil {
			return Backup{}, err
		}
	}
	return b, nil
}

func majorVersion(v string) (int, error) {
	if v == "" {
		return 1, nil // the first backups had no version
	}
	head, _, _ := strings.Cut(v, ".")
	major, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("invalid backup version %q: %w", v, err)
	}
	return major, nil
}

// decodeLegacy probes the raw document for legacy collection names, and
// decodes them into the current collection when that one is empty.
func decodeLegacy(raw []byte, data *BackupData) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var jobj any
	if err := dec.Decode(&jobj); err != nil {
		return fmt.Errorf("could not decode backup: %w", err)
	}
	targets := map[string]any{
		"bankAccounts":                  &data.BankAccounts,
		"savingsInvestmentTransactions": &data.SavingsInvestmentTransactions,
	}
	empty := map[string]bool{
		"bankAccounts":                  len(data.BankAccounts) == 0,
		"savingsInvestmentTransactions": len(data.SavingsInvestmentTransactions) == 0,
	}
	for path, name := range legacyCollections {
		if !empty[name] {
			continue
		}
		jval, err := jsonpath.Get(path, jobj)
		if err != nil || jval == nil {
			continue // not there
		}
		buf, err := json.Marshal(jval)
		if err != nil {
			return fmt.Errorf("could not read legacy collection %q: %w", path, err)
		}
		if err := json.Unmarshal(buf, targets[name]); err != nil {
			return fmt.Errorf("could not decode legacy collection %q: %w", path, err)
		}
	}
	return nil
}

// ImportBackup reads a backup document into the ledger, then recalculates
// every balance from the imported history.
func ImportBackup(r io.Reader, l *Ledger, mode ImportMode) (ImportReport, error) {
	b, err := DecodeBackup(r)
	if err != nil {
		return ImportReport{}, err
	}
	report := l.restore(b.Data, mode)
	report.Balances = l.RecalculateAllAccountBalances()
	return report, nil
}

// DecodeLedger reads a ledger saved by EncodeLedger. Balances are kept as
// saved, and any refused record is an error.
func DecodeLedger(r io.Reader, opts ...Option) (*Ledger, error) {
	b, err := DecodeBackup(r)
	if err != nil {
		return nil, err
	}
	l := NewLedger(opts...)
	report := l.restore(b.Data, Replace)
	var errs error
	for _, o := range report.Orphaned {
		errs = errors.Join(errs, fmt.Errorf("%s %q: %s", o.Collection, o.ID, o.Reason))
	}
	if errs != nil {
		return nil, fmt.Errorf("inconsistent ledger: %w", errs)
	}
	return l, nil
}

// restore inserts the records in dependency order. Records are validated as
// on create, but balances are not moved: they are taken as they come.
func (l *Ledger) restore(data BackupData, mode ImportMode) ImportReport {
	report := ImportReport{Imported: make(map[string]int), Skipped: make(map[string]int)}
	if mode == Replace {
		l.banks, l.accounts, l.transactions, l.transfers, l.templates = nil, nil, nil, nil, nil
	}
	orphan := func(collection, id string, err error) {
		report.Orphaned = append(report.Orphaned, OrphanRecord{Collection: collection, ID: id, Reason: err.Error()})
		l.log.Warn().Str("collection", collection).Str("id", id).Err(err).Msg("skipping record on import")
	}

	for _, b := range data.Banks {
		if _, ok := l.Bank(b.ID); ok {
			report.Skipped["banks"]++
			continue
		}
		if err := l.validateBank(b, true, BankPatch{}); err != nil {
			orphan("banks", b.ID, err)
			continue
		}
		l.banks = append(l.banks, b)
		report.Imported["banks"]++
	}
	for _, a := range data.BankAccounts {
		if _, ok := l.Account(a.ID); ok {
			report.Skipped["bankAccounts"]++
			continue
		}
		if err := l.validateAccount(a, true, AccountPatch{}); err != nil {
			orphan("bankAccounts", a.ID, err)
			continue
		}
		l.accounts = append(l.accounts, a)
		report.Imported["bankAccounts"]++
	}

	templates := []struct {
		name string
		kind TemplateKind
		list []Template
	}{
		{"recurringIncomes", RecurringIncome, data.RecurringIncomes},
		{"recurringExpenses", RecurringExpense, data.RecurringExpenses},
		{"recurringSavingsInvestments", RecurringSavings, data.RecurringSavingsInvestments},
		{"expenseEMIs", ExpenseEMI, data.ExpenseEMIs},
		{"savingsInvestmentEMIs", SavingsEMI, data.SavingsInvestmentEMIs},
	}
	for _, c := range templates {
		for _, t := range c.list {
			t.Kind = c.kind
			if _, ok := l.Template(t.ID); ok {
				report.Skipped[c.name]++
				continue
			}
			if err := l.validateTemplate(t, true, TemplatePatch{}); err != nil {
				orphan(c.name, t.ID, err)
				continue
			}
			l.templates = append(l.templates, t)
			report.Imported[c.name]++
		}
	}

	transactions := []struct {
		name string
		kind Kind
		list []Transaction
	}{
		{"incomeTransactions", Income, data.IncomeTransactions},
		{"expenseTransactions", Expense, data.ExpenseTransactions},
		{"savingsInvestmentTransactions", Savings, data.SavingsInvestmentTransactions},
	}
	for _, c := range transactions {
		for _, tx := range c.list {
			tx.Kind = c.kind
			if _, ok := l.Transaction(tx.ID); ok {
				report.Skipped[c.name]++
				continue
			}
			if err := l.validateTransaction(tx, true, TransactionPatch{}); err != nil {
				orphan(c.name, tx.ID, err)
				continue
			}
			l.transactions = append(l.transactions, tx)
			report.Imported[c.name]++
		}
	}

	for _, tr := range data.Transfers {
		if _, ok := l.Transfer(tr.ID); ok {
			report.Skipped["transfers"]++
			continue
		}
		if err := l.validateTransfer(tr, true, TransferPatch{}); err != nil {
			orphan("transfers", tr.ID, err)
			continue
		}
		l.transfers = append(l.transfers, tr)
		report.Imported["transfers"]++
	}
	return report
}
