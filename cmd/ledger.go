package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// visited returns the names of the flags set on the command line.
func visited(f *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return set
}

// amountFlag parses an amount flag value.
func amountFlag(name, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid -%s %q: %w", name, v, err)
	}
	return d, nil
}

// dateFlag parses a date flag value, empty meaning no date.
func dateFlag(name, v string) (*date.Date, error) {
	if v == "" {
		return nil, nil
	}
	d, err := date.Parse(v)
	if err != nil {
		return nil, fmt.Errorf("invalid -%s %q: %w", name, v, err)
	}
	return &d, nil
}

func ptr[T any](v T) *T { return &v }

// bankCmd creates or updates a bank.
type bankCmd struct {
	id      string
	name    string
	typ     string
	country string
	notes   string
	update  bool
}

func (*bankCmd) Name() string     { return "bank" }
func (*bankCmd) Synopsis() string { return "create or update a bank" }
func (*bankCmd) Usage() string {
	return `ftk bank [-u] [-id <id>] -name <name> [-type Bank|CreditCard|Wallet] [-country <country>] [-notes <notes>]

  Creates a bank. With -u, updates the bank -id with the flags given.
`
}

func (c *bankCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "bank id (generated when empty)")
	f.StringVar(&c.name, "name", "", "bank name")
	f.StringVar(&c.typ, "type", string(budget.BankTypeBank), "bank type")
	f.StringVar(&c.country, "country", "", "country")
	f.StringVar(&c.notes, "notes", "", "free notes")
	f.BoolVar(&c.update, "u", false, "update an existing bank")
}

func (c *bankCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := visited(f)
	return openAndSave(func(w *workspace) error {
		if !c.update {
			b, err := w.ledger.CreateBank(budget.Bank{ID: c.id, Name: c.name, Type: budget.BankType(c.typ), Country: c.country, Notes: c.notes})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Created bank %q\n", b.ID)
			return nil
		}
		var p budget.BankPatch
		if set["name"] {
			p.Name = &c.name
		}
		if set["type"] {
			p.Type = ptr(budget.BankType(c.typ))
		}
		if set["country"] {
			p.Country = &c.country
		}
		if set["notes"] {
			p.Notes = &c.notes
		}
		_, err := w.ledger.UpdateBank(c.id, p)
		return err
	})
}

// accountCmd creates or updates an account.
type accountCmd struct {
	id          string
	bank        string
	name        string
	typ         string
	balance     string
	creditLimit string
	number      string
	notes       string
	update      bool
}

func (*accountCmd) Name() string     { return "account" }
func (*accountCmd) Synopsis() string { return "create or update an account" }
func (*accountCmd) Usage() string {
	return `ftk account [-u] [-id <id>] -bank <bank id> -name <name> [-type Savings|Current|CreditCard|Wallet] [-balance <amount>]

  Creates an account held at a bank. With -u, updates the account -id with the
  flags given. Setting -balance by hand makes the account drift from its
  history until the next 'ftk recalc'.
`
}

func (c *accountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "account id (generated when empty)")
	f.StringVar(&c.bank, "bank", "", "id of the bank holding the account")
	f.StringVar(&c.name, "name", "", "account name")
	f.StringVar(&c.typ, "type", string(budget.AccountSavings), "account type")
	f.StringVar(&c.balance, "balance", "0", "current balance")
	f.StringVar(&c.creditLimit, "limit", "", "credit limit, for credit cards")
	f.StringVar(&c.number, "number", "", "account number")
	f.StringVar(&c.notes, "notes", "", "free notes")
	f.BoolVar(&c.update, "u", false, "update an existing account")
}

func (c *accountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := visited(f)
	balance, err := amountFlag("balance", c.balance)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	var limit *decimal.Decimal
	if c.creditLimit != "" {
		l, err := amountFlag("limit", c.creditLimit)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		limit = &l
	}
	return openAndSave(func(w *workspace) error {
		if !c.update {
			a, err := w.ledger.CreateAccount(budget.Account{
				ID: c.id, BankID: c.bank, Name: c.name, Type: budget.AccountType(c.typ),
				CurrentBalance: balance, CreditLimit: limit, AccountNumber: c.number, Notes: c.notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Created account %q\n", a.ID)
			return nil
		}
		var p budget.AccountPatch
		if set["bank"] {
			p.BankID = &c.bank
		}
		if set["name"] {
			p.Name = &c.name
		}
		if set["type"] {
			p.Type = ptr(budget.AccountType(c.typ))
		}
		if set["balance"] {
			p.CurrentBalance = &balance
		}
		if set["limit"] {
			p.CreditLimit = limit
		}
		if set["number"] {
			p.AccountNumber = &c.number
		}
		if set["notes"] {
			p.Notes = &c.notes
		}
		_, err := w.ledger.UpdateAccount(c.id, p)
		return err
	})
}

// transactionCmd creates or updates an income, an expense or a savings transaction.
type transactionCmd struct {
	kind     budget.Kind
	id       string
	account  string
	date     string
	amount   string
	status   string
	category string
	bucket   string
	desc     string
	template string
	emi      string
	due      string
	update   bool
}

func (c *transactionCmd) Name() string { return string(c.kind) }
func (c *transactionCmd) Synopsis() string {
	return fmt.Sprintf("record or update an %s transaction", c.kind)
}
func (c *transactionCmd) Usage() string {
	return fmt.Sprintf(`ftk %[1]s [-u] [-id <id>] -a <account> [-d <date>] -amount <amount> [-status %[2]s|%[3]s] ...

  Records an %[1]s on an account. Settled %[1]s moves the account balance.
  With -u, updates the transaction -id with the flags given.
`, c.kind, budget.StatusPending, c.kind.Settled())
}

func (c *transactionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transaction id (generated when empty)")
	f.StringVar(&c.account, "a", "", "account id")
	f.StringVar(&c.date, "d", date.Today().String(), "transaction date")
	f.StringVar(&c.amount, "amount", "0", "amount, strictly positive")
	f.StringVar(&c.status, "status", string(budget.StatusPending), "status")
	f.StringVar(&c.desc, "desc", "", "description")
	switch c.kind {
	case budget.Expense:
		f.StringVar(&c.bucket, "bucket", "", "bucket id")
		f.StringVar(&c.due, "due", "", "due date, after which a pending amount no longer counts in the month")
		f.StringVar(&c.emi, "emi", "", "id of the EMI template")
		f.StringVar(&c.template, "template", "", "id of the recurring template")
	default:
		f.StringVar(&c.category, "category", "", "category")
		f.StringVar(&c.template, "template", "", "id of the recurring template")
		if c.kind == budget.Savings {
			f.StringVar(&c.emi, "emi", "", "id of the EMI template")
		}
	}
	f.BoolVar(&c.update, "u", false, "update an existing transaction")
}

func (c *transactionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := visited(f)
	amount, err := amountFlag("amount", c.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	on, err := dateFlag("d", c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	due, err := dateFlag("due", c.due)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return openAndSave(func(w *workspace) error {
		if !c.update {
			tx := budget.Transaction{
				ID: c.id, Kind: c.kind, AccountID: c.account, Amount: amount, Status: budget.Status(c.status),
				Category: c.category, Bucket: c.bucket, Description: c.desc,
				RecurringTemplateID: c.template, EMIID: c.emi, DueDate: due,
			}
			if on != nil {
				tx.Date = *on
			}
			tx, err := w.ledger.CreateTransaction(tx)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Recorded %s %q\n", c.kind, tx.ID)
			return nil
		}
		var p budget.TransactionPatch
		if set["a"] {
			p.AccountID = &c.account
		}
		if set["d"] {
			p.Date = on
		}
		if set["amount"] {
			p.Amount = &amount
		}
		if set["status"] {
			p.Status = ptr(budget.Status(c.status))
		}
		if set["category"] {
			p.Category = &c.category
		}
		if set["bucket"] {
			p.Bucket = &c.bucket
		}
		if set["desc"] {
			p.Description = &c.desc
		}
		if set["template"] {
			p.RecurringTemplateID = &c.template
		}
		if set["emi"] {
			p.EMIID = &c.emi
		}
		if set["due"] {
			// an empty -due clears the due date
			p.DueDate = &date.Date{}
			if due != nil {
				p.DueDate = due
			}
		}
		_, err := w.ledger.UpdateTransaction(c.id, p)
		return err
	})
}

// transferCmd moves money between two accounts.
type transferCmd struct {
	id     string
	from   string
	to     string
	amount string
	date   string
	status string
	notes  string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "record a transfer between two accounts" }
func (*transferCmd) Usage() string {
	return `ftk transfer [-id <id>] -from <account> -to <account> -amount <amount> [-d <date>] [-status Pending|Completed]

  Records a transfer. A completed transfer moves both balances.
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "transfer id (generated when empty)")
	f.StringVar(&c.from, "from", "", "source account id")
	f.StringVar(&c.to, "to", "", "destination account id")
	f.StringVar(&c.amount, "amount", "0", "amount, strictly positive")
	f.StringVar(&c.date, "d", date.Today().String(), "transfer date")
	f.StringVar(&c.status, "status", string(budget.StatusCompleted), "status")
	f.StringVar(&c.notes, "notes", "", "free notes")
}

func (c *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := amountFlag("amount", c.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	return openAndSave(func(w *workspace) error {
		t, err := w.ledger.CreateTransfer(budget.Transfer{
			ID: c.id, FromAccountID: c.from, ToAccountID: c.to, Amount: amount, Date: on,
			Status: budget.Status(c.status), Notes: c.notes,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Recorded transfer %q\n", t.ID)
		return nil
	})
}

// templateCmd creates or updates a recurring template or an EMI.
type templateCmd struct {
	id           string
	kind         string
	account      string
	name         string
	amount       string
	bucket       string
	category     string
	start        string
	end          string
	installments int
	notes        string
	update       bool
}

func (*templateCmd) Name() string     { return "template" }
func (*templateCmd) Synopsis() string { return "create or update a recurring template or an EMI" }
func (*templateCmd) Usage() string {
	return `ftk template [-u] [-id <id>] -kind <kind> -a <account> -name <name> -amount <amount> -start <date> ...

  Kinds are recurringIncome, recurringExpense, recurringSavingsInvestment,
  expenseEMI and savingsInvestmentEMI. With -u, only -name, -amount, -end and
  -notes can change.
`
}

func (c *templateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "template id (generated when empty)")
	f.StringVar(&c.kind, "kind", string(budget.RecurringExpense), "template kind")
	f.StringVar(&c.account, "a", "", "account id")
	f.StringVar(&c.name, "name", "", "template name")
	f.StringVar(&c.amount, "amount", "0", "amount of each occurrence")
	f.StringVar(&c.bucket, "bucket", "", "bucket id, for expense kinds")
	f.StringVar(&c.category, "category", "", "category")
	f.StringVar(&c.start, "start", date.Today().String(), "start date")
	f.StringVar(&c.end, "end", "", "end date")
	f.IntVar(&c.installments, "n", 0, "number of installments, for EMIs")
	f.StringVar(&c.notes, "notes", "", "free notes")
	f.BoolVar(&c.update, "u", false, "update an existing template")
}

func (c *templateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := visited(f)
	amount, err := amountFlag("amount", c.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	start, err := dateFlag("start", c.start)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	end, err := dateFlag("end", c.end)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return openAndSave(func(w *workspace) error {
		if !c.update {
			t := budget.Template{
				ID: c.id, Kind: budget.TemplateKind(c.kind), AccountID: c.account, Name: c.name, Amount: amount,
				Bucket: c.bucket, Category: c.category, EndDate: end, Installments: c.installments, Notes: c.notes,
			}
			if start != nil {
				t.StartDate = *start
			}
			t, err := w.ledger.CreateTemplate(t)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Created template %q\n", t.ID)
			return nil
		}
		var p budget.TemplatePatch
		if set["name"] {
			p.Name = &c.name
		}
		if set["amount"] {
			p.Amount = &amount
		}
		if set["end"] {
			p.EndDate = &date.Date{}
			if end != nil {
				p.EndDate = end
			}
		}
		if set["notes"] {
			p.Notes = &c.notes
		}
		_, err := w.ledger.UpdateTemplate(c.id, p)
		return err
	})
}

// statusCmd changes the status of transactions or transfers.
type statusCmd struct{}

func (*statusCmd) Name() string     { return "status" }
func (*statusCmd) Synopsis() string { return "change the status of transactions or transfers" }
func (*statusCmd) Usage() string {
	return `ftk status <status> <id>...

  Sets the status of each transaction or transfer. Balances follow: settling
  a transaction applies its amount, unsettling it reverts it.
`
}
func (*statusCmd) SetFlags(*flag.FlagSet) {}

func (*statusCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: a status and at least one id are required.")
		return subcommands.ExitUsageError
	}
	status := budget.Status(f.Arg(0))
	return openAndSave(func(w *workspace) error {
		for _, id := range f.Args()[1:] {
			if _, ok := w.ledger.Transfer(id); ok {
				if _, err := w.ledger.UpdateTransfer(id, budget.TransferPatch{Status: &status}); err != nil {
					return err
				}
				continue
			}
			if _, err := w.ledger.UpdateTransaction(id, budget.TransactionPatch{Status: &status}); err != nil {
				return err
			}
		}
		return nil
	})
}

// deleteCmd deletes records.
type deleteCmd struct {
	entity string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete banks, accounts, transactions, transfers or templates" }
func (*deleteCmd) Usage() string {
	return `ftk delete -type <bank|account|transaction|transfer|template> <id>...

  Deletes records. A bank with accounts, an account with history and a
  template still referenced cannot be deleted.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.entity, "type", "transaction", "type of the records to delete")
}

func (c *deleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var del func(l *budget.Ledger, id string) error
	switch c.entity {
	case "bank":
		del = (*budget.Ledger).DeleteBank
	case "account":
		del = (*budget.Ledger).DeleteAccount
	case "transaction":
		del = (*budget.Ledger).DeleteTransaction
	case "transfer":
		del = (*budget.Ledger).DeleteTransfer
	case "template":
		del = (*budget.Ledger).DeleteTemplate
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown type %q\n", c.entity)
		return subcommands.ExitUsageError
	}
	return openAndSave(func(w *workspace) error {
		for _, id := range f.Args() {
			if err := del(w.ledger, id); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Deleted %s %q\n", c.entity, id)
		}
		return nil
	})
}
