package budget

import (
	"github.com/etnz/budget/date"
	"github.com/shopspring/decimal"
)

// ApplyDueDateZeroing returns 0 once today is strictly after the due date,
// amount otherwise. The transaction itself is untouched: only aggregated
// totals see the zero, and they see it again on every call.
func ApplyDueDateZeroing(amount decimal.Decimal, due *date.Date, today date.Date) decimal.Decimal {
	if due != nil && !due.IsZero() && today.After(*due) {
		return decimal.Zero
	}
	return amount
}
