package budget

import "github.com/shopspring/decimal"

// BucketTotals are per-bucket expense totals of a month, split by status.
// For every bucket, Pending + Paid == All; a bucket with no contribution has
// no key.
type BucketTotals struct {
	Pending map[string]decimal.Decimal `json:"pending"`
	Paid    map[string]decimal.Decimal `json:"paid"`
	All     map[string]decimal.Decimal `json:"all"`
}

// Total returns the sum of All over every bucket.
func (t BucketTotals) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range t.All {
		total = total.Add(v)
	}
	return total
}

// CalculateAggregatedBucketTotals sums the raw expenses of the month, grouped
// by bucket and split by status. It reads the expense list again instead of
// the month's bucket amounts, so due-date zeroing does not apply here.
//
// Only buckets in the month's order and accounts present in the month count.
func CalculateAggregatedBucketTotals(m *AggregatedMonth, expenses []Transaction) BucketTotals {
	totals := BucketTotals{
		Pending: make(map[string]decimal.Decimal),
		Paid:    make(map[string]decimal.Decimal),
		All:     make(map[string]decimal.Decimal),
	}
	buckets := make(map[string]bool, len(m.BucketOrder))
	for _, b := range m.BucketOrder {
		buckets[b] = true
	}
	accounts := make(map[string]bool, len(m.Accounts))
	for _, a := range m.Accounts {
		accounts[a.ID] = true
	}

	add := func(dst map[string]decimal.Decimal, bucket string, amount decimal.Decimal) {
		dst[bucket] = dst[bucket].Add(amount)
	}
	for _, tx := range expenses {
		if tx.Kind != Expense || !m.ID.Contains(tx.Date) || !buckets[tx.Bucket] || !accounts[tx.AccountID] {
			continue
		}
		if tx.IsSettled() {
			add(totals.Paid, tx.Bucket, tx.Amount)
		} else {
			add(totals.Pending, tx.Bucket, tx.Amount)
		}
		add(totals.All, tx.Bucket, tx.Amount)
	}
	return totals
}
