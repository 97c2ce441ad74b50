package budget

import "slices"

// Bucket classifies expense transactions in the monthly plan.
type Bucket struct {
	ID            string
	Name          string
	Color         string
	DefaultStatus Status
}

// Buckets is the configured list of buckets, in canonical order.
var Buckets = []Bucket{
	{ID: "Balance", Name: "Balance", Color: "#2563eb", DefaultStatus: StatusPending},
	{ID: "Savings", Name: "Savings", Color: "#16a34a", DefaultStatus: StatusPending},
	{ID: "MutualFunds", Name: "Mutual Funds", Color: "#9333ea", DefaultStatus: StatusPending},
	{ID: "CCBill", Name: "CC Bill", Color: "#dc2626", DefaultStatus: StatusPending},
	{ID: "Maintenance", Name: "Maintenance", Color: "#ea580c", DefaultStatus: StatusPending},
	{ID: "Expense", Name: "Expense", Color: "#64748b", DefaultStatus: StatusPending},
}

// BucketOrder returns the canonical bucket ids.
func BucketOrder() []string {
	ids := make([]string, len(Buckets))
	for i, b := range Buckets {
		ids[i] = b.ID
	}
	return ids
}

// LookupBucket returns the configured bucket with this id.
func LookupBucket(id string) (Bucket, bool) {
	i := slices.IndexFunc(Buckets, func(b Bucket) bool { return b.ID == id })
	if i < 0 {
		return Bucket{}, false
	}
	return Buckets[i], true
}
