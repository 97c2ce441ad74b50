package budget

import (
	"testing"

	"github.com/etnz/budget/date"
)

func TestApplyDueDateZeroing(t *testing.T) {
	due := day("2024-01-31")
	testCases := []struct {
		name   string
		due    *date.Date
		today  string
		amount float64
		want   float64
	}{
		{"no due date", nil, "2030-01-01", 1000, 1000},
		{"zero due date", &date.Date{}, "2030-01-01", 1000, 1000},
		{"before due date", &due, "2024-01-30", 1000, 1000},
		{"on due date", &due, "2024-01-31", 1000, 1000},
		{"day after due date", &due, "2024-02-01", 1000, 0},
		{"long after due date", &due, "2024-06-01", 0.01, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyDueDateZeroing(dec(tc.amount), tc.due, day(tc.today))
			if !got.Equal(dec(tc.want)) {
				t.Errorf("ApplyDueDateZeroing(%v, %v, %s) = %s, want %v", tc.amount, tc.due, tc.today, got, tc.want)
			}
		})
	}
}
