package budget

import (
	"encoding/json"
	"testing"
)

func TestFigure(t *testing.T) {
	testCases := []struct {
		name     string
		f        Figure
		wantJSON string
		noData   bool
		null     bool
	}{
		{"no data", NoData, "null", true, true},
		{"zero", Value(dec(0)), "0", false, true},
		{"negative", Value(dec(-12.5)), "-12.5", false, true},
		{"value", Value(dec(1500.25)), "1500.25", false, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := json.Marshal(tc.f)
			if err != nil {
				t.Fatalf("json.Marshal() error = %v", err)
			}
			if string(got) != tc.wantJSON {
				t.Errorf("json.Marshal() = %s, want %s", got, tc.wantJSON)
			}
			if tc.f.IsNoData() != tc.noData || tc.f.IsNull() != tc.null {
				t.Errorf("IsNoData(), IsNull() = %v, %v, want %v, %v", tc.f.IsNoData(), tc.f.IsNull(), tc.noData, tc.null)
			}

			var back Figure
			if err := json.Unmarshal(got, &back); err != nil {
				t.Fatalf("json.Unmarshal() error = %v", err)
			}
			if !back.Equal(tc.f) {
				t.Errorf("json.Unmarshal(%s) = %s, want %s", got, back, tc.f)
			}
		})
	}
}

func TestFigure_ZeroIsNotNoData(t *testing.T) {
	if NoData.Equal(Value(dec(0))) {
		t.Errorf("NoData.Equal(Value(0)) = true, want false")
	}
	if !NoData.Decimal().IsZero() {
		t.Errorf("NoData.Decimal() = %s, want 0", NoData.Decimal())
	}
	if got := sumFigures([]Figure{NoData, Value(dec(2)), Value(dec(3))}); !got.Equal(dec(5)) {
		t.Errorf("sumFigures() = %s, want 5", got)
	}
}

func TestMoneyString(t *testing.T) {
	testCases := []struct {
		m      Money
		want   string
		signed string
	}{
		{M(1234.5, "INR"), "₹1,234.50", "+₹1,234.50"},
		{M(-20, "USD"), "-$20.00", "-$20.00"},
		{M(0, "INR"), "₹0.00", "-"},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.m.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
			if got := tc.m.SignedString(); got != tc.signed {
				t.Errorf("SignedString() = %q, want %q", got, tc.signed)
			}
		})
	}
}
