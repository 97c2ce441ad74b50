package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// newTestServer serves a ledger with one account holding a received income
// and a pending expense in March 2024.
func newTestServer(t *testing.T) (*Server, *budget.Ledger) {
	t.Helper()
	l := budget.NewLedger()
	steps := []error{}
	_, err := l.CreateBank(budget.Bank{ID: "hdfc", Name: "HDFC", Type: budget.BankTypeBank})
	steps = append(steps, err)
	_, err = l.CreateAccount(budget.Account{ID: "A", BankID: "hdfc", Name: "Salary", Type: budget.AccountSavings})
	steps = append(steps, err)
	_, err = l.CreateTransaction(budget.Transaction{Kind: budget.Income, AccountID: "A", Date: date.New(2024, 3, 1), Amount: decimal.NewFromInt(5000), Status: budget.StatusReceived})
	steps = append(steps, err)
	_, err = l.CreateTransaction(budget.Transaction{Kind: budget.Expense, AccountID: "A", Date: date.New(2024, 3, 5), Amount: decimal.NewFromInt(200), Status: budget.StatusPending, Bucket: "Expense"})
	steps = append(steps, err)
	for _, err := range steps {
		if err != nil {
			t.Fatalf("building the ledger: %v", err)
		}
	}
	today := func() date.Date { return date.New(2024, 3, 2) }
	r := budget.NewRemediator(l, nil, nil, budget.WithToday(today))
	return New(l, r, zerolog.Nop()), l
}

// get performs a GET on s and decodes the JSON body into a generic value.
func get(t *testing.T, s *Server, path string) (int, any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: invalid JSON %q: %v", path, rec.Body.String(), err)
	}
	return rec.Code, body
}

// field walks a decoded JSON value along keys and indexes.
func field(v any, path ...any) any {
	for _, p := range path {
		switch k := p.(type) {
		case string:
			m, _ := v.(map[string]any)
			v = m[k]
		case int:
			l, _ := v.([]any)
			if k >= len(l) {
				return nil
			}
			v = l[k]
		}
	}
	return v
}

func TestServer_Routes(t *testing.T) {
	s, _ := newTestServer(t)
	testCases := []struct {
		path     string
		wantCode int
		at       []any
		want     any
	}{
		{"/months", http.StatusOK, []any{0}, "2024-03"},
		{"/months/2024-03", http.StatusOK, []any{"id"}, "2024-03"},
		{"/months/2024-03", http.StatusOK, []any{"accounts", 0, "inflow"}, 5000.0},
		{"/months/2024-03", http.StatusOK, []any{"accounts", 0, "bucketAmounts", "Expense"}, 200.0},
		{"/months/2024-03", http.StatusOK, []any{"accounts", 0, "savingsTransfer"}, nil},
		{"/months/march", http.StatusBadRequest, []any{"error"}, `invalid month "march": month must be YYYY-MM`},
		{"/months/2024-03/totals", http.StatusOK, []any{"pending", "Expense"}, 200.0},
		{"/months/2024-03/totals", http.StatusOK, []any{"total"}, 200.0},
		{"/accounts/A/balance", http.StatusOK, []any{"isValid"}, true},
		{"/accounts/A/balance", http.StatusOK, []any{"calculatedBalance"}, 5000.0},
		{"/accounts/Z/balance", http.StatusNotFound, []any{"error"}, `account "Z" not found`},
		{"/balances/discrepancies", http.StatusOK, nil, []any{}},
		{"/remediation/scan", http.StatusOK, []any{"totalIssues"}, 1.0},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			code, body := get(t, s, tc.path)
			if code != tc.wantCode {
				t.Errorf("GET %s status = %d, want %d", tc.path, code, tc.wantCode)
			}
			if diff := cmp.Diff(tc.want, field(body, tc.at...)); diff != "" {
				t.Errorf("GET %s %v mismatch (-want +got):\n%s", tc.path, tc.at, diff)
			}
		})
	}
}

func TestServer_Discrepancies(t *testing.T) {
	s, l := newTestServer(t)
	stale := decimal.NewFromInt(1)
	if _, err := l.UpdateAccount("A", budget.AccountPatch{CurrentBalance: &stale}); err != nil {
		t.Fatal(err)
	}
	code, body := get(t, s, "/balances/discrepancies")
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if got := field(body, 0, "difference"); got != -4999.0 {
		t.Errorf("difference = %v, want -4999", got)
	}
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t)
	get(t, s, "/months/2024-03")
	get(t, s, "/remediation/scan")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`budget_http_requests_total{code="200",route="/months/{month}"} 1`,
		`budget_remaining_cash_issues{fixable="true"} 1`,
		`budget_remaining_cash_issues{fixable="false"} 0`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("/metrics lacks %s:\n%s", want, body)
		}
	}
}
