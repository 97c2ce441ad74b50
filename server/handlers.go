package server

import (
	"net/http"
	"strconv"

	"github.com/etnz/budget"
	"github.com/etnz/budget/date"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

func (s *Server) listMonths(w http.ResponseWriter, r *http.Request) {
	months := s.remediator.Months()
	if months == nil {
		months = []date.Month{}
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) getMonth(w http.ResponseWriter, r *http.Request) {
	month, err := monthVar(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.remediator.Aggregate(month))
}

// totalsResponse is the bucket totals of a month with their grand total.
type totalsResponse struct {
	Month date.Month `json:"monthId"`
	budget.BucketTotals
	Total decimal.Decimal `json:"total"`
}

func (s *Server) getTotals(w http.ResponseWriter, r *http.Request) {
	month, err := monthVar(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	m := s.remediator.Aggregate(month)
	totals := budget.CalculateAggregatedBucketTotals(m, s.ledger.Universe().Expenses)
	writeJSON(w, http.StatusOK, totalsResponse{Month: month, BucketTotals: totals, Total: totals.Total()})
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	check, err := s.ledger.ValidateAccountBalance(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) getDiscrepancies(w http.ResponseWriter, r *http.Request) {
	checks := s.ledger.ValidateAllAccountBalances()
	s.metrics.discrepancies.Set(float64(len(checks)))
	if checks == nil {
		checks = []budget.BalanceCheck{}
	}
	writeJSON(w, http.StatusOK, checks)
}

func (s *Server) getScan(w http.ResponseWriter, r *http.Request) {
	scan := s.remediator.ScanRefErrors()
	fixable := scan.FixableIssues
	s.metrics.refErrors.WithLabelValues(strconv.FormatBool(true)).Set(float64(fixable))
	s.metrics.refErrors.WithLabelValues(strconv.FormatBool(false)).Set(float64(scan.TotalIssues - fixable))
	writeJSON(w, http.StatusOK, scan)
}
