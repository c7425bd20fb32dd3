package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Uncategorized labels expenses without a (known) category.
const Uncategorized = "Sem categoria"

// TrendMonths is the length of the trailing window used for trends.
const TrendMonths = 12

type (
	// MonthTotals holds income and expense sums for one month bucket.
	MonthTotals struct {
		Month   string
		Income  decimal.Decimal
		Expense decimal.Decimal
	}

	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		CategoryID string // empty for Uncategorized
		Name       string
		Amount     decimal.Decimal
	}

	// MonthAmount is a single expense sum for one month bucket.
	MonthAmount struct {
		Month  string
		Amount decimal.Decimal
	}

	// PeriodTotals summarizes the target month.
	PeriodTotals struct {
		Income  decimal.Decimal
		Expense decimal.Decimal
		Balance decimal.Decimal
	}

	// Summary is everything the dashboard shows for a target month.
	Summary struct {
		Month         string
		CategoryID    string
		Totals        PeriodTotals
		Trend         []MonthTotals
		Breakdown     []CategoryAmount
		CategoryTrend []MonthAmount
	}
)

// SummaryWindow returns the trailing window Summarize reads for month.
func SummaryWindow(month string) (Window, error) {
	w, err := MonthWindow(month)
	if err != nil {
		return Window{}, err
	}
	return w.Trailing(TrendMonths), nil
}

// Summarize derives the dashboard views for month from an owner-scoped set of
// transactions. Rows outside the trailing window are ignored. categoryID only
// restricts CategoryTrend and, like every category filter, never matches income.
func Summarize(txs []Transaction, cats []Category, month, categoryID string) (Summary, error) {
	target, err := MonthWindow(month)
	if err != nil {
		return Summary{}, err
	}
	rng := target.Trailing(TrendMonths)

	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	trend := map[string]*MonthTotals{}
	catTrend := map[string]*MonthAmount{}
	breakdown := map[string]*CategoryAmount{}
	var totals PeriodTotals

	for _, t := range txs {
		if !rng.Contains(t.Date.Time) {
			continue
		}
		key := MonthKey(t.Date.Time)

		mt, ok := trend[key]
		if !ok {
			mt = &MonthTotals{Month: key}
			trend[key] = mt
		}
		if t.Kind == Income {
			mt.Income = mt.Income.Add(t.Amount)
		} else {
			mt.Expense = mt.Expense.Add(t.Amount)
		}

		if t.Kind == Expense && (categoryID == "" || t.CategoryID == categoryID) {
			ma, ok := catTrend[key]
			if !ok {
				ma = &MonthAmount{Month: key}
				catTrend[key] = ma
			}
			ma.Amount = ma.Amount.Add(t.Amount)
		}

		if !target.Contains(t.Date.Time) {
			continue
		}
		if t.Kind == Income {
			totals.Income = totals.Income.Add(t.Amount)
			continue
		}
		totals.Expense = totals.Expense.Add(t.Amount)

		name, ok := names[t.CategoryID]
		catID := t.CategoryID
		if !ok {
			name, catID = Uncategorized, ""
		}
		ca, ok := breakdown[name]
		if !ok {
			ca = &CategoryAmount{CategoryID: catID, Name: name}
			breakdown[name] = ca
		}
		ca.Amount = ca.Amount.Add(t.Amount)
	}
	totals.Balance = totals.Income.Sub(totals.Expense)

	s := Summary{
		Month:         target.Month(),
		CategoryID:    categoryID,
		Totals:        totals,
		Trend:         make([]MonthTotals, 0, len(trend)),
		Breakdown:     make([]CategoryAmount, 0, len(breakdown)),
		CategoryTrend: make([]MonthAmount, 0, len(catTrend)),
	}
	for _, mt := range trend {
		s.Trend = append(s.Trend, *mt)
	}
	sort.Slice(s.Trend, func(i, j int) bool { return s.Trend[i].Month < s.Trend[j].Month })

	for _, ma := range catTrend {
		s.CategoryTrend = append(s.CategoryTrend, *ma)
	}
	sort.Slice(s.CategoryTrend, func(i, j int) bool { return s.CategoryTrend[i].Month < s.CategoryTrend[j].Month })

	for _, ca := range breakdown {
		s.Breakdown = append(s.Breakdown, *ca)
	}
	sort.Slice(s.Breakdown, func(i, j int) bool {
		if c := s.Breakdown[i].Amount.Cmp(s.Breakdown[j].Amount); c != 0 {
			return c > 0
		}
		return s.Breakdown[i].Name < s.Breakdown[j].Name
	})

	return s, nil
}
