package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// TrendPoint is one month of an income-only or expense-only trend.
type TrendPoint struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type IncomeSummaryResult struct {
	TotalIncome  float64      `json:"total_income"`
	MonthlyTrend []TrendPoint `json:"monthly_trend"`
}

type ExpenseSummaryResult struct {
	TotalExpense float64      `json:"total_expense"`
	MonthlyTrend []TrendPoint `json:"monthly_trend"`
}

// ProjectFinanceRow combines income against both expense categories
// (general + payroll) for one project. Net is always income - expenses.
type ProjectFinanceRow struct {
	ProjectID   int64   `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Net         float64 `json:"net"`
}

// Money wraps a bare amount in the nested shape the tender report uses.
type Money struct {
	Amount float64 `json:"amount"`
}

// TenderStatusRow is one tender joined with its owning project. The three
// financial figures are whole-project lifetime totals, not scoped to the
// tender's date range or the request's date filter.
type TenderStatusRow struct {
	TenderID                int64  `json:"tender_id"`
	Status                  string `json:"status"`
	StartDate               string `json:"start_date"`
	EndDate                 string `json:"end_date"`
	ProjectID               int64  `json:"project_id"`
	ProjectName             string `json:"project_name"`
	ProjectDescription      string `json:"project_description"`
	GeneralExpensesIncurred Money  `json:"general_expenses_incurred"`
	PayrollExpensesIncurred Money  `json:"payroll_expenses_incurred"`
	TotalIncome             Money  `json:"total_income"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type OverallSummaryResult struct {
	TotalIncome          float64       `json:"total_income"`
	TotalGeneralExpenses float64       `json:"total_general_expenses"`
	TotalPayrollExpenses float64       `json:"total_payroll_expenses"`
	TenderCounts         []StatusCount `json:"tender_counts"`
	ProjectCount         int64         `json:"project_count"`
}

type MonthBucket struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

type YearBucket struct {
	Year     string  `json:"year"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

type ProjectBucket struct {
	ProjectID   int64   `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Income      float64 `json:"income"`
	Expenses    float64 `json:"expenses"`
	Profit      float64 `json:"profit"`
}

// TrendsResult is the charting report: every ledger row converted to the
// base currency, then bucketed four ways.
type TrendsResult struct {
	MonthlyData      []MonthBucket   `json:"monthly_data"`
	YearlyData       []YearBucket    `json:"yearly_data"`
	ProjectBasedData []ProjectBucket `json:"project_based_data"`
	ForecastReport   []MonthBucket   `json:"forecast_report"`
}

// ── Interfaces ────────────────────────────────────────────────────────────────

// RateConverter converts an amount in the given currency to the base
// currency. It is total: conversion always yields a number.
type RateConverter interface {
	ConvertToBase(ctx context.Context, amount decimal.Decimal, currency string) decimal.Decimal
}

// ReportingService assembles the report endpoints' results. Every method
// authorizes and validates before touching the data source; absence of
// matching rows is an empty result, never an error.
type ReportingService interface {
	IncomeSummary(ctx context.Context, user UserContext, f EntryFilter) (*IncomeSummaryResult, error)
	ExpenseSummary(ctx context.Context, user UserContext, f EntryFilter) (*ExpenseSummaryResult, error)
	ProjectFinance(ctx context.Context, user UserContext, f EntryFilter) ([]ProjectFinanceRow, error)
	TenderStatus(ctx context.Context, user UserContext, f TenderFilter) ([]TenderStatusRow, error)
	OverallSummary(ctx context.Context, user UserContext, f EntryFilter, tenderStatus string) (*OverallSummaryResult, error)
	Trends(ctx context.Context, user UserContext, f EntryFilter) (*TrendsResult, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	db    *sql.DB
	rates RateConverter
	now   func() time.Time
}

// NewReportingService constructs a ReportingService over the given handle.
func NewReportingService(db *sql.DB, rates RateConverter) ReportingService {
	return &reportingService{db: db, rates: rates, now: time.Now}
}

func (s *reportingService) guard(user UserContext, startDate, endDate string) error {
	if err := Authorize(user); err != nil {
		return err
	}
	return ValidateDates(startDate, endDate)
}

// scalarSum runs a single COALESCE(SUM(...),0) query.
func (s *reportingService) scalarSum(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// monthlyTrend runs a TO_CHAR month grouping over the given table.
func (s *reportingService) monthlyTrend(ctx context.Context, table, where string, args []any) ([]TrendPoint, error) {
	q := "SELECT TO_CHAR(date, 'YYYY-MM') AS month, SUM(amount) AS amount FROM " + table +
		" WHERE " + where + " GROUP BY month ORDER BY month"
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trend := []TrendPoint{}
	for rows.Next() {
		var month string
		var amount decimal.Decimal
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, err
		}
		trend = append(trend, TrendPoint{Month: month, Amount: round2(amount)})
	}
	return trend, rows.Err()
}

// ── IncomeSummary ─────────────────────────────────────────────────────────────

func (s *reportingService) IncomeSummary(ctx context.Context, user UserContext, f EntryFilter) (*IncomeSummaryResult, error) {
	if err := s.guard(user, f.StartDate, f.EndDate); err != nil {
		return nil, err
	}

	clauses, args := f.Build()
	where := strings.Join(clauses, " AND ")

	total, err := s.scalarSum(ctx,
		"SELECT COALESCE(SUM(amount), 0) AS total_income FROM income_entries WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query total income: %w", err)
	}

	trend, err := s.monthlyTrend(ctx, "income_entries", where, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query income trend: %w", err)
	}

	return &IncomeSummaryResult{TotalIncome: round2(total), MonthlyTrend: trend}, nil
}

// ── ExpenseSummary ────────────────────────────────────────────────────────────

func (s *reportingService) ExpenseSummary(ctx context.Context, user UserContext, f EntryFilter) (*ExpenseSummaryResult, error) {
	if err := s.guard(user, f.StartDate, f.EndDate); err != nil {
		return nil, err
	}

	clauses, args := f.Build()
	where := strings.Join(clauses, " AND ")

	total, err := s.scalarSum(ctx,
		"SELECT COALESCE(SUM(amount), 0) AS total_expense FROM general_expenses WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query total expense: %w", err)
	}

	trend, err := s.monthlyTrend(ctx, "general_expenses", where, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense trend: %w", err)
	}

	return &ExpenseSummaryResult{TotalExpense: round2(total), MonthlyTrend: trend}, nil
}

// ── ProjectFinance ────────────────────────────────────────────────────────────

// ProjectFinance lists projects in scope, then issues three sequential
// scalar sums per project under the shared filter. Each rollup is
// independent, so no concurrent sub-queries are needed.
func (s *reportingService) ProjectFinance(ctx context.Context, user UserContext, f EntryFilter) ([]ProjectFinanceRow, error) {
	if err := s.guard(user, f.StartDate, f.EndDate); err != nil {
		return nil, err
	}

	var rows *sql.Rows
	var err error
	if f.ProjectID != "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, name FROM projects WHERE id = $1 AND company_id = $2",
			f.ProjectID, f.CompanyID)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, name FROM projects WHERE company_id = $1", f.CompanyID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project iteration error: %w", err)
	}

	result := []ProjectFinanceRow{}
	if len(projects) == 0 {
		return result, nil
	}

	clauses, args := f.Build()
	where := strings.Join(clauses, " AND ")
	projectClause := fmt.Sprintf(" AND project_id = $%d", len(args)+1)

	for _, p := range projects {
		pargs := append(append([]any{}, args...), p.ID)

		income, err := s.scalarSum(ctx,
			"SELECT COALESCE(SUM(amount), 0) AS total_income FROM income_entries WHERE "+where+projectClause, pargs...)
		if err != nil {
			return nil, fmt.Errorf("failed to query project income: %w", err)
		}
		general, err := s.scalarSum(ctx,
			"SELECT COALESCE(SUM(amount), 0) AS general_expense FROM general_expenses WHERE "+where+projectClause, pargs...)
		if err != nil {
			return nil, fmt.Errorf("failed to query project general expenses: %w", err)
		}
		payroll, err := s.scalarSum(ctx,
			"SELECT COALESCE(SUM(amount), 0) AS payroll_expense FROM payroll_entries WHERE "+where+projectClause, pargs...)
		if err != nil {
			return nil, fmt.Errorf("failed to query project payroll: %w", err)
		}

		expenses := general.Add(payroll)
		result = append(result, ProjectFinanceRow{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Income:      round2(income),
			Expenses:    round2(expenses),
			Net:         round2(income.Sub(expenses)),
		})
	}
	return result, nil
}

// ── TenderStatus ──────────────────────────────────────────────────────────────

func (s *reportingService) TenderStatus(ctx context.Context, user UserContext, f TenderFilter) ([]TenderStatusRow, error) {
	if err := s.guard(user, f.StartDate, f.EndDate); err != nil {
		return nil, err
	}

	clauses, args := f.Build()
	q := `SELECT t.id AS tender_id, t.status, t.start_date::text, t.end_date::text,
       p.id AS project_id, p.name AS project_name, p.description AS project_description
FROM tenders t
JOIN projects p ON p.id = t.project_id AND p.company_id = t.company_id
WHERE ` + strings.Join(clauses, " AND ") + `
ORDER BY t.start_date DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenders: %w", err)
	}
	defer rows.Close()

	result := []TenderStatusRow{}
	for rows.Next() {
		var row TenderStatusRow
		if err := rows.Scan(&row.TenderID, &row.Status, &row.StartDate, &row.EndDate,
			&row.ProjectID, &row.ProjectName, &row.ProjectDescription); err != nil {
			return nil, fmt.Errorf("failed to scan tender: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tender iteration error: %w", err)
	}

	// Per-tender rollups are whole-project lifetime totals: filtered by
	// company and project only, never by the tender's own date range.
	for i := range result {
		pid := result[i].ProjectID

		general, err := s.scalarSum(ctx,
			"SELECT COALESCE(SUM(amount), 0) FROM general_expenses WHERE company_id = $1 AND project_id = $2",
			f.CompanyID, pid)
		if err != nil {
			return nil, fmt.Errorf("failed to query tender general expenses: %w", err)
		}
		payroll, err := s.scalarSum(ctx,
			"SELECT COALESCE(SUM(amount), 0) FROM payroll_entries WHERE company_id = $1 AND project_id = $2",
			f.CompanyID, pid)
		if err != nil {
			return nil, fmt.Errorf("failed to query tender payroll: %w", err)
		}
		income, err := s.scalarSum(ctx,
			"SELECT COALESCE(SUM(amount), 0) FROM income_entries WHERE company_id = $1 AND project_id = $2",
			f.CompanyID, pid)
		if err != nil {
			return nil, fmt.Errorf("failed to query tender income: %w", err)
		}

		result[i].GeneralExpensesIncurred = Money{Amount: round2(general)}
		result[i].PayrollExpensesIncurred = Money{Amount: round2(payroll)}
		result[i].TotalIncome = Money{Amount: round2(income)}
	}
	return result, nil
}

// ── OverallSummary ────────────────────────────────────────────────────────────

func (s *reportingService) OverallSummary(ctx context.Context, user UserContext, f EntryFilter, tenderStatus string) (*OverallSummaryResult, error) {
	if err := s.guard(user, f.StartDate, f.EndDate); err != nil {
		return nil, err
	}

	clauses, args := f.Build()
	where := strings.Join(clauses, " AND ")

	income, err := s.scalarSum(ctx,
		"SELECT COALESCE(SUM(amount), 0) AS total_income FROM income_entries WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query total income: %w", err)
	}
	general, err := s.scalarSum(ctx,
		"SELECT COALESCE(SUM(amount), 0) AS total_general_expenses FROM general_expenses WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query total general expenses: %w", err)
	}
	payroll, err := s.scalarSum(ctx,
		"SELECT COALESCE(SUM(amount), 0) AS total_payroll_expenses FROM payroll_entries WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query total payroll: %w", err)
	}

	// The tender count query has its own filter: tender-specific date
	// columns plus the optional status.
	tf := TenderFilter{
		CompanyID: f.CompanyID,
		ProjectID: f.ProjectID,
		Status:    tenderStatus,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
	tclauses, targs := tf.Build()
	trows, err := s.db.QueryContext(ctx,
		"SELECT t.status, COUNT(*) AS count FROM tenders t WHERE "+strings.Join(tclauses, " AND ")+
			" GROUP BY t.status ORDER BY t.status", targs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tender counts: %w", err)
	}
	defer trows.Close()

	tenderCounts := []StatusCount{}
	for trows.Next() {
		var sc StatusCount
		if err := trows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tender count: %w", err)
		}
		tenderCounts = append(tenderCounts, sc)
	}
	if err := trows.Err(); err != nil {
		return nil, fmt.Errorf("tender count iteration error: %w", err)
	}

	projClauses := []string{"company_id = $1"}
	projArgs := []any{f.CompanyID}
	if f.ProjectID != "" {
		projArgs = append(projArgs, f.ProjectID)
		projClauses = append(projClauses, fmt.Sprintf("id = $%d", len(projArgs)))
	}
	var projectCount int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) AS project_count FROM projects WHERE "+strings.Join(projClauses, " AND "),
		projArgs...).Scan(&projectCount); err != nil {
		return nil, fmt.Errorf("failed to query project count: %w", err)
	}

	return &OverallSummaryResult{
		TotalIncome:          round2(income),
		TotalGeneralExpenses: round2(general),
		TotalPayrollExpenses: round2(payroll),
		TenderCounts:         tenderCounts,
		ProjectCount:         projectCount,
	}, nil
}

// ── Trends ────────────────────────────────────────────────────────────────────

// loadEntries reads raw ledger rows from one table and converts each
// amount to the base currency. Expense magnitudes are normalized positive
// so downstream profit math is uniform.
func (s *reportingService) loadEntries(ctx context.Context, table string, kind EntryKind, where string, args []any) ([]TaggedAmount, error) {
	q := "SELECT date::text, amount, currency, project_id FROM " + table + " WHERE " + where
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []TaggedAmount
	for rows.Next() {
		var date, currency string
		var amount decimal.Decimal
		var projectID sql.NullInt64
		if err := rows.Scan(&date, &amount, &currency, &projectID); err != nil {
			return nil, err
		}

		converted := s.rates.ConvertToBase(ctx, amount, currency)
		if kind == KindExpense {
			converted = converted.Abs()
		}
		e := TaggedAmount{Date: date, Amount: converted, Kind: kind}
		if projectID.Valid {
			pid := projectID.Int64
			e.ProjectID = &pid
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *reportingService) Trends(ctx context.Context, user UserContext, f EntryFilter) (*TrendsResult, error) {
	if err := s.guard(user, f.StartDate, f.EndDate); err != nil {
		return nil, err
	}

	clauses, args := f.Build()
	where := strings.Join(clauses, " AND ")

	income, err := s.loadEntries(ctx, "income_entries", KindIncome, where, args)
	if err != nil {
		return nil, fmt.Errorf("failed to load income entries: %w", err)
	}
	general, err := s.loadEntries(ctx, "general_expenses", KindExpense, where, args)
	if err != nil {
		return nil, fmt.Errorf("failed to load general expenses: %w", err)
	}
	payroll, err := s.loadEntries(ctx, "payroll_entries", KindExpense, where, args)
	if err != nil {
		return nil, fmt.Errorf("failed to load payroll entries: %w", err)
	}

	all := make([]TaggedAmount, 0, len(income)+len(general)+len(payroll))
	all = append(all, income...)
	all = append(all, general...)
	all = append(all, payroll...)

	result := &TrendsResult{
		MonthlyData:      []MonthBucket{},
		YearlyData:       []YearBucket{},
		ProjectBasedData: []ProjectBucket{},
		ForecastReport:   []MonthBucket{},
	}

	for _, b := range BucketByMonth(all) {
		result.MonthlyData = append(result.MonthlyData, MonthBucket{
			Month: b.Period, Income: b.Income, Expenses: b.Expenses, Profit: b.Profit,
		})
	}
	for _, b := range BucketByYear(all) {
		result.YearlyData = append(result.YearlyData, YearBucket{
			Year: b.Period, Income: b.Income, Expenses: b.Expenses, Profit: b.Profit,
		})
	}
	for _, b := range ForecastBuckets(all, s.now()) {
		result.ForecastReport = append(result.ForecastReport, MonthBucket{
			Month: b.Period, Income: b.Income, Expenses: b.Expenses, Profit: b.Profit,
		})
	}

	// Project rollups resolve names one project at a time; projects that
	// no longer exist are dropped, as are general (project-less) entries.
	for _, pt := range BucketByProject(all) {
		var name string
		err := s.db.QueryRowContext(ctx,
			"SELECT name FROM projects WHERE id = $1 AND company_id = $2",
			pt.ProjectID, f.CompanyID).Scan(&name)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve project name: %w", err)
		}
		result.ProjectBasedData = append(result.ProjectBasedData, ProjectBucket{
			ProjectID:   pt.ProjectID,
			ProjectName: name,
			Income:      pt.Income,
			Expenses:    pt.Expenses,
			Profit:      pt.Profit,
		})
	}

	return result, nil
}
