package v1

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/middleware"
)

// ReportService aggregates the ledger over daily, weekly and monthly periods.
type ReportService struct {
	transactions domain.TransactionRepository
	expenses     domain.ExpenseRepository
	loc          *time.Location
	now          func() time.Time
}

func NewReportService(transactions domain.TransactionRepository, expenses domain.ExpenseRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{transactions: transactions, expenses: expenses, loc: loc, now: time.Now}
}

// PeriodRange returns the half-open range [from, to) of period p containing
// anchor, in loc. Weeks start on Monday.
func PeriodRange(p domain.Period, anchor time.Time, loc *time.Location) (from, to time.Time, err error) {
	a := anchor.In(loc)
	day := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, loc)

	switch p {
	case domain.PeriodDaily:
		return day, day.AddDate(0, 0, 1), nil
	case domain.PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		from = day.AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 7), nil
	case domain.PeriodMonthly:
		from = time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("period %q: %w", p, ErrValidation)
}

// Build computes the report for the period containing day (empty for today).
func (s *ReportService) Build(ctx context.Context, p domain.Period, day string) (*domain.Report, error) {
	ctx, span := middleware.StartSpan(ctx, "report.build", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("report.period", string(p)),
	))
	defer span.End()

	anchor, err := parseDay(day, s.now(), s.loc)
	if err != nil {
		return nil, err
	}
	from, to, err := PeriodRange(p, anchor, s.loc)
	if err != nil {
		return nil, err
	}

	txns, err := s.transactions.ListBetween(ctx, from, to)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list transactions: %w: %w", ErrStorage, err)
	}
	lastDay := to.AddDate(0, 0, -1).Format(domain.DayLayout)
	expenses, err := s.expenses.ListBetween(ctx, from.Format(domain.DayLayout), lastDay)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list expenses: %w: %w", ErrStorage, err)
	}

	report := aggregate(txns, expenses)
	report.Period = p
	report.From = from
	report.To = to
	return report, nil
}

// aggregate sums transactions and expenses. Net is gross plus tips minus
// expenses. Breakdowns are sorted by descending gross, then by name.
func aggregate(txns []domain.Transaction, expenses []domain.Expense) *domain.Report {
	r := &domain.Report{
		ByStaff:      []domain.StaffTotal{},
		ByService:    []domain.ServiceTotal{},
		ByPayment:    []domain.PaymentTotal{},
		ExpenseItems: expenses,
	}
	if r.ExpenseItems == nil {
		r.ExpenseItems = []domain.Expense{}
	}

	staff := map[int]*domain.StaffTotal{}
	services := map[int]*domain.ServiceTotal{}
	payments := map[domain.PaymentMethod]*domain.PaymentTotal{}

	for _, t := range txns {
		r.TransactionCount++
		r.Gross += t.Amount
		r.Tips += t.Tip

		st, ok := staff[t.StaffID]
		if !ok {
			st = &domain.StaffTotal{StaffID: t.StaffID, StaffName: t.StaffName}
			staff[t.StaffID] = st
		}
		st.Count++
		st.Gross += t.Amount
		st.Tips += t.Tip

		sv, ok := services[t.ServiceID]
		if !ok {
			sv = &domain.ServiceTotal{ServiceID: t.ServiceID, ServiceName: t.ServiceName}
			services[t.ServiceID] = sv
		}
		sv.Count++
		sv.Gross += t.Amount

		pt, ok := payments[t.PaymentMethod]
		if !ok {
			pt = &domain.PaymentTotal{Method: t.PaymentMethod}
			payments[t.PaymentMethod] = pt
		}
		pt.Count++
		pt.Total += t.Amount + t.Tip
	}
	for _, e := range expenses {
		r.Expenses += e.Amount
	}
	r.Net = r.Gross + r.Tips - r.Expenses

	for _, st := range staff {
		r.ByStaff = append(r.ByStaff, *st)
	}
	sort.Slice(r.ByStaff, func(i, j int) bool {
		if r.ByStaff[i].Gross != r.ByStaff[j].Gross {
			return r.ByStaff[i].Gross > r.ByStaff[j].Gross
		}
		return r.ByStaff[i].StaffName < r.ByStaff[j].StaffName
	})

	for _, sv := range services {
		r.ByService = append(r.ByService, *sv)
	}
	sort.Slice(r.ByService, func(i, j int) bool {
		if r.ByService[i].Gross != r.ByService[j].Gross {
			return r.ByService[i].Gross > r.ByService[j].Gross
		}
		return r.ByService[i].ServiceName < r.ByService[j].ServiceName
	})

	for _, pt := range payments {
		r.ByPayment = append(r.ByPayment, *pt)
	}
	sort.Slice(r.ByPayment, func(i, j int) bool {
		return r.ByPayment[i].Method < r.ByPayment[j].Method
	})

	return r
}

// ExportXLSX renders the report as a workbook with Summary, Staff, Services
// and Expenses sheets.
func ExportXLSX(r *domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]any{
		{"Period", string(r.Period)},
		{"From", r.From.Format(domain.DayLayout)},
		{"To", r.To.AddDate(0, 0, -1).Format(domain.DayLayout)},
		{"Transactions", r.TransactionCount},
		{"Gross", r.Gross},
		{"Tips", r.Tips},
		{"Expenses", r.Expenses},
		{"Net", r.Net},
	}
	if err := writeRows(f, summary, rows); err != nil {
		return nil, err
	}

	staffRows := [][]any{{"Staff", "Count", "Gross", "Tips"}}
	for _, st := range r.ByStaff {
		staffRows = append(staffRows, []any{st.StaffName, st.Count, st.Gross, st.Tips})
	}
	if err := writeSheet(f, "Staff", staffRows); err != nil {
		return nil, err
	}

	serviceRows := [][]any{{"Service", "Count", "Gross"}}
	for _, sv := range r.ByService {
		serviceRows = append(serviceRows, []any{sv.ServiceName, sv.Count, sv.Gross})
	}
	if err := writeSheet(f, "Services", serviceRows); err != nil {
		return nil, err
	}

	expenseRows := [][]any{{"Date", "Category", "Description", "Amount"}}
	for _, e := range r.ExpenseItems {
		expenseRows = append(expenseRows, []any{e.SpentOn, e.Category, e.Description, e.Amount})
	}
	if err := writeSheet(f, "Expenses", expenseRows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
