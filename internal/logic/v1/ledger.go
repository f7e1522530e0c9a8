package v1

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/middleware"
)

const maxListRange = 366 * 24 * time.Hour

// LedgerService records sales and expenses. Amounts are integer minor units
// of the shop currency.
type LedgerService struct {
	transactions domain.TransactionRepository
	expenses     domain.ExpenseRepository
	staff        domain.StaffRepository
	services     domain.ServiceRepository
	loc          *time.Location
	now          func() time.Time
}

func NewLedgerService(
	transactions domain.TransactionRepository,
	expenses domain.ExpenseRepository,
	staff domain.StaffRepository,
	services domain.ServiceRepository,
	loc *time.Location,
) *LedgerService {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		transactions: transactions,
		expenses:     expenses,
		staff:        staff,
		services:     services,
		loc:          loc,
		now:          time.Now,
	}
}

// RecordTransaction stores a sale. Amount defaults to the service price and
// the payment method to cash.
func (s *LedgerService) RecordTransaction(ctx context.Context, userID int, req domain.CreateTransactionRequest) (*domain.Transaction, error) {
	ctx, span := middleware.StartSpan(ctx, "ledger.record_transaction", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("staff.id", req.StaffID),
		attribute.Int("service.id", req.ServiceID),
	))
	defer span.End()

	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentCash
	}
	if !method.Valid() {
		return nil, fmt.Errorf("payment method %q: %w", method, ErrValidation)
	}
	if req.Tip < 0 {
		return nil, fmt.Errorf("tip %d is negative: %w", req.Tip, ErrValidation)
	}
	if req.Amount != nil && *req.Amount < 0 {
		return nil, fmt.Errorf("amount %d is negative: %w", *req.Amount, ErrValidation)
	}
	note := sanitize(req.Note)
	if len(note) > maxNoteLength {
		return nil, fmt.Errorf("note longer than %d characters: %w", maxNoteLength, ErrValidation)
	}

	staff, err := s.staff.Get(ctx, req.StaffID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load staff %d: %w: %w", req.StaffID, ErrStorage, err)
	}
	if staff == nil {
		return nil, fmt.Errorf("staff %d: %w", req.StaffID, ErrNotFound)
	}

	svc, err := s.services.Get(ctx, req.ServiceID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load service %d: %w: %w", req.ServiceID, ErrStorage, err)
	}
	if svc == nil || !svc.Active {
		return nil, fmt.Errorf("service %d: %w", req.ServiceID, ErrNotFound)
	}

	amount := svc.Price
	if req.Amount != nil {
		amount = *req.Amount
	}

	t := &domain.Transaction{
		ID:            uuid.NewString(),
		StaffID:       staff.ID,
		StaffName:     staff.Name,
		ServiceID:     svc.ID,
		ServiceName:   svc.Name,
		Amount:        amount,
		Tip:           req.Tip,
		PaymentMethod: method,
		Note:          note,
		CreatedBy:     userID,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.transactions.Create(ctx, t); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert transaction: %w: %w", ErrStorage, err)
	}

	transactionsRecorded.WithLabelValues(string(method)).Inc()
	span.SetAttributes(attribute.String("transaction.id", t.ID))
	return t, nil
}

// ListTransactions returns transactions of the business days fromDay..toDay
// inclusive (YYYY-MM-DD). An empty fromDay means today, an empty toDay means fromDay.
func (s *LedgerService) ListTransactions(ctx context.Context, fromDay, toDay string) ([]domain.Transaction, error) {
	from, to, err := s.dayRange(fromDay, toDay)
	if err != nil {
		return nil, err
	}
	txns, err := s.transactions.ListBetween(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w: %w", ErrStorage, err)
	}
	return txns, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("transaction %q: %w", id, ErrNotFound)
	}
	deleted, err := s.transactions.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w: %w", id, ErrStorage, err)
	}
	if !deleted {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecordExpense stores an expense; SpentOn defaults to today.
func (s *LedgerService) RecordExpense(ctx context.Context, userID int, req domain.CreateExpenseRequest) (*domain.Expense, error) {
	ctx, span := middleware.StartSpan(ctx, "ledger.record_expense", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	category, err := cleanName(req.Category)
	if err != nil {
		return nil, err
	}
	description := sanitize(req.Description)
	if len(description) > maxNoteLength {
		return nil, fmt.Errorf("description longer than %d characters: %w", maxNoteLength, ErrValidation)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount %d must be positive: %w", req.Amount, ErrValidation)
	}
	day, err := s.dayStart(req.SpentOn)
	if err != nil {
		return nil, err
	}

	e := &domain.Expense{
		ID:          uuid.NewString(),
		Category:    category,
		Description: description,
		Amount:      req.Amount,
		SpentOn:     day.Format(domain.DayLayout),
		CreatedBy:   userID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.expenses.Create(ctx, e); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert expense: %w: %w", ErrStorage, err)
	}
	return e, nil
}

// ListExpenses returns expenses spent on fromDay..toDay inclusive, defaulted
// like ListTransactions.
func (s *LedgerService) ListExpenses(ctx context.Context, fromDay, toDay string) ([]domain.Expense, error) {
	from, to, err := s.dayRange(fromDay, toDay)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListBetween(ctx, from.Format(domain.DayLayout), to.Format(domain.DayLayout))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w: %w", ErrStorage, err)
	}
	return expenses, nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("expense %q: %w", id, ErrNotFound)
	}
	deleted, err := s.expenses.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %s: %w: %w", id, ErrStorage, err)
	}
	if !deleted {
		return fmt.Errorf("expense %s: %w", id, ErrNotFound)
	}
	return nil
}

// dayStart parses day in the shop location and returns its local midnight.
// An empty day means today.
func (s *LedgerService) dayStart(day string) (time.Time, error) {
	return parseDay(day, s.now(), s.loc)
}

// dayRange resolves an inclusive day range; the returned times are local midnights.
func (s *LedgerService) dayRange(fromDay, toDay string) (from, to time.Time, err error) {
	from, err = s.dayStart(fromDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if strings.TrimSpace(toDay) == "" {
		return from, from, nil
	}
	to, err = s.dayStart(toDay)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("range %s..%s is reversed: %w", fromDay, toDay, ErrValidation)
	}
	if to.Sub(from) > maxListRange {
		return time.Time{}, time.Time{}, fmt.Errorf("range %s..%s exceeds %d days: %w", fromDay, toDay, int(maxListRange.Hours()/24), ErrValidation)
	}
	return from, to, nil
}

func parseDay(day string, now time.Time, loc *time.Location) (time.Time, error) {
	day = strings.TrimSpace(day)
	if day == "" {
		n := now.In(loc)
		return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc), nil
	}
	t, err := time.ParseInLocation(domain.DayLayout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD: %w", day, ErrValidation)
	}
	return t, nil
}
