package domain

import "time"

// Period selects the range a report covers.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func (p Period) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

// Report aggregates transactions and expenses over [From, To).
type Report struct {
	Period           Period         `json:"period"`
	From             time.Time      `json:"from"`
	To               time.Time      `json:"to"`
	TransactionCount int            `json:"transaction_count"`
	Gross            int64          `json:"gross"`
	Tips             int64          `json:"tips"`
	Expenses         int64          `json:"expenses"`
	Net              int64          `json:"net"`
	ByStaff          []StaffTotal   `json:"by_staff"`
	ByService        []ServiceTotal `json:"by_service"`
	ByPayment        []PaymentTotal `json:"by_payment"`
	ExpenseItems     []Expense      `json:"expense_items"`
}

type StaffTotal struct {
	StaffID   int    `json:"staff_id"`
	StaffName string `json:"staff_name"`
	Count     int    `json:"count"`
	Gross     int64  `json:"gross"`
	Tips      int64  `json:"tips"`
}

type ServiceTotal struct {
	ServiceID   int    `json:"service_id"`
	ServiceName string `json:"service_name"`
	Count       int    `json:"count"`
	Gross       int64  `json:"gross"`
}

type PaymentTotal struct {
	Method PaymentMethod `json:"method"`
	Count  int           `json:"count"`
	Total  int64         `json:"total"`
}
