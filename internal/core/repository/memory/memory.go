// Package memory provides in-memory implementations of the domain
// repositories. They follow the same contracts as the pgx implementations
// and back the unit tests of the logic and web layers.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/duynhne/pos-service/internal/core/domain"
)

// Users implements domain.UserRepository.
type Users struct {
	mu     sync.Mutex
	nextID int
	rows   map[string]domain.UserRow
}

func NewUsers() *Users {
	return &Users{rows: map[string]domain.UserRow{}}
}

func (u *Users) GetByUsername(_ context.Context, username string) (*domain.UserRow, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	row, ok := u.rows[username]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (u *Users) ExistsByUsername(_ context.Context, username string) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.rows[username]
	return ok, nil
}

func (u *Users) Create(_ context.Context, username, passwordHash string, role domain.Role) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.rows[username]; ok {
		return 0, domain.ErrDuplicateKey
	}
	u.nextID++
	u.rows[username] = domain.UserRow{ID: u.nextID, Username: username, PasswordHash: passwordHash, Role: role}
	return u.nextID, nil
}

func (u *Users) UpdateLastLogin(context.Context, int) error {
	return nil
}

// Sessions implements domain.SessionRepository. Err, when set, is returned
// from every call.
type Sessions struct {
	mu   sync.Mutex
	rows map[string]domain.Session
	Err  error
}

func NewSessions() *Sessions {
	return &Sessions{rows: map[string]domain.Session{}}
}

func (s *Sessions) Create(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.rows[sess.ID]; ok {
		return domain.ErrDuplicateKey
	}
	s.rows[sess.ID] = *sess
	return nil
}

func (s *Sessions) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	sess, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *Sessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	delete(s.rows, id)
	return nil
}

func (s *Sessions) BindCSRFToken(_ context.Context, id, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	sess, ok := s.rows[id]
	if !ok {
		return "", nil
	}
	if sess.CSRFToken == "" {
		sess.CSRFToken = token
		s.rows[id] = sess
	}
	return sess.CSRFToken, nil
}

func (s *Sessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for id, sess := range s.rows {
		if sess.Expired(now) {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

// Put stores sess as-is, for seeding records such as legacy sessions
// without a CSRF token.
func (s *Sessions) Put(sess domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[sess.ID] = sess
}

// Len returns the number of stored sessions, expired or not.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Roster implements domain.RosterRepository. A single mutex stands in for
// the per-day row lock; Mutate commits only when the mutation succeeds.
type Roster struct {
	mu   sync.Mutex
	days map[string][]domain.RosterEntry
}

func NewRoster() *Roster {
	return &Roster{days: map[string][]domain.RosterEntry{}}
}

func (r *Roster) List(_ context.Context, day string) ([]domain.RosterEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneEntries(r.days[day]), nil
}

func (r *Roster) Mutate(ctx context.Context, day string, fn domain.RosterMutation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	next, err := fn(cloneEntries(r.days[day]))
	if err != nil {
		return err
	}
	r.days[day] = cloneEntries(next)
	return nil
}

func (r *Roster) DeleteBefore(_ context.Context, day string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for d, entries := range r.days {
		if d < day {
			n += int64(len(entries))
			delete(r.days, d)
		}
	}
	return n, nil
}

func cloneEntries(entries []domain.RosterEntry) []domain.RosterEntry {
	out := make([]domain.RosterEntry, len(entries))
	copy(out, entries)
	return out
}

// Staff implements domain.StaffRepository.
type Staff struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]domain.Staff
}

func NewStaff() *Staff {
	return &Staff{rows: map[int]domain.Staff{}}
}

func (s *Staff) List(_ context.Context, includeInactive bool) ([]domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Staff{}
	for _, st := range s.rows {
		if st.Active || includeInactive {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Staff) Get(_ context.Context, id int) (*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *Staff) Create(_ context.Context, name string) (*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(name, 0) {
		return nil, domain.ErrDuplicateKey
	}
	s.nextID++
	st := domain.Staff{ID: s.nextID, Name: name, Active: true, CreatedAt: time.Now().UTC()}
	s.rows[st.ID] = st
	return &st, nil
}

func (s *Staff) Update(_ context.Context, id int, name string, active bool) (*domain.Staff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	if s.nameTaken(name, id) {
		return nil, domain.ErrDuplicateKey
	}
	st.Name = name
	st.Active = active
	s.rows[id] = st
	return &st, nil
}

func (s *Staff) nameTaken(name string, except int) bool {
	for id, st := range s.rows {
		if id != except && strings.EqualFold(st.Name, name) {
			return true
		}
	}
	return false
}

// Services implements domain.ServiceRepository.
type Services struct {
	mu     sync.Mutex
	nextID int
	rows   map[int]domain.Service
}

func NewServices() *Services {
	return &Services{rows: map[int]domain.Service{}}
}

func (s *Services) List(_ context.Context, includeInactive bool) ([]domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Service{}
	for _, svc := range s.rows {
		if svc.Active || includeInactive {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Services) Get(_ context.Context, id int) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &svc, nil
}

func (s *Services) Create(_ context.Context, svc domain.Service) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rows {
		if strings.EqualFold(existing.Name, svc.Name) {
			return nil, domain.ErrDuplicateKey
		}
	}
	s.nextID++
	svc.ID = s.nextID
	s.rows[svc.ID] = svc
	return &svc, nil
}

func (s *Services) Update(_ context.Context, svc domain.Service) (*domain.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[svc.ID]; !ok {
		return nil, nil
	}
	for id, existing := range s.rows {
		if id != svc.ID && strings.EqualFold(existing.Name, svc.Name) {
			return nil, domain.ErrDuplicateKey
		}
	}
	s.rows[svc.ID] = svc
	return &svc, nil
}

// Transactions implements domain.TransactionRepository.
type Transactions struct {
	mu   sync.Mutex
	rows []domain.Transaction
}

func NewTransactions() *Transactions {
	return &Transactions{}
}

func (t *Transactions) Create(_ context.Context, txn *domain.Transaction) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, *txn)
	return nil
}

func (t *Transactions) ListBetween(_ context.Context, from, to time.Time) ([]domain.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []domain.Transaction{}
	for _, txn := range t.rows {
		if !txn.CreatedAt.Before(from) && txn.CreatedAt.Before(to) {
			out = append(out, txn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *Transactions) Delete(_ context.Context, id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, txn := range t.rows {
		if txn.ID == id {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Expenses implements domain.ExpenseRepository.
type Expenses struct {
	mu   sync.Mutex
	rows []domain.Expense
}

func NewExpenses() *Expenses {
	return &Expenses{}
}

func (e *Expenses) Create(_ context.Context, exp *domain.Expense) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, *exp)
	return nil
}

func (e *Expenses) ListBetween(_ context.Context, fromDay, toDay string) ([]domain.Expense, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := []domain.Expense{}
	for _, exp := range e.rows {
		if exp.SpentOn >= fromDay && exp.SpentOn <= toDay {
			out = append(out, exp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SpentOn < out[j].SpentOn })
	return out, nil
}

func (e *Expenses) Delete(_ context.Context, id string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, exp := range e.rows {
		if exp.ID == id {
			e.rows = append(e.rows[:i], e.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
