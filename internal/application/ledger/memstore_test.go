package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/academia/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// studentRec mirrors the student columns the ledger touches
type studentRec struct {
	name      string
	deposit   decimal.Decimal
	totalCost *decimal.Decimal
}

// memStore is an in-memory ledger.Store for service tests. InTransaction
// snapshots all state up front and restores it when fn fails, so rollback
// semantics hold without a database. failInsertPaymentAt injects a failure
// on the Nth InsertPayment call (1-based) for atomicity tests.
type memStore struct {
	enrollments  map[uuid.UUID]*ledger.Enrollment
	payments     map[uuid.UUID]*ledger.Payment
	expenses     map[uuid.UUID]*ledger.Expense
	students     map[uuid.UUID]*studentRec
	migrationLog []ledger.MigrationLogEntry

	insertPaymentCalls  int
	failInsertPaymentAt int
}

func newMemStore() *memStore {
	return &memStore{
		enrollments: make(map[uuid.UUID]*ledger.Enrollment),
		payments:    make(map[uuid.UUID]*ledger.Payment),
		expenses:    make(map[uuid.UUID]*ledger.Expense),
		students:    make(map[uuid.UUID]*studentRec),
	}
}

func (s *memStore) addStudent(name string, deposit decimal.Decimal, totalCost *decimal.Decimal) uuid.UUID {
	id := uuid.New()
	s.students[id] = &studentRec{name: name, deposit: deposit, totalCost: totalCost}
	return id
}

func (s *memStore) addEnrollment(studentID uuid.UUID, cost decimal.Decimal) *ledger.Enrollment {
	enrollment, err := ledger.NewEnrollment(studentID, uuid.New(), cost)
	if err != nil {
		panic(err)
	}
	s.enrollments[enrollment.ID] = enrollment
	return enrollment
}

func (s *memStore) snapshot() *memStore {
	copied := newMemStore()
	for id, e := range s.enrollments {
		clone := *e
		copied.enrollments[id] = &clone
	}
	for id, p := range s.payments {
		clone := *p
		copied.payments[id] = &clone
	}
	for id, e := range s.expenses {
		clone := *e
		copied.expenses[id] = &clone
	}
	for id, rec := range s.students {
		clone := *rec
		copied.students[id] = &clone
	}
	copied.migrationLog = append([]ledger.MigrationLogEntry(nil), s.migrationLog...)
	return copied
}

func (s *memStore) restore(snap *memStore) {
	s.enrollments = snap.enrollments
	s.payments = snap.payments
	s.expenses = snap.expenses
	s.students = snap.students
	s.migrationLog = snap.migrationLog
}

func (s *memStore) InTransaction(ctx context.Context, fn func(ledger.Store) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) Enrollment(ctx context.Context, id uuid.UUID) (*ledger.Enrollment, error) {
	e, ok := s.enrollments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *memStore) EnrollmentForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Enrollment, error) {
	return s.Enrollment(ctx, id)
}

func (s *memStore) LatestEnrollmentForStudent(ctx context.Context, studentID uuid.UUID) (*ledger.Enrollment, error) {
	var latest *ledger.Enrollment
	for _, e := range s.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

func (s *memStore) ActiveEnrollments(ctx context.Context) ([]ledger.Enrollment, error) {
	var out []ledger.Enrollment
	for _, e := range s.enrollments {
		if e.IsActive() {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memStore) InsertEnrollment(ctx context.Context, enrollment *ledger.Enrollment) error {
	clone := *enrollment
	s.enrollments[enrollment.ID] = &clone
	return nil
}

func (s *memStore) AdjustEnrollmentBalance(ctx context.Context, enrollmentID uuid.UUID, delta decimal.Decimal) error {
	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return shared.ErrNotFound
	}
	e.OutstandingBalance = e.OutstandingBalance.Add(delta)
	return nil
}

func (s *memStore) SetEnrollmentBalance(ctx context.Context, enrollmentID uuid.UUID, balance decimal.Decimal) error {
	e, ok := s.enrollments[enrollmentID]
	if !ok {
		return shared.ErrNotFound
	}
	e.OutstandingBalance = balance
	return nil
}

func (s *memStore) InsertPayment(ctx context.Context, payment *ledger.Payment) error {
	s.insertPaymentCalls++
	if s.failInsertPaymentAt > 0 && s.insertPaymentCalls == s.failInsertPaymentAt {
		return shared.NewDomainError("STORAGE_FAILURE", "injected payment insert failure")
	}
	clone := *payment
	s.payments[payment.ID] = &clone
	return nil
}

func (s *memStore) DeletePaymentReturningIt(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	delete(s.payments, id)
	clone := *p
	return &clone, nil
}

func (s *memStore) PaymentsForEnrollment(ctx context.Context, enrollmentID uuid.UUID) ([]ledger.Payment, error) {
	var out []ledger.Payment
	for _, p := range s.payments {
		if p.EnrollmentID == enrollmentID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidOn.After(out[j].PaidOn) })
	return out, nil
}

func (s *memStore) PaymentsInMonth(ctx context.Context, month time.Month, year int) ([]ledger.Payment, error) {
	var out []ledger.Payment
	for _, p := range s.payments {
		if p.PaidOn.Month() == month && p.PaidOn.Year() == year {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memStore) SumPaymentsForEnrollment(ctx context.Context, enrollmentID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range s.payments {
		if p.EnrollmentID == enrollmentID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (s *memStore) InsertExpense(ctx context.Context, expense *ledger.Expense) error {
	clone := *expense
	s.expenses[expense.ID] = &clone
	return nil
}

func (s *memStore) ExpensesInMonth(ctx context.Context, month time.Month, year int) ([]ledger.Expense, error) {
	var out []ledger.Expense
	for _, e := range s.expenses {
		if e.SpentOn.Month() == month && e.SpentOn.Year() == year {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (s *memStore) LegacyDepositsNonZero(ctx context.Context) ([]ledger.LegacyDeposit, error) {
	var out []ledger.LegacyDeposit
	for id, rec := range s.students {
		if rec.deposit.IsZero() {
			continue
		}
		out = append(out, ledger.LegacyDeposit{
			StudentID:   id,
			StudentName: rec.name,
			Amount:      rec.deposit,
			TotalCost:   rec.totalCost,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

func (s *memStore) ClearLegacyDeposits(ctx context.Context, studentIDs []uuid.UUID) error {
	for _, id := range studentIDs {
		if rec, ok := s.students[id]; ok {
			rec.deposit = decimal.Zero
		}
	}
	return nil
}

func (s *memStore) AppendMigrationLog(ctx context.Context, entry *ledger.MigrationLogEntry) error {
	s.migrationLog = append(s.migrationLog, *entry)
	return nil
}

func (s *memStore) StudentName(ctx context.Context, studentID uuid.UUID) (string, error) {
	rec, ok := s.students[studentID]
	if !ok {
		return "", shared.ErrNotFound
	}
	return rec.name, nil
}

var _ ledger.Store = (*memStore)(nil)

// spyCache records invalidations and serves stored summaries, standing in
// for the redis cache in service tests.
type spyCache struct {
	summaries     map[string]*ledger.MonthlySummary
	sets          int
	invalidations []string
}

func newSpyCache() *spyCache {
	return &spyCache{summaries: make(map[string]*ledger.MonthlySummary)}
}

func cacheKey(month time.Month, year int) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (c *spyCache) GetMonthlySummary(ctx context.Context, month time.Month, year int) (*ledger.MonthlySummary, error) {
	return c.summaries[cacheKey(month, year)], nil
}

func (c *spyCache) SetMonthlySummary(ctx context.Context, summary *ledger.MonthlySummary, ttl time.Duration) error {
	c.sets++
	c.summaries[cacheKey(summary.Month, summary.Year)] = summary
	return nil
}

func (c *spyCache) InvalidateMonth(ctx context.Context, month time.Month, year int) error {
	key := cacheKey(month, year)
	c.invalidations = append(c.invalidations, key)
	delete(c.summaries, key)
	return nil
}

func (c *spyCache) Close() error { return nil }

var _ ledger.ReportCache = (*spyCache)(nil)

// memReportRepository derives the report queries from a memStore so the
// reporting service can be exercised against the same fixture data.
type memReportRepository struct {
	store *memStore
}

func (r *memReportRepository) SumPaymentsInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.store.payments {
		if !p.PaidOn.Before(from) && p.PaidOn.Before(to) {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r *memReportRepository) SumExpensesInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.store.expenses {
		if !e.SpentOn.Before(from) && e.SpentOn.Before(to) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (r *memReportRepository) SumOutstandingActive(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.store.enrollments {
		if e.IsActive() {
			total = total.Add(e.OutstandingBalance)
		}
	}
	return total, nil
}

func (r *memReportRepository) TopDebtors(ctx context.Context, n int) ([]ledger.Debtor, error) {
	var out []ledger.Debtor
	for _, e := range r.store.enrollments {
		if !e.IsDebtor() {
			continue
		}
		name, _ := r.store.StudentName(ctx, e.StudentID)
		out = append(out, ledger.Debtor{
			EnrollmentID: e.ID,
			StudentID:    e.StudentID,
			StudentName:  name,
			CourseLabel:  e.CourseLabelOverride,
			Outstanding:  e.OutstandingBalance,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Outstanding.Equal(out[j].Outstanding) {
			return out[i].Outstanding.GreaterThan(out[j].Outstanding)
		}
		return out[i].StudentName < out[j].StudentName
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (r *memReportRepository) ActiveEnrollmentRows(ctx context.Context) ([]ledger.TrackingRow, error) {
	var out []ledger.TrackingRow
	for _, e := range r.store.enrollments {
		if !e.IsActive() {
			continue
		}
		name, _ := r.store.StudentName(ctx, e.StudentID)
		out = append(out, ledger.TrackingRow{
			EnrollmentID:  e.ID,
			StudentID:     e.StudentID,
			StudentName:   name,
			CourseLabel:   e.CourseLabelOverride,
			PaidThisMonth: decimal.Zero,
			Outstanding:   e.OutstandingBalance,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

func (r *memReportRepository) PaymentsInRange(ctx context.Context, from, to time.Time) ([]ledger.Payment, error) {
	var out []ledger.Payment
	for _, p := range r.store.payments {
		if !p.PaidOn.Before(from) && p.PaidOn.Before(to) {
			out = append(out, *p)
		}
	}
	return out, nil
}

var _ ledger.ReportRepository = (*memReportRepository)(nil)
