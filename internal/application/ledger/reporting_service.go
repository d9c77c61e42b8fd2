package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/academia/backend/internal/domain/ledger"
	"github.com/academia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportingService assembles the dashboard aggregates: monthly summary,
// debtor ranking, and the per-student payment tracking matrix. All month
// windows are calendar months of the business timezone.
type ReportingService struct {
	repo   ledger.ReportRepository
	cache  ledger.ReportCache
	ttl    time.Duration
	loc    *time.Location
	logger *zap.Logger
}

// NewReportingService creates a new ReportingService
func NewReportingService(
	repo ledger.ReportRepository,
	cache ledger.ReportCache,
	ttl time.Duration,
	loc *time.Location,
	logger *zap.Logger,
) *ReportingService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportingService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		loc:    loc,
		logger: logger,
	}
}

// MonthlySummary returns income, expenses, and their difference for the
// given calendar month, today's income, and the point-in-time outstanding
// total over active enrollments. Summaries are served from the cache when
// present; a miss recomputes and repopulates it.
func (s *ReportingService) MonthlySummary(ctx context.Context, month time.Month, year int) (*ledger.MonthlySummary, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.GetMonthlySummary(ctx, month, year)
		if err != nil {
			s.logger.Warn("summary cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	from, to := s.monthWindow(month, year)
	income, err := s.repo.SumPaymentsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repo.SumExpensesInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	today := s.dayWindowToday()
	todayIncome := decimal.Zero
	if today.overlaps(from, to) {
		todayIncome, err = s.repo.SumPaymentsInRange(ctx, today.from, today.to)
		if err != nil {
			return nil, err
		}
	}

	outstanding, err := s.repo.SumOutstandingActive(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ledger.MonthlySummary{
		Month:            month,
		Year:             year,
		Income:           income,
		Expenses:         expenses,
		Balance:          income.Sub(expenses),
		TodayIncome:      todayIncome,
		OutstandingTotal: outstanding,
	}

	if s.cache != nil {
		if err := s.cache.SetMonthlySummary(ctx, summary, s.ttl); err != nil {
			s.logger.Warn("summary cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// TopDebtors returns up to n active enrollments with a positive balance,
// largest balance first, ties broken by student name.
func (s *ReportingService) TopDebtors(ctx context.Context, n int) ([]ledger.Debtor, error) {
	if n <= 0 {
		return nil, shared.NewDomainError("INVALID_LIMIT", "Debtor limit must be positive")
	}
	return s.repo.TopDebtors(ctx, n)
}

// PaymentTrackingMatrix builds the per-student collection view for one
// month: every active enrollment with its month payments attached, sorted
// so the students who paid least come first.
func (s *ReportingService) PaymentTrackingMatrix(ctx context.Context, month time.Month, year int) (*ledger.TrackingMatrix, error) {
	if err := validateMonth(month, year); err != nil {
		return nil, err
	}

	rows, err := s.repo.ActiveEnrollmentRows(ctx)
	if err != nil {
		return nil, err
	}

	from, to := s.monthWindow(month, year)
	payments, err := s.repo.PaymentsInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byEnrollment := make(map[string][]ledger.Payment, len(rows))
	for _, p := range payments {
		key := p.EnrollmentID.String()
		byEnrollment[key] = append(byEnrollment[key], p)
	}

	matrix := &ledger.TrackingMatrix{
		Month:          month,
		Year:           year,
		Rows:           rows,
		TotalCollected: decimal.Zero,
	}

	for i := range matrix.Rows {
		row := &matrix.Rows[i]
		row.Payments = byEnrollment[row.EnrollmentID.String()]
		row.PaidThisMonth = decimal.Zero
		for _, p := range row.Payments {
			row.PaidThisMonth = row.PaidThisMonth.Add(p.Amount)
		}

		matrix.TotalCollected = matrix.TotalCollected.Add(row.PaidThisMonth)
		if row.PaidThisMonth.IsPositive() {
			matrix.PaidCount++
		} else {
			matrix.UnpaidCount++
		}
		if len(row.Payments) == 0 {
			matrix.NoPaymentThisMonth = append(matrix.NoPaymentThisMonth, *row)
		}
	}

	sort.SliceStable(matrix.Rows, func(i, j int) bool {
		a, b := matrix.Rows[i], matrix.Rows[j]
		if !a.PaidThisMonth.Equal(b.PaidThisMonth) {
			return a.PaidThisMonth.LessThan(b.PaidThisMonth)
		}
		return a.StudentName < b.StudentName
	})

	return matrix, nil
}

// validateMonth rejects out-of-range month/year pairs before they reach
// the queries.
func validateMonth(month time.Month, year int) error {
	if month < time.January || month > time.December {
		return shared.NewDomainError("INVALID_MONTH", "Month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return shared.NewDomainError("INVALID_YEAR", "Year is out of range")
	}
	return nil
}

func (s *ReportingService) monthWindow(month time.Month, year int) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	return from, from.AddDate(0, 1, 0)
}

type dayWindow struct {
	from, to time.Time
}

func (w dayWindow) overlaps(from, to time.Time) bool {
	return !w.from.Before(from) && w.from.Before(to)
}

func (s *ReportingService) dayWindowToday() dayWindow {
	now := time.Now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return dayWindow{from: from, to: from.AddDate(0, 0, 1)}
}
