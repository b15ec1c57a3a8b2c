package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/logger"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/shopspring/decimal"
)

// Month names used in the monthly revenue series, keyed by locale.
var monthNames = map[string][12]string{
	"bn": {
		"জানুয়ারি", "ফেব্রুয়ারি", "মার্চ", "এপ্রিল", "মে", "জুন",
		"জুলাই", "আগস্ট", "সেপ্টেম্বর", "অক্টোবর", "নভেম্বর", "ডিসেম্বর",
	},
	"en": {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
}

const DefaultMonthLocale = "bn"

// --- Interface ---

// AnalyticsService folds one owner's invoices into revenue and status reports.
// Every operation is read-only.
type AnalyticsService interface {
	MonthlyRevenue(ctx context.Context, userID string, year int) (model.MonthlyRevenueResponse, error)
	StatusBreakdown(ctx context.Context, userID string, year int) (model.StatusBreakdownResponse, error)
	DashboardStats(ctx context.Context, userID string) (model.DashboardStatsResponse, error)
}

type analyticsService struct {
	invoiceRepo repository.InvoiceRepository
	loc         *time.Location
	months      [12]string
	now         func() time.Time
}

// NewAnalyticsService builds the aggregator. loc bounds the dashboard's day and
// month; year filters always use UTC. A nil now uses time.Now.
func NewAnalyticsService(invoiceRepo repository.InvoiceRepository, loc *time.Location, monthLocale string, now func() time.Time) AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	months, ok := monthNames[monthLocale]
	if !ok {
		months = monthNames[DefaultMonthLocale]
	}
	return &analyticsService{
		invoiceRepo: invoiceRepo,
		loc:         loc,
		months:      months,
		now:         now,
	}
}

// --- Implementation ---

func (s *analyticsService) MonthlyRevenue(ctx context.Context, userID string, year int) (model.MonthlyRevenueResponse, error) {
	year = s.resolveYear(year)
	invoices, err := s.load(ctx, userID)
	if err != nil {
		return model.MonthlyRevenueResponse{}, err
	}

	var sums [12]decimal.Decimal
	for _, inv := range invoices {
		issued, ok := ParseInvoiceDate(inv.IssueDate)
		if !ok || !inYear(issued, year) {
			continue
		}
		month := issued.UTC().Month()
		sums[month-1] = sums[month-1].Add(ComputeTotals(inv).Collected)
	}

	data := make([]model.MonthRevenue, 0, len(s.months))
	for i, name := range s.months {
		data = append(data, model.MonthRevenue{Month: name, Revenue: roundedInt(sums[i])})
	}
	return model.MonthlyRevenueResponse{Year: year, Data: data}, nil
}

func (s *analyticsService) StatusBreakdown(ctx context.Context, userID string, year int) (model.StatusBreakdownResponse, error) {
	year = s.resolveYear(year)
	invoices, err := s.load(ctx, userID)
	if err != nil {
		return model.StatusBreakdownResponse{}, err
	}

	now := s.now()
	counts := map[string]int64{
		model.BucketPaid:    0,
		model.BucketDue:     0,
		model.BucketExpired: 0,
	}
	for _, inv := range invoices {
		issued, ok := ParseInvoiceDate(inv.IssueDate)
		if !ok || !inYear(issued, year) {
			continue
		}
		counts[classify(inv, now)]++
	}

	data := make([]model.BucketCount, 0, len(counts))
	for name, value := range counts {
		data = append(data, model.BucketCount{Name: name, Value: value})
	}
	sort.Slice(data, func(i, j int) bool { return data[i].Name < data[j].Name })

	return model.StatusBreakdownResponse{Year: year, Data: data}, nil
}

// DashboardStats computes all three figures in one pass. Day and month bounds
// follow the service location; duePayment spans every invoice of the owner.
func (s *analyticsService) DashboardStats(ctx context.Context, userID string) (model.DashboardStatsResponse, error) {
	invoices, err := s.load(ctx, userID)
	if err != nil {
		return model.DashboardStatsResponse{}, err
	}

	now := s.now().In(s.loc)
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	startOfNextMonth := startOfMonth.AddDate(0, 1, 0)

	todayIncome := decimal.Zero
	duePayment := decimal.Zero
	var monthInvoices int64
	for _, inv := range invoices {
		issued, ok := ParseInvoiceDate(inv.IssueDate)
		if !ok {
			continue
		}
		totals := ComputeTotals(inv)

		if within(issued, startOfToday, startOfTomorrow) {
			todayIncome = todayIncome.Add(totals.Collected)
		}
		if within(issued, startOfMonth, startOfNextMonth) {
			monthInvoices++
		}
		duePayment = duePayment.Add(totals.Outstanding)
	}

	return model.DashboardStatsResponse{
		TodayIncome:   roundedInt(todayIncome),
		MonthInvoices: monthInvoices,
		DuePayment:    roundedInt(duePayment),
	}, nil
}

// --- Helpers ---

func (s *analyticsService) load(ctx context.Context, userID string) ([]model.Invoice, error) {
	if userID == "" {
		return nil, apperror.ErrUnauthorized
	}
	invoices, err := s.invoiceRepo.ListForAnalytics(ctx, userID)
	if err != nil {
		log := logger.WithComponent(logger.ComponentAnalytics)
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load invoices for analytics")
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	return invoices, nil
}

func (s *analyticsService) resolveYear(year int) int {
	if year <= 0 {
		return s.now().In(s.loc).Year()
	}
	return year
}

// classify places an invoice in the Paid, Expired or Due bucket.
func classify(inv model.Invoice, now time.Time) string {
	if ComputeTotals(inv).IsPaid() {
		return model.BucketPaid
	}
	if due, ok := ParseInvoiceDate(inv.DueDate); ok && due.Before(now) {
		return model.BucketExpired
	}
	return model.BucketDue
}

// inYear reports whether t falls in [Jan 1 UTC of year, Jan 1 UTC of year+1).
func inYear(t time.Time, year int) bool {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return within(t, start, start.AddDate(1, 0, 0))
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
