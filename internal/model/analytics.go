package model

// Payment buckets for the status breakdown.
const (
	BucketDue     = "Due"
	BucketExpired = "Expired"
	BucketPaid    = "Paid"
)

// MonthRevenue is the collected amount for one calendar month.
type MonthRevenue struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

// MonthlyRevenueResponse always carries twelve months in calendar order.
type MonthlyRevenueResponse struct {
	Year int            `json:"year"`
	Data []MonthRevenue `json:"data"`
}

// BucketCount is the number of invoices in one payment bucket.
type BucketCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// StatusBreakdownResponse always carries the Due, Expired and Paid buckets, sorted by name.
type StatusBreakdownResponse struct {
	Year int           `json:"year"`
	Data []BucketCount `json:"data"`
}

// DashboardStatsResponse is the dashboard snapshot for the current local day and month.
type DashboardStatsResponse struct {
	TodayIncome   int64 `json:"today_income"`
	MonthInvoices int64 `json:"month_invoices"`
	DuePayment    int64 `json:"due_payment"`
}
