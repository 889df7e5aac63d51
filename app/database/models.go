package database

import (
	"time"
)

// Company represents a monitored company record in the database
type Company struct {
	ID            int64
	Slug          string
	Name          string
	URL           string
	IsPrimary     bool
	Enabled       bool
	LastScrapedAt *time.Time
	NextScrapeAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Complaint represents a scraped complaint record in the database
type Complaint struct {
	ID         int64
	CompanyID  int64
	ExternalID string
	URLSlug    string

	Title    string
	Text     string
	UserName string
	Location string
	Category string
	Status   string

	ComplaintDate       time.Time
	CompanyResponseText string
	CompanyResponseDate *time.Time
	CustomerEvaluation  string
	EvaluationDate      *time.Time

	Sentiment      string
	SentimentScore *float64
	Classification string // JSON blob with categories and themes
	UrgencyScore   *float64

	ResponseGenerated string
	ResponseEdited    string
	CouponCode        string
	CouponDiscount    *int
	ResponseSent      bool
	ResponseSentAt    *time.Time

	ScrapedAt  time.Time
	AnalyzedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Coupon represents an issued discount coupon
type Coupon struct {
	ID              int64
	Code            string
	DiscountPercent int
	ComplaintID     *int64
	ValidFrom       time.Time
	ValidUntil      time.Time
	IsUsed          bool
	UsedAt          *time.Time
	CreatedAt       time.Time
}

// CompanyStats aggregates per-company complaint counts for the benchmark view
type CompanyStats struct {
	CompanySlug     string
	CompanyName     string
	IsPrimary       bool
	TotalComplaints int
	Answered        int
	Solved          int
	AvgUrgency      *float64
	AvgSentiment    *float64
}
