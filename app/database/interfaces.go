package database

import (
	"time"

	"github.com/ouvidorlabs/ouvidor/app/scraper"
)

type CompanyRepository interface {
	UpsertCompany(slug, name, url string, isPrimary, enabled bool) (int64, error)
	GetCompanyBySlug(slug string) (*Company, error)
	GetCompanies() ([]Company, error)
	UpdateScrapeTimes(companyID int64, lastScrapedAt, nextScrapeAt time.Time) error
}

// ComplaintFilter narrows ListComplaints. Zero values mean "no constraint".
type ComplaintFilter struct {
	CompanySlug string
	Status      string
	Sentiment   string
	Limit       int
	Offset      int
}

type AnalysisUpdate struct {
	Sentiment      string
	SentimentScore float64
	Classification string
	UrgencyScore   float64
}

type ComplaintRepository interface {
	// ExistsByExternalID reports whether a complaint was already stored.
	// The external identifier is the sole deduplication key.
	ExistsByExternalID(externalID string) (bool, error)

	// SaveBatch persists one page worth of records. Records whose external
	// ID is already present are skipped, never overwritten.
	SaveBatch(companyID int64, records []scraper.ComplaintRecord) (inserted, skipped int, err error)

	GetComplaint(id int64) (*Complaint, error)
	ListComplaints(filter ComplaintFilter) ([]Complaint, error)
	GetComplaintCount() (int, error)

	GetUnanalyzed(limit int) ([]Complaint, error)
	UpdateAnalysis(id int64, analysis AnalysisUpdate) error

	UpdateGeneratedResponse(id int64, response, couponCode string, couponDiscount int) error
	UpdateEditedResponse(id int64, response string) error
	MarkResponseSent(id int64) error

	GetStats() (map[string]int, error)
	GetBenchmark() ([]CompanyStats, error)
}

type CouponRepository interface {
	CreateCoupon(code string, discountPercent int, complaintID int64, validFrom, validUntil time.Time) (*Coupon, error)
	GetCouponByCode(code string) (*Coupon, error)
	MarkCouponUsed(code string) error
}
