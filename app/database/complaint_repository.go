package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ouvidorlabs/ouvidor/app/scraper"
)

// SQLComplaintRepository handles database operations for complaints
type SQLComplaintRepository struct {
	db *DB
}

func NewComplaintRepository(db *DB) *SQLComplaintRepository {
	return &SQLComplaintRepository{db: db}
}

const complaintColumns = `
	id, company_id, external_id, COALESCE(url_slug, ''),
	COALESCE(title, ''), text, COALESCE(user_name, ''), COALESCE(location, ''),
	COALESCE(category, ''), COALESCE(status, ''),
	complaint_date, COALESCE(company_response_text, ''), company_response_date,
	COALESCE(customer_evaluation, ''), evaluation_date,
	COALESCE(sentiment, ''), sentiment_score, COALESCE(classification, ''), urgency_score,
	COALESCE(response_generated, ''), COALESCE(response_edited, ''),
	COALESCE(coupon_code, ''), coupon_discount, response_sent, response_sent_at,
	scraped_at, analyzed_at, created_at, updated_at`

func scanComplaint(scan func(dest ...any) error) (*Complaint, error) {
	var c Complaint
	err := scan(
		&c.ID, &c.CompanyID, &c.ExternalID, &c.URLSlug,
		&c.Title, &c.Text, &c.UserName, &c.Location,
		&c.Category, &c.Status,
		&c.ComplaintDate, &c.CompanyResponseText, &c.CompanyResponseDate,
		&c.CustomerEvaluation, &c.EvaluationDate,
		&c.Sentiment, &c.SentimentScore, &c.Classification, &c.UrgencyScore,
		&c.ResponseGenerated, &c.ResponseEdited,
		&c.CouponCode, &c.CouponDiscount, &c.ResponseSent, &c.ResponseSentAt,
		&c.ScrapedAt, &c.AnalyzedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SQLComplaintRepository) ExistsByExternalID(externalID string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM complaints WHERE external_id = ?", externalID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check complaint existence: %w", err)
	}
	return true, nil
}

// SaveBatch stores one page worth of scraped records inside a single
// transaction. ON CONFLICT DO NOTHING enforces the skip-never-overwrite
// rule at the database level, so concurrent runs stay safe too.
func (r *SQLComplaintRepository) SaveBatch(companyID int64, records []scraper.ComplaintRecord) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO complaints (
			company_id, external_id, url_slug, title, text, user_name, location,
			category, status, complaint_date, company_response_text,
			company_response_date, customer_evaluation, evaluation_date, scraped_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(external_id) DO NOTHING
	`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted, skipped := 0, 0
	for _, rec := range records {
		res, err := stmt.Exec(
			companyID, rec.ExternalID, rec.URLSlug, rec.Title, rec.Text,
			rec.UserName, rec.Location, rec.Category, rec.Status,
			rec.ComplaintDate, rec.CompanyResponseText, rec.CompanyResponseDate,
			rec.CustomerEvaluation, rec.EvaluationDate, rec.ScrapedAt,
		)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert complaint %s: %w", rec.ExternalID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read insert result: %w", err)
		}
		if affected > 0 {
			inserted++
		} else {
			skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return inserted, skipped, nil
}

func (r *SQLComplaintRepository) GetComplaint(id int64) (*Complaint, error) {
	c, err := scanComplaint(r.db.QueryRow(
		"SELECT "+complaintColumns+" FROM complaints WHERE id = ?", id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return c, nil
}

func (r *SQLComplaintRepository) ListComplaints(filter ComplaintFilter) ([]Complaint, error) {
	var conditions []string
	var args []any

	if filter.CompanySlug != "" {
		conditions = append(conditions, "company_id = (SELECT id FROM companies WHERE slug = ?)")
		args = append(args, filter.CompanySlug)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Sentiment != "" {
		conditions = append(conditions, "sentiment = ?")
		args = append(args, filter.Sentiment)
	}

	query := "SELECT " + complaintColumns + " FROM complaints"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY complaint_date DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	var complaints []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

func (r *SQLComplaintRepository) GetComplaintCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM complaints").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count complaints: %w", err)
	}
	return count, nil
}

func (r *SQLComplaintRepository) GetUnanalyzed(limit int) ([]Complaint, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(
		"SELECT "+complaintColumns+` FROM complaints
		WHERE analyzed_at IS NULL
		ORDER BY scraped_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unanalyzed complaints: %w", err)
	}
	defer rows.Close()

	var complaints []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

func (r *SQLComplaintRepository) UpdateAnalysis(id int64, analysis AnalysisUpdate) error {
	_, err := r.db.Exec(`
		UPDATE complaints
		SET sentiment = ?, sentiment_score = ?, classification = ?, urgency_score = ?,
		    analyzed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, analysis.Sentiment, analysis.SentimentScore, analysis.Classification, analysis.UrgencyScore, id)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}
	return nil
}

func (r *SQLComplaintRepository) UpdateGeneratedResponse(id int64, response, couponCode string, couponDiscount int) error {
	_, err := r.db.Exec(`
		UPDATE complaints
		SET response_generated = ?, coupon_code = ?, coupon_discount = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, response, couponCode, couponDiscount, id)
	if err != nil {
		return fmt.Errorf("failed to store generated response: %w", err)
	}
	return nil
}

func (r *SQLComplaintRepository) UpdateEditedResponse(id int64, response string) error {
	_, err := r.db.Exec(`
		UPDATE complaints
		SET response_edited = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, response, id)
	if err != nil {
		return fmt.Errorf("failed to store edited response: %w", err)
	}
	return nil
}

func (r *SQLComplaintRepository) MarkResponseSent(id int64) error {
	_, err := r.db.Exec(`
		UPDATE complaints
		SET response_sent = 1, response_sent_at = CURRENT_TIMESTAMP,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark response sent: %w", err)
	}
	return nil
}

func (r *SQLComplaintRepository) GetStats() (map[string]int, error) {
	var total, analyzed, generated, sent int
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(analyzed_at),
		       COUNT(CASE WHEN response_generated IS NOT NULL AND response_generated != '' THEN 1 END),
		       COUNT(CASE WHEN response_sent = 1 THEN 1 END)
		FROM complaints
	`).Scan(&total, &analyzed, &generated, &sent)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return map[string]int{
		"total":               total,
		"analyzed":            analyzed,
		"responses_generated": generated,
		"responses_sent":      sent,
	}, nil
}

func (r *SQLComplaintRepository) GetBenchmark() ([]CompanyStats, error) {
	rows, err := r.db.Query(`
		SELECT co.slug, co.name, co.is_primary,
		       COUNT(c.id),
		       COUNT(CASE WHEN c.status IN ('answered', 'solved', 'evaluated') THEN 1 END),
		       COUNT(CASE WHEN c.status = 'solved' THEN 1 END),
		       AVG(c.urgency_score),
		       AVG(c.sentiment_score)
		FROM companies co
		LEFT JOIN complaints c ON c.company_id = co.id
		GROUP BY co.id
		ORDER BY co.is_primary DESC, co.slug
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute benchmark: %w", err)
	}
	defer rows.Close()

	var out []CompanyStats
	for rows.Next() {
		var s CompanyStats
		if err := rows.Scan(&s.CompanySlug, &s.CompanyName, &s.IsPrimary,
			&s.TotalComplaints, &s.Answered, &s.Solved, &s.AvgUrgency, &s.AvgSentiment); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
