package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLCompanyRepository handles database operations for companies
type SQLCompanyRepository struct {
	db *DB
}

func NewCompanyRepository(db *DB) *SQLCompanyRepository {
	return &SQLCompanyRepository{db: db}
}

// UpsertCompany inserts or updates a company registration from its config
func (r *SQLCompanyRepository) UpsertCompany(slug, name, url string, isPrimary, enabled bool) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO companies (slug, name, url, is_primary, enabled)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			url = excluded.url,
			is_primary = excluded.is_primary,
			enabled = excluded.enabled,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, slug, name, url, isPrimary, enabled).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert company: %w", err)
	}
	return id, nil
}

func (r *SQLCompanyRepository) GetCompanyBySlug(slug string) (*Company, error) {
	var c Company
	err := r.db.QueryRow(`
		SELECT id, slug, name, url, is_primary, enabled,
		       last_scraped_at, next_scrape_at, created_at, updated_at
		FROM companies
		WHERE slug = ?
	`, slug).Scan(&c.ID, &c.Slug, &c.Name, &c.URL, &c.IsPrimary, &c.Enabled,
		&c.LastScrapedAt, &c.NextScrapeAt, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

func (r *SQLCompanyRepository) GetCompanies() ([]Company, error) {
	rows, err := r.db.Query(`
		SELECT id, slug, name, url, is_primary, enabled,
		       last_scraped_at, next_scrape_at, created_at, updated_at
		FROM companies
		ORDER BY is_primary DESC, slug
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.URL, &c.IsPrimary, &c.Enabled,
			&c.LastScrapedAt, &c.NextScrapeAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *SQLCompanyRepository) UpdateScrapeTimes(companyID int64, lastScrapedAt, nextScrapeAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE companies
		SET last_scraped_at = ?, next_scrape_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, lastScrapedAt, nextScrapeAt, companyID)
	if err != nil {
		return fmt.Errorf("failed to update scrape times: %w", err)
	}
	return nil
}
