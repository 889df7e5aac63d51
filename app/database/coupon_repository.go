package database

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLCouponRepository handles database operations for coupons
type SQLCouponRepository struct {
	db *DB
}

func NewCouponRepository(db *DB) *SQLCouponRepository {
	return &SQLCouponRepository{db: db}
}

func (r *SQLCouponRepository) CreateCoupon(code string, discountPercent int, complaintID int64, validFrom, validUntil time.Time) (*Coupon, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO coupons (code, discount_percent, complaint_id, valid_from, valid_until)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, code, discountPercent, complaintID, validFrom, validUntil).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return &Coupon{
		ID:              id,
		Code:            code,
		DiscountPercent: discountPercent,
		ComplaintID:     &complaintID,
		ValidFrom:       validFrom,
		ValidUntil:      validUntil,
	}, nil
}

func (r *SQLCouponRepository) GetCouponByCode(code string) (*Coupon, error) {
	var c Coupon
	err := r.db.QueryRow(`
		SELECT id, code, discount_percent, complaint_id, valid_from, valid_until,
		       is_used, used_at, created_at
		FROM coupons
		WHERE code = ?
	`, code).Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.ComplaintID,
		&c.ValidFrom, &c.ValidUntil, &c.IsUsed, &c.UsedAt, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &c, nil
}

func (r *SQLCouponRepository) MarkCouponUsed(code string) error {
	res, err := r.db.Exec(`
		UPDATE coupons
		SET is_used = 1, used_at = CURRENT_TIMESTAMP
		WHERE code = ? AND is_used = 0
	`, code)
	if err != nil {
		return fmt.Errorf("failed to mark coupon used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("coupon %s not found or already used", code)
	}
	return nil
}
