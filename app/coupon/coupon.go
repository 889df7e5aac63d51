package coupon

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/ouvidorlabs/ouvidor/app/database"
)

const (
	codeLength     = 8
	codeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	validityDays   = 30
	maxCodeRetries = 5
)

// Validation outcomes for a coupon lookup.
const (
	StateValid    = "valid"
	StateUsed     = "used"
	StateExpired  = "expired"
	StateNotFound = "not_found"
)

type ValidationResult struct {
	State  string
	Coupon *database.Coupon
}

// Service issues and validates discount coupons tied to complaints.
type Service struct {
	repo   database.CouponRepository
	prefix string
}

func NewService(repo database.CouponRepository, prefix string) *Service {
	return &Service{repo: repo, prefix: prefix}
}

// Issue creates a coupon for a complaint, retrying on the unlikely code
// collision. Validity starts now and runs for thirty days.
func (s *Service) Issue(complaintID int64, discountPercent int) (*database.Coupon, error) {
	validFrom := time.Now()
	validUntil := validFrom.AddDate(0, 0, validityDays)

	var lastErr error
	for attempt := 0; attempt < maxCodeRetries; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		existing, err := s.repo.GetCouponByCode(code)
		if err != nil {
			return nil, fmt.Errorf("failed to check coupon code: %w", err)
		}
		if existing != nil {
			lastErr = fmt.Errorf("coupon code %s already exists", code)
			continue
		}
		coupon, err := s.repo.CreateCoupon(code, discountPercent, complaintID, validFrom, validUntil)
		if err != nil {
			lastErr = err
			continue
		}
		return coupon, nil
	}
	return nil, fmt.Errorf("failed to issue coupon after %d attempts: %w", maxCodeRetries, lastErr)
}

// Validate reports whether a coupon code is redeemable right now.
func (s *Service) Validate(code string) (*ValidationResult, error) {
	coupon, err := s.repo.GetCouponByCode(code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return &ValidationResult{State: StateNotFound}, nil
	}
	switch {
	case coupon.IsUsed:
		return &ValidationResult{State: StateUsed, Coupon: coupon}, nil
	case time.Now().After(coupon.ValidUntil):
		return &ValidationResult{State: StateExpired, Coupon: coupon}, nil
	default:
		return &ValidationResult{State: StateValid, Coupon: coupon}, nil
	}
}

// Redeem marks a valid coupon as used.
func (s *Service) Redeem(code string) error {
	result, err := s.Validate(code)
	if err != nil {
		return err
	}
	if result.State != StateValid {
		return fmt.Errorf("coupon %s is not redeemable: %s", code, result.State)
	}
	return s.repo.MarkCouponUsed(code)
}

func (s *Service) newCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate coupon code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return s.prefix + string(buf), nil
}
