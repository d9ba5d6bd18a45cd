package validate

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reSlug  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	// Business codes are scanned from labels/QR tags: short, no whitespace.
	reCode = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a displayable name (customer, product, article title).
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 120 {
		return "", false
	}
	return s, true
}

func Slug(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && len(s) <= 120 && reSlug.MatchString(s)
}

// Quantity accepts strictly positive unit counts for ledger and cart
// operations. Zero and negatives are rejected, never clamped.
func Quantity(n int) bool { return n > 0 }

// IsUUID reports whether an identifier is UUID-shaped, selecting the
// primary-key lookup path; anything else resolves as a business code.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func Code(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && !IsUUID(s) && reCode.MatchString(s)
}

// Price accepts a decimal string with at most two fraction digits.
func Price(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || d.Exponent() < -2 {
		return decimal.Zero, false
	}
	return d, true
}

func PaymentMethod(s string, allowed []string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, m := range allowed {
		if s == m {
			return s, true
		}
	}
	return "", false
}

// Address checks the shipping address fields the checkout requires.
func Address(fullName, street, city, postal, country string) bool {
	min3 := func(s string) bool { return len(strings.TrimSpace(s)) >= 3 }
	return min3(fullName) && min3(street) && min3(city) && min3(postal) && min3(country)
}

// Password enforces a minimum length for login checks.
func Password(s string) bool {
	return len(s) >= 6 && len(s) <= 72
}
