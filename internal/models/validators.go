package models

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// emailPattern is the construction-time email rule. Setters on live
// aggregates only require an '@'.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// MinPasswordHashLength is the shortest hash accepted when constructing a
// customer or user. bcrypt output is 60 characters.
const MinPasswordHashLength = 20

// nowFunc is replaced in tests that need deterministic timestamps.
var nowFunc = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// touch returns a timestamp strictly after prev. Postgres keeps microsecond
// precision, so the step is one microsecond.
func touch(prev time.Time) time.Time {
	t := nowFunc()
	if !t.After(prev) {
		t = prev.Add(time.Microsecond)
	}
	return t
}

// ValidateID checks an identifier is present
func ValidateID(field, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", NewValidationError(field, "must not be empty")
	}
	return id, nil
}

// ValidateRequiredText trims s and rejects an empty result
func ValidateRequiredText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", NewValidationError(field, "cannot be empty")
	}
	return s, nil
}

// ValidateEmail accepts anything containing '@' and canonicalizes it
func ValidateEmail(email string) (string, error) {
	if !strings.Contains(email, "@") {
		return "", NewValidationError("email", "invalid email")
	}
	return NormalizeEmail(email), nil
}

// ValidateEmailStrict applies the construction-time pattern
func ValidateEmailStrict(email string) (string, error) {
	value := NormalizeEmail(email)
	if !emailPattern.MatchString(value) {
		return "", NewValidationError("email", "invalid email")
	}
	return value, nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DigitsOnly drops every non-digit character
func DigitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTaxID rejects blank input and keeps only digits. Input made only
// of punctuation yields an empty tax id, which is accepted.
func NormalizeTaxID(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", NewValidationError("tax_id", "cannot be empty")
	}
	return DigitsOnly(raw), nil
}

// NormalizePhone rejects blank input and keeps only digits
func NormalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", NewValidationError("phone", "cannot be empty")
	}
	return DigitsOnly(raw), nil
}

// NormalizeSKU trims and uppercases a SKU
func NormalizeSKU(raw string) (string, error) {
	sku := strings.TrimSpace(raw)
	if sku == "" {
		return "", NewValidationError("sku", "cannot be empty")
	}
	return strings.ToUpper(sku), nil
}

// ValidatePrice requires a strictly positive price. NaN is rejected too.
func ValidatePrice(price float64) error {
	if !(price > 0) {
		return NewValidationError("price", "must be greater than zero")
	}
	return nil
}

// MaxStockValue is the largest quantity or threshold the INTEGER stock
// columns can hold.
const MaxStockValue = math.MaxInt32

// ValidateStockQuantity rejects negative or oversized quantities
func ValidateStockQuantity(quantity int) error {
	if quantity < 0 {
		return NewValidationError("stock_quantity", "cannot be negative")
	}
	if quantity > MaxStockValue {
		return NewValidationError("stock_quantity", fmt.Sprintf("cannot exceed %d", MaxStockValue))
	}
	return nil
}

// ValidateMinStock rejects negative or oversized thresholds
func ValidateMinStock(minStock int) error {
	if minStock < 0 {
		return NewValidationError("min_stock", "cannot be negative")
	}
	if minStock > MaxStockValue {
		return NewValidationError("min_stock", fmt.Sprintf("cannot exceed %d", MaxStockValue))
	}
	return nil
}

// ValidatePasswordHash requires a non-empty hash
func ValidatePasswordHash(hash string) error {
	if hash == "" {
		return NewValidationError("password_hash", "cannot be empty")
	}
	return nil
}

// ValidatePasswordHashStrict applies the construction-time length rule
func ValidatePasswordHashStrict(hash string) error {
	if len(strings.TrimSpace(hash)) < MinPasswordHashLength {
		return NewValidationError("password_hash", "invalid password hash")
	}
	return nil
}

// ValidatePersonName enforces the optional-name rule used at construction:
// empty is allowed, otherwise at least two characters after trimming.
func ValidatePersonName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	if len([]rune(name)) < 2 {
		return "", NewValidationError("name", "must have at least 2 characters")
	}
	return name, nil
}

// ValidatePassword checks a plaintext password before hashing
func ValidatePassword(password string) error {
	if password == "" {
		return NewValidationError("password", "is required")
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsSpace(r) }) < 0 {
		return NewValidationError("password", "cannot be blank")
	}
	return nil
}
