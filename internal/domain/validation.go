package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation constants
const (
	MaxAccountNameLength = 255
	MinAccountNameLength = 1
	MaxKeyLength         = 64
	MaxConceptLength     = 120
)

var (
	keyRegex      = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidateAccountName validates account name
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinAccountNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAccountName)
	}

	if len(name) > MaxAccountNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccountName, MaxAccountNameLength)
	}

	return nil
}

// NormalizeKey trims and lower-cases an account or holder key.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// ValidateKey validates a user-chosen key. Keys starting with "_" are
// reserved for credit accounts.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}

	if len(key) > MaxKeyLength {
		return fmt.Errorf("%w: key exceeds %d characters", ErrInvalidKey, MaxKeyLength)
	}

	if strings.HasPrefix(key, creditKeyPrefix) {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidKey, key)
	}

	if !keyRegex.MatchString(key) {
		return fmt.Errorf("%w: %q has forbidden characters", ErrInvalidKey, key)
	}

	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(code string) error {
	code = NormalizeCurrencyCode(code)

	if !currencyRegex.MatchString(code) {
		return fmt.Errorf("%w: %s is not a three letter code", ErrInvalidCurrency, code)
	}

	return nil
}

// ValidateConcept validates a movement concept
func ValidateConcept(concept string) error {
	concept = strings.TrimSpace(concept)

	if concept == "" {
		return ErrInvalidConcept
	}

	if len(concept) > MaxConceptLength {
		return fmt.Errorf("%w: concept exceeds %d characters", ErrInvalidConcept, MaxConceptLength)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
