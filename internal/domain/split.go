package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SubaccountSpec describes one subaccount created when an account is split.
// A nil Balance is computed from the rest.
type SubaccountSpec struct {
	Name     string
	Key      string
	Balance  *decimal.Decimal
	HolderID string
	Free     bool
}

// Split is a subaccount spec with its resolved balance.
type Split struct {
	SubaccountSpec
	Amount decimal.Decimal
}

// ParseSubaccountSpecs normalizes raw specs into SubaccountSpec values.
// Each item may be a SubaccountSpec, a map (keys name, key/slug,
// balance/saldo, holder/titular, free/esgratis) or a positional list
// (name, key[, balance[, holder[, free]]]).
func ParseSubaccountSpecs(raw []any) ([]SubaccountSpec, error) {
	specs := make([]SubaccountSpec, 0, len(raw))
	for i, item := range raw {
		spec, err := ParseSubaccountSpec(item)
		if err != nil {
			return nil, fmt.Errorf("subaccount %d: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// ParseSubaccountSpec normalizes a single raw spec.
func ParseSubaccountSpec(item any) (SubaccountSpec, error) {
	switch v := item.(type) {
	case SubaccountSpec:
		return v, checkSpec(v)
	case *SubaccountSpec:
		if v == nil {
			return SubaccountSpec{}, ErrInvalidSubaccountSpec
		}
		return *v, checkSpec(*v)
	case map[string]any:
		return specFromMap(v)
	case []string:
		values := make([]any, len(v))
		for i, s := range v {
			values[i] = s
		}
		return specFromList(values)
	case []any:
		return specFromList(v)
	default:
		return SubaccountSpec{}, fmt.Errorf("%w: unsupported form %T", ErrInvalidSubaccountSpec, item)
	}
}

func specFromMap(m map[string]any) (SubaccountSpec, error) {
	var (
		spec SubaccountSpec
		err  error
	)
	spec.Name, err = stringField(first(m, "name", "nombre"))
	if err != nil {
		return spec, err
	}
	spec.Key, err = stringField(first(m, "key", "slug"))
	if err != nil {
		return spec, err
	}
	if spec.Balance, err = decimalField(first(m, "balance", "saldo")); err != nil {
		return spec, err
	}
	if spec.HolderID, err = stringField(first(m, "holder", "titular")); err != nil {
		return spec, err
	}
	if spec.Free, err = boolField(first(m, "free", "esgratis")); err != nil {
		return spec, err
	}
	return spec, checkSpec(spec)
}

func specFromList(values []any) (SubaccountSpec, error) {
	var (
		spec SubaccountSpec
		err  error
	)
	if len(values) < 2 || len(values) > 5 {
		return spec, fmt.Errorf("%w: expected 2 to 5 fields, got %d", ErrInvalidSubaccountSpec, len(values))
	}
	if spec.Name, err = stringField(values[0]); err != nil {
		return spec, err
	}
	if spec.Key, err = stringField(values[1]); err != nil {
		return spec, err
	}
	if len(values) > 2 {
		if spec.Balance, err = decimalField(values[2]); err != nil {
			return spec, err
		}
	}
	if len(values) > 3 {
		if spec.HolderID, err = stringField(values[3]); err != nil {
			return spec, err
		}
	}
	if len(values) > 4 {
		if spec.Free, err = boolField(values[4]); err != nil {
			return spec, err
		}
	}
	return spec, checkSpec(spec)
}

func checkSpec(spec SubaccountSpec) error {
	if strings.TrimSpace(spec.Name) == "" || strings.TrimSpace(spec.Key) == "" {
		return fmt.Errorf("%w: name and key are required", ErrInvalidSubaccountSpec)
	}
	return nil
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func stringField(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(s), nil
	default:
		return "", fmt.Errorf("%w: expected text, got %T", ErrInvalidSubaccountSpec, v)
	}
}

func decimalField(v any) (*decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch x := v.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		return x, nil
	case float64:
		d = decimal.NewFromFloat(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case string:
		if strings.TrimSpace(x) == "" {
			return nil, nil
		}
		d, err = decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("%w: balance %q: %v", ErrInvalidSubaccountSpec, x, err)
		}
	default:
		return nil, fmt.Errorf("%w: expected a number, got %T", ErrInvalidSubaccountSpec, v)
	}
	return &d, nil
}

func boolField(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case string:
		if strings.TrimSpace(b) == "" {
			return false, nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("%w: free %q: %v", ErrInvalidSubaccountSpec, b, err)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%w: expected a boolean, got %T", ErrInvalidSubaccountSpec, v)
	}
}

// ResolveSplit assigns a balance to every spec so that they add up to total.
// Given balances are rounded to the currency's minor unit; the one spec
// without balance gets the rounded remainder.
func ResolveSplit(total decimal.Decimal, currency string, specs []SubaccountSpec) ([]Split, error) {
	if len(specs) == 0 {
		return nil, ErrNoSubaccounts
	}

	total = RoundAmount(total, currency)
	splits := make([]Split, len(specs))
	missing := -1
	sum := decimal.Zero
	for i, spec := range specs {
		splits[i].SubaccountSpec = spec
		if spec.Balance == nil {
			if missing >= 0 {
				return nil, fmt.Errorf("%w: %q and %q", ErrSplitAmbiguousBalance, specs[missing].Key, spec.Key)
			}
			missing = i
			continue
		}
		splits[i].Amount = RoundAmount(*spec.Balance, currency)
		sum = sum.Add(splits[i].Amount)
	}

	if missing >= 0 {
		splits[missing].Amount = RoundAmount(total.Sub(sum), currency)
		sum = sum.Add(splits[missing].Amount)
	}

	if !sum.Equal(total) {
		return nil, fmt.Errorf("%w: expected %s, got %s (difference %s)",
			ErrSplitSumMismatch, total.String(), sum.String(), total.Sub(sum).String())
	}

	return splits, nil
}
