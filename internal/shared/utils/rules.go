package utils

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ozzo's Min/Max do not understand decimal.Decimal, these rules do.
// Nil pointers pass, pair them with validation.NotNil when the field is required.

func DecimalMin(min decimal.Decimal, message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		d, ok := toDecimal(value)
		if ok && d.LessThan(min) {
			return errors.New(message)
		}
		return nil
	})
}

func DecimalMax(max decimal.Decimal, message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		d, ok := toDecimal(value)
		if ok && d.GreaterThan(max) {
			return errors.New(message)
		}
		return nil
	})
}

func DecimalPositive(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		d, ok := toDecimal(value)
		if ok && !d.IsPositive() {
			return errors.New(message)
		}
		return nil
	})
}

// DecimalMaxScale rejects values with more fractional digits than scale (e.g. 2 for cents).
func DecimalMaxScale(scale int32, message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		d, ok := toDecimal(value)
		if ok && !d.Equal(d.Truncate(scale)) {
			return errors.New(message)
		}
		return nil
	})
}

// UUIDRequired rejects uuid.Nil. validation.Required cannot, a UUID is a non-empty array.
func UUIDRequired(message string) validation.Rule {
	return validation.By(func(value interface{}) error {
		switch v := value.(type) {
		case uuid.UUID:
			if v == uuid.Nil {
				return errors.New(message)
			}
		case *uuid.UUID:
			if v == nil || *v == uuid.Nil {
				return errors.New(message)
			}
		}
		return nil
	})
}

func toDecimal(value interface{}) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, false
		}
		return *v, true
	default:
		return decimal.Zero, false
	}
}
