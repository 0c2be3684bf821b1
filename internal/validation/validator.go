// Package validation checks TourRecords with go-playground/validator v10.
// A single validator instance is shared; it caches struct metadata and is
// safe for concurrent use.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// get returns the shared validator with the record-specific tags registered.
func get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report json names ("revenue") instead of Go names ("Revenue").
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("tourdate", func(fl validator.FieldLevel) bool {
			_, err := domain.ParseDate(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("tourtype", func(fl validator.FieldLevel) bool {
			return domain.TourType(fl.Field().Uint()).Valid()
		})
	})
	return validate
}

// Record validates r and returns a *domain.ValidationError naming the first
// field that failed, or nil.
func Record(r domain.TourRecord) error {
	if strings.TrimSpace(r.Guide) == "" {
		// "required" accepts whitespace; the form does not.
		r.Guide = ""
	}

	err := get().Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ValidationError{Field: "record", Reason: err.Error()}
	}
	fe := fieldErrs[0]
	return &domain.ValidationError{Field: fe.Field(), Reason: reason(fe)}
}

// reason converts a validator.FieldError to a short human-readable message.
func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "tourdate":
		return "must be a calendar date (YYYY-MM-DD)"
	case "tourtype":
		return "must be a known tour type"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Sanitize keeps the valid records with first-seen ids, in input order.
// It returns the kept records and how many were dropped.
func Sanitize(records []domain.TourRecord) ([]domain.TourRecord, int) {
	out := make([]domain.TourRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if Record(r) != nil {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}
