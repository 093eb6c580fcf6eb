// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate checks request payloads at the HTTP boundary and reports
// every failing field at once as a single VALIDATION_ERROR.
//
// The core re-checks its own bounds, so a rule here only decides how early
// and how precisely a bad request is rejected.
package validate

import (
	"fmt"
	"strings"

	"github.com/taibuivan/murmur/internal/platform/apperr"
	"github.com/taibuivan/murmur/pkg/textnorm"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator accumulates field failures. Use one per request.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails on an empty or whitespace-only value.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// Length fails unless value has between min and max characters inclusive.
// A max of zero leaves the upper bound open. Characters are code points.
func (v *Validator) Length(field, value string, min, max int) *Validator {
	count := textnorm.RuneLen(value)
	switch {
	case count < min:
		v.add(field, fmt.Sprintf("Minimum %d characters", min))
	case max > 0 && count > max:
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Err returns the collected failures as one [apperr.AppError], or nil.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("Validation failed", v.errs...)
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
