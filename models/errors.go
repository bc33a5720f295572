package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownAnchor matches any UnknownAnchorError via errors.Is.
	ErrUnknownAnchor = errors.New("unknown anchor")
	// ErrDuplicateID matches any DuplicateIDError via errors.Is.
	ErrDuplicateID = errors.New("duplicate cart item id")
	// ErrInvalidMacroValue matches any InvalidMacroValueError via errors.Is.
	ErrInvalidMacroValue = errors.New("invalid macro value")
)

// InvalidMacroValueError is returned for negative or non-finite gram values,
// including results that overflow. Field is empty when no single input is to blame.
type InvalidMacroValueError struct {
	Field string
	Value float64
}

func (e *InvalidMacroValueError) Error() string {
	field := e.Field
	if field == "" {
		field = "result"
	}
	if e.finite() {
		return fmt.Sprintf("%s must be a non-negative number, got %v", field, e.Value)
	}
	return fmt.Sprintf("%s must be a finite number, got %v", field, e.Value)
}

func (e *InvalidMacroValueError) finite() bool {
	return !math.IsNaN(e.Value) && !math.IsInf(e.Value, 0)
}

func (e *InvalidMacroValueError) Is(target error) bool {
	return target == ErrInvalidMacroValue
}

// UnknownAnchorError is returned when an anchor id names no known nutrient.
type UnknownAnchorError struct {
	Value string
}

func (e *UnknownAnchorError) Error() string {
	names := make([]string, len(AnchorKeys))
	for i, k := range AnchorKeys {
		names[i] = string(k)
	}
	return fmt.Sprintf("unknown anchor %q, expected one of %s", e.Value, strings.Join(names, ", "))
}

func (e *UnknownAnchorError) Is(target error) bool {
	return target == ErrUnknownAnchor
}

// DuplicateIDError is returned when a cart already holds an item with the same id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("cart already contains item %q", e.ID)
}

func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// FieldError is one entry of a validation error body.
// Loc holds strings and ints, e.g. ["body", "aggregated_input_data", "fat"].
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationError carries every field-level problem found in a request.
type ValidationError struct {
	Detail []FieldError `json:"detail"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Detail))
	for _, d := range e.Detail {
		loc := make([]string, len(d.Loc))
		for i, l := range d.Loc {
			loc[i] = fmt.Sprint(l)
		}
		parts = append(parts, strings.Join(loc, ".")+": "+d.Msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a field error.
func (e *ValidationError) Add(msg, typ string, loc ...any) {
	e.Detail = append(e.Detail, FieldError{Loc: loc, Msg: msg, Type: typ})
}

// Err returns nil when no field errors were collected.
func (e *ValidationError) Err() error {
	if len(e.Detail) == 0 {
		return nil
	}
	return e
}

// Validation error types, named after the checks that produce them.
const (
	ErrTypeMissing     = "missing"
	ErrTypeGreaterEq   = "greater_than_equal"
	ErrTypeFinite      = "finite_number"
	ErrTypeEnum        = "enum"
	ErrTypeJSONInvalid = "json_invalid"
	ErrTypeFloat       = "float_type"
	ErrTypeString      = "string_type"
)

// AsValidationError converts engine errors into a ValidationError rooted at loc.
// Errors that are not input problems are returned as nil.
func AsValidationError(err error, loc ...any) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	out := &ValidationError{}
	var macroErr *InvalidMacroValueError
	var anchorErr *UnknownAnchorError
	switch {
	case errors.As(err, &macroErr):
		at := loc
		if macroErr.Field != "" {
			at = append(append([]any{}, loc...), macroErr.Field)
		}
		if macroErr.finite() {
			out.Add("Input should be greater than or equal to 0", ErrTypeGreaterEq, at...)
		} else {
			out.Add("Input should be a finite number", ErrTypeFinite, at...)
		}
	case errors.As(err, &anchorErr):
		out.Add(anchorErr.Error(), ErrTypeEnum, loc...)
	default:
		return nil
	}
	return out
}
