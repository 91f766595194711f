// Package form decodes urlencoded form submissions into typed values.
//
// A Reader records the first failure and returns zero values afterwards, so
// a decoder can read every field and check Err once at the end.
package form

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	dateLayout = "2006-01-02"
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)

// ValidationError reports the first field that failed to decode.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason + ": " + e.Field
}

// Reader reads fields from submitted form values.
type Reader struct {
	vals url.Values
	err  *ValidationError
}

// FromContext parses the request form.
func FromContext(c echo.Context) (*Reader, error) {
	vals, err := c.FormParams()
	if err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return New(vals), nil
}

// New wraps already parsed values.
func New(vals url.Values) *Reader {
	return &Reader{vals: vals}
}

// Err returns the first validation failure, or nil.
func (r *Reader) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

func (r *Reader) fail(field, reason string) {
	if r.err == nil {
		r.err = &ValidationError{Field: field, Reason: reason}
	}
}

func (r *Reader) lookup(field string) (string, bool) {
	vs, ok := r.vals[field]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Has reports whether the field was submitted at all.
func (r *Reader) Has(field string) bool {
	_, ok := r.lookup(field)
	return ok
}

// String returns a field that must be submitted; its value may be empty and
// is kept verbatim.
func (r *Reader) String(field string) string {
	v, ok := r.lookup(field)
	if !ok {
		r.fail(field, "missing required field")
	}
	return v
}

// NonEmpty returns a field that must be submitted with a non-blank value.
func (r *Reader) NonEmpty(field string) string {
	v := r.String(field)
	if r.err == nil && strings.TrimSpace(v) == "" {
		r.fail(field, "empty required field")
	}
	return v
}

// StringOr returns the field or def when it was not submitted.
func (r *Reader) StringOr(field, def string) string {
	if v, ok := r.lookup(field); ok && v != "" {
		return v
	}
	return def
}

// OptionalString returns nil for an empty submitted value. Used for unique
// columns where several rows may leave the value unset.
func (r *Reader) OptionalString(field string) *string {
	v := r.String(field)
	if r.err != nil || v == "" {
		return nil
	}
	return &v
}

// Int returns a required integer field.
func (r *Reader) Int(field string) int64 {
	v := strings.TrimSpace(r.String(field))
	if r.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.fail(field, "invalid integer")
		return 0
	}
	return n
}

// OptionalInt returns nil for an empty submitted value. The field must still
// be present.
func (r *Reader) OptionalInt(field string) *int64 {
	v := strings.TrimSpace(r.String(field))
	if r.err != nil || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		r.fail(field, "invalid integer")
		return nil
	}
	return &n
}

// AbsentInt is OptionalInt for fields older clients may omit entirely.
func (r *Reader) AbsentInt(field string) *int64 {
	if !r.Has(field) {
		return nil
	}
	return r.OptionalInt(field)
}

// Date returns a required YYYY-MM-DD date.
func (r *Reader) Date(field string) string {
	v := strings.TrimSpace(r.String(field))
	if r.err != nil {
		return ""
	}
	if _, err := time.Parse(dateLayout, v); err != nil {
		r.fail(field, "invalid date (want YYYY-MM-DD)")
		return ""
	}
	return v
}

// OptionalDate returns nil for an empty submitted value.
func (r *Reader) OptionalDate(field string) *string {
	v := strings.TrimSpace(r.String(field))
	if r.err != nil || v == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, v); err != nil {
		r.fail(field, "invalid date (want YYYY-MM-DD)")
		return nil
	}
	return &v
}

// Clock returns a required HH:MM or HH:MM:SS time of day.
func (r *Reader) Clock(field string) string {
	v := strings.TrimSpace(r.String(field))
	if r.err != nil {
		return ""
	}
	if !clockPattern.MatchString(v) {
		r.fail(field, "invalid time (want HH:MM)")
		return ""
	}
	return v
}

// OneOf returns a required field whose value must be in allowed.
func (r *Reader) OneOf(field string, allowed ...string) string {
	v := r.String(field)
	if r.err != nil {
		return ""
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	r.fail(field, "must be one of "+strings.Join(allowed, ", "))
	return ""
}

// OneOfOr is OneOf for a field that may be left out: a missing or blank value
// yields def, anything else must be in allowed.
func (r *Reader) OneOfOr(field, def string, allowed ...string) string {
	v := r.StringOr(field, def)
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	r.fail(field, "must be one of "+strings.Join(allowed, ", "))
	return ""
}

// OptionalOneOf is OneOf that maps an empty value to nil.
func (r *Reader) OptionalOneOf(field string, allowed ...string) *string {
	v := r.String(field)
	if r.err != nil || v == "" {
		return nil
	}
	v = r.OneOf(field, allowed...)
	if r.err != nil {
		return nil
	}
	return &v
}
