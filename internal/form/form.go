package form

import (
	"regexp"
	"strconv"
)

// Submission is one inbound form submission: a flat mapping from field name
// to value. Values arrive from JSON decoding as string, bool, or nil.
// Submissions are immutable after receipt.
type Submission map[string]any

// Str returns the field as a string, or "" when absent or not a string.
func (s Submission) Str(field string) string {
	v, _ := s[field].(string)
	return v
}

// Present reports whether the field has a truthy value. Absent, nil, the
// empty string, and boolean false all count as missing (falsy-check
// semantics for checkbox-style fields).
func (s Submission) Present(field string) bool {
	switch v := s[field].(type) {
	case string:
		return v != ""
	case bool:
		return v
	default:
		return false
	}
}

var firstNumber = regexp.MustCompile(`\d+`)

// Age returns the child age as a number, extracting the first run of digits
// so values like "6 months" parse as 6. The second return is false when the
// field holds no number at all.
func (s Submission) Age(field string) (int, bool) {
	m := firstNumber.FindString(s.Str(field))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}
