package validator

import (
	"regexp"
	"strconv"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Integer validation, optional leading minus
var integerRegex = regexp.MustCompile(`^-?[0-9]+$`)

func IsInteger(s string) bool {
	return integerRegex.MatchString(strings.TrimSpace(s))
}

// ParseInt parses a base-10 integer, rejecting fractions, exponents and
// surrounding garbage that strconv would otherwise report as range errors.
func ParseInt(s string) (int, bool) {
	if !IsInteger(s) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
