package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)
	reTrimUnderscores   = regexp.MustCompile(`_+`)

	reValidTZ    = regexp.MustCompile(`^[A-Za-z0-9_\-/]+$`)
	reMultiSlash = regexp.MustCompile(`/+`)
)

// MaxReasonLength caps free-text reason fields on blocks and cancellations
const MaxReasonLength = 500

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeLabel normalizes room and rate labels into a stable key form.
func SanitizeLabel(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}

// SanitizeReason normalizes free-text reason fields (block reasons,
// cancellation notes). Whitespace is collapsed and length is capped.
func SanitizeReason(input string) string {
	s := TrimAndNormalize(input)
	if len(s) > MaxReasonLength {
		s = s[:MaxReasonLength]
	}
	return s
}

// SanitizeTimezone normalizes an IANA timezone identifier. Invalid shapes
// return empty so callers fall back to UTC.
func SanitizeTimezone(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	s = reMultiSlash.ReplaceAllString(s, "/")
	s = strings.Trim(s, "/")

	if !reValidTZ.MatchString(s) {
		return ""
	}
	return s
}

// ClampGuests clamps a guest count into [min, max].
func ClampGuests(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
