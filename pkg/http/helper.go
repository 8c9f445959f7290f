package http

import (
	"net/http"
	"strconv"
	"time"

	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate parses a required query parameter as a calendar date, accepting
// either YYYY-MM-DD or full RFC3339.
func ExtractDate(r *http.Request, name string) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Time{}, apperrors.InvalidInput("missing required parameter: " + name)
	}
	return ParseDate(name, s)
}

// ParseDate parses a date string as YYYY-MM-DD or RFC3339.
func ParseDate(name, s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, apperrors.InvalidInput("invalid " + name + ": must be YYYY-MM-DD or RFC3339")
}
