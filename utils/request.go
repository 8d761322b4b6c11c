package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"print-shop-mis/models"
)

const dateLayout = "2006-01-02"

// MaxPage bounds the page number so (page-1)*limit stays a sane OFFSET.
const MaxPage = 100000

// ParsePage reads page and limit from the query string. Missing or invalid values fall back to
// page 1 and defaultLimit; limit is capped at maxLimit and page at MaxPage.
func ParsePage(r *http.Request, defaultLimit, maxLimit int) models.PageRequest {
	p := models.PageRequest{Page: 1, Limit: defaultLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = min(v, MaxPage)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// ParseDateRange reads from and to as YYYY-MM-DD or RFC3339. A bare date in "to" covers the whole day.
func ParseDateRange(r *http.Request) (models.DateRange, error) {
	var rng models.DateRange
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			return rng, models.NewValidationError(fmt.Sprintf("Invalid from date %q, use YYYY-MM-DD", v))
		}
		rng.From = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, dateOnly, err := parseDate(v)
		if err != nil {
			return rng, models.NewValidationError(fmt.Sprintf("Invalid to date %q, use YYYY-MM-DD", v))
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		rng.To = &t
	}
	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return rng, models.NewValidationError("The to date must not be before the from date")
	}
	return rng, nil
}

func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, v, time.Local); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	return t, false, err
}

// PathID parses the {id} path value as a positive integer.
func PathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid id")
	}
	return id, nil
}

// ParseBool reads an optional boolean query parameter.
func ParseBool(r *http.Request, name string) (*bool, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid %s value %q", name, v))
	}
	return &b, nil
}
