package api

import (
	"net/http"
	"time"

	"github.com/Philos250/TransactiTrack/internal/common"
)

// parseRange reads the startDate and endDate query parameters. A date-only
// endDate covers the whole day.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	var missing []string
	startRaw, endRaw := query.Get("startDate"), query.Get("endDate")
	if startRaw == "" {
		missing = append(missing, "startDate")
	}
	if endRaw == "" {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return time.Time{}, time.Time{}, common.MissingFields(missing...)
	}

	start, err := common.ParseDate(startRaw, false)
	if err != nil {
		return time.Time{}, time.Time{}, common.NewValidationError(err.Error(), "startDate")
	}
	end, err := common.ParseDate(endRaw, true)
	if err != nil {
		return time.Time{}, time.Time{}, common.NewValidationError(err.Error(), "endDate")
	}
	return start, end, nil
}
