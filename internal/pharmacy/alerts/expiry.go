// Package alerts derives the read-only alert views (expiry, low stock,
// patient reminders and the banner text) from a pharmacy snapshot. Every
// function is pure: inputs are never modified and output slices keep the
// input order.
package alerts

import (
	"strings"
	"time"

	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
)

const dateLayout = "2006-01-02"

// ParseDate reads an entered date. Plain dates are midnight in loc; RFC3339
// timestamps keep their own offset. ok is false for empty or unparseable
// input, which callers treat as "no date".
func ParseDate(s string, loc *time.Location) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// WindowEnd is now plus one calendar month. time.AddDate normalises
// overflow, so Jan 31 becomes Mar 3 (Mar 2 in a leap year).
func WindowEnd(now time.Time) time.Time {
	return now.AddDate(0, 1, 0)
}

// InWindow reports whether t lies in [now, now+1 month], both ends inclusive.
func InWindow(t, now time.Time) bool {
	return !t.Before(now) && !t.After(WindowEnd(now))
}

// ExpiryReport partitions medicines by expiry. A medicine lands in exactly
// one of the three lists.
type ExpiryReport struct {
	Expired      []domain.Medicine `json:"expired"`
	ExpiringSoon []domain.Medicine `json:"expiringSoon"`
	Normal       []domain.Medicine `json:"normal"`
}

// ClassifyExpiry splits medicines into expired (expiry < now), expiring
// soon (inside the one month window) and everything else, including
// medicines with no usable expiry.
func ClassifyExpiry(medicines []domain.Medicine, now time.Time) ExpiryReport {
	report := ExpiryReport{
		Expired:      []domain.Medicine{},
		ExpiringSoon: []domain.Medicine{},
		Normal:       []domain.Medicine{},
	}

	for _, m := range medicines {
		expiry, ok := ParseDate(m.Expiry, now.Location())
		switch {
		case !ok:
			report.Normal = append(report.Normal, m)
		case expiry.Before(now):
			report.Expired = append(report.Expired, m)
		case InWindow(expiry, now):
			report.ExpiringSoon = append(report.ExpiringSoon, m)
		default:
			report.Normal = append(report.Normal, m)
		}
	}

	return report
}
