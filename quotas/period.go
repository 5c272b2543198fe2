package quotas

import (
	"time"

	"github.com/miguelfer1410/cdp-sub001/store"
)

// Period is a billing period. Month 0 means the whole year (annual
// preference).
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month,omitempty"`
}

func (p Period) IsAnnual() bool {
	return p.Month == 0
}

// ResolvePeriods returns the current and next billing period for a payment
// preference. Unknown preferences are billed monthly.
func ResolvePeriods(preference string, today time.Time) (current, next Period) {
	if preference == store.PREFERENCE_ANNUAL {
		return Period{Year: today.Year()}, Period{Year: today.Year() + 1}
	}

	current = Period{Year: today.Year(), Month: int(today.Month())}
	if current.Month == 12 {
		next = Period{Year: current.Year + 1, Month: 1}
	} else {
		next = Period{Year: current.Year, Month: current.Month + 1}
	}
	return current, next
}
