package reservation

import "strings"

var outdoorKinds = []string{"outdoors", "outdoor", "patio"}

// IsOutdoor reports whether a seating kind names outdoor seating.
// Matching is case-insensitive substring.
func IsOutdoor(kind string) bool {
	k := strings.ToLower(kind)
	for _, o := range outdoorKinds {
		if strings.Contains(k, o) {
			return true
		}
	}
	return false
}

// Rejection explains why a slot was not accepted.
type Rejection string

const (
	Accepted        Rejection = ""
	RejectOutWindow Rejection = "outside time window"
	RejectOutdoor   Rejection = "outdoor seating"
)

// AcceptSlot applies the acceptance rules for a slot against an ask.
// Only the slot's time and kind are considered; the caller supplies slots
// already scoped to the ask's venue, day and party size.
func AcceptSlot(a Ask, s Slot) Rejection {
	if !a.Window().Contains(s.Time) {
		return RejectOutWindow
	}
	if IsOutdoor(s.Kind) {
		return RejectOutdoor
	}
	return Accepted
}
