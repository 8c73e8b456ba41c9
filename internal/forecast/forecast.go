package forecast

import "time"

type Projection struct {
	// ProjectedPct is the estimated used percentage at quota reset (0-100+).
	ProjectedPct float64 `json:"projected_pct"`
	// OnTrack is true if projected usage stays under 100% at reset.
	OnTrack bool `json:"on_track"`
}

// WindowStart returns the start of the monthly quota window ending at resetAt.
func WindowStart(resetAt time.Time) time.Time {
	return resetAt.AddDate(0, -1, 0)
}

// Project estimates where usage will be when the monthly quota resets.
// usedPct is 0-100, resetAt is the next reset, now is the current time.
func Project(usedPct float64, resetAt, now time.Time) Projection {
	start := WindowStart(resetAt)
	windowLen := resetAt.Sub(start)
	elapsed := now.Sub(start)

	if elapsed <= 0 || elapsed >= windowLen || usedPct <= 0 {
		return Projection{ProjectedPct: usedPct, OnTrack: usedPct < 100}
	}

	rate := usedPct / elapsed.Seconds()
	projected := rate * windowLen.Seconds()

	return Projection{
		ProjectedPct: projected,
		OnTrack:      projected < 100,
	}
}

// Indicator returns a short status string for the projection.
func (p Projection) Indicator() string {
	switch {
	case p.ProjectedPct >= 100:
		return "over limit"
	case p.ProjectedPct >= 90:
		return "tight"
	default:
		return "on track"
	}
}
