package api

import "time"

// Quota is one metered category of the usage response.
// A nil PercentRemaining means the category is unlimited.
type Quota struct {
	PercentRemaining *float64 `json:"percent_remaining,omitempty"`
	Entitlement      *float64 `json:"entitlement,omitempty"`
	Remaining        *float64 `json:"remaining,omitempty"`
}

// Unlimited reports whether the quota has no metered percentage.
func (q *Quota) Unlimited() bool {
	return q == nil || q.PercentRemaining == nil
}

// Payload is the canonical form of a usage response, independent of the
// key spelling the server used.
type Payload struct {
	Plan      *string    `json:"plan,omitempty"`
	Premium   *Quota     `json:"premium,omitempty"`
	Chat      *Quota     `json:"chat,omitempty"`
	ResetDate *time.Time `json:"reset_date,omitempty"`
}

// IsEmpty is true when none of plan, premium or chat were present.
// An empty payload means usage data is unavailable, not that nothing was used.
func (p *Payload) IsEmpty() bool {
	return p == nil || (p.Plan == nil && p.Premium == nil && p.Chat == nil)
}

// PlanID returns the plan identifier or "" when absent.
func (p *Payload) PlanID() string {
	if p == nil || p.Plan == nil {
		return ""
	}
	return *p.Plan
}

// Kind classifies the result of a single fetch.
type Kind string

const (
	KindSuccess        Kind = "success"
	KindAuthRejected   Kind = "auth_rejected"
	KindHTTPError      Kind = "http_error"
	KindTransportError Kind = "transport_error"
	KindEmptyBody      Kind = "empty_body"
)

// Outcome is the classified result of Client.Fetch.
type Outcome struct {
	Kind       Kind
	Payload    *Payload // set for KindSuccess
	StatusCode int      // set for KindHTTPError and KindAuthRejected
	Message    string   // set for KindTransportError
}
