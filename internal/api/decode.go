package api

import (
	"encoding/json"
	"strings"
	"time"
)

// The usage endpoint has served both snake_case and camelCase keys.
// Each pair is decoded side by side and collapsed here; snake_case wins.

type rawUsage struct {
	CopilotPlan         *string       `json:"copilot_plan"`
	CopilotPlanCamel    *string       `json:"copilotPlan"`
	QuotaResetDate      *string       `json:"quota_reset_date"`
	QuotaResetDateCamel *string       `json:"quotaResetDate"`
	QuotaSnapshots      *rawSnapshots `json:"quota_snapshots"`
	QuotaSnapshotsCamel *rawSnapshots `json:"quotaSnapshots"`
}

type rawSnapshots struct {
	PremiumInteractions      *rawQuota `json:"premium_interactions"`
	PremiumInteractionsCamel *rawQuota `json:"premiumInteractions"`
	Chat                     *rawQuota `json:"chat"`
}

type rawQuota struct {
	PercentRemaining      *float64 `json:"percent_remaining"`
	PercentRemainingCamel *float64 `json:"percentRemaining"`
	Entitlement           *float64 `json:"entitlement"`
	Remaining             *float64 `json:"remaining"`
	Unlimited             *bool    `json:"unlimited"`
}

func first[T any](snake, camel *T) *T {
	if snake != nil {
		return snake
	}
	return camel
}

// decodePayload parses a usage response body into its canonical form.
func decodePayload(body []byte) (*Payload, error) {
	var raw rawUsage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	p := &Payload{}
	if plan := first(raw.CopilotPlan, raw.CopilotPlanCamel); plan != nil && strings.TrimSpace(*plan) != "" {
		p.Plan = plan
	}
	if s := first(raw.QuotaResetDate, raw.QuotaResetDateCamel); s != nil {
		p.ResetDate = parseResetDate(*s)
	}
	if snaps := first(raw.QuotaSnapshots, raw.QuotaSnapshotsCamel); snaps != nil {
		p.Premium = snaps.premium().canonical()
		p.Chat = snaps.Chat.canonical()
	}
	return p, nil
}

func (s *rawSnapshots) premium() *rawQuota {
	return first(s.PremiumInteractions, s.PremiumInteractionsCamel)
}

// canonical drops the percentage of quotas the server flags as unlimited,
// so callers only ever check PercentRemaining.
func (q *rawQuota) canonical() *Quota {
	if q == nil {
		return nil
	}
	out := &Quota{
		PercentRemaining: first(q.PercentRemaining, q.PercentRemainingCamel),
		Entitlement:      q.Entitlement,
		Remaining:        q.Remaining,
	}
	if q.Unlimited != nil && *q.Unlimited {
		out.PercentRemaining = nil
	}
	return out
}

func parseResetDate(s string) *time.Time {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
