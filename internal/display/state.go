package display

import (
	"fmt"
	"time"

	"github.com/tnunamak/copilotmeter/internal/api"
	"github.com/tnunamak/copilotmeter/internal/forecast"
)

// Mode selects which of the three display variants a State is.
type Mode string

const (
	ModeSetup        Mode = "setup"
	ModeUsage        Mode = "usage"
	ModeNetworkError Mode = "network_error"
)

// Meter is one quota row.
type Meter struct {
	UsedPercent float64 `json:"used_percent"`
	Unlimited   bool    `json:"unlimited"`
	Level       Level   `json:"level"`
}

// MeterFor derives a meter from a quota. A nil quota is unlimited.
func MeterFor(q *api.Quota) Meter {
	if q.Unlimited() {
		return Meter{Unlimited: true, Level: LevelNominal}
	}
	used := UsedPercent(*q.PercentRemaining)
	return Meter{UsedPercent: used, Level: LevelFor(used)}
}

func (m Meter) String() string {
	if m.Unlimited {
		return "Unlimited"
	}
	return fmt.Sprintf("%.0f%%", m.UsedPercent)
}

// Usage holds the numbers shown in usage mode.
type Usage struct {
	Plan        string               `json:"plan,omitempty"`
	PlanLabel   string               `json:"plan_label"`
	Premium     Meter                `json:"premium"`
	Chat        Meter                `json:"chat"`
	ChatVisible bool                 `json:"chat_visible"`
	Level       Level                `json:"level"`
	UpdatedAt   time.Time            `json:"updated_at"`
	ResetDate   *time.Time           `json:"reset_date,omitempty"`
	Forecast    *forecast.Projection `json:"forecast,omitempty"`
}

// State is what a sink renders. A new State is built for every refresh.
type State struct {
	Mode    Mode   `json:"mode"`
	Heading string `json:"heading,omitempty"`
	Body    string `json:"body,omitempty"`
	Detail  string `json:"detail,omitempty"`
	// Usage is set in usage mode, and in network-error mode when earlier
	// numbers are available.
	Usage *Usage `json:"usage,omitempty"`
}

const (
	headingNotFound    = "GitHub token not found"
	headingRejected    = "GitHub token rejected"
	headingUnavailable = "Usage data unavailable"
)

// NoCredentials is the state shown when no probe found a token.
func NoCredentials() State {
	return State{
		Mode:    ModeSetup,
		Heading: headingNotFound,
		Body:    "Sign in with `gh auth login`, or store a token with `copilotmeter config set-token`.",
	}
}

// FromOutcome maps a fetch outcome onto a State. lastGood is kept on network
// errors so stale numbers stay visible.
func FromOutcome(o api.Outcome, lastGood *Usage, now time.Time) State {
	switch o.Kind {
	case api.KindSuccess:
		if o.Payload.IsEmpty() {
			return unavailable()
		}
		return State{Mode: ModeUsage, Usage: usageFrom(o.Payload, now)}
	case api.KindEmptyBody:
		return unavailable()
	case api.KindAuthRejected:
		return State{
			Mode:    ModeSetup,
			Heading: headingRejected,
			Body: fmt.Sprintf("GitHub refused the stored token (HTTP %d). Update it with `gh auth refresh` "+
				"or `copilotmeter config set-token`.", o.StatusCode),
		}
	case api.KindHTTPError:
		return networkError(fmt.Sprintf("GitHub returned HTTP %d", o.StatusCode), lastGood)
	default:
		return networkError(o.Message, lastGood)
	}
}

func unavailable() State {
	return State{
		Mode:    ModeSetup,
		Heading: headingUnavailable,
		Body:    "GitHub returned no Copilot quota for this account. Check that Copilot is enabled.",
	}
}

func networkError(detail string, lastGood *Usage) State {
	if detail == "" {
		detail = "request failed"
	}
	return State{Mode: ModeNetworkError, Detail: detail, Usage: lastGood}
}

func usageFrom(p *api.Payload, now time.Time) *Usage {
	plan := p.PlanID()
	u := &Usage{
		Plan:        plan,
		PlanLabel:   PlanLabel(plan),
		Premium:     MeterFor(p.Premium),
		Chat:        MeterFor(p.Chat),
		ChatVisible: ChatVisible(plan),
		UpdatedAt:   now,
		ResetDate:   p.ResetDate,
	}
	u.Level = u.Premium.Level
	if u.ChatVisible && u.Chat.Level > u.Level {
		u.Level = u.Chat.Level
	}
	if p.ResetDate != nil && !u.Premium.Unlimited {
		proj := forecast.Project(u.Premium.UsedPercent, *p.ResetDate, now)
		u.Forecast = &proj
	}
	return u
}

// Label is the short text shown next to the panel icon.
func (s State) Label() string {
	if s.Usage == nil {
		return "--"
	}
	if s.Usage.Premium.Unlimited {
		if s.Usage.ChatVisible && !s.Usage.Chat.Unlimited {
			return s.Usage.Chat.String()
		}
		return "∞"
	}
	return s.Usage.Premium.String()
}
