package tray

import (
	"fmt"
	"time"

	"github.com/tnunamak/copilotmeter/internal/display"
)

// menuView is everything the tray shows for one state.
type menuView struct {
	Title       string // text next to the icon
	Tooltip     string
	Header      string
	Premium     string
	Chat        string
	ChatVisible bool
	Updated     string
	Icon        string
}

func viewFor(st display.State, now time.Time) menuView {
	v := menuView{
		Title: st.Label(),
		Icon:  iconName(st),
	}

	switch st.Mode {
	case display.ModeSetup:
		v.Header = st.Heading
		v.Premium = st.Body
		v.Tooltip = "Copilot: " + st.Heading
		return v
	case display.ModeNetworkError:
		v.Header = "Offline: " + st.Detail
		v.Tooltip = "Copilot: offline"
		if st.Usage == nil {
			v.Premium = "Premium requests: --"
			return v
		}
	}

	u := st.Usage
	if st.Mode == display.ModeUsage {
		v.Header = "Copilot " + u.PlanLabel
		v.Tooltip = fmt.Sprintf("Copilot %s: %s premium used", u.PlanLabel, u.Premium)
	}
	v.Premium = "Premium requests: " + u.Premium.String()
	if u.ResetDate != nil {
		v.Premium += "  resets " + formatDuration(u.ResetDate.Sub(now))
	}
	if u.Forecast != nil {
		v.Premium += fmt.Sprintf("  (%s)", u.Forecast.Indicator())
	}
	v.ChatVisible = u.ChatVisible
	if u.ChatVisible {
		v.Chat = "Chat: " + u.Chat.String()
	}
	v.Updated = "Updated " + u.UpdatedAt.Local().Format("15:04")
	return v
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		return "now"
	}
	d = d.Round(time.Minute)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd%dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh%02dm", hours, mins)
	}
	return fmt.Sprintf("%dm", mins)
}
