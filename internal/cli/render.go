package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/tnunamak/copilotmeter/internal/display"
)

const barWidth = 20

var (
	bold = color.New(color.Bold).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()

	levelColors = map[display.Level]*color.Color{
		display.LevelNominal:  color.New(color.FgGreen),
		display.LevelElevated: color.New(color.FgCyan),
		display.LevelHigh:     color.New(color.FgYellow),
		display.LevelCritical: color.New(color.FgRed, color.Bold),
	}
)

// Output formats shared by status and watch.
const (
	formatText   = "text"
	formatPlain  = "plain"
	formatJSON   = "json"
	formatWaybar = "waybar"
)

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
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

func bar(pct float64) string {
	filled := int(math.Round(pct / 100 * barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// render writes st in the given format. Unknown formats fall back to text.
func render(w io.Writer, format string, st display.State, now time.Time) error {
	switch format {
	case formatJSON:
		return renderJSON(w, st)
	case formatWaybar:
		return renderWaybar(w, st, now)
	case formatPlain:
		renderPlain(w, st, now)
	default:
		if !isTTY(w) {
			renderPlain(w, st, now)
			return nil
		}
		renderColor(w, st, now)
	}
	return nil
}

func renderColor(w io.Writer, st display.State, now time.Time) {
	switch st.Mode {
	case display.ModeSetup:
		fmt.Fprintf(w, "%s  %s\n", bold("copilotmeter"), color.YellowString(st.Heading))
		fmt.Fprintf(w, "              %s\n", st.Body)
		return
	case display.ModeNetworkError:
		fmt.Fprintf(w, "%s  %s %s\n", bold("copilotmeter"), color.RedString("offline:"), st.Detail)
		if st.Usage == nil {
			return
		}
		fmt.Fprintf(w, "              %s\n", dim("last known usage:"))
	}

	u := st.Usage
	if st.Mode == display.ModeUsage {
		fmt.Fprintf(w, "%s  %s\n", bold("copilotmeter"), u.PlanLabel)
	}
	colorMeter(w, "premium", u.Premium, resetSuffix(u, now))
	if u.ChatVisible {
		colorMeter(w, "chat", u.Chat, "")
	}
	if u.Forecast != nil {
		fmt.Fprintf(w, "              %s %.0f%% at reset %s\n",
			dim("projected"), u.Forecast.ProjectedPct, u.Forecast.Indicator())
	}
	fmt.Fprintf(w, "              %s\n", dim("updated "+u.UpdatedAt.Local().Format("15:04")))
}

func colorMeter(w io.Writer, name string, m display.Meter, suffix string) {
	if m.Unlimited {
		fmt.Fprintf(w, "  %-10s  %s\n", name, color.GreenString("unlimited"))
		return
	}
	c := levelColors[m.Level]
	fmt.Fprintf(w, "  %-10s  %s %3.0f%%%s\n", name, c.Sprint(bar(m.UsedPercent)), m.UsedPercent, suffix)
}

func resetSuffix(u *display.Usage, now time.Time) string {
	if u.ResetDate == nil {
		return ""
	}
	return "  resets " + formatDuration(u.ResetDate.Sub(now))
}

func renderPlain(w io.Writer, st display.State, now time.Time) {
	switch st.Mode {
	case display.ModeSetup:
		fmt.Fprintf(w, "%s: %s\n", st.Heading, st.Body)
		return
	case display.ModeNetworkError:
		if st.Usage == nil {
			fmt.Fprintf(w, "offline: %s\n", st.Detail)
			return
		}
		fmt.Fprintf(w, "offline: %s (last: %s)\n", st.Detail, plainSummary(st.Usage, now))
		return
	}
	fmt.Fprintln(w, plainSummary(st.Usage, now))
}

func plainSummary(u *display.Usage, now time.Time) string {
	parts := []string{u.PlanLabel, "premium: " + u.Premium.String()}
	if u.ResetDate != nil {
		parts[1] += fmt.Sprintf(" (resets %s)", formatDuration(u.ResetDate.Sub(now)))
	}
	if u.ChatVisible {
		parts = append(parts, "chat: "+u.Chat.String())
	}
	return strings.Join(parts, "  ")
}

func renderJSON(w io.Writer, st display.State) error {
	out := struct {
		display.State
		Label string `json:"label"`
	}{st, st.Label()}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// waybarOutput is the custom-module protocol of Waybar.
type waybarOutput struct {
	Text       string `json:"text"`
	Tooltip    string `json:"tooltip"`
	Class      string `json:"class"`
	Percentage int    `json:"percentage"`
}

func waybarFor(st display.State, now time.Time) waybarOutput {
	out := waybarOutput{Text: st.Label()}
	switch st.Mode {
	case display.ModeSetup:
		out.Class = "setup"
		out.Tooltip = st.Heading + "\n" + st.Body
		return out
	case display.ModeNetworkError:
		out.Class = "offline"
		out.Tooltip = "offline: " + st.Detail
		if st.Usage != nil {
			out.Tooltip += "\nlast: " + plainSummary(st.Usage, now)
			out.Percentage = int(math.Round(st.Usage.Premium.UsedPercent))
		}
		return out
	}
	u := st.Usage
	out.Class = u.Level.String()
	out.Percentage = int(math.Round(u.Premium.UsedPercent))
	lines := []string{"Copilot " + u.PlanLabel, "Premium: " + u.Premium.String()}
	if u.ChatVisible {
		lines = append(lines, "Chat: "+u.Chat.String())
	}
	if u.ResetDate != nil {
		lines = append(lines, "Resets in "+formatDuration(u.ResetDate.Sub(now)))
	}
	out.Tooltip = strings.Join(lines, "\n")
	return out
}

func renderWaybar(w io.Writer, st display.State, now time.Time) error {
	data, err := json.Marshal(waybarFor(st, now))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// exitCode maps a state onto the status command's exit code.
func exitCode(st display.State) int {
	switch st.Mode {
	case display.ModeUsage:
		return 0
	case display.ModeNetworkError:
		return 1
	default:
		return 2
	}
}
