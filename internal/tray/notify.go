package tray

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	"github.com/tnunamak/copilotmeter/internal/display"
)

type notification struct {
	Title   string
	Body    string
	Urgency string // notify-send urgency: normal or critical
}

// thresholdWatcher emits a notification when premium usage moves up into
// the high or critical band. Setup and offline states leave it untouched.
type thresholdWatcher struct {
	mu   sync.Mutex
	prev display.Level
	seen bool
}

func (t *thresholdWatcher) observe(st display.State) (notification, bool) {
	if st.Mode != display.ModeUsage || st.Usage == nil {
		return notification{}, false
	}
	cur := st.Usage.Level

	t.mu.Lock()
	prev, seen := t.prev, t.seen
	t.prev, t.seen = cur, true
	t.mu.Unlock()

	if seen && !display.Crossed(prev, cur) {
		return notification{}, false
	}
	if !seen && cur < display.LevelHigh {
		return notification{}, false
	}

	pct := st.Usage.Premium.UsedPercent
	if st.Usage.ChatVisible && st.Usage.Chat.Level > st.Usage.Premium.Level {
		pct = st.Usage.Chat.UsedPercent
	}
	if cur == display.LevelCritical {
		return notification{
			Title:   "Copilot usage critical",
			Body:    fmt.Sprintf("%.0f%% of your monthly quota used", pct),
			Urgency: "critical",
		}, true
	}
	return notification{
		Title:   "Copilot usage high",
		Body:    fmt.Sprintf("%.0f%% of your monthly quota used", pct),
		Urgency: "normal",
	}, true
}

func notify(n notification) {
	switch runtime.GOOS {
	case "linux":
		_ = exec.Command("notify-send", "-u", n.Urgency, n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, n.Body, n.Title)
		_ = exec.Command("osascript", "-e", script).Run()
	}
}
