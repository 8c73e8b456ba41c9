package tray

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tnunamak/copilotmeter/internal/display"
	"github.com/tnunamak/copilotmeter/internal/forecast"
)

func usageAt(used float64) display.State {
	lvl := display.LevelFor(used)
	return display.State{
		Mode: display.ModeUsage,
		Usage: &display.Usage{
			PlanLabel: "Pro",
			Premium:   display.Meter{UsedPercent: used, Level: lvl},
			Chat:      display.Meter{Unlimited: true},
			Level:     lvl,
			UpdatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.Local),
		},
	}
}

func TestIconName(t *testing.T) {
	tests := []struct {
		name string
		st   display.State
		want string
	}{
		{"setup", display.NoCredentials(), iconGray},
		{"offline with numbers", display.State{Mode: display.ModeNetworkError, Usage: usageAt(95).Usage}, iconGray},
		{"nominal", usageAt(10), iconGreen},
		{"elevated", usageAt(45), iconCyan},
		{"high", usageAt(75), iconYellow},
		{"critical", usageAt(92), iconRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, iconName(tt.st))
		})
	}
}

func TestIconPNG(t *testing.T) {
	data := iconPNG(iconRed)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, defaultIconSize, img.Bounds().Dx())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a, "corner should be transparent")
	r, _, _, a := img.At(defaultIconSize/2, defaultIconSize/2).RGBA()
	assert.NotZero(t, a)
	assert.Equal(t, uint32(0xcf), r>>8)

	assert.Same(t, &data[0], &iconPNG(iconRed)[0], "icons are cached")
}

func TestViewForUsage(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	reset := now.Add(3*24*time.Hour + 2*time.Hour)
	st := usageAt(80)
	st.Usage.ResetDate = &reset
	st.Usage.Forecast = &forecast.Projection{ProjectedPct: 120}

	v := viewFor(st, now)
	assert.Equal(t, "80%", v.Title)
	assert.Equal(t, "Copilot Pro", v.Header)
	assert.Equal(t, "Premium requests: 80%  resets 3d2h  (over limit)", v.Premium)
	assert.False(t, v.ChatVisible)
	assert.Equal(t, "Updated 09:30", v.Updated)
	assert.Equal(t, iconYellow, v.Icon)
}

func TestViewForFreePlanShowsChat(t *testing.T) {
	st := usageAt(20)
	st.Usage.PlanLabel = "Free"
	st.Usage.ChatVisible = true
	st.Usage.Chat = display.Meter{UsedPercent: 55, Level: display.LevelElevated}

	v := viewFor(st, time.Now())
	assert.True(t, v.ChatVisible)
	assert.Equal(t, "Chat: 55%", v.Chat)
}

func TestViewForSetupAndOffline(t *testing.T) {
	setup := viewFor(display.NoCredentials(), time.Now())
	assert.Equal(t, "--", setup.Title)
	assert.Equal(t, "GitHub token not found", setup.Header)
	assert.Empty(t, setup.Updated)

	offline := viewFor(display.State{Mode: display.ModeNetworkError, Detail: "timeout"}, time.Now())
	assert.Equal(t, "Offline: timeout", offline.Header)
	assert.Equal(t, "Premium requests: --", offline.Premium)

	stale := usageAt(50)
	stale.Mode = display.ModeNetworkError
	stale.Detail = "HTTP 502"
	v := viewFor(stale, time.Now())
	assert.Equal(t, "Offline: HTTP 502", v.Header)
	assert.Equal(t, "Premium requests: 50%", v.Premium)
	assert.Equal(t, "50%", v.Title)
}

func TestThresholdWatcher(t *testing.T) {
	w := &thresholdWatcher{}

	_, ok := w.observe(usageAt(30))
	assert.False(t, ok)

	n, ok := w.observe(usageAt(72))
	require.True(t, ok)
	assert.Equal(t, "Copilot usage high", n.Title)
	assert.Equal(t, "normal", n.Urgency)
	assert.Equal(t, "72% of your monthly quota used", n.Body)

	_, ok = w.observe(usageAt(80))
	assert.False(t, ok, "same band does not repeat")

	_, ok = w.observe(display.State{Mode: display.ModeNetworkError})
	assert.False(t, ok)

	n, ok = w.observe(usageAt(91))
	require.True(t, ok)
	assert.Equal(t, "critical", n.Urgency)

	_, ok = w.observe(usageAt(10))
	assert.False(t, ok)
	_, ok = w.observe(usageAt(95))
	assert.True(t, ok, "a new month can cross again")
}

func TestThresholdWatcherFirstStateAlreadyHigh(t *testing.T) {
	w := &thresholdWatcher{}
	n, ok := w.observe(usageAt(93))
	require.True(t, ok)
	assert.Equal(t, "Copilot usage critical", n.Title)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "now", formatDuration(-time.Minute))
	assert.Equal(t, "45m", formatDuration(45*time.Minute))
	assert.Equal(t, "2h05m", formatDuration(2*time.Hour+5*time.Minute))
	assert.Equal(t, "1d3h", formatDuration(27*time.Hour))
}
