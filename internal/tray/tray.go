//go:build tray

package tray

import (
	"context"
	"os/exec"
	"runtime"
	"time"

	"fyne.io/systray"
	"go.uber.org/zap"

	"github.com/tnunamak/copilotmeter/internal/api"
	"github.com/tnunamak/copilotmeter/internal/autostart"
	"github.com/tnunamak/copilotmeter/internal/display"
	"github.com/tnunamak/copilotmeter/internal/refresh"
)

type menu struct {
	header  *systray.MenuItem
	premium *systray.MenuItem
	chat    *systray.MenuItem
	updated *systray.MenuItem
}

// Show is the tray's refresh sink.
func (m *menu) Show(st display.State) {
	v := viewFor(st, time.Now())

	systray.SetIcon(iconPNG(v.Icon))
	systray.SetTitle(v.Title)
	systray.SetTooltip(v.Tooltip)

	m.header.SetTitle(v.Header)
	m.premium.SetTitle(v.Premium)
	if v.ChatVisible {
		m.chat.SetTitle(v.Chat)
		m.chat.Show()
	} else {
		m.chat.Hide()
	}
	if v.Updated != "" {
		m.updated.SetTitle(v.Updated)
		m.updated.Show()
	} else {
		m.updated.Hide()
	}
}

// Run shows the tray icon and blocks until the user quits.
func Run(opts Options) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := opts.Refresher
	ctx, cancel := context.WithCancel(context.Background())

	onReady := func() {
		systray.SetIcon(iconPNG(iconGray))
		systray.SetTitle("--")
		systray.SetTooltip("Copilot usage meter")

		m := &menu{}
		m.header = systray.AddMenuItem("Copilot", "")
		m.header.Disable()
		systray.AddSeparator()
		m.premium = systray.AddMenuItem("Premium requests: --", "")
		m.premium.Disable()
		m.chat = systray.AddMenuItem("Chat: --", "")
		m.chat.Disable()
		m.chat.Hide()
		m.updated = systray.AddMenuItem("", "")
		m.updated.Disable()
		m.updated.Hide()
		systray.AddSeparator()
		mRefresh := systray.AddMenuItem("Refresh Now", "Fetch usage now")
		mOpen := systray.AddMenuItem("Open Usage Page", api.UsagePageURL)
		mLogin := systray.AddMenuItemCheckbox("Launch at Login", "", autostart.Installed())
		systray.AddSeparator()
		mVersion := systray.AddMenuItem("copilotmeter "+opts.Version, "")
		mVersion.Disable()
		mQuit := systray.AddMenuItem("Quit", "")

		r.AddSink(m)
		if opts.Notify {
			watcher := &thresholdWatcher{}
			r.AddSink(refresh.SinkFunc(func(st display.State) {
				if n, ok := watcher.observe(st); ok {
					go notify(n)
				}
			}))
		}

		go r.Run(ctx, opts.Interval)

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-mRefresh.ClickedCh:
					go r.Refresh(ctx)
				case <-mOpen.ClickedCh:
					if err := openURL(api.UsagePageURL); err != nil {
						log.Warn("open usage page", zap.Error(err))
					}
				case <-mLogin.ClickedCh:
					toggleAutostart(mLogin, log)
				case <-mQuit.ClickedCh:
					r.Close()
					systray.Quit()
					return
				}
			}
		}()
	}

	onExit := func() {
		cancel()
		r.Close()
	}

	systray.Run(onReady, onExit)
	return nil
}

func toggleAutostart(item *systray.MenuItem, log *zap.Logger) {
	if item.Checked() {
		if err := autostart.Uninstall(); err != nil {
			log.Warn("disable launch at login", zap.Error(err))
			return
		}
		item.Uncheck()
		return
	}
	if err := autostart.Install(); err != nil {
		log.Warn("enable launch at login", zap.Error(err))
		return
	}
	item.Check()
}

func openURL(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
