// Package autostart registers copilotmeter's tray mode to start at login:
// an XDG autostart entry on Linux and a LaunchAgent on macOS.
package autostart

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

const launchAgentLabel = "io.github.tnunamak.copilotmeter"

func Install() error {
	bin, err := execPath()
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case "linux":
		return installLinux(bin)
	case "darwin":
		return installDarwin(bin)
	default:
		return fmt.Errorf("autostart not supported on %s", runtime.GOOS)
	}
}

func Uninstall() error {
	switch runtime.GOOS {
	case "linux":
		return uninstallLinux()
	case "darwin":
		return uninstallDarwin()
	default:
		return fmt.Errorf("autostart not supported on %s", runtime.GOOS)
	}
}

// Installed reports whether a login entry exists for this user.
func Installed() bool {
	var (
		path string
		err  error
	)
	switch runtime.GOOS {
	case "linux":
		path, err = linuxDesktopPath()
	case "darwin":
		path, err = darwinPlistPath()
	default:
		return false
	}
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func execPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(exe)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Linux: XDG autostart .desktop file

const desktopEntry = `[Desktop Entry]
Type=Application
Name=copilotmeter
Comment=GitHub Copilot usage meter
Exec=%s tray
Icon=github
Terminal=false
X-GNOME-Autostart-enabled=true
`

func linuxDesktopPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", "copilotmeter.desktop"), nil
}

func installLinux(bin string) error {
	path, err := linuxDesktopPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf(desktopEntry, bin)), 0644)
}

func uninstallLinux() error {
	path, err := linuxDesktopPath()
	if err != nil {
		return err
	}
	return removeIfExists(path)
}

// macOS: LaunchAgent plist

const launchAgentPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
        <string>%s</string>
        <string>tray</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>
`

func darwinPlistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents", launchAgentLabel+".plist"), nil
}

func installDarwin(bin string) error {
	path, err := darwinPlistPath()
	if err != nil {
		return err
	}
	if err := writePlist(path, bin); err != nil {
		return err
	}
	return exec.Command("launchctl", "load", path).Run()
}

func writePlist(path, bin string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf(launchAgentPlist, launchAgentLabel, bin)), 0644)
}

func uninstallDarwin() error {
	path, err := darwinPlistPath()
	if err != nil {
		return err
	}
	_ = exec.Command("launchctl", "unload", path).Run()
	return removeIfExists(path)
}
