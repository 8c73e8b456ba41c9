package credentials

import (
	"os"
	"path/filepath"
)

// Paths lists the credential files probed after the gh CLI.
type Paths struct {
	GHHostsYAML  string
	CopilotHosts string
	CopilotApps  string
	CopilotOAuth string
}

// DefaultPaths resolves credential file locations from the environment.
// A path that cannot be resolved is left empty and its probe is skipped.
func DefaultPaths() Paths {
	var p Paths
	if dir := ghConfigDir(); dir != "" {
		p.GHHostsYAML = filepath.Join(dir, "hosts.yml")
	}
	if home := configHome(); home != "" {
		copilotDir := filepath.Join(home, "github-copilot")
		p.CopilotHosts = filepath.Join(copilotDir, "hosts.json")
		p.CopilotApps = filepath.Join(copilotDir, "apps.json")
		p.CopilotOAuth = filepath.Join(copilotDir, "oauth.json")
	}
	return p
}

// ghConfigDir mirrors gh's own lookup: $GH_CONFIG_DIR, then
// $XDG_CONFIG_HOME/gh, then ~/.config/gh.
func ghConfigDir() string {
	if dir := os.Getenv("GH_CONFIG_DIR"); dir != "" {
		return dir
	}
	home := configHome()
	if home == "" {
		return ""
	}
	return filepath.Join(home, "gh")
}

func configHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
