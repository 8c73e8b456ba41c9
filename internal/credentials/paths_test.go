package credentials

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPaths(t *testing.T) {
	t.Run("XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		t.Setenv("GH_CONFIG_DIR", "")

		p := DefaultPaths()
		assert.Equal(t, filepath.Join("/custom/config", "gh", "hosts.yml"), p.GHHostsYAML)
		assert.Equal(t, filepath.Join("/custom/config", "github-copilot", "hosts.json"), p.CopilotHosts)
		assert.Equal(t, filepath.Join("/custom/config", "github-copilot", "apps.json"), p.CopilotApps)
		assert.Equal(t, filepath.Join("/custom/config", "github-copilot", "oauth.json"), p.CopilotOAuth)
	})

	t.Run("GH_CONFIG_DIR wins for gh", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		t.Setenv("GH_CONFIG_DIR", "/gh/elsewhere")

		p := DefaultPaths()
		assert.Equal(t, filepath.Join("/gh/elsewhere", "hosts.yml"), p.GHHostsYAML)
		assert.Equal(t, filepath.Join("/custom/config", "github-copilot", "hosts.json"), p.CopilotHosts)
	})

	t.Run("falls back to ~/.config", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("GH_CONFIG_DIR", "")

		p := DefaultPaths()
		assert.Equal(t, filepath.Join(home, ".config", "gh", "hosts.yml"), p.GHHostsYAML)
		assert.Equal(t, filepath.Join(home, ".config", "github-copilot", "apps.json"), p.CopilotApps)
	})
}
