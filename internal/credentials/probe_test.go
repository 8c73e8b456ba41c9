package credentials

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("command probes are exercised with sh")
	}
}

func TestCommandProbe(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name   string
		script string
		want   string
		wantOK bool
	}{
		{name: "first line trimmed", script: `printf '  gho_cli  \nsecond line\n'`, want: "gho_cli", wantOK: true},
		{name: "only first of many lines", script: `printf 'gho_one\ngho_two\ngho_three\n'`, want: "gho_one", wantOK: true},
		{name: "no trailing newline", script: `printf 'gho_x'`, want: "gho_x", wantOK: true},
		{name: "empty output", script: `true`},
		{name: "blank first line", script: `printf '   \ngho_late\n'`},
		{name: "non-zero exit", script: `echo gho_ignored; exit 1`},
		{name: "stderr only", script: `echo oops >&2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCommandProbe(SourceGHCLI, time.Second, "sh", "-c", tt.script)
			got, ok := p.Probe(context.Background())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandProbeMissingExecutable(t *testing.T) {
	p := NewCommandProbe(SourceGHCLI, time.Second, "copilotmeter-no-such-binary", "auth", "token")
	got, ok := p.Probe(context.Background())
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestCommandProbeTimeout(t *testing.T) {
	requireShell(t)

	p := NewCommandProbe(SourceGHCLI, 100*time.Millisecond, "sh", "-c", "sleep 10; echo late")
	start := time.Now()
	_, ok := p.Probe(context.Background())
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCommandProbeDefaultTimeout(t *testing.T) {
	p := NewCommandProbe(SourceGHCLI, 0, "gh")
	assert.Equal(t, DefaultProbeTimeout, p.timeout)
	assert.Equal(t, SourceGHCLI, p.Source())
}

func TestFileProbe(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	at := func(path string) func() string { return func() string { return path } }

	hosts := write("hosts.json", `{"github.com": {"oauth_token": "  gho_hosts \n"}}`)
	broken := write("broken.json", `{"github.com": {`)
	yml := write("hosts.yml", "github.com:\n    oauth_token: gho_yaml\n")
	blank := write("blank.json", `{"github.com": {"oauth_token": "   "}}`)
	pretty := write("pretty.json", "{\n  \"github.com\": {\n    \"oauth_token\": \"gho_pretty\"\n  }\n}\n")

	tests := []struct {
		name   string
		probe  Probe
		want   string
		wantOK bool
	}{
		{name: "json hosts", probe: NewJSONFileProbe(SourceCopilotHosts, at(hosts), FromHostsDocument), want: "gho_hosts", wantOK: true},
		{name: "yaml text", probe: NewTextFileProbe(SourceGHHostsYAML, at(yml), FromLegacyYAMLText), want: "gho_yaml", wantOK: true},
		{name: "indented json", probe: NewJSONFileProbe(SourceCopilotHosts, at(pretty), FromHostsDocument), want: "gho_pretty", wantOK: true},
		{name: "malformed json", probe: NewJSONFileProbe(SourceCopilotHosts, at(broken), FromHostsDocument)},
		{name: "blank token", probe: NewJSONFileProbe(SourceCopilotHosts, at(blank), FromHostsDocument)},
		{name: "missing file", probe: NewJSONFileProbe(SourceCopilotApps, at(filepath.Join(dir, "nope.json")), FromAppsDocument)},
		{name: "empty path", probe: NewJSONFileProbe(SourceCopilotOAuth, at(""), FromOAuthDocument)},
		{name: "directory", probe: NewTextFileProbe(SourceGHHostsYAML, at(dir), FromLegacyYAMLText)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.probe.Probe(context.Background())
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueProbe(t *testing.T) {
	value := "  ghp_manual\n"
	p := NewValueProbe(SourceManual, func() string { return value })

	got, ok := p.Probe(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "ghp_manual", got)

	value = " \t "
	_, ok = p.Probe(context.Background())
	assert.False(t, ok)

	value = "ghp_rotated"
	got, ok = p.Probe(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "ghp_rotated", got)

	_, ok = NewValueProbe(SourceManual, nil).Probe(context.Background())
	assert.False(t, ok)
}
