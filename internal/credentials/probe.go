package credentials

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tnunamak/copilotmeter/internal/logger"
)

// Source identifies where a token came from.
type Source string

const (
	SourceGHCLI        Source = "gh-cli"
	SourceGHHostsYAML  Source = "gh-hosts-yaml"
	SourceCopilotHosts Source = "copilot-hosts"
	SourceCopilotApps  Source = "copilot-apps"
	SourceCopilotOAuth Source = "copilot-oauth"
	SourceManual       Source = "manual"
)

// DefaultProbeTimeout bounds a single command probe.
const DefaultProbeTimeout = 5 * time.Second

// Probe is one attempt to obtain a token from a single source.
// Probe never fails: absence and malformed content both report ok == false.
type Probe interface {
	Source() Source
	Probe(ctx context.Context) (token string, ok bool)
}

// CommandProbe runs an external command and takes the first line of stdout.
type CommandProbe struct {
	source  Source
	name    string
	args    []string
	timeout time.Duration
}

// NewCommandProbe creates a probe that runs name with args.
// A timeout <= 0 falls back to DefaultProbeTimeout.
func NewCommandProbe(source Source, timeout time.Duration, name string, args ...string) *CommandProbe {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &CommandProbe{source: source, name: name, args: args, timeout: timeout}
}

func (p *CommandProbe) Source() Source { return p.source }

func (p *CommandProbe) Probe(ctx context.Context) (string, bool) {
	log := logger.FromContext(ctx).With(zap.String("source", string(p.source)))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.name, p.args...)
	cmd.WaitDelay = time.Second
	out, err := cmd.Output()
	if err != nil {
		var execErr *exec.Error
		switch {
		case errors.As(err, &execErr):
			log.Debug("command not available", zap.String("command", p.name))
		case ctx.Err() != nil:
			log.Debug("command did not finish", zap.Duration("timeout", p.timeout), zap.Error(ctx.Err()))
		default:
			log.Debug("command failed", zap.Error(err))
		}
		return "", false
	}

	line, _, _ := strings.Cut(string(out), "\n")
	return trimmed(line)
}

// FileProbe reads a file and hands its content to a parser.
type FileProbe struct {
	source Source
	path   func() string
	parse  func([]byte) (string, bool)
}

// NewTextFileProbe creates a probe that passes the file content as text to extract.
func NewTextFileProbe(source Source, path func() string, extract func(string) (string, bool)) *FileProbe {
	return &FileProbe{
		source: source,
		path:   path,
		parse: func(data []byte) (string, bool) {
			return extract(string(data))
		},
	}
}

// NewJSONFileProbe creates a probe that decodes the file with ParseDocument and
// runs extract on the root node. Invalid JSON is reported as "not found".
func NewJSONFileProbe(source Source, path func() string, extract func(*yaml.Node) (string, bool)) *FileProbe {
	return &FileProbe{
		source: source,
		path:   path,
		parse: func(data []byte) (string, bool) {
			doc, err := ParseDocument(data)
			if err != nil {
				return "", false
			}
			return extract(doc)
		},
	}
}

func (p *FileProbe) Source() Source { return p.source }

func (p *FileProbe) Probe(ctx context.Context) (string, bool) {
	path := p.path()
	if path == "" {
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.FromContext(ctx).Debug("credential file unreadable",
				zap.String("source", string(p.source)),
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return "", false
	}
	token, ok := p.parse(data)
	if !ok {
		return "", false
	}
	return trimmed(token)
}

// ValueProbe asks a function for the token on every probe, such as a reader
// of the manual config setting.
type ValueProbe struct {
	source Source
	token  func() string
}

// NewValueProbe creates a probe backed by token. A nil token never finds anything.
func NewValueProbe(source Source, token func() string) *ValueProbe {
	return &ValueProbe{source: source, token: token}
}

func (p *ValueProbe) Source() Source { return p.source }

func (p *ValueProbe) Probe(context.Context) (string, bool) {
	if p.token == nil {
		return "", false
	}
	return trimmed(p.token())
}

func trimmed(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
