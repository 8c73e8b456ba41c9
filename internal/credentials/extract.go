package credentials

import (
	"regexp"

	"gopkg.in/yaml.v3"
)

const githubHost = "github.com"

var legacyTokenPattern = regexp.MustCompile(`oauth_token:[ \t]*(\S+)`)

// FromHostsDocument reads github.com.oauth_token from a hosts.json document.
func FromHostsDocument(doc *yaml.Node) (string, bool) {
	host, ok := lookup(doc, githubHost)
	if !ok {
		return "", false
	}
	return nonEmpty(stringAt(host, "oauth_token"))
}

// FromAppsDocument returns the oauth_token of the first apps.json entry that has one.
// Keys look like "github.com:Iv1.b507a08c87ecfe98"; any number of them may exist.
func FromAppsDocument(doc *yaml.Node) (token string, ok bool) {
	members(doc, func(_ string, app *yaml.Node) bool {
		token, ok = nonEmpty(stringAt(app, "oauth_token"))
		return ok
	})
	return token, ok
}

// FromOAuthDocument scans every key of an OAuth token file. Each value is a
// list of token entries; the first access token in document order wins.
func FromOAuthDocument(doc *yaml.Node) (token string, ok bool) {
	members(doc, func(_ string, entries *yaml.Node) bool {
		if entries.Kind != yaml.SequenceNode {
			return false
		}
		for _, entry := range entries.Content {
			if token, ok = nonEmpty(stringAt(entry, "access_token")); ok {
				return true
			}
			if token, ok = nonEmpty(stringAt(entry, "accessToken")); ok {
				return true
			}
		}
		return false
	})
	return token, ok
}

// FromLegacyYAMLText pulls the token out of gh's hosts.yml with a pattern match.
// Newer gh releases keep the token in the system keyring and omit oauth_token,
// so this increasingly finds nothing.
func FromLegacyYAMLText(text string) (string, bool) {
	m := legacyTokenPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return nonEmpty(m[1], true)
}

func nonEmpty(s string, ok bool) (string, bool) {
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
