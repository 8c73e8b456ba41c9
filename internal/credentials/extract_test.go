package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustParse(t *testing.T, src string) *yaml.Node {
	t.Helper()
	doc, err := ParseDocument([]byte(src))
	require.NoError(t, err)
	return doc
}

func TestFromHostsDocument(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		want   string
		wantOK bool
	}{
		{name: "github.com entry", doc: `{"github.com": {"oauth_token": "X"}}`, want: "X", wantOK: true},
		{name: "with user field", doc: `{"github.com": {"user": "octo", "oauth_token": "gho_abc"}}`, want: "gho_abc", wantOK: true},
		{name: "empty object", doc: `{}`},
		{name: "other host only", doc: `{"ghe.example.com": {"oauth_token": "Y"}}`},
		{name: "missing token", doc: `{"github.com": {"user": "octo"}}`},
		{name: "empty token", doc: `{"github.com": {"oauth_token": ""}}`},
		{name: "token not a string", doc: `{"github.com": {"oauth_token": 42}}`},
		{name: "host not an object", doc: `{"github.com": "X"}`},
		{name: "array root", doc: `[{"github.com": {"oauth_token": "X"}}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromHostsDocument(mustParse(t, tt.doc))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAppsDocument(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		want   string
		wantOK bool
	}{
		{name: "skips entry without token", doc: `{"a": {}, "b": {"oauth_token": "T"}}`, want: "T", wantOK: true},
		{name: "first match wins", doc: `{"z": {"oauth_token": "first"}, "a": {"oauth_token": "second"}}`, want: "first", wantOK: true},
		{
			name:   "real key shape",
			doc:    `{"github.com:Iv1.b507a08c87ecfe98": {"user": "octo", "oauth_token": "ghu_123", "githubAppId": "Iv1.b507a08c87ecfe98"}}`,
			want:   "ghu_123",
			wantOK: true,
		},
		{name: "skips non-object values", doc: `{"a": "x", "b": [1], "c": {"oauth_token": "C"}}`, want: "C", wantOK: true},
		{name: "no entries", doc: `{}`},
		{name: "no tokens", doc: `{"a": {"user": "u"}}`},
		{name: "not an object", doc: `"oauth_token"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromAppsDocument(mustParse(t, tt.doc))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromOAuthDocument(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		want   string
		wantOK bool
	}{
		{name: "single entry", doc: `{"github.com": [{"access_token": "A"}]}`, want: "A", wantOK: true},
		{
			name:   "first key first entry",
			doc:    `{"k2": [{"access_token": "B1"}, {"access_token": "B2"}], "k1": [{"access_token": "A1"}]}`,
			want:   "B1",
			wantOK: true,
		},
		{name: "skips empty entries", doc: `{"k": [{}, {"access_token": ""}, {"access_token": "C"}]}`, want: "C", wantOK: true},
		{name: "skips empty lists", doc: `{"k1": [], "k2": [{"access_token": "D"}]}`, want: "D", wantOK: true},
		{name: "camelCase field", doc: `{"k": [{"accessToken": "E"}]}`, want: "E", wantOK: true},
		{name: "value not a list", doc: `{"k": {"access_token": "F"}}`},
		{name: "empty", doc: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromOAuthDocument(mustParse(t, tt.doc))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromLegacyYAMLText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{name: "bare line", text: "oauth_token: abc123\n", want: "abc123", wantOK: true},
		{
			name:   "gh hosts layout",
			text:   "github.com:\n    user: octo\n    oauth_token: gho_xyz\n    git_protocol: ssh\n",
			want:   "gho_xyz",
			wantOK: true,
		},
		{name: "extra spaces", text: "oauth_token:     tok\n", want: "tok", wantOK: true},
		{name: "no marker", text: "github.com:\n    user: octo\n    git_protocol: https\n"},
		{name: "marker without value", text: "oauth_token:\n    user: octo\n"},
		{name: "empty", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromLegacyYAMLText(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDocumentKeepsOrder(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"z": {"x": 2.5}, "a": [true, null, "s"], "k": "v"}`))
	require.NoError(t, err)
	require.Equal(t, yaml.MappingNode, doc.Kind)

	var keys []string
	var kinds []yaml.Kind
	members(doc, func(k string, v *yaml.Node) bool {
		keys = append(keys, k)
		kinds = append(kinds, v.Kind)
		return false
	})
	assert.Equal(t, []string{"z", "a", "k"}, keys)
	assert.Equal(t, []yaml.Kind{yaml.MappingNode, yaml.SequenceNode, yaml.ScalarNode}, kinds)

	got, ok := stringAt(doc, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	z, ok := lookup(doc, "z")
	require.True(t, ok)
	_, ok = stringAt(z, "x")
	assert.False(t, ok, "numbers are not strings")
}

func TestParseDocumentRejectsInvalid(t *testing.T) {
	for _, src := range []string{``, `   `, `{`, `{"a": [}`, `{"a": "b"`} {
		_, err := ParseDocument([]byte(src))
		assert.Error(t, err, "input %q", src)
	}
}
