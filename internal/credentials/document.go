package credentials

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var errEmptyDocument = errors.New("empty document")

// ParseDocument decodes a JSON credential file and returns its root node.
// JSON parses as YAML flow style, so mapping nodes keep their keys in file
// order and extractors can honor "first entry wins".
func ParseDocument(data []byte) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errEmptyDocument
	}
	return doc.Content[0], nil
}

// members calls fn with each key and value of a mapping node in order until
// fn returns true. Anything other than a mapping has no members.
func members(n *yaml.Node, fn func(key string, value *yaml.Node) bool) {
	if n == nil || n.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if fn(n.Content[i].Value, n.Content[i+1]) {
			return
		}
	}
}

// lookup returns the value stored under key in a mapping node.
func lookup(n *yaml.Node, key string) (*yaml.Node, bool) {
	var found *yaml.Node
	members(n, func(k string, v *yaml.Node) bool {
		if k == key {
			found = v
			return true
		}
		return false
	})
	return found, found != nil
}

// stringAt returns the string stored under key. Numbers, booleans and null
// are not strings.
func stringAt(n *yaml.Node, key string) (string, bool) {
	v, ok := lookup(n, key)
	if !ok || v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
		return "", false
	}
	return v.Value, true
}
