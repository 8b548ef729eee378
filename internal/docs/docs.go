// Package docs holds the help topics printed by `taskdeck docs`.
package docs

import (
	"embed"
	"path"
	"slices"
	"strings"
)

//go:embed content/*.md
var content embed.FS

// Topics lists the topic names in alphabetical order.
func Topics() []string {
	entries, err := content.ReadDir("content")
	if err != nil {
		return []string{}
	}
	out := []string{}
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".md"); ok && !e.IsDir() && name != "" {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Get returns the markdown for topic. Lookup is case-insensitive.
func Get(topic string) (string, bool) {
	name := strings.ToLower(strings.TrimSpace(topic))
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", false
	}
	b, err := content.ReadFile(path.Join("content", name+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}
