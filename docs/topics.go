// Package docs holds the user manual of ftk, one markdown topic per file.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var docs embed.FS

// index is the topic listing the others.
const index = "readme"

// GetTopic returns the content of a documentation topic.
func GetTopic(topic string) (string, error) {
	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the content of multiple documentation topics concatenated
// together. "*" stands for every topic.
func GetTopics(topics ...string) (string, error) {
	var b strings.Builder
	for _, topic := range topics {
		names := []string{topic}
		if topic == "*" {
			names = AllTopics()
		}
		for _, name := range names {
			content, err := GetTopic(name)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// AllTopics returns the sorted names of the topics, the index excluded.
func AllTopics() []string {
	entries, _ := fs.Glob(docs, "*.md")
	var topics []string
	for _, e := range entries {
		if name := strings.TrimSuffix(e, ".md"); name != index {
			topics = append(topics, name)
		}
	}
	slices.Sort(topics)
	return topics
}
