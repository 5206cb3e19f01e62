package htmlmd

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// Preview renders Markdown to HTML.
func Preview(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
