// Package htmlmd turns rich-text HTML (as produced by contenteditable
// editors) into Markdown-like plain text, and renders Markdown back to HTML
// for previews.
package htmlmd

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blankRuns = regexp.MustCompile(`\n{3,}`)

// Convert parses s as an HTML fragment and returns its text rendition.
// Unknown tags contribute their children; ordered lists number every item
// "1.".
func Convert(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	wrapper := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), wrapper)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(render(n))
	}
	return finish(block(b.String())), nil
}

// ConvertNode renders n and its subtree. n is not modified.
func ConvertNode(n *html.Node) string {
	if n == nil {
		return ""
	}
	return finish(render(n))
}

func finish(s string) string {
	return strings.TrimSpace(blankRuns.ReplaceAllString(s, "\n\n"))
}

func block(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	return content + "\n\n"
}

func children(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(render(c))
	}
	return b.String()
}

func render(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return n.Data
	case html.DocumentNode:
		return children(n)
	case html.ElementNode:
	default:
		return ""
	}

	switch n.DataAtom {
	case atom.H1:
		return "# " + children(n) + "\n\n"
	case atom.H2:
		return "## " + children(n) + "\n\n"
	case atom.H3:
		return "### " + children(n) + "\n\n"
	case atom.P, atom.Div:
		return block(children(n))
	case atom.Strong, atom.B:
		return "**" + children(n) + "**"
	case atom.Em, atom.I:
		return "*" + children(n) + "*"
	case atom.Ul:
		return children(n) + "\n"
	case atom.Ol:
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Li {
				b.WriteString("1. " + children(c) + "\n")
				continue
			}
			b.WriteString(render(c))
		}
		b.WriteString("\n")
		return b.String()
	case atom.Li:
		if n.Parent != nil && n.Parent.DataAtom == atom.Ol {
			return children(n)
		}
		return "- " + children(n) + "\n"
	case atom.Br:
		return "\n"
	default:
		return children(n)
	}
}
