// Package render turns turn content (markdown) into something a surface can display.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// paragraphStripper removes paragraph tags so short replies sit inline in a message bubble.
var paragraphStripper = strings.NewReplacer("<p>", "", "</p>", "")

// HTMLRenderer converts markdown to sanitized HTML.
type HTMLRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewHTMLRenderer creates a renderer with GitHub flavoured markdown and the UGC sanitizing policy.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts content. Content that fails to convert is shown escaped.
func (r *HTMLRenderer) Render(content string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}

	safe := r.policy.Sanitize(buf.String())
	return template.HTML(strings.TrimSpace(paragraphStripper.Replace(safe)))
}

// TerminalRenderer renders markdown for a terminal of a given width.
type TerminalRenderer struct {
	tr *glamour.TermRenderer
}

// NewTerminalRenderer creates a glamour renderer. An empty style picks one from the terminal.
func NewTerminalRenderer(width int, style string) (*TerminalRenderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}

	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	return &TerminalRenderer{tr: tr}, nil
}

// Render returns the styled content, or the raw content when glamour fails.
func (r *TerminalRenderer) Render(content string) string {
	out, err := r.tr.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}
