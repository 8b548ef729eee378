package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// descRenderers caches one glamour renderer per palette and wrap width.
// Renderers are built from a fixed style config; glamour's auto style probes
// the terminal and can stall.
type descRenderers struct {
	mu sync.Mutex
	m  map[string]*glamour.TermRenderer
}

var descCache = &descRenderers{m: map[string]*glamour.TermRenderer{}}

func (c *descRenderers) get(palette string, width int) (*glamour.TermRenderer, error) {
	k := fmt.Sprintf("%s/%d", palette, width)
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.m[k]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(descStyle(palette)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	c.m[k] = r
	return r, nil
}

// renderMarkdown renders a task description for the detail pane. The raw
// text is returned when rendering fails.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	r, err := descCache.get(themeName(), max(width, 10))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// descStyle starts from glamour's light or dark preset and pulls headings,
// body text and code onto the board's own foreground so descriptions do not
// pick up the preset's accent colors.
func descStyle(palette string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if palette == "light" {
		cfg = styles.LightStyleConfig
	}
	pick := func(c lipgloss.AdaptiveColor) *string {
		v := c.Dark
		if palette == "light" {
			v = c.Light
		}
		return &v
	}
	yes, no, zero := true, false, uint(0)

	fg := pick(colorSurfaceFg)
	cfg.Document.Margin = &zero
	cfg.Text.Color = fg
	for _, h := range []*ansi.StyleBlock{&cfg.Heading, &cfg.H1, &cfg.H2, &cfg.H3} {
		h.Color = fg
	}
	cfg.Code.Color = fg
	cfg.CodeBlock.Color = fg
	if cfg.CodeBlock.BackgroundColor == nil {
		cfg.CodeBlock.BackgroundColor = pick(colorControlBg)
	}
	cfg.Link.Color = pick(colorAccent)
	cfg.Link.Underline = &yes
	cfg.LinkText.Color = cfg.Link.Color
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	cfg.BlockQuote.Faint = &no
	return cfg
}
