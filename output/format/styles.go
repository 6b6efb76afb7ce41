// Package format renders run state as terminal text: result headers, path
// truncation, snapshot status, the summary block and the closing message.
//
// Every function here is pure. Output depends only on its arguments and the
// colour profile of the Styles in use.
package format

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ANSI colours used by the reporter.
const (
	colorRed     = lipgloss.Color("1")
	colorGreen   = lipgloss.Color("2")
	colorYellow  = lipgloss.Color("3")
	colorMagenta = lipgloss.Color("5")
	colorWhite   = lipgloss.Color("7")
)

// Symbols shared by the formatters.
const (
	SymbolPass    = "✓"
	SymbolFail    = "✕"
	SymbolPending = "○"
	SymbolTodo    = "✎"
	SymbolBullet  = "●"
	Ellipsis      = "…"

	arrow     = " › "
	dot       = " • "
	downArrow = " ↳ "
	nbsp      = "\u00a0"
)

// Styles binds the reporter's text attributes to one lipgloss renderer.
// Build it once per output and share it between formatters.
type Styles struct {
	renderer *lipgloss.Renderer

	Plain lipgloss.Style
	Bold  lipgloss.Style
	Dim   lipgloss.Style

	Fail    lipgloss.Style // bold red
	Pass    lipgloss.Style // bold green
	Warn    lipgloss.Style // bold yellow
	Todo    lipgloss.Style // bold magenta
	Red     lipgloss.Style
	Green   lipgloss.Style
	Yellow  lipgloss.Style
	Magenta lipgloss.Style
	White   lipgloss.Style
}

// NewStyles creates styles rendered by r.
func NewStyles(r *lipgloss.Renderer) *Styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return r.NewStyle().Foreground(c) }
	return &Styles{
		renderer: r,
		Plain:    r.NewStyle(),
		Bold:     r.NewStyle().Bold(true),
		Dim:      r.NewStyle().Faint(true),
		Fail:     fg(colorRed).Bold(true),
		Pass:     fg(colorGreen).Bold(true),
		Warn:     fg(colorYellow).Bold(true),
		Todo:     fg(colorMagenta).Bold(true),
		Red:      fg(colorRed),
		Green:    fg(colorGreen),
		Yellow:   fg(colorYellow),
		Magenta:  fg(colorMagenta),
		White:    fg(colorWhite),
	}
}

// StylesFor creates styles for w. Colours are dropped entirely when w is not
// a terminal, so piped output stays plain text.
func StylesFor(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		r.SetColorProfile(termenv.Ascii)
	}
	return NewStyles(r)
}

// PlainStyles renders no escape sequences at all.
func PlainStyles() *Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return NewStyles(r)
}

// named maps display name colour tags to ANSI colours.
var named = map[string]lipgloss.Color{
	"black":   lipgloss.Color("0"),
	"red":     colorRed,
	"green":   colorGreen,
	"yellow":  colorYellow,
	"blue":    lipgloss.Color("4"),
	"magenta": colorMagenta,
	"cyan":    lipgloss.Color("6"),
	"white":   colorWhite,
	"gray":    lipgloss.Color("8"),
	"grey":    lipgloss.Color("8"),
}

// Badge renders text as an inverse block padded by one space on each side,
// followed by one unstyled space.
func (s *Styles) Badge(text string, color lipgloss.Color) string {
	style := s.renderer.NewStyle().Foreground(color).Reverse(true).Bold(true)
	return style.Render(" "+text+" ") + " "
}

func (s *Styles) colorTag(tag string) lipgloss.Color {
	if c, ok := named[strings.ToLower(tag)]; ok {
		return c
	}
	if strings.HasPrefix(tag, "#") {
		return lipgloss.Color(tag)
	}
	return colorWhite
}

// ExpandTabs replaces tab characters with spaces. Terminals advance the
// cursor over a tab without overwriting, so redrawn regions must not
// contain any.
func ExpandTabs(s string, tabWidth int) string {
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteRune(r)
			col = 0
		case '\t':
			spaces := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// EnsureReset appends a terminal reset sequence if s does not already end
// with one, so colour from raw engine output cannot bleed into later lines.
func EnsureReset(s string) string {
	const reset = "\x1b[0m"
	if s == "" || !strings.Contains(s, "\x1b[") || strings.HasSuffix(s, reset) {
		return s
	}
	return s + reset
}

// renderLines applies style to each line separately. lipgloss pads
// multi-line blocks to a common width, which would alter engine text.
func renderLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// Pluralize returns "n word", adding an "s" unless n is 1.
func Pluralize(word string, n int) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
