package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/welllit/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return plain
	}
	return r.Render
}

func plain(markdown string) (string, error) {
	return markdown, nil
}

// Printer writes operator-facing output. On a terminal it renders markdown and
// colours outcomes; otherwise it writes raw markdown and plain text.
type Printer struct {
	out         io.Writer
	interactive bool
	profile     termenv.Profile
	render      func(string) (string, error)
}

// NewPrinter creates a Printer for out.
func NewPrinter(out io.Writer, interactive bool) *Printer {
	p := &Printer{
		out:         out,
		interactive: interactive,
		profile:     termenv.Ascii,
		render:      plain,
	}
	if interactive {
		p.profile = termenv.ColorProfile()
		p.render = NewRenderer()
	}
	return p
}

// Markdown renders and prints a markdown document.
func (p *Printer) Markdown(md string) {
	out, err := p.render(md)
	if err != nil {
		out = md
	}
	fmt.Fprint(p.out, out)
}

// Result prints an operation outcome on one line, prefixed by its kind.
func (p *Printer) Result(res domain.Result) {
	var label, color string
	switch res.Kind {
	case domain.KindSuccess:
		label, color = "OK", "#22c55e"
	case domain.KindConfirm:
		label, color = "CONFIRM", "#eab308"
	default:
		label, color = "REJECTED", "#ef4444"
	}
	tag := p.profile.String("[" + label + "]").Foreground(p.profile.Color(color)).Bold()
	fmt.Fprintf(p.out, "%s %s\n", tag, res.Message)
	for _, v := range res.Violations {
		fmt.Fprintf(p.out, "  - %s\n", v.String())
	}
}

// Errorf prints a failure that is not an operation outcome (I/O, config).
func (p *Printer) Errorf(format string, args ...any) {
	tag := p.profile.String("[ERROR]").Foreground(p.profile.Color("#ef4444")).Bold()
	fmt.Fprintf(p.out, "%s %s\n", tag, fmt.Sprintf(format, args...))
}

// Println prints a plain line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

// Prompt prints the console prompt without a newline. Off-terminal it prints nothing.
func (p *Printer) Prompt(prompt string) {
	if !p.interactive {
		return
	}
	fmt.Fprint(p.out, prompt)
}
