package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/welllit/internal/presentation/tui"
	"github.com/aretw0/welllit/pkg/adapters/csv"
	"github.com/aretw0/welllit/pkg/domain"
	"github.com/aretw0/welllit/pkg/session"
)

// Console is the line-based operator loop: one command per line, one
// outcome per command.
type Console struct {
	session *session.Session
	printer *tui.Printer
	in      io.Reader
	prompt  string
}

// NewConsole creates a console reading commands from in.
func NewConsole(s *session.Session, printer *tui.Printer, in io.Reader) *Console {
	return &Console{
		session: s,
		printer: printer,
		in:      in,
		prompt:  "welllit> ",
	}
}

// Run reads commands until EOF, quit or context cancellation.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		c.printer.Prompt(c.prompt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			if quit := c.Handle(ctx, line); quit {
				return nil
			}
		}
	}
}

// Handle executes one console line. It reports whether the console should stop.
func (c *Console) Handle(ctx context.Context, line string) bool {
	line, err := SanitizeLine(line)
	if err != nil {
		c.printer.Errorf("%v", err)
		return false
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		c.printer.Markdown(tui.HelpMarkdown())
	case "status":
		c.status()
	case "records":
		c.printer.Markdown(tui.RecordsMarkdown(c.session.Run(), c.session.Records()))
	case "load":
		if len(args) != 1 {
			c.printer.Errorf("usage: load <file.csv>")
			return false
		}
		c.Load(ctx, args[0])
	default:
		res, err := c.session.Execute(ctx, domain.Command(name))
		c.report(res, err)
	}
	return false
}

// Load reads a CSV table into the session and reports the outcome.
func (c *Console) Load(ctx context.Context, path string) {
	res, err := c.session.LoadFrom(ctx, csv.NewReader(path))
	if err != nil && res.Kind == "" {
		c.printer.Errorf("%v", err)
		return
	}
	c.report(res, err)
}

func (c *Console) report(res domain.Result, err error) {
	c.printer.Result(res)
	if err != nil {
		c.printer.Errorf("%v", err)
	}
}

func (c *Console) status() {
	snap, ok := c.session.Snapshot()
	if !ok {
		c.printer.Println("No transfer protocol loaded. Load a CSV file to begin")
		return
	}
	c.printer.Markdown(tui.StatusMarkdown(snap, c.session.Plates(), c.session.Transfers()))
	if c.session.Finished() {
		run := c.session.Run()
		c.printer.Println(fmt.Sprintf("Run %s finished.", run.ID))
	}
}
