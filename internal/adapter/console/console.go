// Package console is the operator's in-process channel to the developer
// preview. It reads line commands from a terminal; nothing in it listens on
// the network.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/V4T54L/schoolsite/internal/domain"
)

const prompt = "schoolsite> "

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidTarget  = errors.New(`target must be a school id or "platform"`)

	errQuit = errors.New("quit")
)

// Preview is the developer override as driven from the console.
type Preview interface {
	Tenants() []domain.Tenant
	Pin(id *int64) (domain.ResolutionContext, error)
	Unpin() (domain.ResolutionContext, error)
	Current() domain.ResolutionContext
}

// ParseTarget parses a pin target: a positive school id, or "platform" for
// platform mode (nil).
func ParseTarget(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "platform") {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}
	return &id, nil
}

// Console executes preview commands and writes results to out.
type Console struct {
	preview Preview
	out     io.Writer
	logger  *slog.Logger
}

// New creates a Console.
func New(preview Preview, out io.Writer, logger *slog.Logger) *Console {
	return &Console{
		preview: preview,
		out:     out,
		logger:  logger.With("component", "dev_console"),
	}
}

// Run reads commands from in until it is exhausted, a quit command is read
// or ctx ends. Command errors are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(c.out, prompt)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			err := c.Exec(line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
		}
		fmt.Fprint(c.out, prompt)
	}
	return scanner.Err()
}

// Exec runs one command. A leading colon is accepted.
func (c *Console) Exec(line string) error {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "pin":
		if len(fields) != 2 {
			return fmt.Errorf("%w: usage: pin <id|platform>", ErrInvalidTarget)
		}
		id, err := ParseTarget(fields[1])
		if err != nil {
			return err
		}
		rc, err := c.preview.Pin(id)
		if err != nil {
			return err
		}
		c.logger.Info("developer override pinned", "tenant_id", rc.TenantID(), "platform", rc.IsPlatformMode)
		c.printContext(rc)
	case "unpin":
		rc, err := c.preview.Unpin()
		if err != nil {
			return err
		}
		c.logger.Info("developer override cleared")
		c.printContext(rc)
	case "context":
		c.printContext(c.preview.Current())
	case "tenants":
		for _, t := range c.preview.Tenants() {
			fmt.Fprintf(c.out, "%d\t%s\t%s\n", t.ID, t.Domain, t.Name)
		}
	case "help":
		fmt.Fprintln(c.out, "Commands:")
		fmt.Fprintln(c.out, "  pin <id|platform>  Serve one school (or platform mode) on every host")
		fmt.Fprintln(c.out, "  unpin              Return to host-based resolution")
		fmt.Fprintln(c.out, "  context            Show the active context")
		fmt.Fprintln(c.out, "  tenants            List schools")
		fmt.Fprintln(c.out, "  quit               Close the console")
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	return nil
}

func (c *Console) printContext(rc domain.ResolutionContext) {
	desc := "platform"
	if t := rc.ActiveTenant; t != nil {
		desc = fmt.Sprintf("school %d %s", t.ID, t.Domain)
	}
	if rc.IsDeveloperOverrideActive {
		desc += " [override]"
	}
	fmt.Fprintf(c.out, "context: %s\n", desc)
}
