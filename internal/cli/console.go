package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/threedev/studio/internal/auth"
	"github.com/threedev/studio/internal/entities"
	"github.com/threedev/studio/internal/entrypoint"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// ErrRejected is returned after input problems have been reported to the user.
var ErrRejected = errors.New("input rejected")

// Command is one shell command.
type Command interface {
	ParseFlags(args []string) error
	Run(ctx context.Context) error
}

// Console carries the streams a command talks to the user through.
type Console struct {
	In  *bufio.Reader
	Out io.Writer
	Err io.Writer
	fd  int
}

// NewConsole reads from in and writes to stdout and stderr.
func NewConsole(in *os.File) *Console {
	return &Console{
		In:  bufio.NewReader(in),
		Out: os.Stdout,
		Err: os.Stderr,
		fd:  int(in.Fd()),
	}
}

// Prompt prints label and reads one line.
func (c *Console) Prompt(label string) (string, error) {
	fmt.Fprintf(c.Out, "%s: ", label)
	line, err := c.In.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password prints label and reads a secret without echo when attached to a
// terminal. Surrounding whitespace is kept.
func (c *Console) Password(label string) (string, error) {
	if !isTerminal(c.fd) {
		fmt.Fprintf(c.Out, "%s: ", label)
		line, err := c.In.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprintf(c.Out, "%s: ", label)
	pw, err := readPassword(c.fd)
	fmt.Fprintln(c.Out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (c *Console) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.Err)
	fs.Usage = func() {
		fmt.Fprintf(c.Err, "Usage: %s %s\n\n", programName(), usage)
		fmt.Fprintf(c.Err, "Options:\n")
		fs.PrintDefaults()
	}
	return fs
}

func (c *Console) reportRejected(messages []string) error {
	for _, msg := range messages {
		fmt.Fprintf(c.Out, "  - %s\n", msg)
	}
	return ErrRejected
}

func programName() string {
	if len(os.Args) > 0 {
		return os.Args[0]
	}
	return "3dev"
}

// requireUser returns the signed-in account or a hint to sign in.
func requireUser(ctx context.Context, app *entrypoint.App) (*entities.User, error) {
	user, err := app.CurrentUser(ctx)
	if errors.Is(err, auth.ErrNotSignedIn) {
		return nil, fmt.Errorf("not signed in, run '%s signin' first", programName())
	}
	return user, err
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
