package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/Builtbyjb/tide/pkg/lib"
)

var (
	labelColor   = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	noticeColor  = color.New(color.FgYellow)
)

// Console is the operator-facing output. All writes go through one mutex, so
// lines from concurrent drains never tear.
//
// A command's output is printed as a label line followed by tab-indented
// lines. The label is repeated whenever another stream wrote in between.
type Console struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Line writes one line of child output tagged with the command it came from.
func (c *Console) Line(label string, stream lib.Stream, text string) {
	key := stream.String() + "\x00" + label

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last != key {
		if stream == lib.StreamStderr {
			fmt.Fprintf(c.out, "%s %s\n", labelColor.Sprint(label+":"), errorColor.Sprint("(stderr)"))
		} else {
			fmt.Fprintf(c.out, "%s\n", labelColor.Sprint(label+":"))
		}
		c.last = key
	}
	fmt.Fprintf(c.out, "\t%s\n", text)
}

// Header prints a bold status header such as "Starting up commands".
func (c *Console) Header(msg string) {
	c.print(headerColor.Sprint(msg))
}

// Success prints a green status message.
func (c *Console) Success(msg string) {
	c.print(successColor.Sprint(msg))
}

// Notice prints a yellow informational message.
func (c *Console) Notice(format string, args ...any) {
	c.print(noticeColor.Sprintf(format, args...))
}

// Outcome reports the result of shutting down one command.
func (c *Console) Outcome(command string, err error) {
	if err != nil {
		c.print(fmt.Sprintf("[%s]: %s (%v)", errorColor.Sprint("failed to shut down"), labelColor.Sprint(command), err))
		return
	}
	c.print(fmt.Sprintf("[%s]: %s", successColor.Sprint("shutting down"), labelColor.Sprint(command)))
}

// Error prints err with a red marker.
func (c *Console) Error(err error) {
	c.print(fmt.Sprintf("%s %v", errorColor.Sprint("error:"), err))
}

func (c *Console) print(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
	c.last = ""
}
