package browse

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// Prompter reads one line of input after showing a label. It returns
// io.EOF when the user closes input or aborts with Ctrl-C.
type Prompter interface {
	Prompt(label string) (string, error)
	Close() error
}

// LinePrompter reads from the terminal with line editing and history.
type LinePrompter struct {
	state *liner.State
}

// NewLinePrompter takes over the terminal until Close is called.
func NewLinePrompter() *LinePrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinePrompter{state: state}
}

// Prompt reads a line, remembering non-empty input in the history.
func (p *LinePrompter) Prompt(label string) (string, error) {
	line, err := p.state.Prompt(label)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		p.state.AppendHistory(line)
	}
	return line, nil
}

// Close restores the terminal.
func (p *LinePrompter) Close() error {
	return p.state.Close()
}

// ReaderPrompter reads lines from a plain reader, for piped input.
type ReaderPrompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewReaderPrompter echoes labels to out and reads answers from in.
func NewReaderPrompter(in io.Reader, out io.Writer) *ReaderPrompter {
	return &ReaderPrompter{scanner: bufio.NewScanner(in), out: out}
}

// Prompt writes label and returns the next line without its newline.
func (p *ReaderPrompter) Prompt(label string) (string, error) {
	_, _ = fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		_, _ = fmt.Fprintln(p.out)
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(p.scanner.Text(), "\r"), nil
}

// Close is a no-op.
func (p *ReaderPrompter) Close() error { return nil }

// NewPrompter picks line editing on a real terminal and plain reads otherwise.
func NewPrompter(in io.Reader, out io.Writer) Prompter {
	if liner.TerminalSupported() {
		return NewLinePrompter()
	}
	return NewReaderPrompter(in, out)
}
