package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/moby/term"
)

// Prompter reads answers from the terminal. Input that is not a terminal is
// read as plain lines, which keeps piped input and tests working.
type Prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	// AssumeYes answers every confirmation with yes.
	AssumeYes bool
}

// NewPrompter prompts on out and reads from in.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, reader: bufio.NewReader(in), out: out}
}

// ReadLine prints prompt and returns the trimmed answer. Silent disables echo
// when in is a terminal.
func (p *Prompter) ReadLine(prompt string, silent bool) (string, error) {
	fmt.Fprint(p.out, prompt)
	if silent {
		if fd, isTerminal := term.GetFdInfo(p.in); isTerminal {
			state, err := term.SaveState(fd)
			if err != nil {
				return "", err
			}
			if err := term.DisableEcho(fd, state); err != nil {
				return "", err
			}
			defer func() {
				_ = term.RestoreTerminal(fd, state)
				fmt.Fprintln(p.out)
			}()
		}
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (p *Prompter) Confirm(_ context.Context, message string) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}
	answer, err := p.ReadLine(message+" [y/N]: ", false)
	if err != nil {
		if err == io.EOF {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
