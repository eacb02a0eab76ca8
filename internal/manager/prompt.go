package manager

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the operator questions. Ask returns io.EOF when input is
// exhausted, which callers treat as a cancellation.
type Prompter interface {
	Ask(question string) (string, error)
	Confirm(question string) (bool, error)
}

// LinePrompter reads answers one line at a time.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter reading from in and printing
// questions to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer.
func (p *LinePrompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		fmt.Fprintln(p.out)
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Only "y" or "yes" (any case) count as
// agreement; end of input is a refusal.
func (p *LinePrompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question + " (y/N): ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return isYes(answer), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
