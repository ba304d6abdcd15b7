package tidy

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter abstracts blocking operator input so interactive flows can be
// driven by scripted test input.
type Prompter interface {
	// Confirm asks a yes/no question. Only an explicit "y" answer is yes.
	Confirm(prompt string) (bool, error)

	// Input asks a free-text question and returns the trimmed answer.
	Input(prompt string) (string, error)
}

type consolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsolePrompter creates a prompter reading answers line-wise from in
// and writing prompts to out.
func NewConsolePrompter(in io.Reader, out io.Writer) Prompter {
	return &consolePrompter{in: bufio.NewReader(in), out: out}
}

func (p *consolePrompter) Confirm(prompt string) (bool, error) {
	answer, err := p.Input(prompt)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func (p *consolePrompter) Input(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
