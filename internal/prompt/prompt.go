// Package prompt asks the user to confirm file changes.
//
// The planner talks to a Confirmer, which receives a question and returns
// one line of response text. TerminalConfirmer reads from stdin; tests use
// ScriptedConfirmer.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Confirmer asks a question and returns the raw answer line.
type Confirmer interface {
	Ask(question string) (string, error)
}

// Func adapts a plain function to Confirmer.
type Func func(question string) (string, error)

// Ask calls f.
func (f Func) Ask(question string) (string, error) {
	return f(question)
}

// IsYes reports whether answer is an explicit affirmative. Only "y", in any
// case and surrounded by any whitespace, counts.
func IsYes(answer string) bool {
	return strings.ToLower(strings.TrimSpace(answer)) == "y"
}

// TerminalConfirmer reads answers line by line from an input stream.
type TerminalConfirmer struct {
	in     *bufio.Reader
	out    io.Writer
	styled bool
}

// NewTerminalConfirmer reads from stdin and writes questions to stdout.
// Styling is only applied when stdin is an interactive terminal.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		styled: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// NewReaderConfirmer reads answers from in and writes unstyled questions to out.
func NewReaderConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(in), out: out}
}

// Ask prints question and reads one line. End of input yields an empty answer.
func (c *TerminalConfirmer) Ask(question string) (string, error) {
	if _, err := fmt.Fprint(c.out, c.render(question)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		// keep the next output off the prompt line
		_, _ = fmt.Fprintln(c.out)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// render styles the "[y/N]: " hint separately from the question text.
func (c *TerminalConfirmer) render(question string) string {
	if !c.styled {
		return question
	}
	const hint = "[y/N]: "
	if body, ok := strings.CutSuffix(question, hint); ok {
		return promptStyle.Render(strings.TrimSpace(body)) + " " + hintStyle.Render("[y/N]") + ": "
	}
	return promptStyle.Render(question)
}

// ScriptedConfirmer replays fixed answers and records the questions asked.
type ScriptedConfirmer struct {
	Answers   []string
	Questions []string
}

// NewScriptedConfirmer returns a ScriptedConfirmer that gives answers in order.
// Once answers run out every further question gets an empty answer.
func NewScriptedConfirmer(answers ...string) *ScriptedConfirmer {
	return &ScriptedConfirmer{Answers: answers}
}

// Ask records question and returns the next scripted answer.
func (s *ScriptedConfirmer) Ask(question string) (string, error) {
	s.Questions = append(s.Questions, question)
	if len(s.Answers) == 0 {
		return "", nil
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}
