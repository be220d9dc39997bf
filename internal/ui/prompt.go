package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// TerminalPrompter reads answers line by line from in. The active spinner is
// suspended while waiting so the question stays visible.
type TerminalPrompter struct {
	in            *bufio.Reader
	out           io.Writer
	confirmSuffix string
	invalidAnswer string
}

type PrompterOption func(*TerminalPrompter)

// WithConfirmSuffix sets the hint printed after confirmation questions.
func WithConfirmSuffix(suffix string) PrompterOption {
	return func(p *TerminalPrompter) {
		p.confirmSuffix = suffix
	}
}

// WithInvalidAnswer sets the message shown before asking again.
func WithInvalidAnswer(msg string) PrompterOption {
	return func(p *TerminalPrompter) {
		p.invalidAnswer = msg
	}
}

func NewTerminalPrompter(in io.Reader, out io.Writer, opts ...PrompterOption) *TerminalPrompter {
	p := &TerminalPrompter{
		in:            bufio.NewReader(in),
		out:           out,
		confirmSuffix: "[y/N]",
		invalidAnswer: "Invalid answer, try again",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Confirm asks a yes/no question. An empty answer picks defaultValue.
func (p *TerminalPrompter) Confirm(ctx context.Context, message string, defaultValue bool) (bool, error) {
	SuspendActiveSpinner()
	defer ResumeSuspendedSpinner()

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		_, _ = fmt.Fprintf(p.out, "\n%s %s ", Info.Sprint(message), Dim.Sprint(p.confirmSuffix))
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "":
			return defaultValue, nil
		case "y", "yes", "s", "si", "sí":
			return true, nil
		case "n", "no":
			return false, nil
		}
		PrintWarning(p.out, p.invalidAnswer)
	}
}

// Prompt asks until validate accepts the answer. A nil validate accepts
// anything.
func (p *TerminalPrompter) Prompt(ctx context.Context, message string, validate func(string) bool) (string, error) {
	SuspendActiveSpinner()
	defer ResumeSuspendedSpinner()

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		_, _ = fmt.Fprintf(p.out, "\n%s: ", Info.Sprint(message))
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}

		if validate == nil || validate(answer) {
			return answer, nil
		}
		PrintWarning(p.out, p.invalidAnswer)
	}
}

// readLine returns the next line without its terminator. A final line with
// no newline is still returned; io.EOF is only reported once input is empty.
func (p *TerminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
