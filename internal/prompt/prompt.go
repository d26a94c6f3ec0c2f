// Package prompt asks the operator for decisions on a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"votd/internal/leo"
)

// Terminal reads one line per answer from in and writes prompts to out.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

var _ leo.TranslationReviewer = (*Terminal)(nil)

// New returns a Terminal over the given streams.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// ReviewTranslation asks whether to add candidate to verb's translations.
// An empty answer accepts; end of input quits.
func (t *Terminal) ReviewTranslation(ctx context.Context, verb, candidate string, accepted []string) (leo.Decision, error) {
	fmt.Fprintf(t.out, "%s: English translation found: %s\n", verb, candidate)
	for {
		answer, err := t.ask(ctx, "Add / Skip / Quit (Y/n/Q)? ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return leo.Quit, nil
			}
			return leo.Quit, err
		}
		switch answer {
		case "", "y", "yes":
			fmt.Fprintf(t.out, "English translation now: %s\n", strings.Join(slices.Concat(accepted, []string{candidate}), "; "))
			return leo.Accept, nil
		case "n", "no":
			return leo.Reject, nil
		case "q", "quit":
			return leo.Quit, nil
		}
	}
}

// Confirm asks a yes/no question. An empty answer means yes; end of input
// means no.
func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	for {
		answer, err := t.ask(ctx, question+" (Y/n) ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		switch answer {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func (t *Terminal) ask(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

// Yes is a confirmation gate that always agrees, used for --yes runs.
type Yes struct{}

// Confirm returns true.
func (Yes) Confirm(context.Context, string) (bool, error) { return true, nil }
