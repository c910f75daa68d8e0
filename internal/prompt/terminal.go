// ABOUTME: Terminal Prompter implementation backed by charmbracelet/huh
// ABOUTME: Maps huh form results and aborts onto the Prompter contract

package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
)

// Terminal is the interactive Prompter used in production. Each call runs a
// single-field huh form so the wizard keeps full control of ordering and
// re-prompting.
type Terminal struct{}

// NewTerminal returns a Prompter that reads from the controlling terminal.
func NewTerminal() *Terminal {
	return &Terminal{}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	return err
}

// Confirm asks a yes/no question.
func (t *Terminal) Confirm(title string, def bool) (bool, error) {
	value := def
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&value),
	))
	if err := form.Run(); err != nil {
		return false, mapErr(err)
	}
	return value, nil
}

// Select asks the operator to pick exactly one option.
func (t *Terminal) Select(title string, opts []Option, def string) (string, error) {
	options := make([]huh.Option[string], 0, len(opts))
	for _, o := range opts {
		options = append(options, huh.NewOption(o.Label, o.Value))
	}

	value := def
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Options(options...).
			Value(&value),
	))
	if err := form.Run(); err != nil {
		return "", mapErr(err)
	}
	return value, nil
}

// MultiSelect asks the operator to pick any number of options.
func (t *Terminal) MultiSelect(title string, opts []Option) ([]string, error) {
	options := make([]huh.Option[string], 0, len(opts))
	for _, o := range opts {
		options = append(options, huh.NewOption(o.Label, o.Value))
	}

	var values []string
	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title(title).
			Options(options...).
			Value(&values),
	))
	if err := form.Run(); err != nil {
		return nil, mapErr(err)
	}
	return values, nil
}

// Text asks for a line of input, re-issuing until validate passes.
func (t *Terminal) Text(title, placeholder, def string, validate func(string) error) (string, error) {
	value := def
	input := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}
	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", mapErr(err)
	}
	return value, nil
}

// Secret asks for a masked line of input.
func (t *Terminal) Secret(title string, validate func(string) error) (string, error) {
	var value string
	input := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value)
	if validate != nil {
		input = input.Validate(validate)
	}
	if err := huh.NewForm(huh.NewGroup(input)).Run(); err != nil {
		return "", mapErr(err)
	}
	return value, nil
}

// Note displays informational text without waiting for input.
func (t *Terminal) Note(title, body string) {
	cyan := color.New(color.FgCyan)
	cyan.Fprintf(os.Stderr, "  %s\n", title)
	if body != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", body)
	}
}

// Progress starts a progress indicator printed as it advances.
func (t *Terminal) Progress(title string) Progress {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(os.Stderr, "  %s...\n", title)
	return &terminalProgress{}
}

// Outro prints the closing message of the run.
func (t *Terminal) Outro(message string) {
	green := color.New(color.FgGreen)
	green.Fprintf(os.Stderr, "\n  %s\n\n", message)
}

type terminalProgress struct{}

func (p *terminalProgress) Update(message string) {
	fmt.Fprintf(os.Stderr, "    %s\n", message)
}

func (p *terminalProgress) Stop(message string) {
	if message != "" {
		fmt.Fprintf(os.Stderr, "    %s\n", message)
	}
}
