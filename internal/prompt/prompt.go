// ABOUTME: Prompting collaborator interface used by the setup wizard
// ABOUTME: Defines typed prompt operations and the cancellation sentinel

package prompt

import (
	"errors"
)

// ErrCancelled is returned by any prompt when the operator aborts. The
// wizard propagates it immediately and exits without touching the
// previously-persisted document.
var ErrCancelled = errors.New("setup cancelled")

// Option is one selectable choice in a Select or MultiSelect prompt.
type Option struct {
	Value string
	Label string
}

// Progress is a handle for a long-running step. Update may be called any
// number of times; Stop must be called exactly once.
type Progress interface {
	Update(message string)
	Stop(message string)
}

// Prompter is the interface the wizard and channel engine prompt through.
// Every method either returns a typed value or ErrCancelled; no prompt
// panics or blocks indefinitely on its own.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(title string, def bool) (bool, error)

	// Select asks the operator to pick exactly one option. def, when
	// non-empty, preselects the matching option value.
	Select(title string, opts []Option, def string) (string, error)

	// MultiSelect asks the operator to pick any number of options.
	MultiSelect(title string, opts []Option) ([]string, error)

	// Text asks for a line of input. validate, when non-nil, is applied at
	// the input boundary: the prompt re-issues until it passes, so invalid
	// values never reach the caller.
	Text(title, placeholder, def string, validate func(string) error) (string, error)

	// Secret is Text with masked echo, for tokens and passwords.
	Secret(title string, validate func(string) error) (string, error)

	// Note displays informational text without waiting for input.
	Note(title, body string)

	// Progress starts a progress indicator for a long-running step.
	Progress(title string) Progress

	// Outro prints the closing message of the run.
	Outro(message string)
}
