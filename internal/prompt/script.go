// ABOUTME: Scripted Prompter for tests, answering prompts from a queue
// ABOUTME: Records a transcript so tests can assert on prompt counts

package prompt

import (
	"fmt"
	"sync"
)

type cancelAnswer struct{}

// Script is a Prompter that replays queued answers in order. Tests queue one
// answer per expected prompt; a Cancel entry makes the next prompt return
// ErrCancelled, and running out of answers is an error so tests notice
// unexpected extra prompts.
type Script struct {
	mu      sync.Mutex
	answers []any

	// Transcript records the title of every prompt issued, in order.
	Transcript []string
	// Notes records every Note call as "title: body".
	Notes []string
	// OutroMessage records the final Outro message, if any.
	OutroMessage string
}

// NewScript returns an empty script. Queue answers with Push* before use.
func NewScript() *Script {
	return &Script{}
}

// PushConfirm queues an answer for the next Confirm prompt.
func (s *Script) PushConfirm(v bool) *Script { return s.push(v) }

// PushSelect queues an answer for the next Select prompt.
func (s *Script) PushSelect(value string) *Script { return s.push(value) }

// PushMultiSelect queues an answer for the next MultiSelect prompt.
func (s *Script) PushMultiSelect(values ...string) *Script { return s.push(values) }

// PushText queues an answer for the next Text or Secret prompt.
func (s *Script) PushText(value string) *Script { return s.push(value) }

// PushCancel makes the next prompt of any kind return ErrCancelled.
func (s *Script) PushCancel() *Script { return s.push(cancelAnswer{}) }

func (s *Script) push(v any) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, v)
	return s
}

func (s *Script) next(title string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Transcript = append(s.Transcript, title)
	if len(s.answers) == 0 {
		return nil, fmt.Errorf("script exhausted at prompt %q", title)
	}
	v := s.answers[0]
	s.answers = s.answers[1:]
	if _, ok := v.(cancelAnswer); ok {
		return nil, ErrCancelled
	}
	return v, nil
}

// Remaining reports how many queued answers were never consumed.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Confirm pops the next queued bool.
func (s *Script) Confirm(title string, def bool) (bool, error) {
	v, err := s.next(title)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("prompt %q expected bool answer, script has %T", title, v)
	}
	return b, nil
}

// Select pops the next queued string and checks it is an offered option.
func (s *Script) Select(title string, opts []Option, def string) (string, error) {
	v, err := s.next(title)
	if err != nil {
		return "", err
	}
	value, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("prompt %q expected string answer, script has %T", title, v)
	}
	for _, o := range opts {
		if o.Value == value {
			return value, nil
		}
	}
	return "", fmt.Errorf("prompt %q has no option %q", title, value)
}

// MultiSelect pops the next queued string slice.
func (s *Script) MultiSelect(title string, opts []Option) ([]string, error) {
	v, err := s.next(title)
	if err != nil {
		return nil, err
	}
	values, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("prompt %q expected []string answer, script has %T", title, v)
	}
	return values, nil
}

// Text pops queued strings until one passes validation, mirroring the
// terminal's re-issue-until-valid behavior.
func (s *Script) Text(title, placeholder, def string, validate func(string) error) (string, error) {
	for {
		v, err := s.next(title)
		if err != nil {
			return "", err
		}
		value, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("prompt %q expected string answer, script has %T", title, v)
		}
		if value == "" {
			value = def
		}
		if validate != nil {
			if err := validate(value); err != nil {
				continue
			}
		}
		return value, nil
	}
}

// Secret behaves like Text without a default.
func (s *Script) Secret(title string, validate func(string) error) (string, error) {
	return s.Text(title, "", "", validate)
}

// Note records the note in the transcript.
func (s *Script) Note(title, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notes = append(s.Notes, title+": "+body)
}

// Progress returns a no-op handle.
func (s *Script) Progress(title string) Progress {
	s.mu.Lock()
	s.Transcript = append(s.Transcript, title)
	s.mu.Unlock()
	return scriptProgress{}
}

// Outro records the closing message.
func (s *Script) Outro(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.OutroMessage = message
}

type scriptProgress struct{}

func (scriptProgress) Update(string) {}
func (scriptProgress) Stop(string)   {}
