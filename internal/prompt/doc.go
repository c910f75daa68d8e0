// Package prompt defines the prompting collaborator the wizard talks to.
//
// The production implementation (Terminal) renders charmbracelet/huh forms;
// Script replays canned answers for tests. Both honor the same contract:
// every prompt either returns a typed value or ErrCancelled, and input
// validation happens at the prompt boundary so callers only ever see valid
// values.
package prompt
