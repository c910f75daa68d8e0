// ABOUTME: Tests for the scripted Prompter used across the test suite
// ABOUTME: Covers answer ordering, validation re-issue, and cancellation

package prompt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript_AnswersInOrder(t *testing.T) {
	s := NewScript().
		PushConfirm(true).
		PushSelect("b").
		PushText("hello")

	ok, err := s.Confirm("continue?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	choice, err := s.Select("pick", []Option{{Value: "a"}, {Value: "b"}}, "a")
	require.NoError(t, err)
	assert.Equal(t, "b", choice)

	text, err := s.Text("say something", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	assert.Equal(t, 0, s.Remaining())
	assert.Len(t, s.Transcript, 3)
}

func TestScript_TextReissuesUntilValid(t *testing.T) {
	s := NewScript().PushText("bad").PushText("good")

	validate := func(v string) error {
		if v != "good" {
			return fmt.Errorf("nope")
		}
		return nil
	}

	text, err := s.Text("value", "", "", validate)
	require.NoError(t, err)
	assert.Equal(t, "good", text)
}

func TestScript_Cancel(t *testing.T) {
	s := NewScript().PushCancel()

	_, err := s.Confirm("continue?", false)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestScript_ExhaustedIsError(t *testing.T) {
	s := NewScript()

	_, err := s.Confirm("continue?", false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCancelled)
}

func TestScript_SelectRejectsUnknownOption(t *testing.T) {
	s := NewScript().PushSelect("missing")

	_, err := s.Select("pick", []Option{{Value: "a"}}, "a")
	assert.Error(t, err)
}
