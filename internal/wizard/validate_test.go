// ABOUTME: Tests for prompt-boundary validators and token generation
// ABOUTME: Table style matching the validators' small surface

package wizard

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePort(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"18789", true},
		{"1", true},
		{"65535", true},
		{" 8080 ", true},
		{"0", false},
		{"65536", false},
		{"-1", false},
		{"", false},
		{"http", false},
	}

	for _, tt := range tests {
		err := ValidatePort(tt.input)
		if tt.ok {
			assert.NoError(t, err, "input %q", tt.input)
		} else {
			assert.Error(t, err, "input %q", tt.input)
		}
	}
}

func TestParsePort(t *testing.T) {
	assert.Equal(t, 18789, ParsePort("18789"))
	assert.Equal(t, 8080, ParsePort(" 8080 "))
}

func TestValidateIPv4(t *testing.T) {
	assert.NoError(t, ValidateIPv4("192.168.1.10"))
	assert.NoError(t, ValidateIPv4("127.0.0.1"))
	assert.Error(t, ValidateIPv4("gateway.local"))
	assert.Error(t, ValidateIPv4("fe80::1"), "IPv6 is not a valid custom bind host")
	assert.Error(t, ValidateIPv4(""))
}

func TestGenerateToken(t *testing.T) {
	tok := GenerateToken()
	require.Len(t, tok, 64)

	_, err := hex.DecodeString(tok)
	require.NoError(t, err)

	assert.NotEqual(t, tok, GenerateToken(), "tokens must be unique")
}
