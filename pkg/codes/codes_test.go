package codes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	tok, err := NewToken()
	require.NoError(t, err)
	assert.Len(t, tok, TokenLength)
	for _, r := range tok {
		assert.True(t, strings.ContainsRune(TokenAlphabet, r), "unexpected symbol %q", r)
	}
}

func TestNewJoinCode(t *testing.T) {
	code, err := NewJoinCode()
	require.NoError(t, err)
	assert.Len(t, code, JoinCodeLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(JoinCodeAlphabet, r), "unexpected symbol %q", r)
	}
}

func TestJoinCodeAlphabetExcludesAmbiguousSymbols(t *testing.T) {
	for _, bad := range []string{"0", "O", "1", "I", "l"} {
		assert.NotContains(t, JoinCodeAlphabet, bad)
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	_, err := New("", 8)
	assert.Error(t, err)
	_, err = New(TokenAlphabet, 0)
	assert.Error(t, err)
}

func TestTokensDoNotRepeat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		tok, err := NewToken()
		require.NoError(t, err)
		require.False(t, seen[tok], "token repeated after %d draws", i)
		seen[tok] = true
	}
}
