package codes

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TokenAlphabet is the full alphanumeric set used for opaque credential
// tokens that are only ever pasted from a link.
const TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// JoinCodeAlphabet drops 0/O/1/I/l so a code read aloud or printed on a
// flyer survives transcription.
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	TokenLength    = 48
	JoinCodeLength = 8
)

// New returns a random string of n symbols drawn from alphabet.
func New(alphabet string, n int) (string, error) {
	if len(alphabet) < 2 || n <= 0 {
		return "", fmt.Errorf("codes: invalid alphabet/length (%d, %d)", len(alphabet), n)
	}
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("codes: read random: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// NewToken mints a credential token (invite / email verification).
func NewToken() (string, error) {
	return New(TokenAlphabet, TokenLength)
}

// NewJoinCode mints a tenant join code.
func NewJoinCode() (string, error) {
	return New(JoinCodeAlphabet, JoinCodeLength)
}
