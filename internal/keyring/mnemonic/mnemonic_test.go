package mnemonic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesExpectedWordCount(t *testing.T) {
	for _, words := range WordCounts {
		phrase, err := Generate(words)
		require.NoError(t, err)
		assert.Equal(t, words, len(strings.Fields(phrase)))
	}
}

func TestEncodeDecodeRoundTrips(t *testing.T) {
	for _, bits := range []int{128, 160, 192, 224, 256} {
		entropy := make([]byte, bits/8)
		for i := range entropy {
			entropy[i] = byte(i*31 + 7)
		}
		phrase, err := Encode(entropy)
		require.NoError(t, err)

		decoded, err := Decode(phrase)
		require.NoError(t, err)
		assert.Equal(t, entropy, decoded)
	}
}

func TestValidateRejectsBadChecksum(t *testing.T) {
	phrase, err := Generate(12)
	require.NoError(t, err)

	words := strings.Fields(phrase)
	// Swap the first word for a different valid wordlist entry, which
	// will almost certainly break the checksum.
	if words[0] == englishWordlist[0] {
		words[0] = englishWordlist[1]
	} else {
		words[0] = englishWordlist[0]
	}
	tampered := strings.Join(words, " ")

	assert.False(t, Validate(tampered))
}

func TestValidateRejectsUnknownWord(t *testing.T) {
	phrase := strings.Repeat("notarealword ", 11) + "notarealword"
	assert.False(t, Validate(phrase))
}

func TestDecodeRejectsWrongWordCount(t *testing.T) {
	_, err := Decode("only two words")
	assert.Error(t, err)
}

func TestGenerateRejectsUnsupportedWordCount(t *testing.T) {
	_, err := Generate(13)
	assert.Error(t, err)
}

func TestDifferentEntropyProducesDifferentPhrases(t *testing.T) {
	p1, err := Generate(12)
	require.NoError(t, err)
	p2, err := Generate(12)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}
