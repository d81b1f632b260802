package service

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomCardNumberGenerator_Format(t *testing.T) {
	gen := NewRandomCardNumberGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		n, err := gen.Generate()
		require.NoError(t, err)

		v := n.Value()
		assert.Len(t, v, 16)
		assert.Equal(t, byte('4'), v[0])
		seen[v] = true
	}
	assert.Greater(t, len(seen), 195)
}

func TestRandomCardNumberGenerator_ZeroPads(t *testing.T) {
	gen := NewCardNumberGeneratorFromReader(bytes.NewReader(make([]byte, 64)))

	n, err := gen.Generate()
	require.NoError(t, err)
	assert.Equal(t, "4000000000000000", n.Value())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestRandomCardNumberGenerator_SourceError(t *testing.T) {
	gen := NewCardNumberGeneratorFromReader(failingReader{})

	_, err := gen.Generate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}
