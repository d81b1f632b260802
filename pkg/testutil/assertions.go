package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequireNoError fails the test immediately if err is not nil.
func RequireNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// AssertErrorIs checks that err matches target via errors.Is and, when
// expected is non-empty, that its message contains expected.
func AssertErrorIs(t *testing.T, err, target error, expected string) {
	t.Helper()
	if !assert.ErrorIs(t, err, target) {
		return
	}
	if expected != "" {
		assert.Contains(t, err.Error(), expected)
	}
}
