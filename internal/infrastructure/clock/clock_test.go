package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystem_UTC(t *testing.T) {
	assert.Equal(t, time.UTC, System{}.Now().Location())
}

func TestFixed(t *testing.T) {
	start := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	c := NewFixed(start)
	assert.Equal(t, start, c.Now())

	c.Advance(48 * time.Hour)
	assert.Equal(t, start.AddDate(0, 0, 2), c.Now())

	c.Set(start.AddDate(10, 0, 1))
	assert.Equal(t, 2036, c.Now().Year())
}
