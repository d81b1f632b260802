package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "4000123412341234"},
		{name: "wrong prefix", input: "5000123412341234", wantErr: true},
		{name: "too short", input: "400012341234123", wantErr: true},
		{name: "too long", input: "40001234123412345", wantErr: true},
		{name: "non digit", input: "400012341234123x", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cn, err := NewCardNumber(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, cn.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, cn.Value())
		})
	}
}

func TestCardNumber_Masking(t *testing.T) {
	cn, err := NewCardNumber("4000123412349876")
	require.NoError(t, err)

	assert.Equal(t, "9876", cn.LastFour())
	assert.Equal(t, "**** **** **** 9876", cn.Masked())
	assert.Equal(t, cn.Masked(), cn.String())
	assert.NotContains(t, cn.String(), "40001234")
}
