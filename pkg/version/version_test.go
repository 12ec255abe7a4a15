package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	v, err := Parse("1.12.3")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 1, Minor: 12, Patch: 3}, v)
	assert.Equal(t, "1.12.3", v.String())

	for _, s := range []string{"", "1", "1.2", "1.2.3.4", "a.b.c", "1.2.x", "-1.0.0", "1..2"} {
		_, err := Parse(s)
		assert.Error(t, err, "version %q must not parse", s)
	}
}

func TestLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.0.0", "1.0.0", false},
		{"0.9.9", "1.0.0", true},
		{"1.0.0", "0.9.9", false},
		{"1.0.0", "1.1.0", true},
		{"1.1.0", "1.0.5", false},
		{"1.0.1", "1.0.2", true},
	}
	for _, tt := range tests {
		a, err := Parse(tt.a)
		require.NoError(t, err)
		b, err := Parse(tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.Less(b), "%s < %s", tt.a, tt.b)
	}
}
