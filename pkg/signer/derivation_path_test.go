package signer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDerivationPath(t *testing.T) {
	tests := []struct {
		in   string
		want DerivationPath
	}{
		{"m", DerivationPath{}},
		{"m/0", DerivationPath{0}},
		{"0", DerivationPath{0}},
		{"m/44'/1'/0'", DerivationPath{Harden(44), Harden(1), Harden(0)}},
		{"m/1/2/3", DerivationPath{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			path, err := ParseDerivationPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, path)
		})
	}
}

func TestDerivationPathString(t *testing.T) {
	tests := []struct {
		path DerivationPath
		want string
	}{
		{DerivationPath{}, "m"},
		{DerivationPath{0}, "m/0"},
		{DerivationPath{Harden(44), Harden(1), 0, 7}, "m/44'/1'/0/7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.path.String())
	}
}

func TestParseDerivationPathRoundTrip(t *testing.T) {
	for _, s := range []string{"m", "m/0", "m/44'/1'/0'/0/3"} {
		path, err := ParseDerivationPath(s)
		require.NoError(t, err)
		assert.Equal(t, s, path.String())
	}
}

func TestFailingParseDerivationPath(t *testing.T) {
	tests := []struct {
		in  string
		err error
	}{
		{"", ErrNullDerivationPath},
		{"m/", ErrMalformedDerivationPath},
		{"/0", ErrMalformedDerivationPath},
		{"m/0//1", ErrMalformedDerivationPath},
	}
	for _, tt := range tests {
		_, err := ParseDerivationPath(tt.in)
		assert.Equal(t, tt.err, err)
	}

	_, err := ParseDerivationPath("m/x")
	assert.Error(t, err)
}

func TestHarden(t *testing.T) {
	assert.True(t, IsHardened(Harden(0)))
	assert.False(t, IsHardened(0))
	assert.Equal(t, uint32(0x80000000), Harden(0))
}

func TestExtend(t *testing.T) {
	base := DerivationPath{Harden(44)}
	extended := base.Extend(0, 1)
	assert.Equal(t, DerivationPath{Harden(44), 0, 1}, extended)
	assert.Equal(t, DerivationPath{Harden(44)}, base)
}
