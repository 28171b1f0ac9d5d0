package signer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon about"

func testHexSeed() string {
	return strings.Repeat("00", 64) + "X"
}

func TestNewCredentialsFromMnemonic(t *testing.T) {
	credentials, err := NewCredentials(CredentialsOpts{
		Mnemonic: testMnemonic,
	})
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, credentials.Mnemonic)
	assert.NotEmpty(t, credentials.Seed)
	assert.True(t, credentials.HasSeed())
	assert.False(t, credentials.IsWatchOnly())
}

func TestNewCredentialsFromHexSeed(t *testing.T) {
	credentials, err := NewCredentials(CredentialsOpts{
		Mnemonic: testHexSeed(),
	})
	require.NoError(t, err)
	assert.Empty(t, credentials.Mnemonic)
	assert.Equal(t, strings.Repeat("00", 64), credentials.Seed)
	assert.True(t, credentials.HasSeed())
}

func TestNewCredentialsWatchOnly(t *testing.T) {
	credentials, err := NewCredentials(CredentialsOpts{
		Username: "user",
		Password: "pass",
	})
	require.NoError(t, err)
	assert.True(t, credentials.IsWatchOnly())
	assert.False(t, credentials.IsDescriptorWatchOnly())
	assert.False(t, credentials.HasSeed())

	credentials, err = NewCredentials(CredentialsOpts{
		CoreDescriptors: []string{"wpkh(xpub.../0/*)"},
	})
	require.NoError(t, err)
	assert.True(t, credentials.IsWatchOnly())
	assert.True(t, credentials.IsDescriptorWatchOnly())
}

func TestNewCredentialsEmpty(t *testing.T) {
	credentials, err := NewCredentials(CredentialsOpts{})
	require.NoError(t, err)
	assert.True(t, credentials.IsEmpty())
}

func TestFailingNewCredentials(t *testing.T) {
	tests := []struct {
		name string
		opts CredentialsOpts
		err  error
	}{
		{
			name: "invalid mnemonic",
			opts: CredentialsOpts{Mnemonic: "not a valid phrase"},
			err:  ErrInvalidMnemonic,
		},
		{
			name: "passphrase with password",
			opts: CredentialsOpts{
				Mnemonic:        testMnemonic,
				Password:        "pass",
				Bip39Passphrase: "phrase",
			},
			err: ErrPassphraseAndPassword,
		},
		{
			name: "passphrase with hex seed",
			opts: CredentialsOpts{
				Mnemonic:        testHexSeed(),
				Bip39Passphrase: "phrase",
			},
			err: ErrPassphraseAndSeed,
		},
		{
			name: "malformed hex seed",
			opts: CredentialsOpts{
				Mnemonic: strings.Repeat("zz", 64) + "X",
			},
			err: ErrInvalidSeed,
		},
		{
			name: "descriptors with slip132",
			opts: CredentialsOpts{
				CoreDescriptors:        []string{"wpkh(xpub.../0/*)"},
				Slip132ExtendedPubkeys: []string{"vpub..."},
			},
			err: ErrDescriptorsAndSlip132,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCredentials(tt.opts)
			assert.Equal(t, tt.err, err)
		})
	}
}

func TestCredentialsIdentityIgnoresBlindingKey(t *testing.T) {
	a, err := NewCredentials(CredentialsOpts{Mnemonic: testMnemonic})
	require.NoError(t, err)
	b, err := NewCredentials(CredentialsOpts{Mnemonic: testMnemonic})
	require.NoError(t, err)

	b.MasterBlindingKey = strings.Repeat("11", 32)
	assert.True(t, a.equalIdentity(b))
}
