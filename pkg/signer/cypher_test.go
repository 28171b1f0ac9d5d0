package signer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptMnemonic(t *testing.T) {
	encrypted, err := EncryptMnemonic(testMnemonic, "p4ssw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, testMnemonic, encrypted)

	decrypted, err := DecryptMnemonic(encrypted, "p4ssw0rd")
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, decrypted)
}

func TestDecryptMnemonicWrongPassword(t *testing.T) {
	encrypted, err := EncryptMnemonic(testMnemonic, "p4ssw0rd")
	require.NoError(t, err)

	_, err = DecryptMnemonic(encrypted, "nope")
	assert.Error(t, err)
}

func TestFailingCypher(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		password string
		err      error
	}{
		{"null text", "", "pass", ErrNullPlainText},
		{"null passphrase", testMnemonic, "", ErrNullPassphrase},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncryptMnemonic(tt.mnemonic, tt.password)
			assert.Equal(t, tt.err, err)
		})
	}

	_, err := DecryptMnemonic("", "pass")
	assert.Equal(t, ErrNullCypherText, err)
	_, err = DecryptMnemonic("not base64!!", "pass")
	assert.Equal(t, ErrInvalidCypherText, err)
}
