package signer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/scrypt"
)

// EncryptMnemonic encrypts (with AES-GCM) a mnemonic with a key stretched
// from the provided password.
func EncryptMnemonic(mnemonic, password string) (string, error) {
	if len(mnemonic) <= 0 {
		return "", ErrNullPlainText
	}
	if len(password) <= 0 {
		return "", ErrNullPassphrase
	}

	key, salt, err := deriveCypherKey([]byte(password), nil)
	if err != nil {
		return "", err
	}

	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(blockCipher)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(mnemonic), nil)
	ciphertext = append(ciphertext, salt...)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptMnemonic decrypts a mnemonic encrypted with EncryptMnemonic.
func DecryptMnemonic(cypherText, password string) (string, error) {
	if len(cypherText) <= 0 {
		return "", ErrNullCypherText
	}
	if len(password) <= 0 {
		return "", ErrNullPassphrase
	}
	data, err := base64.StdEncoding.DecodeString(cypherText)
	if err != nil {
		return "", ErrInvalidCypherText
	}
	if len(data) <= 32 {
		return "", ErrInvalidCypherText
	}

	salt, data := data[len(data)-32:], data[:len(data)-32]

	key, _, err := deriveCypherKey([]byte(password), salt)
	if err != nil {
		return "", err
	}

	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(blockCipher)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", ErrInvalidCypherText
	}
	nonce, text := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, text, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func deriveCypherKey(password, salt []byte) ([]byte, []byte, error) {
	if salt == nil {
		salt = make([]byte, 32)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, err
		}
	}
	// check the doc for recommended key-stretching values:
	// https://godoc.org/golang.org/x/crypto/scrypt
	key, err := scrypt.Key(password, salt, 32768, 8, 1, 32)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}
