package signer

import "errors"

var (
	// ErrNullCredentials ...
	ErrNullCredentials = errors.New("hardware device or credentials required")
	// ErrInvalidCredentials ...
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidSeed ...
	ErrInvalidSeed = errors.New("seed must be a 512 bit value in hex format")
	// ErrPassphraseAndPassword ...
	ErrPassphraseAndPassword = errors.New("cannot use bip39_passphrase and password")
	// ErrPassphraseAndSeed ...
	ErrPassphraseAndSeed = errors.New("cannot use bip39_passphrase and hex seed")
	// ErrDescriptorsAndSlip132 ...
	ErrDescriptorsAndSlip132 = errors.New(
		"cannot use slip132_extended_pubkeys and core_descriptors",
	)
	// ErrDeviceWithCredentials ...
	ErrDeviceWithCredentials = errors.New(
		"HWW/remote signer and login credentials cannot be used together",
	)
	// ErrDeviceName ...
	ErrDeviceName = errors.New("hardware device requires a non-empty name")
	// ErrUnknownDeviceType ...
	ErrUnknownDeviceType = errors.New("unknown device type")
	// ErrLiquidNotSupported ...
	ErrLiquidNotSupported = errors.New(
		"the hardware wallet you are using does not support Liquid",
	)

	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"can optionally start with 'm/' for absolute paths",
	)

	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher must be in base64 format")

	// ErrXpubNotAvailable is returned when an xpub is requested from a
	// signer that holds no master key and has no usable cached ancestor.
	ErrXpubNotAvailable = errors.New("bip32 xpub neither cached nor derivable")
	// ErrNoMasterBlindingKey ...
	ErrNoMasterBlindingKey = errors.New("signer holds no master blinding key")
	// ErrInvalidBlindingKey ...
	ErrInvalidBlindingKey = errors.New(
		"master blinding key must be a 256 or 512 bit value in hex format",
	)
)
