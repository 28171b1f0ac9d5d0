package signer

import (
	"encoding/hex"
	"strings"

	"github.com/vulpemventures/go-bip39"
)

const (
	// hexSeedLen is the length of an encoded raw seed: a 512 bit bip32
	// seed in hex with the 'X' sentinel appended.
	hexSeedLen      = 129
	hexSeedSentinel = 'X'
)

// CredentialsOpts is the raw login material given to NewCredentials.
type CredentialsOpts struct {
	Mnemonic               string   `json:"mnemonic,omitempty"`
	Password               string   `json:"password,omitempty"`
	Bip39Passphrase        string   `json:"bip39_passphrase,omitempty"`
	Username               string   `json:"username,omitempty"`
	CoreDescriptors        []string `json:"core_descriptors,omitempty"`
	Slip132ExtendedPubkeys []string `json:"slip132_extended_pubkeys,omitempty"`
}

// Credentials is the canonical in-memory representation of login
// material. Exactly one variant is populated:
//   - mnemonic (+optional bip39 passphrase) and its derived seed
//   - raw seed only
//   - watch-only username/password
//   - core descriptors
//   - slip132 extended pubkeys
//
// An all-empty value denotes a hardware wallet or remote service login.
type Credentials struct {
	Mnemonic               string   `json:"mnemonic,omitempty"`
	Bip39Passphrase        string   `json:"bip39_passphrase,omitempty"`
	Seed                   string   `json:"seed,omitempty"`
	Username               string   `json:"username,omitempty"`
	Password               string   `json:"password,omitempty"`
	CoreDescriptors        []string `json:"core_descriptors,omitempty"`
	Slip132ExtendedPubkeys []string `json:"slip132_extended_pubkeys,omitempty"`
	// MasterBlindingKey is only ever populated on export; it is derived
	// state, not login identity.
	MasterBlindingKey string `json:"master_blinding_key,omitempty"`
}

// NewCredentials normalizes raw login material into its canonical form.
func NewCredentials(opts CredentialsOpts) (*Credentials, error) {
	if opts.isEmpty() {
		// Hardware wallet or remote service
		return &Credentials{}, nil
	}

	if opts.Username != "" {
		// Green old-style watch-only login, or rich watch-only login
		return &Credentials{
			Username: opts.Username,
			Password: opts.Password,
		}, nil
	}

	if opts.Mnemonic != "" {
		// Mnemonic, or a hex seed
		mnemonic := opts.Mnemonic
		if strings.Contains(mnemonic, " ") {
			// Mnemonic, possibly encrypted
			if opts.Password != "" {
				if opts.Bip39Passphrase != "" {
					return nil, ErrPassphraseAndPassword
				}
				decrypted, err := DecryptMnemonic(mnemonic, opts.Password)
				if err != nil {
					return nil, err
				}
				mnemonic = decrypted
			}
			if !bip39.IsMnemonicValid(mnemonic) {
				return nil, ErrInvalidMnemonic
			}
			seed := bip39.NewSeed(mnemonic, opts.Bip39Passphrase)
			return &Credentials{
				Mnemonic:        mnemonic,
				Bip39Passphrase: opts.Bip39Passphrase,
				Seed:            hex.EncodeToString(seed),
			}, nil
		}
		if len(mnemonic) == hexSeedLen && mnemonic[len(mnemonic)-1] == hexSeedSentinel {
			if opts.Bip39Passphrase != "" {
				return nil, ErrPassphraseAndSeed
			}
			seedHex := mnemonic[:len(mnemonic)-1]
			if _, err := hex.DecodeString(seedHex); err != nil {
				return nil, ErrInvalidSeed
			}
			return &Credentials{Seed: seedHex}, nil
		}
	}

	if len(opts.CoreDescriptors) > 0 {
		// Descriptor watch-only login
		if len(opts.Slip132ExtendedPubkeys) > 0 {
			return nil, ErrDescriptorsAndSlip132
		}
		return &Credentials{CoreDescriptors: opts.CoreDescriptors}, nil
	}

	if len(opts.Slip132ExtendedPubkeys) > 0 {
		return &Credentials{Slip132ExtendedPubkeys: opts.Slip132ExtendedPubkeys}, nil
	}

	return nil, ErrInvalidCredentials
}

// IsEmpty returns whether no credential variant is populated, ie. the
// login is backed by a hardware wallet or a remote service.
func (c *Credentials) IsEmpty() bool {
	return c.Mnemonic == "" && c.Seed == "" && c.Username == "" &&
		len(c.CoreDescriptors) == 0 && len(c.Slip132ExtendedPubkeys) == 0
}

// IsWatchOnly returns whether any of the watch-only variants is populated.
func (c *Credentials) IsWatchOnly() bool {
	return c.Username != "" || c.IsDescriptorWatchOnly()
}

// IsDescriptorWatchOnly returns whether the descriptor or slip132
// watch-only variant is populated.
func (c *Credentials) IsDescriptorWatchOnly() bool {
	return len(c.CoreDescriptors) > 0 || len(c.Slip132ExtendedPubkeys) > 0
}

// HasSeed returns whether the credentials carry a bip32 seed.
func (c *Credentials) HasSeed() bool {
	return c.Seed != ""
}

// equalIdentity compares two credentials ignoring the derived master
// blinding key, which is state rather than identity.
func (c *Credentials) equalIdentity(other *Credentials) bool {
	return c.Mnemonic == other.Mnemonic &&
		c.Bip39Passphrase == other.Bip39Passphrase &&
		c.Seed == other.Seed &&
		c.Username == other.Username &&
		c.Password == other.Password &&
		stringSlicesEqual(c.CoreDescriptors, other.CoreDescriptors) &&
		stringSlicesEqual(c.Slip132ExtendedPubkeys, other.Slip132ExtendedPubkeys)
}

func (o CredentialsOpts) isEmpty() bool {
	return o.Mnemonic == "" && o.Password == "" && o.Bip39Passphrase == "" &&
		o.Username == "" && len(o.CoreDescriptors) == 0 &&
		len(o.Slip132ExtendedPubkeys) == 0
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
