package signer

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// DerivationPath is the internal representation of a hierarchical
// deterministic wallet path. An empty path refers to the master key.
type DerivationPath []uint32

const (
	// MaxHardenedValue is the max value for hardened indexes of BIP32
	// derivation paths
	MaxHardenedValue = math.MaxUint32 - hdkeychain.HardenedKeyStart
)

// Harden returns the hardened form of the given path element.
func Harden(i uint32) uint32 {
	return i | hdkeychain.HardenedKeyStart
}

// IsHardened returns whether the given path element is hardened.
func IsHardened(i uint32) bool {
	return i >= hdkeychain.HardenedKeyStart
}

// ParseDerivationPath converts a derivation path string to the
// internal binary representation
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	var path DerivationPath

	if strPath == "" {
		return nil, ErrNullDerivationPath
	}
	if strPath == "m" {
		return DerivationPath{}, nil
	}

	elems := strings.Split(strPath, "/")
	if containsEmptyString(elems) {
		return nil, ErrMalformedDerivationPath
	}
	if strings.TrimSpace(elems[0]) == "m" {
		elems = elems[1:]
	}

	// all remaining elems are relative, append one by one
	for _, elem := range elems {
		elem = strings.TrimSpace(elem)
		var value uint32

		if strings.HasSuffix(elem, "'") {
			value = hdkeychain.HardenedKeyStart
			elem = strings.TrimSpace(strings.TrimSuffix(elem, "'"))
		}

		// use big int for convertion
		bigval, ok := new(big.Int).SetString(elem, 0)
		if !ok {
			return nil, fmt.Errorf("invalid elem '%s' in path", elem)
		}

		max := math.MaxUint32 - value
		if bigval.Sign() < 0 || bigval.Cmp(big.NewInt(int64(max))) > 0 {
			if value == 0 {
				return nil, fmt.Errorf("elem %v must be in range [0, %d]", bigval, max)
			}
			return nil, fmt.Errorf("elem %v must be in hardened range [0, %d]", bigval, max)
		}
		value += uint32(bigval.Uint64())

		path = append(path, value)
	}

	return path, nil
}

// String converts a binary derivation path to its canonical representation
func (path DerivationPath) String() string {
	result := "m"
	for _, component := range path {
		var hardened bool
		if component >= hdkeychain.HardenedKeyStart {
			component -= hdkeychain.HardenedKeyStart
			hardened = true
		}
		result = fmt.Sprintf("%s/%d", result, component)
		if hardened {
			result += "'"
		}
	}
	return result
}

// Extend returns a new path with the given elements appended.
func (path DerivationPath) Extend(elems ...uint32) DerivationPath {
	extended := make(DerivationPath, 0, len(path)+len(elems))
	extended = append(extended, path...)
	extended = append(extended, elems...)
	return extended
}

func containsEmptyString(composedPath []string) bool {
	for _, s := range composedPath {
		if s == "" {
			return true
		}
	}
	return false
}
