package signer

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/go-elements/slip77"
)

// NetworkParams is the subset of network settings the signer cares about.
type NetworkParams struct {
	Mainnet bool
	Liquid  bool
}

// Signer holds the wallet login material and serves bip32 xpubs, script
// blinding keys and ECDSA signatures for it. All exported methods are
// safe for concurrent use.
//
// A signer backed by a hardware device or a remote service holds no
// master key; it can only answer xpub queries from its cache, filled by
// the owner with CacheBip32Xpub.
type Signer struct {
	network     NetworkParams
	credentials *Credentials
	device      Device

	masterKey         *hdkeychain.ExtendedKey
	masterBlindingKey []byte

	mtx       sync.Mutex
	xpubCache map[string]string
}

// New builds a signer from normalized credentials and an optional
// explicit hardware device descriptor.
func New(
	credentials *Credentials, hwDevice *Device, network NetworkParams,
) (*Signer, error) {
	if credentials == nil {
		credentials = &Credentials{}
	}
	device, err := resolveDevice(hwDevice, credentials)
	if err != nil {
		return nil, err
	}
	if network.Liquid && device.LiquidSupport == LiquidSupportNone {
		return nil, ErrLiquidNotSupported
	}

	s := &Signer{
		network:     network,
		credentials: credentials,
		device:      device,
		xpubCache:   make(map[string]string),
	}

	if credentials.HasSeed() {
		seed, err := hex.DecodeString(credentials.Seed)
		if err != nil {
			return nil, ErrInvalidSeed
		}
		masterKey, err := hdkeychain.NewMaster(seed, s.chainParams())
		if err != nil {
			return nil, err
		}
		s.masterKey = masterKey

		if network.Liquid {
			slip77Node, err := slip77.FromSeed(seed)
			if err != nil {
				return nil, err
			}
			s.masterBlindingKey = slip77Node.MasterKey
		}
	}
	return s, nil
}

func (s *Signer) chainParams() *chaincfg.Params {
	if s.network.Mainnet {
		return &chaincfg.MainNetParams
	}
	return &chaincfg.TestNet3Params
}

// Device returns the capability record of the device backing this signer.
func (s *Signer) Device() Device {
	return s.device
}

// IsHardware returns whether the signing keys live on a hardware device.
func (s *Signer) IsHardware() bool {
	return s.device.Type == DeviceTypeHardware
}

// IsWatchOnly returns whether the signer cannot produce signatures.
func (s *Signer) IsWatchOnly() bool {
	return s.device.Type == DeviceTypeWatchOnly
}

// IsRemote returns whether signatures are produced by the Green backend.
func (s *Signer) IsRemote() bool {
	return s.device.Type == DeviceTypeGreenBackend
}

// SupportsLowR returns whether the signer grinds low-R signatures.
func (s *Signer) SupportsLowR() bool {
	return s.device.SupportsLowR
}

// SupportsArbitraryScripts returns whether the signer can sign scripts
// outside the fixed wallet templates.
func (s *Signer) SupportsArbitraryScripts() bool {
	return s.device.SupportsArbitraryScripts
}

// SupportsHostUnblinding returns whether the signer exposes its master
// blinding key to the host.
func (s *Signer) SupportsHostUnblinding() bool {
	return s.device.SupportsHostUnblinding
}

// SupportsExternalBlinding returns whether transactions partially
// blinded by other participants can be processed.
func (s *Signer) SupportsExternalBlinding() bool {
	return s.device.SupportsExternalBlinding
}

// LiquidSupport returns the level of Liquid support of the device.
func (s *Signer) LiquidSupport() LiquidSupportLevel {
	return s.device.LiquidSupport
}

// AEProtocolSupport returns the level of anti-exfil support of the device.
func (s *Signer) AEProtocolSupport() AEProtocolSupportLevel {
	return s.device.AEProtocolSupport
}

// GetCredentials returns a copy of the normalized credentials, with the
// master blinding key attached if the signer holds one.
func (s *Signer) GetCredentials() Credentials {
	credentials := *s.credentials
	if key, err := s.masterBlindingKeyCopy(); err == nil {
		credentials.MasterBlindingKey = hex.EncodeToString(key)
	}
	return credentials
}

// GetMnemonic returns the wallet mnemonic and its bip39 passphrase. A
// seed-only wallet gets its hex seed back, marker re-appended. If
// password is not empty the mnemonic is returned encrypted with it.
func (s *Signer) GetMnemonic(password string) (string, string, error) {
	mnemonic := s.credentials.Mnemonic
	if mnemonic == "" && s.credentials.Seed != "" {
		return s.credentials.Seed + string(hexSeedSentinel), "", nil
	}
	if mnemonic != "" && password != "" {
		encrypted, err := EncryptMnemonic(mnemonic, password)
		if err != nil {
			return "", "", err
		}
		mnemonic = encrypted
	}
	return mnemonic, s.credentials.Bip39Passphrase, nil
}

// IsCompatibleWith returns whether the other signer represents the same
// wallet identity, ie. same credentials and same device.
func (s *Signer) IsCompatibleWith(other *Signer) bool {
	if other == nil {
		return false
	}
	return s.credentials.equalIdentity(other.credentials) &&
		s.device == other.device
}

// MasterFingerprint returns the bip32 fingerprint of the master key,
// packed so that its little-endian encoding yields the wire bytes.
func (s *Signer) MasterFingerprint() (uint32, error) {
	xpub, err := s.GetBip32Xpub(DerivationPath{})
	if err != nil {
		return 0, err
	}
	key, err := hdkeychain.NewKeyFromString(xpub)
	if err != nil {
		return 0, err
	}
	pubkey, err := key.ECPubKey()
	if err != nil {
		return 0, err
	}
	fingerprint := btcutil.Hash160(pubkey.SerializeCompressed())[:4]
	return binary.LittleEndian.Uint32(fingerprint), nil
}

// GetBip32Xpub returns the base58 xpub for the given path, deriving and
// caching it if it's not already cached. Paths derived from the master
// key never expose private key material to the caller; intermediate
// private keys are wiped as soon as their public projection is taken.
func (s *Signer) GetBip32Xpub(path DerivationPath) (string, error) {
	cachedXpub, childPath := s.findCachedAncestor(path)

	if cachedXpub != "" {
		if len(childPath) == 0 {
			return cachedXpub, nil
		}
		// derive the remainder publicly from the cached ancestor,
		// caching every intermediate path along the way
		key, err := hdkeychain.NewKeyFromString(cachedXpub)
		if err != nil {
			return "", err
		}
		derivedPath := path[:len(path)-len(childPath)]
		for _, childNum := range childPath {
			key, err = key.Derive(childNum)
			if err != nil {
				return "", err
			}
			derivedPath = derivedPath.Extend(childNum)
			s.CacheBip32Xpub(derivedPath, key.String())
		}
		return key.String(), nil
	}

	if s.masterKey == nil {
		return "", ErrXpubNotAvailable
	}
	key, err := s.derivePrivateKey(path)
	if err != nil {
		return "", err
	}
	defer key.Zero()
	neutered, err := key.Neuter()
	if err != nil {
		return "", err
	}
	xpub := neutered.String()
	s.CacheBip32Xpub(path, xpub)
	return xpub, nil
}

// HasBip32Xpub returns whether GetBip32Xpub can answer for the given
// path: always when the master key is held, otherwise when the cache
// holds an ancestor up to the first hardened boundary.
func (s *Signer) HasBip32Xpub(path DerivationPath) bool {
	if s.masterKey != nil {
		return true
	}
	cachedXpub, _ := s.findCachedAncestor(path)
	return cachedXpub != ""
}

// CacheBip32Xpub records the xpub for a path, typically fetched from a
// hardware device, and returns whether the entry was newly inserted.
// Re-inserting a path with a different xpub means the cache and the
// device disagree about the wallet and is fatal.
func (s *Signer) CacheBip32Xpub(path DerivationPath, xpub string) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	key := path.String()
	if cached, ok := s.xpubCache[key]; ok {
		runtimeAssert(
			cached == xpub, fmt.Sprintf("xpub mismatch for path %s", key),
		)
		return false
	}
	s.xpubCache[key] = xpub
	return true
}

// CachedXpubs returns a copy of the xpub cache keyed by canonical path.
func (s *Signer) CachedXpubs() map[string]string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	cache := make(map[string]string, len(s.xpubCache))
	for k, v := range s.xpubCache {
		cache[k] = v
	}
	return cache
}

// findCachedAncestor looks up the cache for the exact path or for its
// nearest ancestor from which the rest of the path can be derived
// publicly. It returns the cached xpub, if any, along with the path
// elements left to derive from it. The search stops at hardened
// elements since those cannot be derived from an xpub.
func (s *Signer) findCachedAncestor(
	path DerivationPath,
) (string, DerivationPath) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	base := path
	var childPath DerivationPath
	for {
		if xpub, ok := s.xpubCache[base.String()]; ok {
			return xpub, childPath
		}
		if len(base) == 0 {
			return "", nil
		}
		last := base[len(base)-1]
		if IsHardened(last) {
			return "", nil
		}
		childPath = append(DerivationPath{last}, childPath...)
		base = base[:len(base)-1]
	}
}

func (s *Signer) derivePrivateKey(
	path DerivationPath,
) (*hdkeychain.ExtendedKey, error) {
	runtimeAssert(s.masterKey != nil, "signer has no master key")
	key := s.masterKey
	for _, childNum := range path {
		derived, err := key.Derive(childNum)
		if err != nil {
			return nil, err
		}
		if key != s.masterKey {
			key.Zero()
		}
		key = derived
	}
	if key == s.masterKey {
		// never hand out the master key itself, Zero from the caller
		// must not destroy it
		var err error
		key, err = hdkeychain.NewKeyFromString(s.masterKey.String())
		if err != nil {
			return nil, err
		}
	}
	return key, nil
}

func (s *Signer) ecPrivateKey(path DerivationPath) (*btcec.PrivateKey, error) {
	key, err := s.derivePrivateKey(path)
	if err != nil {
		return nil, err
	}
	defer key.Zero()
	return key.ECPrivKey()
}

// SignHash signs the given 32-byte hash with the key at the given path
// and returns a DER encoded signature.
func (s *Signer) SignHash(path DerivationPath, hash []byte) ([]byte, error) {
	privateKey, err := s.ecPrivateKey(path)
	if err != nil {
		return nil, err
	}
	sig := ecdsa.Sign(privateKey, hash)
	return sig.Serialize(), nil
}

// SignRecoverableHash signs the given 32-byte hash with the key at the
// given path and returns a compact signature from which the public key
// can be recovered.
func (s *Signer) SignRecoverableHash(
	path DerivationPath, hash []byte,
) ([]byte, error) {
	privateKey, err := s.ecPrivateKey(path)
	if err != nil {
		return nil, err
	}
	return ecdsa.SignCompact(privateKey, hash, true)
}

// HasMasterBlindingKey returns whether the signer holds the slip77
// master blinding key.
func (s *Signer) HasMasterBlindingKey() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.masterBlindingKey) > 0
}

// GetMasterBlindingKey returns the slip77 master blinding key in hex.
func (s *Signer) GetMasterBlindingKey() (string, error) {
	key, err := s.masterBlindingKeyCopy()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// masterBlindingKeyCopy snapshots the master blinding key so slip77
// derivation never runs while holding the signer's mutex.
func (s *Signer) masterBlindingKeyCopy() ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if len(s.masterBlindingKey) == 0 {
		return nil, ErrNoMasterBlindingKey
	}
	key := make([]byte, len(s.masterBlindingKey))
	copy(key, s.masterBlindingKey)
	return key, nil
}

// SetMasterBlindingKey loads the slip77 master blinding key, typically
// exported by a hardware device. Both the 512 bit slip77 node and its
// low 256 bits are accepted.
func (s *Signer) SetMasterBlindingKey(hexKey string) error {
	if hexKey == "" {
		return ErrInvalidBlindingKey
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return ErrInvalidBlindingKey
	}
	switch len(key) {
	case 64:
		key = key[32:]
	case 32:
	default:
		return ErrInvalidBlindingKey
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if len(s.masterBlindingKey) > 0 {
		runtimeAssert(
			hex.EncodeToString(s.masterBlindingKey) == hex.EncodeToString(key),
			"master blinding key mismatch",
		)
		return nil
	}
	s.masterBlindingKey = key
	return nil
}

// BlindingKeyFromScript derives the private blinding key of a wallet
// scriptpubkey.
func (s *Signer) BlindingKeyFromScript(script []byte) ([]byte, error) {
	masterKey, err := s.masterBlindingKeyCopy()
	if err != nil {
		return nil, err
	}
	slip77Node, err := slip77.FromMasterKey(masterKey)
	if err != nil {
		return nil, err
	}
	privateKey, _, err := slip77Node.DeriveKey(script)
	if err != nil {
		return nil, err
	}
	return privateKey.Serialize(), nil
}

// BlindingPubkeyFromScript derives the public blinding key of a wallet
// scriptpubkey.
func (s *Signer) BlindingPubkeyFromScript(script []byte) ([]byte, error) {
	masterKey, err := s.masterBlindingKeyCopy()
	if err != nil {
		return nil, err
	}
	slip77Node, err := slip77.FromMasterKey(masterKey)
	if err != nil {
		return nil, err
	}
	_, publicKey, err := slip77Node.DeriveKey(script)
	if err != nil {
		return nil, err
	}
	return publicKey.SerializeCompressed(), nil
}

// Destroy wipes the key material held by the signer. The signer must
// not be used afterwards.
func (s *Signer) Destroy() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.masterKey != nil {
		s.masterKey.Zero()
		s.masterKey = nil
	}
	for i := range s.masterBlindingKey {
		s.masterBlindingKey[i] = 0
	}
	s.masterBlindingKey = nil
	s.xpubCache = make(map[string]string)
}

// runtimeAssert guards internal invariants whose violation means
// corrupted wallet state. User input errors are returned, never
// asserted.
func runtimeAssert(cond bool, msg string) {
	if !cond {
		log.Error(msg)
		panic(msg)
	}
}
