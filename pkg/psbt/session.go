package psbt

import (
	"github.com/AreaLayer/gdk/pkg/signer"
)

// Address types of wallet scripts, as reported by ScriptOwnership.
const (
	AddressTypeP2pkh      = "p2pkh"
	AddressTypeP2wpkh     = "p2wpkh"
	AddressTypeP2shP2wpkh = "p2sh-p2wpkh"
	AddressTypeP2wsh      = "p2wsh"
	AddressTypeCsv        = "csv"
)

// Network is the classification of the session's network the engine
// cares about.
type Network struct {
	Liquid      bool
	Electrum    bool
	Mainnet     bool
	PolicyAsset string
}

// ScriptOwnership is the wallet metadata a session resolves a
// scriptpubkey to.
type ScriptOwnership struct {
	Subaccount  uint32
	Pointer     uint32
	Branch      uint32
	IsInternal  bool
	AddressType string
}

// UtxoKey is one public key controlling a wallet utxo, together with
// its full derivation path from the master key. For multisig wallets
// the Green service key comes first, then the user key, then the
// optional recovery key.
type UtxoKey struct {
	PubKey   []byte
	FullPath signer.DerivationPath
}

// Session is the narrow surface the engine consumes from the
// surrounding wallet session. Implementations may block on I/O; the
// engine never calls them while holding signer locks.
type Session interface {
	Network() Network

	// GetRawTransaction returns the serialized transaction with the
	// given id, typically fetched from the backing node or electrum
	// server.
	GetRawTransaction(txid string) ([]byte, error)

	// GetScriptpubkeyData resolves an output script to wallet ownership
	// metadata. A nil result means the script does not belong to the
	// wallet.
	GetScriptpubkeyData(script []byte) (*ScriptOwnership, error)

	// KeysFromUtxo returns the pubkeys controlling a wallet utxo in
	// role order.
	KeysFromUtxo(ownership ScriptOwnership) ([]UtxoKey, error)

	// GetNonnullSigner returns the active signer. It panics if the
	// session has no signer attached.
	GetNonnullSigner() *signer.Signer
}
