package psbt

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	"github.com/vulpemventures/go-elements/psetv2"
	"github.com/vulpemventures/go-elements/transaction"

	"github.com/AreaLayer/gdk/pkg/bufferutil"
)

// FromJSON builds a document from the economic JSON view of a raw
// transaction: keypaths and scripts are attached to wallet-owned
// inputs and outputs, previous outputs are embedded, and on Liquid the
// explicit and blind proofs are generated from the caller-supplied
// blinders. It is the inverse of GetDetails.
func FromJSON(
	session Session, details *TransactionDetails, isLiquid bool,
) (*Psbt, error) {
	runtimeAssert(details != nil, "transaction details required")
	if details.Error != "" {
		return nil, ErrDetailsWithError
	}
	if isLiquid {
		return liquidFromJSON(session, details)
	}
	return bitcoinFromJSON(session, details)
}

func liquidFromJSON(
	session Session, details *TransactionDetails,
) (*Psbt, error) {
	tx, err := transaction.NewTxFromHex(details.Transaction)
	if err != nil {
		return nil, err
	}

	ins := make([]psetv2.InputArgs, 0, len(tx.Inputs))
	for _, txin := range tx.Inputs {
		ins = append(ins, psetv2.InputArgs{
			Txid:    bufferutil.TxIDFromBytes(txin.Hash),
			TxIndex: txin.Index,
		})
	}

	outs := make([]psetv2.OutputArgs, 0, len(details.TransactionOutputs))
	for i, out := range details.TransactionOutputs {
		args := psetv2.OutputArgs{
			Asset:  out.AssetID,
			Amount: out.Satoshi,
		}
		if out.Scriptpubkey != "" {
			script, err := hex.DecodeString(out.Scriptpubkey)
			if err != nil {
				return nil, err
			}
			args.Script = script
			if out.BlindingKey == "" {
				return nil, ErrMissingBlindingKey
			}
			blindingKey, err := hex.DecodeString(out.BlindingKey)
			if err != nil {
				return nil, err
			}
			args.BlindingKey = blindingKey
			// Assume the blinder index is 1-1. This isn't true for swaps
			args.BlinderIndex = uint32(i)
		}
		outs = append(outs, args)
	}

	locktime := tx.Locktime
	pset, err := psetv2.New(ins, outs, &locktime)
	if err != nil {
		return nil, err
	}
	p := &Psbt{liquid: true, originalVersion: 2, pset: pset}

	for i, in := range details.TransactionInputs {
		if in.BelongsToWallet() || in.UserPath != nil {
			if err := p.addInputKeypathsAndScripts(session, i, in); err != nil {
				return nil, err
			}
		}
		if err := p.ensureInputUtxo(session, i, in.Txhash); err != nil {
			return nil, err
		}
		assetBlinder, valueBlinder, err := blindersOf(in.AssetBlinder, in.AmountBlinder)
		if err != nil {
			return nil, err
		}
		if err := p.generateInputExplicitProofs(
			i, in.Satoshi, in.AssetID, assetBlinder, valueBlinder,
		); err != nil {
			return nil, err
		}
	}

	for i, out := range details.TransactionOutputs {
		if out.BelongsToWallet() || out.UserPath != nil {
			if err := p.addOutputKeypaths(session, i, out); err != nil {
				return nil, err
			}
		}
		if out.Scriptpubkey == "" {
			// Skip remaining fields for fee outputs
			continue
		}
		p.copyOutputCommitments(i, tx.Outputs[i])
		assetBlinder, valueBlinder, err := blindersOf(out.AssetBlinder, out.AmountBlinder)
		if err != nil {
			return nil, err
		}
		if err := p.generateOutputBlindProofs(
			i, out.Satoshi, out.AssetID, assetBlinder, valueBlinder,
		); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func bitcoinFromJSON(
	session Session, details *TransactionDetails,
) (*Psbt, error) {
	rawTx, err := hex.DecodeString(details.Transaction)
	if err != nil {
		return nil, err
	}
	tx := &wire.MsgTx{}
	if err := tx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return nil, err
	}
	// The document carries signatures in its own fields, the embedded
	// transaction must be unsigned
	for _, txin := range tx.TxIn {
		txin.SignatureScript = nil
		txin.Witness = nil
	}
	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, err
	}
	p := &Psbt{liquid: false, originalVersion: 0, packet: packet}

	for i, in := range details.TransactionInputs {
		if in.BelongsToWallet() || in.UserPath != nil {
			if err := p.addInputKeypathsAndScripts(session, i, in); err != nil {
				return nil, err
			}
		}
		if err := p.ensureInputUtxo(session, i, in.Txhash); err != nil {
			return nil, err
		}
	}
	for i, out := range details.TransactionOutputs {
		if out.BelongsToWallet() || out.UserPath != nil {
			if err := p.addOutputKeypaths(session, i, out); err != nil {
				return nil, err
			}
		}
	}
	return p, nil
}

// addInputKeypathsAndScripts attaches the bip32 derivations of the
// keys controlling a wallet input, plus the redeem/witness scripts its
// address type needs for signing.
func (p *Psbt) addInputKeypathsAndScripts(
	session Session, index int, in *TransactionInput,
) error {
	keys, fingerprint, err := walletKeypaths(session, ownershipOf(in))
	if err != nil {
		return err
	}
	for _, key := range keys {
		p.addKeypath(index, true, key, fingerprint)
	}

	userKey := userKeyOf(session.Network(), keys)
	var redeemScript, witnessScript []byte
	switch in.AddressType {
	case AddressTypeP2shP2wpkh:
		redeemScript = p2wpkhProgram(userKey.PubKey)
	case AddressTypeCsv, AddressTypeP2wsh:
		prevoutScript, err := hex.DecodeString(in.PrevoutScript)
		if err != nil || len(prevoutScript) == 0 {
			return ErrMissingPrevout
		}
		witnessScript = prevoutScript
		redeemScript = p2wshProgram(prevoutScript)
	}

	if p.liquid {
		psetIn := &p.pset.Inputs[index]
		psetIn.RedeemScript = redeemScript
		psetIn.WitnessScript = witnessScript
	} else {
		packetIn := &p.packet.Inputs[index]
		packetIn.RedeemScript = redeemScript
		packetIn.WitnessScript = witnessScript
	}
	return nil
}

func (p *Psbt) addOutputKeypaths(
	session Session, index int, out *TransactionOutput,
) error {
	ownership := ScriptOwnership{
		Subaccount:  out.Subaccount,
		Pointer:     out.Pointer,
		Branch:      out.Branch,
		IsInternal:  out.IsInternal,
		AddressType: out.AddressType,
	}
	keys, fingerprint, err := walletKeypaths(session, ownership)
	if err != nil {
		return err
	}
	for _, key := range keys {
		p.addKeypath(index, false, key, fingerprint)
	}
	return nil
}

func (p *Psbt) addKeypath(
	index int, isInput bool, key UtxoKey, fingerprint uint32,
) {
	if p.liquid {
		derivation := psetv2.DerivationPathWithPubKey{
			PubKey:               key.PubKey,
			MasterKeyFingerprint: fingerprint,
			Bip32Path:            key.FullPath,
		}
		if isInput {
			in := &p.pset.Inputs[index]
			in.Bip32Derivation = append(in.Bip32Derivation, derivation)
		} else {
			out := &p.pset.Outputs[index]
			out.Bip32Derivation = append(out.Bip32Derivation, derivation)
		}
		return
	}
	derivation := &psbt.Bip32Derivation{
		PubKey:               key.PubKey,
		MasterKeyFingerprint: fingerprint,
		Bip32Path:            key.FullPath,
	}
	if isInput {
		in := &p.packet.Inputs[index]
		in.Bip32Derivation = append(in.Bip32Derivation, derivation)
	} else {
		out := &p.packet.Outputs[index]
		out.Bip32Derivation = append(out.Bip32Derivation, derivation)
	}
}

// walletKeypaths returns the role-ordered keys of a wallet utxo
// together with the master key fingerprint: for multisig the Green
// service key and the user key, for singlesig the user key alone.
func walletKeypaths(
	session Session, ownership ScriptOwnership,
) ([]UtxoKey, uint32, error) {
	keys, err := session.KeysFromUtxo(ownership)
	if err != nil {
		return nil, 0, err
	}
	if !session.Network().Electrum && len(keys) > 2 {
		// Recovery keys are not attached
		keys = keys[:2]
	}
	fingerprint, err := session.GetNonnullSigner().MasterFingerprint()
	if err != nil {
		return nil, 0, err
	}
	return keys, fingerprint, nil
}

// copyOutputCommitments carries the blinding artifacts of an already
// blinded raw transaction output over to the document, the proofs
// generated later bind the explicit values to these commitments.
func (p *Psbt) copyOutputCommitments(index int, txout *transaction.TxOutput) {
	if !txout.IsConfidential() {
		return
	}
	out := &p.pset.Outputs[index]
	out.ValueCommitment = txout.Value
	out.AssetCommitment = txout.Asset
	out.ValueRangeproof = txout.RangeProof
	out.AssetSurjectionProof = txout.SurjectionProof
	out.EcdhPubkey = txout.Nonce
	out.BlinderIndex = uint32(index)
}

func blindersOf(assetBlinder, amountBlinder string) ([]byte, []byte, error) {
	if assetBlinder == "" && amountBlinder == "" {
		return nil, nil, nil
	}
	if assetBlinder == "" || amountBlinder == "" {
		return nil, nil, ErrMissingBlinders
	}
	abf, err := hex.DecodeString(assetBlinder)
	if err != nil {
		return nil, nil, err
	}
	vbf, err := hex.DecodeString(amountBlinder)
	if err != nil {
		return nil, nil, err
	}
	// Blinders circulate in display order, proofs need wire order
	return bufferutil.ReverseBytes(abf), bufferutil.ReverseBytes(vbf), nil
}
