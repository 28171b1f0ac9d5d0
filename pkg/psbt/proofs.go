package psbt

import (
	"crypto/rand"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/vulpemventures/go-elements/confidential"
	"github.com/vulpemventures/go-elements/transaction"

	"github.com/AreaLayer/gdk/pkg/bufferutil"
)

func randomBytes() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// generateInputExplicitProofs reveals the value and asset of a
// confidential input by attaching the explicit amounts together with
// proofs binding them to the previous output's commitments. Explicit
// prevouts need no proofs.
func (p *Psbt) generateInputExplicitProofs(
	index int, satoshi uint64, assetID string, assetBlinder, valueBlinder []byte,
) error {
	prevout := p.liquidPrevout(index)
	if prevout == nil {
		return ErrMissingPrevout
	}
	if !prevout.IsConfidential() {
		return nil
	}

	asset, err := bufferutil.AssetHashToRawBytes(assetID)
	if err != nil {
		return err
	}
	valueProof, err := confidential.CreateBlindValueProof(
		randomBytes, valueBlinder, satoshi, prevout.Value, prevout.Asset,
	)
	if err != nil {
		return err
	}
	assetProof, err := confidential.CreateBlindAssetProof(
		asset, prevout.Asset, assetBlinder,
	)
	if err != nil {
		return err
	}

	in := &p.pset.Inputs[index]
	in.ExplicitValue = satoshi
	in.ValueProof = valueProof
	in.ExplicitAsset = asset
	in.AssetProof = assetProof
	return nil
}

// verifyInputExplicitProofs checks the explicit value/asset of a
// non-wallet confidential input against the prevout commitments.
func verifyInputExplicitProofs(
	prevout *transaction.TxOutput,
	satoshi uint64, asset, valueProof, assetProof []byte,
) bool {
	if !prevout.IsConfidential() {
		return true
	}
	if len(valueProof) == 0 || len(assetProof) == 0 {
		return false
	}
	if !confidential.VerifyBlindValueProof(
		satoshi, prevout.Value, valueProof, prevout.Asset,
	) {
		return false
	}
	return confidential.VerifyBlindAssetProof(asset, assetProof, prevout.Asset)
}

// generateOutputBlindProofs attaches the blind value/asset proofs to a
// blinded output, binding its explicit value and asset to the already
// set commitments.
func (p *Psbt) generateOutputBlindProofs(
	index int, satoshi uint64, assetID string, assetBlinder, valueBlinder []byte,
) error {
	out := &p.pset.Outputs[index]
	runtimeAssert(len(out.AssetCommitment) > 0, "output asset commitment not set")
	runtimeAssert(len(out.ValueCommitment) > 0, "output value commitment not set")

	asset, err := bufferutil.AssetHashToRawBytes(assetID)
	if err != nil {
		return err
	}
	assetProof, err := confidential.CreateBlindAssetProof(
		asset, out.AssetCommitment, assetBlinder,
	)
	if err != nil {
		return err
	}
	valueProof, err := confidential.CreateBlindValueProof(
		randomBytes, valueBlinder, satoshi,
		out.ValueCommitment, out.AssetCommitment,
	)
	if err != nil {
		return err
	}
	out.BlindAssetProof = assetProof
	out.BlindValueProof = valueProof
	return nil
}

// outputBlindingStatus classifies a PSET output as unblinded, fully
// blinded, or inconsistently (partially) blinded.
type outputBlindingStatus int

const (
	blindedNone outputBlindingStatus = iota
	blindedPartial
	blindedFull
)

func (p *Psbt) outputBlindingStatusAt(index int) outputBlindingStatus {
	out := p.pset.Outputs[index]
	fields := [][]byte{
		out.ValueCommitment,
		out.AssetCommitment,
		out.ValueRangeproof,
		out.AssetSurjectionProof,
		out.BlindingPubkey,
		out.EcdhPubkey,
		out.BlindValueProof,
		out.BlindAssetProof,
	}
	numSet := 0
	for _, f := range fields {
		if len(f) > 0 {
			numSet++
		}
	}
	switch numSet {
	case 0:
		return blindedNone
	case len(fields):
		return blindedFull
	default:
		return blindedPartial
	}
}

// dummySignature returns a zero-filled placeholder of the worst-case
// DER signature size plus the sighash byte. It never verifies, it only
// exists to measure the final transaction size.
func dummySignature() []byte {
	return make([]byte, 73)
}

func p2wpkhProgram(pubkey []byte) []byte {
	program := make([]byte, 0, 22)
	program = append(program, 0x00, 0x14)
	return append(program, btcutil.Hash160(pubkey)...)
}

func p2wshProgram(script []byte) []byte {
	hash := sha256.Sum256(script)
	program := make([]byte, 0, 34)
	program = append(program, 0x00, 0x20)
	return append(program, hash[:]...)
}

func pushDataScript(data ...[]byte) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	for _, d := range data {
		builder.AddData(d)
	}
	return builder.Script()
}

// dummyScriptSigAndWitness synthesizes a non-verifying scriptsig and
// witness of the right shape and size for a wallet input, used when
// computing the fee rate of a not yet signed transaction.
func dummyScriptSigAndWitness(
	in *TransactionInput, userKey UtxoKey,
) ([]byte, [][]byte, error) {
	switch in.AddressType {
	case AddressTypeP2wpkh:
		return nil, [][]byte{dummySignature(), userKey.PubKey}, nil
	case AddressTypeP2shP2wpkh:
		scriptSig, err := pushDataScript(p2wpkhProgram(userKey.PubKey))
		if err != nil {
			return nil, nil, err
		}
		return scriptSig, [][]byte{dummySignature(), userKey.PubKey}, nil
	case AddressTypeP2pkh:
		scriptSig, err := pushDataScript(dummySignature(), userKey.PubKey)
		if err != nil {
			return nil, nil, err
		}
		return scriptSig, nil, nil
	case AddressTypeCsv, AddressTypeP2wsh:
		prevoutScript, err := bufferutil.CommitmentToBytes(in.PrevoutScript)
		if err != nil || len(prevoutScript) == 0 {
			return nil, nil, ErrMissingPrevout
		}
		witness := [][]byte{
			{}, dummySignature(), dummySignature(), prevoutScript,
		}
		var scriptSig []byte
		if in.AddressType == AddressTypeCsv {
			// csv scripts are p2sh wrapped segwit
			scriptSig, err = pushDataScript(p2wshProgram(prevoutScript))
			if err != nil {
				return nil, nil, err
			}
		}
		return scriptSig, witness, nil
	default:
		return nil, nil, nil
	}
}
