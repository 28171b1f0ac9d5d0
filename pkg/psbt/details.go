package psbt

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	log "github.com/sirupsen/logrus"

	"github.com/AreaLayer/gdk/pkg/bufferutil"
	"github.com/AreaLayer/gdk/pkg/transactionutil"
)

// assetKey under which Bitcoin amounts are grouped, where Liquid
// amounts are grouped by asset id.
const btcAssetKey = "btc"

// GetDetails computes the full economic JSON view of the document:
// per-input and per-output records with ownership and change
// classification, the fee, and the fee rate measured on the extracted
// transaction. Candidate utxos resolve which inputs are wallet-owned.
func (p *Psbt) GetDetails(
	session Session, utxos *CandidateUtxos,
) (*TransactionDetails, error) {
	net := session.Network()
	tx, err := p.Extract()
	if err != nil {
		return nil, err
	}

	inputs, walletAssets, err := p.inputsToJSON(session, tx, utxos)
	if err != nil {
		return nil, err
	}
	outputs, err := p.outputsToJSON(session, tx, walletAssets)
	if err != nil {
		return nil, err
	}

	var sum, explicitFee int64
	var useError bool
	var errStr string
	for _, in := range inputs {
		if in.Error != "" {
			errStr = in.Error
			if !in.SkipSigning {
				// We aren't skipping this input while signing, so the
				// overall results can't be trusted
				useError = true
			}
			continue
		}
		if !p.liquid || in.AssetID == net.PolicyAsset {
			sum += int64(in.Satoshi)
		}
	}
	for _, out := range outputs {
		if !p.liquid || out.AssetID == net.PolicyAsset {
			if p.liquid && out.Scriptpubkey == "" {
				explicitFee += int64(out.Satoshi)
			} else {
				sum -= int64(out.Satoshi)
			}
		}
	}
	// Calculated fee must match the fee output for Liquid unless an
	// error occurred
	runtimeAssert(
		!p.liquid || sum == explicitFee || errStr != "",
		"fee does not match the policy asset in/out difference",
	)

	fee := sum
	if p.liquid {
		fee = explicitFee
	}
	runtimeAssert(fee >= 0 || errStr != "", "negative fee")
	if fee < 0 {
		fee = 0
	}

	txHex, err := tx.ToHex()
	if err != nil {
		return nil, err
	}
	var feeRate uint64
	if vsize := tx.VirtualSize(); vsize > 0 {
		feeRate = uint64(fee) * 1000 / uint64(vsize)
	}

	details := &TransactionDetails{
		Transaction:        txHex,
		TransactionInputs:  inputs,
		TransactionOutputs: outputs,
		Fee:                uint64(fee),
		NetworkFee:         0,
		FeeRate:            feeRate,
		Txhash:             tx.TxHash(),
		UtxoStrategy:       "manual",
	}
	if p.liquid {
		// Only blinded PSETs are currently supported
		details.IsBlinded = true
	}
	if useError {
		details.Error = errStr
	}
	return details, nil
}

// ToJSON is GetDetails plus the partiality flag: a document is partial
// when not every input is wallet-owned.
func (p *Psbt) ToJSON(
	session Session, utxos *CandidateUtxos,
) (*TransactionDetails, error) {
	details, err := p.GetDetails(session, utxos)
	if err != nil {
		return nil, err
	}
	numWalletInputs := 0
	for _, in := range details.TransactionInputs {
		if in.BelongsToWallet() {
			numWalletInputs++
		}
	}
	details.IsPartial = numWalletInputs != len(details.TransactionInputs)
	return details, nil
}

func (p *Psbt) inputsToJSON(
	session Session, tx *ExtractedTx, utxos *CandidateUtxos,
) ([]*TransactionInput, map[string]struct{}, error) {
	net := session.Network()
	walletAssets := make(map[string]struct{})
	inputs := make([]*TransactionInput, p.NumInputs())

	for i := range inputs {
		txhash, vout := p.inputPrevoutPoint(i)

		in := utxos.take(txhash, vout)
		belongsToWallet := in != nil
		if in == nil {
			in = &TransactionInput{}
		}
		in.Txhash = txhash
		in.PtIdx = vout
		in.belongsToWallet = belongsToWallet
		inputs[i] = in

		if err := p.ensureInputUtxo(session, i, txhash); err != nil {
			return nil, nil, err
		}

		if belongsToWallet {
			walletAssets[p.inputAssetKey(in)] = struct{}{}
			if sighash := p.inputSighashType(i); sighash != 0 &&
				sighash != uint32(txscript.SigHashAll) {
				in.UserSighash = sighash
			}
			keys, err := session.KeysFromUtxo(ownershipOf(in))
			if err != nil {
				return nil, nil, err
			}
			userKey := userKeyOf(net, keys)
			in.UserPath = userKey.FullPath

			if len(tx.InputScriptSig(i)) == 0 && len(tx.InputWitness(i)) == 0 {
				// Not yet signed, attach dummy signature data so the
				// serialized size reflects the final transaction
				scriptSig, witness, err := dummyScriptSigAndWitness(in, userKey)
				if err != nil {
					return nil, nil, err
				}
				tx.setInputScriptSig(i, scriptSig)
				tx.setInputWitness(i, witness)
				in.FeeEstimationOnly = true
			}
			continue
		}

		// Non-wallet utxo
		in.SkipSigning = true
		if !p.liquid {
			prevout := p.bitcoinPrevout(i)
			runtimeAssert(prevout != nil, "missing input utxo")
			in.Satoshi = uint64(prevout.Value)
			if redeemScript := p.packet.Inputs[i].RedeemScript; len(redeemScript) > 0 {
				in.RedeemScript = hex.EncodeToString(redeemScript)
			}
			continue
		}

		prevout := p.liquidPrevout(i)
		runtimeAssert(prevout != nil, "missing input utxo")
		if !prevout.IsConfidential() {
			in.Satoshi = bufferutil.ValueFromBytes(prevout.Value)
			in.AssetID = bufferutil.AssetHashFromBytes(prevout.Asset)
		} else {
			psetIn := p.pset.Inputs[i]
			hasExplicitAmount := len(psetIn.ExplicitAsset) > 0 &&
				len(psetIn.ValueProof) > 0 && len(psetIn.AssetProof) > 0
			if hasExplicitAmount && verifyInputExplicitProofs(
				prevout, psetIn.ExplicitValue, psetIn.ExplicitAsset,
				psetIn.ValueProof, psetIn.AssetProof,
			) {
				in.Satoshi = psetIn.ExplicitValue
				in.AssetID = bufferutil.TxIDFromBytes(psetIn.ExplicitAsset)
				in.ValueBlindProof = hex.EncodeToString(psetIn.ValueProof)
				in.AssetBlindProof = hex.EncodeToString(psetIn.AssetProof)
			} else {
				in.Error = errFailedToUnblind
			}
		}
		if redeemScript := p.pset.Inputs[i].RedeemScript; len(redeemScript) > 0 {
			in.RedeemScript = hex.EncodeToString(redeemScript)
		}
	}
	return inputs, walletAssets, nil
}

func (p *Psbt) outputsToJSON(
	session Session, tx *ExtractedTx, walletAssets map[string]struct{},
) ([]*TransactionOutput, error) {
	net := session.Network()
	spentAssets := make(map[string]struct{})
	assetOutputs := make(map[string][]int)
	assetOrder := make([]string, 0)

	outputs := make([]*TransactionOutput, p.NumOutputs())
	for i := range outputs {
		out := &TransactionOutput{}
		outputs[i] = out

		var script []byte
		var blindingPubkey []byte
		if !p.liquid {
			txout := p.packet.UnsignedTx.TxOut[i]
			runtimeAssert(len(txout.PkScript) > 0, "output without script")
			out.Satoshi = uint64(txout.Value)
			out.Scriptpubkey = hex.EncodeToString(txout.PkScript)
			script = txout.PkScript
		} else {
			psetOut := p.pset.Outputs[i]
			// Even if blinded, the PSET must have an explicit value/asset
			runtimeAssert(len(psetOut.Asset) > 0, "output without asset")
			out.AssetID = bufferutil.TxIDFromBytes(psetOut.Asset)
			out.Satoshi = psetOut.Value

			switch p.outputBlindingStatusAt(i) {
			case blindedNone:
				// If this output is unblinded, it must be the fee
				runtimeAssert(len(psetOut.Script) == 0, "unblinded non-fee output")
				out.Scriptpubkey = ""
				continue
			case blindedFull:
				out.Commitment = hex.EncodeToString(psetOut.ValueCommitment)
				out.AssetTag = hex.EncodeToString(psetOut.AssetCommitment)
				out.RangeProof = hex.EncodeToString(psetOut.ValueRangeproof)
				out.SurjProof = hex.EncodeToString(psetOut.AssetSurjectionProof)
				out.BlindingKey = hex.EncodeToString(psetOut.BlindingPubkey)
				out.EphPublicKey = hex.EncodeToString(psetOut.EcdhPubkey)
				out.ValueBlindProof = hex.EncodeToString(psetOut.BlindValueProof)
				out.AssetBlindProof = hex.EncodeToString(psetOut.BlindAssetProof)
				blindingPubkey = psetOut.BlindingPubkey
			default:
				runtimeAssert(false, fmt.Sprintf("output %d partially blinded", i))
			}

			runtimeAssert(len(psetOut.Script) > 0, "blinded output without script")
			out.Scriptpubkey = hex.EncodeToString(psetOut.Script)
			script = psetOut.Script
		}

		ownership, err := session.GetScriptpubkeyData(script)
		if err != nil {
			return nil, err
		}
		isWalletOutput := ownership != nil
		if !isWalletOutput {
			addr, _ := addressFromScript(net, script, nil)
			out.Address = addr
		} else {
			out.belongsToWallet = true
			if p.liquid {
				if err := p.unblindWalletOutput(session, tx, i, out, script); err != nil {
					log.WithError(err).Warnf("output %d: %s", i, errFailedToUnblind)
					out.Error = errFailedToUnblind
					continue
				}
			}
			out.Subaccount = ownership.Subaccount
			out.Pointer = ownership.Pointer
			out.IsInternal = ownership.IsInternal
			out.AddressType = ownership.AddressType
			addr, _ := addressFromScript(net, script, nil)
			out.Address = addr
			keys, err := session.KeysFromUtxo(*ownership)
			if err != nil {
				return nil, err
			}
			out.UserPath = userKeyOf(net, keys).FullPath
			if net.Electrum {
				// Singlesig: outputs on the internal chain are change
				isChange := ownership.IsInternal
				out.IsChange = &isChange
			} else {
				out.Branch = ownership.Branch
			}
		}

		if p.liquid {
			// Confidentialize the address if possible
			if isWalletOutput {
				isConfidential := false
				out.IsConfidential = &isConfidential
			}
			if len(blindingPubkey) > 0 {
				confidentialize(net, out, script, blindingPubkey)
			}
			if !isWalletOutput {
				out.IsConfidential = nil
				out.UnconfidentialAddress = ""
			}
		}

		// Change detection bookkeeping
		assetKey := p.outputAssetKey(out)
		if !net.Electrum {
			if _, ok := walletAssets[assetKey]; ok {
				if isWalletOutput {
					if _, ok := assetOutputs[assetKey]; !ok {
						assetOrder = append(assetOrder, assetKey)
					}
					assetOutputs[assetKey] = append(assetOutputs[assetKey], i)
				} else {
					spentAssets[assetKey] = struct{}{}
				}
			}
		}
	}

	if !net.Electrum {
		// Multisig change detection (heuristic): for each asset the
		// wallet contributed as an input, the first wallet output of
		// that asset is change if the asset was also spent externally
		// or there are multiple wallet outputs for it.
		for _, asset := range assetOrder {
			indexes := assetOutputs[asset]
			_, isSpentExternally := spentAssets[asset]
			isChange := isSpentExternally || len(indexes) > 1
			outputs[indexes[0]].IsChange = &isChange
		}
	}
	return outputs, nil
}

func (p *Psbt) unblindWalletOutput(
	session Session, tx *ExtractedTx, index int,
	out *TransactionOutput, script []byte,
) error {
	blindingKey, err := session.GetNonnullSigner().BlindingKeyFromScript(script)
	if err != nil {
		return err
	}
	unblinded, ok := transactionutil.UnblindOutput(
		tx.elements.Outputs[index], blindingKey,
	)
	if !ok {
		return ErrMissingBlindingKey
	}
	out.Satoshi = unblinded.Value
	out.AssetID = unblinded.AssetHash
	out.AssetBlinder = hex.EncodeToString(
		bufferutil.ReverseBytes(unblinded.AssetBlinder),
	)
	out.AmountBlinder = hex.EncodeToString(
		bufferutil.ReverseBytes(unblinded.ValueBlinder),
	)
	return nil
}

func (p *Psbt) inputSighashType(index int) uint32 {
	if p.liquid {
		return uint32(p.pset.Inputs[index].SigHashType)
	}
	return uint32(p.packet.Inputs[index].SighashType)
}

func (p *Psbt) ensureInputUtxo(session Session, index int, txhash string) error {
	var havePrevout bool
	if p.liquid {
		havePrevout = p.liquidPrevout(index) != nil
	} else {
		havePrevout = p.bitcoinPrevout(index) != nil
	}
	if havePrevout {
		return nil
	}
	rawTx, err := session.GetRawTransaction(txhash)
	if err != nil {
		return err
	}
	if len(rawTx) == 0 {
		return ErrMissingTransaction
	}
	return p.setInputUtxo(index, rawTx)
}

func (p *Psbt) inputAssetKey(in *TransactionInput) string {
	if p.liquid {
		return in.AssetID
	}
	return btcAssetKey
}

func (p *Psbt) outputAssetKey(out *TransactionOutput) string {
	if p.liquid {
		return out.AssetID
	}
	return btcAssetKey
}

func ownershipOf(in *TransactionInput) ScriptOwnership {
	return ScriptOwnership{
		Subaccount:  in.Subaccount,
		Pointer:     in.Pointer,
		Branch:      in.Branch,
		IsInternal:  in.IsInternal,
		AddressType: in.AddressType,
	}
}

// userKeyOf picks the user's key from the role-ordered utxo keys: for
// multisig the Green service key comes first.
func userKeyOf(net Network, keys []UtxoKey) UtxoKey {
	if !net.Electrum && len(keys) > 1 {
		return keys[1]
	}
	return keys[0]
}
