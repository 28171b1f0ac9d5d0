package psbt

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/go-elements/psetv2"
	"github.com/vulpemventures/go-elements/transaction"

	"github.com/AreaLayer/gdk/pkg/bufferutil"
)

var (
	psbtMagic = []byte{0x70, 0x73, 0x62, 0x74, 0xff}
	psetMagic = []byte{0x70, 0x73, 0x65, 0x74, 0xff}
)

// Psbt wraps one partially signed transaction document. The Bitcoin
// dialect (BIP-174, wire version 0) and the Liquid dialect (PSET,
// version 2) are held behind the same surface so downstream processing
// never branches on the wire version; OriginalVersion records the
// version of the document as received so export round-trips it.
//
// A Psbt is not internally synchronized, it is meant to be driven by a
// single logical operation.
type Psbt struct {
	liquid          bool
	originalVersion uint32

	pset   *psetv2.Pset
	packet *psbt.Packet
}

// Parse decodes a base64 document. The document's dialect must match
// the network the caller operates on.
func Parse(psbtBase64 string, isLiquid bool) (*Psbt, error) {
	raw, err := base64.StdEncoding.DecodeString(psbtBase64)
	if err != nil {
		return nil, ErrInvalidPsbt
	}
	switch {
	case bytes.HasPrefix(raw, psetMagic):
		if !isLiquid {
			return nil, ErrPsbtMismatch
		}
		pset, err := psetv2.NewPsetFromBase64(psbtBase64)
		if err != nil {
			return nil, ErrInvalidPsbt
		}
		return &Psbt{liquid: true, originalVersion: 2, pset: pset}, nil
	case bytes.HasPrefix(raw, psbtMagic):
		if isLiquid {
			return nil, ErrPsbtMismatch
		}
		packet, err := psbt.NewFromRawBytes(strings.NewReader(psbtBase64), true)
		if err != nil {
			return nil, ErrInvalidPsbt
		}
		return &Psbt{liquid: false, originalVersion: 0, packet: packet}, nil
	default:
		return nil, ErrInvalidPsbt
	}
}

// IsLiquid returns whether the document is a PSET.
func (p *Psbt) IsLiquid() bool {
	return p.liquid
}

// OriginalVersion returns the wire version of the document as received
// or built.
func (p *Psbt) OriginalVersion() uint32 {
	return p.originalVersion
}

// ToBase64 serializes the document in its original wire version.
func (p *Psbt) ToBase64() (string, error) {
	if p.liquid {
		return p.pset.ToBase64()
	}
	return p.packet.B64Encode()
}

// NumInputs returns the number of inputs of the document.
func (p *Psbt) NumInputs() int {
	if p.liquid {
		return int(p.pset.Global.InputCount)
	}
	return len(p.packet.UnsignedTx.TxIn)
}

// NumOutputs returns the number of outputs of the document.
func (p *Psbt) NumOutputs() int {
	if p.liquid {
		return int(p.pset.Global.OutputCount)
	}
	return len(p.packet.UnsignedTx.TxOut)
}

// inputPrevoutPoint returns the (txid, vout) spent by the given input.
func (p *Psbt) inputPrevoutPoint(index int) (string, uint32) {
	if p.liquid {
		in := p.pset.Inputs[index]
		return bufferutil.TxIDFromBytes(in.PreviousTxid), in.PreviousTxIndex
	}
	outpoint := p.packet.UnsignedTx.TxIn[index].PreviousOutPoint
	return outpoint.Hash.String(), outpoint.Index
}

// liquidPrevout returns the previous output of a PSET input if the
// document embeds it.
func (p *Psbt) liquidPrevout(index int) *transaction.TxOutput {
	in := p.pset.Inputs[index]
	if in.WitnessUtxo != nil {
		return in.WitnessUtxo
	}
	if in.NonWitnessUtxo != nil &&
		int(in.PreviousTxIndex) < len(in.NonWitnessUtxo.Outputs) {
		return in.NonWitnessUtxo.Outputs[in.PreviousTxIndex]
	}
	return nil
}

// bitcoinPrevout returns the previous output of a PSBT input if the
// document embeds it.
func (p *Psbt) bitcoinPrevout(index int) *wire.TxOut {
	in := p.packet.Inputs[index]
	if in.WitnessUtxo != nil {
		return in.WitnessUtxo
	}
	if in.NonWitnessUtxo != nil {
		outpoint := p.packet.UnsignedTx.TxIn[index].PreviousOutPoint
		if int(outpoint.Index) < len(in.NonWitnessUtxo.TxOut) {
			return in.NonWitnessUtxo.TxOut[outpoint.Index]
		}
	}
	return nil
}

// setInputUtxo embeds the raw previous transaction of an input,
// typically fetched from the session.
func (p *Psbt) setInputUtxo(index int, rawTx []byte) error {
	if p.liquid {
		prevTx, err := transaction.NewTxFromHex(hex.EncodeToString(rawTx))
		if err != nil {
			return err
		}
		in := &p.pset.Inputs[index]
		if int(in.PreviousTxIndex) >= len(prevTx.Outputs) {
			return ErrMissingPrevout
		}
		in.NonWitnessUtxo = prevTx
		in.WitnessUtxo = prevTx.Outputs[in.PreviousTxIndex]
		return nil
	}
	prevTx := &wire.MsgTx{}
	if err := prevTx.Deserialize(bytes.NewReader(rawTx)); err != nil {
		return err
	}
	in := &p.packet.Inputs[index]
	outpoint := p.packet.UnsignedTx.TxIn[index].PreviousOutPoint
	if int(outpoint.Index) >= len(prevTx.TxOut) {
		return ErrMissingPrevout
	}
	in.NonWitnessUtxo = prevTx
	in.WitnessUtxo = prevTx.TxOut[outpoint.Index]
	return nil
}

// Extract produces the transaction with whatever per-input
// finalization data is present. Inputs lacking finalization are
// included without script and witness, partial finalization is a
// supported state.
func (p *Psbt) Extract() (*ExtractedTx, error) {
	if p.liquid {
		tx, err := p.pset.UnsignedTx()
		if err != nil {
			return nil, err
		}
		for i := range p.pset.Inputs {
			in := p.pset.Inputs[i]
			if len(in.FinalScriptSig) > 0 {
				tx.Inputs[i].Script = in.FinalScriptSig
			}
			if len(in.FinalScriptWitness) > 0 {
				witness, err := bufferutil.DeserializeTxWitness(
					in.FinalScriptWitness,
				)
				if err != nil {
					return nil, err
				}
				tx.Inputs[i].Witness = witness
			}
		}
		return &ExtractedTx{elements: tx}, nil
	}

	tx := p.packet.UnsignedTx.Copy()
	for i := range p.packet.Inputs {
		in := p.packet.Inputs[i]
		if len(in.FinalScriptSig) > 0 {
			tx.TxIn[i].SignatureScript = in.FinalScriptSig
		}
		if len(in.FinalScriptWitness) > 0 {
			witness, err := bufferutil.DeserializeTxWitness(
				in.FinalScriptWitness,
			)
			if err != nil {
				return nil, err
			}
			tx.TxIn[i].Witness = witness
		}
	}
	return &ExtractedTx{bitcoin: tx}, nil
}

// SetInputFinalizationData copies the scriptsig and witness of the
// given input of a signed transaction into the document.
func (p *Psbt) SetInputFinalizationData(index int, tx *ExtractedTx) error {
	if index >= p.NumInputs() {
		return ErrInputIndexOutOfRange
	}
	if p.liquid {
		txin := tx.elements.Inputs[index]
		in := &p.pset.Inputs[index]
		in.FinalScriptSig = txin.Script
		if len(txin.Witness) > 0 {
			in.FinalScriptWitness = bufferutil.SerializeTxWitness(txin.Witness)
		}
		return nil
	}
	txin := tx.bitcoin.TxIn[index]
	in := &p.packet.Inputs[index]
	in.FinalScriptSig = txin.SignatureScript
	if len(txin.Witness) > 0 {
		in.FinalScriptWitness = bufferutil.SerializeTxWitness(txin.Witness)
	}
	return nil
}

// ExtractedTx is a transaction extracted from a document, in the
// dialect of the document it came from.
type ExtractedTx struct {
	elements *transaction.Transaction
	bitcoin  *wire.MsgTx
}

// ToHex serializes the transaction.
func (tx *ExtractedTx) ToHex() (string, error) {
	if tx.elements != nil {
		return tx.elements.ToHex()
	}
	buf := new(bytes.Buffer)
	if err := tx.bitcoin.Serialize(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// TxHash returns the transaction id in display order.
func (tx *ExtractedTx) TxHash() string {
	if tx.elements != nil {
		return tx.elements.TxHash().String()
	}
	return tx.bitcoin.TxHash().String()
}

// VirtualSize returns the transaction vsize in vbytes.
func (tx *ExtractedTx) VirtualSize() int {
	if tx.elements != nil {
		return tx.elements.VirtualSize()
	}
	baseSize := tx.bitcoin.SerializeSizeStripped()
	totalSize := tx.bitcoin.SerializeSize()
	weight := baseSize*3 + totalSize
	return (weight + 3) / 4
}

// NumInputs returns the number of transaction inputs.
func (tx *ExtractedTx) NumInputs() int {
	if tx.elements != nil {
		return len(tx.elements.Inputs)
	}
	return len(tx.bitcoin.TxIn)
}

// InputScriptSig returns the scriptsig of the given input.
func (tx *ExtractedTx) InputScriptSig(index int) []byte {
	if tx.elements != nil {
		return tx.elements.Inputs[index].Script
	}
	return tx.bitcoin.TxIn[index].SignatureScript
}

// InputWitness returns the witness stack of the given input.
func (tx *ExtractedTx) InputWitness(index int) [][]byte {
	if tx.elements != nil {
		return tx.elements.Inputs[index].Witness
	}
	return tx.bitcoin.TxIn[index].Witness
}

func (tx *ExtractedTx) setInputScriptSig(index int, script []byte) {
	if tx.elements != nil {
		tx.elements.Inputs[index].Script = script
		return
	}
	tx.bitcoin.TxIn[index].SignatureScript = script
}

func (tx *ExtractedTx) setInputWitness(index int, witness [][]byte) {
	if tx.elements != nil {
		tx.elements.Inputs[index].Witness = witness
		return
	}
	tx.bitcoin.TxIn[index].Witness = witness
}

// runtimeAssert guards internal invariants of the engine. Violations
// mean a malformed document slipped past parsing or a programming bug,
// never a recoverable user error.
func runtimeAssert(cond bool, msg string) {
	if !cond {
		log.Error(msg)
		panic(msg)
	}
}
