package psbt

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/go-elements/psetv2"

	"github.com/AreaLayer/gdk/pkg/bufferutil"
)

const (
	testPrevTxid    = "1111111111111111111111111111111111111111111111111111111111111111"
	testPolicyAsset = "5ac9f65c0efcc4775e0baec4ec03abdde22473cd3cf33c0419ca290e0751b225"
)

func newTestPacket(t *testing.T, outValues []int64) *psbt.Packet {
	hash, err := chainhash.NewHashFromStr(testPrevTxid)
	require.NoError(t, err)

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, 0), nil, nil))
	for _, value := range outValues {
		script := []byte{0x00, 0x14}
		script = append(script, make([]byte, 20)...)
		tx.AddTxOut(wire.NewTxOut(value, script))
	}
	packet, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)
	return packet
}

func TestParseRoundTrip(t *testing.T) {
	packet := newTestPacket(t, []int64{99000})
	psbtBase64, err := packet.B64Encode()
	require.NoError(t, err)

	p, err := Parse(psbtBase64, false)
	require.NoError(t, err)
	assert.False(t, p.IsLiquid())
	assert.Equal(t, uint32(0), p.OriginalVersion())
	assert.Equal(t, 1, p.NumInputs())
	assert.Equal(t, 1, p.NumOutputs())

	encoded, err := p.ToBase64()
	require.NoError(t, err)

	again, err := Parse(encoded, false)
	require.NoError(t, err)
	assert.Equal(t, p.OriginalVersion(), again.OriginalVersion())
	assert.Equal(t, p.NumInputs(), again.NumInputs())
	assert.Equal(t, p.NumOutputs(), again.NumOutputs())
	assert.Equal(
		t, packet.UnsignedTx.TxOut[0].Value,
		again.packet.UnsignedTx.TxOut[0].Value,
	)
}

func TestParsePsetRoundTrip(t *testing.T) {
	pset, err := psetv2.New(
		[]psetv2.InputArgs{{Txid: testPrevTxid, TxIndex: 1}},
		[]psetv2.OutputArgs{{Asset: testPolicyAsset, Amount: 500}},
		nil,
	)
	require.NoError(t, err)
	psetBase64, err := pset.ToBase64()
	require.NoError(t, err)

	p, err := Parse(psetBase64, true)
	require.NoError(t, err)
	assert.True(t, p.IsLiquid())
	assert.Equal(t, uint32(2), p.OriginalVersion())
	assert.Equal(t, 1, p.NumInputs())
	assert.Equal(t, 1, p.NumOutputs())

	txhash, vout := p.inputPrevoutPoint(0)
	assert.Equal(t, testPrevTxid, txhash)
	assert.Equal(t, uint32(1), vout)
	assert.Equal(
		t, testPolicyAsset, bufferutil.TxIDFromBytes(p.pset.Outputs[0].Asset),
	)

	encoded, err := p.ToBase64()
	require.NoError(t, err)
	again, err := Parse(encoded, true)
	require.NoError(t, err)
	assert.Equal(t, p.pset.Outputs[0].Value, again.pset.Outputs[0].Value)
}

func TestParseMismatch(t *testing.T) {
	packet := newTestPacket(t, []int64{1000})
	psbtBase64, err := packet.B64Encode()
	require.NoError(t, err)
	_, err = Parse(psbtBase64, true)
	assert.Equal(t, ErrPsbtMismatch, err)

	pset, err := psetv2.New(
		[]psetv2.InputArgs{{Txid: testPrevTxid, TxIndex: 0}},
		[]psetv2.OutputArgs{{Asset: testPolicyAsset, Amount: 500}},
		nil,
	)
	require.NoError(t, err)
	psetBase64, err := pset.ToBase64()
	require.NoError(t, err)
	_, err = Parse(psetBase64, false)
	assert.Equal(t, ErrPsbtMismatch, err)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse("not base64!!", false)
	assert.Equal(t, ErrInvalidPsbt, err)
	_, err = Parse("aGVsbG8gd29ybGQ=", false)
	assert.Equal(t, ErrInvalidPsbt, err)
}

func TestExtractFinalized(t *testing.T) {
	packet := newTestPacket(t, []int64{99000})
	scriptSig := []byte{0x51}
	witness := [][]byte{{0x01, 0x02}, {0x03}}
	packet.Inputs[0].FinalScriptSig = scriptSig
	packet.Inputs[0].FinalScriptWitness = bufferutil.SerializeTxWitness(witness)

	p := &Psbt{packet: packet}
	tx, err := p.Extract()
	require.NoError(t, err)
	assert.Equal(t, scriptSig, tx.InputScriptSig(0))
	assert.Equal(t, witness, tx.InputWitness(0))
}

func TestExtractPartiallyFinalized(t *testing.T) {
	// A second input without finalization data is extracted bare
	hash, err := chainhash.NewHashFromStr(testPrevTxid)
	require.NoError(t, err)
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, 0), nil, nil))
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, 1), nil, nil))
	script := []byte{0x00, 0x14}
	script = append(script, make([]byte, 20)...)
	tx.AddTxOut(wire.NewTxOut(1000, script))
	packet, err := psbt.NewFromUnsignedTx(tx)
	require.NoError(t, err)

	packet.Inputs[0].FinalScriptSig = []byte{0x51}
	p := &Psbt{packet: packet}
	extracted, err := p.Extract()
	require.NoError(t, err)
	assert.NotEmpty(t, extracted.InputScriptSig(0))
	assert.Empty(t, extracted.InputScriptSig(1))
	assert.Empty(t, extracted.InputWitness(1))
}

func TestSetInputFinalizationData(t *testing.T) {
	packet := newTestPacket(t, []int64{99000})
	p := &Psbt{packet: packet}

	signedTx := packet.UnsignedTx.Copy()
	signedTx.TxIn[0].SignatureScript = []byte{0x51, 0x52}
	signedTx.TxIn[0].Witness = wire.TxWitness{{0xaa}, {0xbb}}

	err := p.SetInputFinalizationData(0, &ExtractedTx{bitcoin: signedTx})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x51, 0x52}, p.packet.Inputs[0].FinalScriptSig)
	assert.NotEmpty(t, p.packet.Inputs[0].FinalScriptWitness)

	err = p.SetInputFinalizationData(5, &ExtractedTx{bitcoin: signedTx})
	assert.Equal(t, ErrInputIndexOutOfRange, err)
}

func TestWitnessSerializationRoundTrip(t *testing.T) {
	witness := [][]byte{{}, {0x01}, []byte(strings.Repeat("a", 80))}
	serialized := bufferutil.SerializeTxWitness(witness)
	deserialized, err := bufferutil.DeserializeTxWitness(serialized)
	require.NoError(t, err)
	assert.Equal(t, witness, deserialized)
}
