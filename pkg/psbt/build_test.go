package psbt

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/go-elements/psetv2"
)

func TestFromJSONBitcoin(t *testing.T) {
	session := newFakeSession(t, Network{})
	prevTx := newFundingTx(t, []int64{100000, 50000})
	prevTxid := prevTx.TxHash().String()
	session.rawTxs[prevTxid] = serializeMsgTx(t, prevTx)

	csvScript := []byte{0x51, 0x52, 0x53}
	unsigned := wire.NewMsgTx(2)
	prevHash := prevTx.TxHash()
	unsigned.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil, nil))
	unsigned.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 1), nil, nil))
	unsigned.AddTxOut(wire.NewTxOut(140000, testWalletScript(3)))
	// The raw transaction may carry signature data, the document must
	// come out unsigned
	unsigned.TxIn[0].SignatureScript = []byte{0x51}
	unsigned.TxIn[0].Witness = wire.TxWitness{{0xaa}}
	txHex := hex.EncodeToString(serializeMsgTx(t, unsigned))

	details := &TransactionDetails{
		Transaction: txHex,
		TransactionInputs: []*TransactionInput{
			{
				Txhash:      prevTxid,
				PtIdx:       0,
				Satoshi:     100000,
				Pointer:     1,
				AddressType: AddressTypeP2wpkh,
				UserPath:    []uint32{1},
			},
			{
				Txhash:        prevTxid,
				PtIdx:         1,
				Satoshi:       50000,
				Pointer:       2,
				AddressType:   AddressTypeCsv,
				PrevoutScript: hex.EncodeToString(csvScript),
				UserPath:      []uint32{2},
			},
		},
		TransactionOutputs: []*TransactionOutput{{
			Satoshi:      140000,
			Scriptpubkey: hex.EncodeToString(testWalletScript(3)),
			Pointer:      3,
			AddressType:  AddressTypeP2wpkh,
			UserPath:     []uint32{3},
		}},
	}

	p, err := FromJSON(session, details, false)
	require.NoError(t, err)
	assert.False(t, p.IsLiquid())
	assert.Equal(t, uint32(0), p.OriginalVersion())
	assert.Equal(t, 2, p.NumInputs())

	// Multisig attaches the Green and user keypaths, never the recovery
	in := p.packet.Inputs[0]
	assert.Len(t, in.Bip32Derivation, 2)
	require.NotNil(t, in.WitnessUtxo)
	assert.Equal(t, int64(100000), in.WitnessUtxo.Value)
	assert.Empty(t, in.RedeemScript)

	csvIn := p.packet.Inputs[1]
	assert.Equal(t, csvScript, csvIn.WitnessScript)
	assert.Equal(t, p2wshProgram(csvScript), csvIn.RedeemScript)

	assert.Len(t, p.packet.Outputs[0].Bip32Derivation, 2)
	assert.Empty(t, p.packet.UnsignedTx.TxIn[0].SignatureScript)

	encoded, err := p.ToBase64()
	require.NoError(t, err)
	_, err = Parse(encoded, false)
	require.NoError(t, err)
}

func TestFromJSONLiquid(t *testing.T) {
	session := newFakeSession(t, Network{
		Liquid:      true,
		Electrum:    true,
		PolicyAsset: testPolicyAsset,
	})

	fundingPset, err := psetv2.New(
		[]psetv2.InputArgs{{Txid: testPrevTxid, TxIndex: 0}},
		[]psetv2.OutputArgs{{
			Asset:  testPolicyAsset,
			Amount: 100000,
			Script: testWalletScript(1),
		}},
		nil,
	)
	require.NoError(t, err)
	prevTx, err := fundingPset.UnsignedTx()
	require.NoError(t, err)
	prevTxid := prevTx.TxHash().String()
	prevTxHex, err := prevTx.ToHex()
	require.NoError(t, err)
	session.rawTxs[prevTxid] = mustDecodeHex(t, prevTxHex)

	spendingPset, err := psetv2.New(
		[]psetv2.InputArgs{{Txid: prevTxid, TxIndex: 0}},
		[]psetv2.OutputArgs{{Asset: testPolicyAsset, Amount: 500}},
		nil,
	)
	require.NoError(t, err)
	spendingTx, err := spendingPset.UnsignedTx()
	require.NoError(t, err)
	txHex, err := spendingTx.ToHex()
	require.NoError(t, err)

	details := &TransactionDetails{
		Transaction: txHex,
		TransactionInputs: []*TransactionInput{{
			Txhash:  prevTxid,
			PtIdx:   0,
			Satoshi: 100000,
			AssetID: testPolicyAsset,
		}},
		TransactionOutputs: []*TransactionOutput{{
			Satoshi: 500,
			AssetID: testPolicyAsset,
		}},
	}

	p, err := FromJSON(session, details, true)
	require.NoError(t, err)
	assert.True(t, p.IsLiquid())
	assert.Equal(t, uint32(2), p.OriginalVersion())
	require.NotNil(t, p.pset.Inputs[0].WitnessUtxo)

	// An explicit prevout needs no explicit proofs
	assert.Empty(t, p.pset.Inputs[0].ValueProof)
	assert.Empty(t, p.pset.Inputs[0].AssetProof)

	encoded, err := p.ToBase64()
	require.NoError(t, err)
	_, err = Parse(encoded, true)
	require.NoError(t, err)
}

func TestFailingFromJSON(t *testing.T) {
	session := newFakeSession(t, Network{})

	_, err := FromJSON(session, &TransactionDetails{Error: "boom"}, false)
	assert.Equal(t, ErrDetailsWithError, err)

	liquidSession := newFakeSession(t, Network{
		Liquid: true, Electrum: true, PolicyAsset: testPolicyAsset,
	})
	pset, err := psetv2.New(
		[]psetv2.InputArgs{{Txid: testPrevTxid, TxIndex: 0}},
		[]psetv2.OutputArgs{{Asset: testPolicyAsset, Amount: 500}},
		nil,
	)
	require.NoError(t, err)
	tx, err := pset.UnsignedTx()
	require.NoError(t, err)
	txHex, err := tx.ToHex()
	require.NoError(t, err)

	// A non-fee output without its blinding key can't be rebuilt
	_, err = FromJSON(liquidSession, &TransactionDetails{
		Transaction: txHex,
		TransactionOutputs: []*TransactionOutput{{
			Satoshi:      500,
			AssetID:      testPolicyAsset,
			Scriptpubkey: hex.EncodeToString(testWalletScript(1)),
		}},
	}, true)
	assert.Equal(t, ErrMissingBlindingKey, err)
}
