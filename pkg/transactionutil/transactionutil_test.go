package transactionutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vulpemventures/go-elements/transaction"

	"github.com/AreaLayer/gdk/pkg/bufferutil"
)

const testAssetHash = "5ac9f65c0efcc4775e0baec4ec03abdde22473cd3cf33c0419ca290e0751b225"

func TestUnblindExplicitOutput(t *testing.T) {
	asset, err := bufferutil.AssetHashToBytes(testAssetHash)
	require.NoError(t, err)
	value, err := bufferutil.ValueToBytes(100000)
	require.NoError(t, err)
	utxo := transaction.NewTxOutput(asset, value, []byte{0x00, 0x14})

	result, ok := UnblindOutput(utxo, nil)
	require.True(t, ok)
	assert.Equal(t, testAssetHash, result.AssetHash)
	assert.Equal(t, uint64(100000), result.Value)
	assert.Nil(t, result.AssetBlinder)
	assert.Nil(t, result.ValueBlinder)
}

func TestUnblindWithWrongKey(t *testing.T) {
	assetCommitment := append([]byte{0x0a}, make([]byte, 32)...)
	valueCommitment := append([]byte{0x09}, make([]byte, 32)...)
	utxo := transaction.NewTxOutput(assetCommitment, valueCommitment, []byte{0x00, 0x14})
	utxo.Nonce = append([]byte{0x02}, make([]byte, 32)...)
	utxo.RangeProof = []byte{0x01}

	result, ok := UnblindOutput(utxo, make([]byte, 32))
	assert.False(t, ok)
	assert.Nil(t, result)
}
