package bufferutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAssetHash = "5ac9f65c0efcc4775e0baec4ec03abdde22473cd3cf33c0419ca290e0751b225"

func TestReverseBytes(t *testing.T) {
	assert.Equal(t, []byte{0x03, 0x02, 0x01}, ReverseBytes([]byte{0x01, 0x02, 0x03}))

	// The source buffer is left untouched
	buf := []byte{0x01, 0x02}
	ReverseBytes(buf)
	assert.Equal(t, []byte{0x01, 0x02}, buf)
}

func TestAssetHashRoundTrip(t *testing.T) {
	buf, err := AssetHashToBytes(testAssetHash)
	require.NoError(t, err)
	assert.Len(t, buf, 33)
	assert.Equal(t, byte(0x01), buf[0])
	assert.Equal(t, testAssetHash, AssetHashFromBytes(buf))

	raw, err := AssetHashToRawBytes(testAssetHash)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Equal(t, buf[1:], raw)

	_, err = AssetHashToRawBytes("0011")
	assert.Error(t, err)
}

func TestValueRoundTrip(t *testing.T) {
	for _, value := range []uint64{0, 1, 100000, 2099999997690000} {
		buf, err := ValueToBytes(value)
		require.NoError(t, err)
		assert.Len(t, buf, 9)
		assert.Equal(t, value, ValueFromBytes(buf))
	}
}

func TestTxIDRoundTrip(t *testing.T) {
	buf, err := TxIDToBytes(testAssetHash)
	require.NoError(t, err)
	assert.Len(t, buf, 32)
	assert.Equal(t, testAssetHash, TxIDFromBytes(buf))
}

func TestVarIntBoundaries(t *testing.T) {
	witness := make([][]byte, 0, 300)
	for i := 0; i < 300; i++ {
		witness = append(witness, []byte{byte(i)})
	}
	serialized := SerializeTxWitness(witness)
	// 300 items need the 0xfd 2 byte count encoding
	assert.Equal(t, byte(0xfd), serialized[0])

	deserialized, err := DeserializeTxWitness(serialized)
	require.NoError(t, err)
	assert.Equal(t, witness, deserialized)

	_, err = DeserializeTxWitness([]byte{0x02, 0x01})
	assert.Error(t, err)
}
