package bufferutil

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/vulpemventures/go-elements/elementsutil"
)

// ReverseBytes returns a copy of the given buffer in reverse order.
func ReverseBytes(buf []byte) []byte {
	return elementsutil.ReverseBytes(buf)
}

func AssetHashFromBytes(buffer []byte) string {
	// We remove the first byte from the buffer array that represents if confidential or unconfidential
	return hex.EncodeToString(elementsutil.ReverseBytes(buffer[1:]))
}

func AssetHashToBytes(str string) ([]byte, error) {
	buffer, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	buffer = elementsutil.ReverseBytes(buffer)
	buffer = append([]byte{0x01}, buffer...)
	return buffer, nil
}

// AssetHashToRawBytes returns the 32 byte asset tag in wire (reversed)
// order, without the explicit prefix byte.
func AssetHashToRawBytes(str string) ([]byte, error) {
	buffer, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	if len(buffer) != 32 {
		return nil, fmt.Errorf("asset must be a 32 byte array in hex format")
	}
	return elementsutil.ReverseBytes(buffer), nil
}

func ValueFromBytes(buffer []byte) uint64 {
	value, _ := elementsutil.ValueFromBytes(buffer)
	return value
}

func ValueToBytes(val uint64) ([]byte, error) {
	return elementsutil.ValueToBytes(val)
}

func TxIDFromBytes(buffer []byte) string {
	return hex.EncodeToString(elementsutil.ReverseBytes(buffer))
}

func TxIDToBytes(str string) ([]byte, error) {
	buffer, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	return elementsutil.ReverseBytes(buffer), nil
}

func CommitmentFromBytes(buffer []byte) string {
	return hex.EncodeToString(buffer)
}

func CommitmentToBytes(str string) ([]byte, error) {
	return hex.DecodeString(str)
}

// SerializeTxWitness encodes a witness stack in the wire format, ie. a
// compact size item count followed by compact size prefixed items.
func SerializeTxWitness(witness [][]byte) []byte {
	buf := new(bytes.Buffer)
	writeVarInt(buf, uint64(len(witness)))
	for _, item := range witness {
		writeVarInt(buf, uint64(len(item)))
		buf.Write(item)
	}
	return buf.Bytes()
}

// DeserializeTxWitness decodes a wire format witness stack.
func DeserializeTxWitness(buf []byte) ([][]byte, error) {
	r := bytes.NewReader(buf)
	count, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	witness := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		itemLen, err := readVarInt(r)
		if err != nil {
			return nil, err
		}
		item := make([]byte, itemLen)
		if _, err := io.ReadFull(r, item); err != nil {
			return nil, err
		}
		witness = append(witness, item)
	}
	return witness, nil
}

func writeVarInt(buf *bytes.Buffer, val uint64) {
	switch {
	case val < 0xfd:
		buf.WriteByte(byte(val))
	case val <= 0xffff:
		buf.WriteByte(0xfd)
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(val))
		buf.Write(b)
	case val <= 0xffffffff:
		buf.WriteByte(0xfe)
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(val))
		buf.Write(b)
	default:
		buf.WriteByte(0xff)
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, val)
		buf.Write(b)
	}
}

func readVarInt(r *bytes.Reader) (uint64, error) {
	discriminant, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	switch discriminant {
	case 0xfd:
		b := make([]byte, 2)
		if _, err := io.ReadFull(r, b); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 0xfe:
		b := make([]byte, 4)
		if _, err := io.ReadFull(r, b); err != nil {
			return 0, err
		}
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 0xff:
		b := make([]byte, 8)
		if _, err := io.ReadFull(r, b); err != nil {
			return 0, err
		}
		return binary.LittleEndian.Uint64(b), nil
	default:
		return uint64(discriminant), nil
	}
}
