package compression

import (
	"fmt"

	"github.com/mrjoshuak/go-dlzw/internal/xdr"
)

// CodeSize is the serialized size of one code in bytes.
const CodeSize = 2

// PackCodes serializes codes two bytes each, most significant byte first.
func PackCodes(codes []uint16) []byte {
	w := xdr.NewBufferWriter(CodeSize * len(codes))
	w.WriteUint16s(codes)
	return w.Bytes()
}

// UnpackCodes parses a payload written by PackCodes.
func UnpackCodes(payload []byte) ([]uint16, error) {
	if len(payload)%CodeSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrLZWOddPayload, len(payload))
	}
	codes := make([]uint16, len(payload)/CodeSize)
	if err := xdr.NewReader(payload).ReadUint16s(codes); err != nil {
		return nil, err
	}
	return codes, nil
}

// LZWCompress encodes residuals and serializes the resulting codes.
func LZWCompress(src []Symbol) ([]byte, error) {
	codes, err := LZWEncode(src)
	if err != nil {
		return nil, err
	}
	return PackCodes(codes), nil
}

// LZWDecompress parses a packed code stream and decodes exactly expected
// residuals from it.
func LZWDecompress(payload []byte, expected int) ([]Symbol, error) {
	codes, err := UnpackCodes(payload)
	if err != nil {
		return nil, err
	}
	return LZWDecode(codes, expected)
}
