// Package compression provides the dictionary stage of the dlzw codec.
//
// The encoder maps a residual stream to 16-bit codes with an adaptive
// LZW dictionary. The dictionary is never transmitted: encoder and decoder
// start from the same 511 single-symbol entries and grow it by the same
// rule, one entry per emitted code, until the 16-bit code space is full.
// After that both sides keep matching against the frozen table.
package compression

import (
	"errors"
	"fmt"
)

// LZW errors
var (
	ErrLZWSymbolRange = errors.New("compression: residual outside [-255, 255]")
	ErrLZWInvalidCode = errors.New("compression: invalid LZW code")
	ErrLZWShortStream = errors.New("compression: LZW code stream ended early")
	ErrLZWOverflow    = errors.New("compression: LZW code stream overruns expected length")
	ErrLZWOddPayload  = errors.New("compression: LZW payload has odd length")
)

// initialExpansion sizes the decoder's first output buffer per code; expand
// grows it when a stream compresses better than that.
const initialExpansion = 64

// lzwEncoder holds the per-call state of one encode: the dictionary, the
// code of the current match and the codes emitted so far.
type lzwEncoder struct {
	dict  *dictionary
	match uint16
	empty bool
	codes []uint16
}

func newLZWEncoder(sizeHint int) *lzwEncoder {
	return &lzwEncoder{
		dict:  newDictionary(true),
		empty: true,
		codes: make([]uint16, 0, sizeHint/4+1),
	}
}

// write consumes one symbol. The symbol must already be range checked.
func (e *lzwEncoder) write(s Symbol) {
	if e.empty {
		// [s] is always preloaded, so the first symbol only starts a match.
		e.match = rootCode(s)
		e.empty = false
		return
	}
	if code, ok := e.dict.lookup(e.match, s); ok {
		e.match = code
		return
	}
	e.codes = append(e.codes, e.match)
	e.dict.add(e.match, s)
	e.match = rootCode(s)
}

// finish emits the code of the pending match and returns all codes.
func (e *lzwEncoder) finish() []uint16 {
	if !e.empty {
		e.codes = append(e.codes, e.match)
		e.empty = true
	}
	return e.codes
}

// LZWEncode converts a residual stream into a code stream.
//
// Codes are emitted in stream order; the last one is the code of whatever
// match is pending when the input runs out. An empty input produces no
// codes.
func LZWEncode(src []Symbol) ([]uint16, error) {
	if len(src) == 0 {
		return nil, nil
	}

	e := newLZWEncoder(len(src))
	for i, s := range src {
		if s < MinSymbol || s > MaxSymbol {
			return nil, fmt.Errorf("%w: %d at index %d", ErrLZWSymbolRange, s, i)
		}
		e.write(s)
	}
	return e.finish(), nil
}

// LZWDecode converts a code stream back into exactly expected residuals.
//
// The decoder rebuilds the encoder's dictionary one step behind it. A code
// equal to the next unassigned code refers to the entry the encoder created
// while emitting the previous code; its sequence is the previous sequence
// followed by its own first symbol. Growth stops at MaxCodes, matching the
// encoder's test.
func LZWDecode(codes []uint16, expected int) ([]Symbol, error) {
	if expected < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrLZWOverflow, expected)
	}
	if len(codes) == 0 {
		if expected != 0 {
			return nil, fmt.Errorf("%w: no codes for %d residuals", ErrLZWShortStream, expected)
		}
		return []Symbol{}, nil
	}

	prev := codes[0]
	if int(prev) >= NumSymbols {
		return nil, fmt.Errorf("%w: first code %d", ErrLZWInvalidCode, prev)
	}
	if expected < 1 {
		return nil, fmt.Errorf("%w: %d codes for 0 residuals", ErrLZWOverflow, len(codes))
	}

	// No entry is longer than MaxCodes symbols, so a declared length the
	// codes cannot reach is rejected before anything is allocated for it.
	if len(codes) < (expected+MaxCodes-1)/MaxCodes {
		return nil, fmt.Errorf("%w: %d codes cannot produce %d residuals", ErrLZWShortStream, len(codes), expected)
	}

	d := newDictionary(false)
	dst := make([]Symbol, 0, min(expected, len(codes)*initialExpansion))
	dst = d.expand(dst, prev)

	for i := 1; i < len(codes); i++ {
		if len(dst) == expected {
			return nil, fmt.Errorf("%w: %d trailing codes", ErrLZWOverflow, len(codes)-i)
		}

		k := codes[i]
		n := d.Len()
		switch {
		case int(k) < n:
			d.add(prev, d.firstOf(k))
		case int(k) == n:
			d.add(prev, d.firstOf(prev))
		default:
			return nil, fmt.Errorf("%w: code %d at index %d, next code is %d", ErrLZWInvalidCode, k, i, n)
		}

		if len(dst)+d.seqLen(k) > expected {
			return nil, fmt.Errorf("%w: code %d at index %d", ErrLZWOverflow, k, i)
		}
		dst = d.expand(dst, k)
		prev = k
	}

	if len(dst) < expected {
		return nil, fmt.Errorf("%w: have %d residuals, want %d", ErrLZWShortStream, len(dst), expected)
	}
	return dst, nil
}
