package compression

// Symbol is one residual value, in [MinSymbol, MaxSymbol].
type Symbol = int16

// Dictionary constants
const (
	MinSymbol Symbol = -255
	MaxSymbol Symbol = 255

	// NumSymbols is the number of preloaded single-symbol entries.
	NumSymbols = int(MaxSymbol) - int(MinSymbol) + 1

	// MaxCodes caps the dictionary at the 16-bit code space.
	MaxCodes = 1 << 16
)

// dictEntry describes one symbol sequence as its prefix code plus the
// symbol appended to it. Roots have prefix -1.
type dictEntry struct {
	prefix int32
	length int32
	last   Symbol
	first  Symbol
}

// dictionary is the adaptive sequence table shared in shape by the encoder
// and the decoder. Codes are indices into entries. Only the encoder needs
// the (prefix, symbol) index.
type dictionary struct {
	entries []dictEntry
	index   map[uint32]uint16
}

func newDictionary(indexed bool) *dictionary {
	d := &dictionary{entries: make([]dictEntry, NumSymbols, 4096)}
	for i := range d.entries {
		s := Symbol(i) + MinSymbol
		d.entries[i] = dictEntry{prefix: -1, length: 1, last: s, first: s}
	}
	if indexed {
		d.index = make(map[uint32]uint16, 4096)
	}
	return d
}

// rootCode returns the preloaded code of the one-symbol sequence [s].
func rootCode(s Symbol) uint16 {
	return uint16(int(s) - int(MinSymbol))
}

func dictKey(prefix uint16, s Symbol) uint32 {
	return uint32(prefix)<<9 | uint32(rootCode(s))
}

// Len returns the number of entries.
func (d *dictionary) Len() int {
	return len(d.entries)
}

// Full reports whether the dictionary reached MaxCodes entries.
func (d *dictionary) Full() bool {
	return len(d.entries) >= MaxCodes
}

// lookup returns the code of sequence(prefix)+[s] if present.
func (d *dictionary) lookup(prefix uint16, s Symbol) (uint16, bool) {
	code, ok := d.index[dictKey(prefix, s)]
	return code, ok
}

// add inserts sequence(prefix)+[s] under the next code. It reports false,
// adding nothing, once the dictionary is full.
func (d *dictionary) add(prefix uint16, s Symbol) bool {
	if d.Full() {
		return false
	}
	p := &d.entries[prefix]
	code := uint16(len(d.entries))
	d.entries = append(d.entries, dictEntry{
		prefix: int32(prefix),
		length: p.length + 1,
		last:   s,
		first:  p.first,
	})
	if d.index != nil {
		d.index[dictKey(prefix, s)] = code
	}
	return true
}

// seqLen returns the length of the sequence for code.
func (d *dictionary) seqLen(code uint16) int {
	return int(d.entries[code].length)
}

// firstOf returns the first symbol of the sequence for code.
func (d *dictionary) firstOf(code uint16) Symbol {
	return d.entries[code].first
}

// expand appends the sequence for code to dst.
func (d *dictionary) expand(dst []Symbol, code uint16) []Symbol {
	e := &d.entries[code]
	n := int(e.length)
	start := len(dst)
	if cap(dst)-start < n {
		nd := make([]Symbol, start, 2*cap(dst)+n)
		copy(nd, dst)
		dst = nd
	}
	dst = dst[:start+n]
	for i := start + n - 1; ; i-- {
		dst[i] = e.last
		if e.prefix < 0 {
			break
		}
		e = &d.entries[e.prefix]
	}
	return dst
}
