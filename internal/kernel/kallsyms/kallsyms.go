package kallsyms

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxSymbols bounds the symbol count accepted while searching for
// kallsyms_num_syms.
const MaxSymbols = 1 << 21

var (
	// ErrTokenTableNotFound is returned when no valid token table exists.
	ErrTokenTableNotFound = errors.New("kallsyms token table not found")
	// ErrNamesNotFound is returned when the names and markers tables cannot
	// be matched to the token table.
	ErrNamesNotFound = errors.New("kallsyms names table not found")
	// ErrAddressesNotFound is returned when neither an offsets nor an
	// absolute address table precedes the symbol count.
	ErrAddressesNotFound = errors.New("kallsyms address table not found")
	// ErrSymbolNotFound is returned by Address for unknown names.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// tokenDigits is the run of token table entries for '0' through '9'.
var tokenDigits = []byte("0\x001\x002\x003\x004\x005\x006\x007\x008\x009\x00")

// Symbol is one decoded kallsyms entry.
type Symbol struct {
	Name    string
	Type    byte
	Address uint64
}

// Layout records where each table was found, as offsets into the image.
type Layout struct {
	Addresses    int
	RelativeBase uint64 // zero for absolute address tables
	NumSyms      int
	Names        int
	Markers      int
	MarkerWidth  int
	TokenTable   int
	TokenIndex   int
}

// Table is a decoded kallsyms table.
type Table struct {
	Layout  Layout
	symbols []Symbol
	byName  map[string]int
}

// Parse locates and decodes the kallsyms tables in image.
func Parse(image []byte) (*Table, error) {
	var layout Layout

	tokens, err := findTokenTable(image, &layout)
	if err != nil {
		return nil, err
	}

	names, err := findNames(image, &layout)
	if err != nil {
		return nil, err
	}

	addrs, err := findAddresses(image, len(names), &layout)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Layout:  layout,
		symbols: make([]Symbol, 0, len(names)),
		byName:  make(map[string]int, len(names)),
	}

	var sb bytes.Buffer
	for i, raw := range names {
		sb.Reset()
		for _, idx := range raw {
			sb.WriteString(tokens[idx])
		}
		expanded := sb.Bytes()
		if len(expanded) == 0 {
			continue
		}

		sym := Symbol{
			Type:    expanded[0],
			Name:    string(expanded[1:]),
			Address: addrs[i],
		}
		if _, dup := t.byName[sym.Name]; !dup {
			t.byName[sym.Name] = len(t.symbols)
		}
		t.symbols = append(t.symbols, sym)
	}

	return t, nil
}

// Len returns the number of decoded symbols.
func (t *Table) Len() int {
	return len(t.symbols)
}

// Symbols returns the decoded symbols in table order.
func (t *Table) Symbols() []Symbol {
	return t.symbols
}

// Lookup returns the first symbol named name.
func (t *Table) Lookup(name string) (Symbol, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return t.symbols[i], true
}

// Address returns the address of name or ErrSymbolNotFound.
func (t *Table) Address(name string) (uint64, error) {
	sym, ok := t.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, ErrSymbolNotFound)
	}
	return sym.Address, nil
}

// findTokenTable anchors on the digit tokens, walks back to token 0 and
// accepts the candidate only when a matching token index follows it.
func findTokenTable(image []byte, layout *Layout) ([]string, error) {
	for from := 0; from < len(image); {
		i := bytes.Index(image[from:], tokenDigits)
		if i < 0 {
			break
		}
		pos := from + i
		from = pos + 1

		start, ok := walkBackStrings(image, pos, '0')
		if !ok {
			continue
		}

		tokens, offsets, end, ok := readStrings(image, start, 256)
		if !ok {
			continue
		}

		index, ok := findTokenIndex(image, end, offsets)
		if !ok {
			continue
		}

		layout.TokenTable = start
		layout.TokenIndex = index
		return tokens, nil
	}

	return nil, ErrTokenTableNotFound
}

// walkBackStrings returns the start of the first of n NUL-terminated,
// non-empty strings that end right before pos.
func walkBackStrings(image []byte, pos, n int) (int, bool) {
	i := pos
	for k := 0; k < n; k++ {
		if i < 2 || image[i-1] != 0 {
			return 0, false
		}
		i--
		j := i
		for j > 0 && image[j-1] != 0 {
			j--
		}
		if j == i {
			return 0, false
		}
		i = j
	}
	return i, true
}

// readStrings reads n non-empty NUL-terminated strings starting at start.
func readStrings(image []byte, start, n int) ([]string, []int, int, bool) {
	strs := make([]string, 0, n)
	offsets := make([]int, 0, n)
	p := start
	for k := 0; k < n; k++ {
		end := bytes.IndexByte(image[p:], 0)
		if end <= 0 {
			return nil, nil, 0, false
		}
		offsets = append(offsets, p-start)
		strs = append(strs, string(image[p:p+end]))
		p += end + 1
	}
	return strs, offsets, p, true
}

func findTokenIndex(image []byte, end int, offsets []int) (int, bool) {
	seen := map[int]bool{}
	for _, align := range []int{8, 4, 2} {
		pos := alignUp(end, align)
		if seen[pos] {
			continue
		}
		seen[pos] = true

		if pos+2*len(offsets) > len(image) {
			continue
		}
		match := true
		for k, off := range offsets {
			if int(binary.LittleEndian.Uint16(image[pos+2*k:])) != off {
				match = false
				break
			}
		}
		if match {
			return pos, true
		}
	}
	return 0, false
}

// findNames searches backwards from the token table for a symbol count
// whose names and markers end exactly at the token table.
func findNames(image []byte, layout *Layout) ([][]byte, error) {
	tableStart := layout.TokenTable

	for p := alignDown(tableStart-16, 8); p >= 0; p -= 8 {
		n := binary.LittleEndian.Uint64(image[p:])
		if n == 0 || n > MaxSymbols {
			continue
		}

		namesStart := p + 8
		names, markers, namesEnd, ok := readNames(image, namesStart, int(n), tableStart)
		if !ok {
			continue
		}

		markersStart := alignUp(namesEnd, 8)
		for _, width := range []int{8, 4} {
			if alignUp(markersStart+len(markers)*width, 8) != tableStart {
				continue
			}
			if !markersMatch(image, markersStart, width, markers) {
				continue
			}
			layout.NumSyms = p
			layout.Names = namesStart
			layout.Markers = markersStart
			layout.MarkerWidth = width
			return names, nil
		}
	}

	return nil, ErrNamesNotFound
}

// readNames reads n length-prefixed entries and the names offset of every
// 256th entry. Reading stops with false if it would cross limit.
func readNames(image []byte, start, n, limit int) ([][]byte, []int, int, bool) {
	// Every entry takes at least two bytes.
	if 2*n > limit-start {
		return nil, nil, 0, false
	}
	names := make([][]byte, 0, n)
	markers := make([]int, 0, (n+255)/256)
	p := start
	for i := 0; i < n; i++ {
		if p >= limit {
			return nil, nil, 0, false
		}
		if i%256 == 0 {
			markers = append(markers, p-start)
		}

		length := int(image[p])
		p++
		// Entries longer than 127 tokens use a two-byte length.
		if length&0x80 != 0 {
			if p >= limit {
				return nil, nil, 0, false
			}
			length = length&0x7f | int(image[p])<<7
			p++
		}
		if length == 0 || p+length > limit {
			return nil, nil, 0, false
		}
		names = append(names, image[p:p+length])
		p += length
	}
	return names, markers, p, true
}

func markersMatch(image []byte, start, width int, markers []int) bool {
	for k, want := range markers {
		var got uint64
		if width == 8 {
			got = binary.LittleEndian.Uint64(image[start+8*k:])
		} else {
			got = uint64(binary.LittleEndian.Uint32(image[start+4*k:]))
		}
		if got != uint64(want) {
			return false
		}
	}
	return true
}

// findAddresses decodes the address table preceding kallsyms_num_syms.
// An absolute u64 table is recognised by every entry being a kernel
// address; otherwise int32 offsets from kallsyms_relative_base are used.
func findAddresses(image []byte, n int, layout *Layout) ([]uint64, error) {
	numSyms := layout.NumSyms

	if n > 1 {
		start := numSyms - 8*n
		if start >= 0 {
			addrs := make([]uint64, n)
			absolute := true
			for i := range addrs {
				addrs[i] = binary.LittleEndian.Uint64(image[start+8*i:])
				if !isKernelAddress(addrs[i]) {
					absolute = false
					break
				}
			}
			if absolute {
				layout.Addresses = start
				return addrs, nil
			}
		}
	}

	baseAt := numSyms - 8
	if baseAt < 0 {
		return nil, ErrAddressesNotFound
	}
	base := binary.LittleEndian.Uint64(image[baseAt:])
	if !isKernelAddress(base) {
		return nil, fmt.Errorf("relative base 0x%x: %w", base, ErrAddressesNotFound)
	}

	start := baseAt - alignUp(4*n, 8)
	if start < 0 {
		return nil, ErrAddressesNotFound
	}
	addrs := make([]uint64, n)
	for i := range addrs {
		addrs[i] = base + uint64(binary.LittleEndian.Uint32(image[start+4*i:]))
	}

	layout.Addresses = start
	layout.RelativeBase = base
	return addrs, nil
}

// isKernelAddress reports whether v lies in the arm64 kernel half of the
// address space.
func isKernelAddress(v uint64) bool {
	return v>>48 == 0xffff
}

func alignUp(v, align int) int {
	return (v + align - 1) &^ (align - 1)
}

func alignDown(v, align int) int {
	return v &^ (align - 1)
}
