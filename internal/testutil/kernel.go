package testutil

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// DefaultKernelBase is the virtual address of file offset 0 in images built
// by KernelImage, matching a 39-bit VA arm64 kernel.
const DefaultKernelBase = 0xffffff8008080000

// Token 0x01 of the synthetic token table expands to this string, so names
// containing it exercise multi-character token expansion.
const compressedToken = "load_"

// ARM64 encodings (little-endian words) for building function bodies.
const (
	InsnSTPFramePair = 0xa9bf7bfd // stp x29, x30, [sp, #-16]!
	InsnMovX29SP     = 0x910003fd // mov x29, sp
	InsnSubSP        = 0xd10083ff // sub sp, sp, #0x20
	InsnNop          = 0xd503201f // nop
	InsnRet          = 0xd65f03c0 // ret
)

// KernelSymbol is one kallsyms entry in a synthetic image.
type KernelSymbol struct {
	Name string
	// Type is the nm-style type character; zero means 'T'.
	Type byte
	// Offset is the symbol address relative to the image base.
	Offset uint64
}

// KernelImage describes a synthetic raw arm64 kernel Image with a
// base-relative kallsyms table, laid out the way scripts/kallsyms emits it.
type KernelImage struct {
	// Base is the virtual address of file offset 0. Zero means DefaultKernelBase.
	Base uint64
	// Release is written as a "Linux version" banner. Empty omits the banner.
	Release string
	// Symbols are emitted in order, followed by Fillers generated symbols.
	Symbols []KernelSymbol
	Fillers int
	// MarkerWidth is 8 (older kernels) or 4. Zero means 8.
	MarkerWidth int
	// Code places raw bytes at file offsets below CodeSize.
	Code map[uint64][]byte
	// OmitKallsyms leaves the symbol tables out entirely.
	OmitKallsyms bool
	// Absolute emits a pre-4.6 absolute address table instead of offsets
	// plus relative base.
	Absolute bool
}

// CodeSize is the size of the code region at the start of built images.
const CodeSize = 0x4000

// ARM64Code encodes instruction words little-endian.
func ARM64Code(words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

// StandardSymbols returns _text at offset 0, a few neighbours and
// load_module at loadModule.
func StandardSymbols(loadModule uint64) []KernelSymbol {
	return []KernelSymbol{
		{Name: "_text", Offset: 0},
		{Name: "_stext", Offset: 0x800},
		{Name: "do_init_module", Type: 't', Offset: loadModule - 0x100},
		{Name: "load_module", Type: 't', Offset: loadModule},
		{Name: "sys_init_module", Offset: loadModule + 0x200},
	}
}

// Build renders the image.
func (k KernelImage) Build() []byte {
	base := k.Base
	if base == 0 {
		base = DefaultKernelBase
	}
	width := k.MarkerWidth
	if width == 0 {
		width = 8
	}

	img := make([]byte, CodeSize)
	// arm64 Image header: branch to stext and the "ARM\x64" magic at 0x38.
	binary.LittleEndian.PutUint32(img[0:], 0x14000200)
	copy(img[0x38:], "ARM\x64")
	for off, code := range k.Code {
		copy(img[off:], code)
	}

	if k.Release != "" {
		banner := fmt.Sprintf("Linux version %s (builder@localhost) (gcc version 4.9.x 20150123 (prerelease) (GCC) ) #1 SMP PREEMPT\n", k.Release)
		img = append(img, banner...)
		img = append(img, 0)
	}
	img = pad(img, 0x1000)

	if k.OmitKallsyms {
		return append(img, make([]byte, 0x100)...)
	}

	symbols := append([]KernelSymbol(nil), k.Symbols...)
	for i := 0; i < k.Fillers; i++ {
		symbols = append(symbols, KernelSymbol{
			Name:   fmt.Sprintf("kfind_filler_%04d", i),
			Type:   't',
			Offset: 0x1000 + uint64(i)*8,
		})
	}
	n := len(symbols)

	if k.Absolute {
		for _, sym := range symbols {
			img = binary.LittleEndian.AppendUint64(img, base+sym.Offset)
		}
	} else {
		for _, sym := range symbols {
			img = binary.LittleEndian.AppendUint32(img, uint32(sym.Offset))
		}
		img = pad(img, 8)
		img = binary.LittleEndian.AppendUint64(img, base)
	}
	img = binary.LittleEndian.AppendUint64(img, uint64(n))

	var markers []uint64
	namesStart := len(img)
	for i, sym := range symbols {
		if i%256 == 0 {
			markers = append(markers, uint64(len(img)-namesStart))
		}
		typ := sym.Type
		if typ == 0 {
			typ = 'T'
		}
		encoded := encodeSymbol(string(typ) + sym.Name)
		img = append(img, byte(len(encoded)))
		img = append(img, encoded...)
	}
	img = pad(img, 8)

	for _, m := range markers {
		if width == 4 {
			img = binary.LittleEndian.AppendUint32(img, uint32(m))
		} else {
			img = binary.LittleEndian.AppendUint64(img, m)
		}
	}
	img = pad(img, 8)

	tokens := tokenTable()
	tableStart := len(img)
	index := make([]uint16, 256)
	for i, tok := range tokens {
		index[i] = uint16(len(img) - tableStart)
		img = append(img, tok...)
		img = append(img, 0)
	}
	img = pad(img, 8)
	for _, idx := range index {
		img = binary.LittleEndian.AppendUint16(img, idx)
	}
	img = pad(img, 8)

	return append(img, make([]byte, 0x100)...)
}

// WriteKernelImage builds k into a file under a test temp dir and returns its path.
func WriteKernelImage(t *testing.T, name string, k KernelImage) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, k.Build(), 0o644); err != nil {
		t.Fatalf("failed to write kernel image: %v", err)
	}
	return path
}

// tokenTable maps printable ASCII to itself, token 0x01 to compressedToken
// and every other byte to a unique three-character placeholder.
func tokenTable() []string {
	tokens := make([]string, 256)
	for i := range tokens {
		switch {
		case i == 0x01:
			tokens[i] = compressedToken
		case i >= 0x20 && i < 0x7f:
			tokens[i] = string(rune(i))
		default:
			tokens[i] = fmt.Sprintf("~%02x", i)
		}
	}
	return tokens
}

func encodeSymbol(s string) []byte {
	var out []byte
	for i := 0; i < len(s); {
		if len(s)-i >= len(compressedToken) && s[i:i+len(compressedToken)] == compressedToken {
			out = append(out, 0x01)
			i += len(compressedToken)
			continue
		}
		out = append(out, s[i])
		i++
	}
	return out
}

func pad(b []byte, align int) []byte {
	for len(b)%align != 0 {
		b = append(b, 0)
	}
	return b
}
