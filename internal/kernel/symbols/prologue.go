package symbols

import (
	"fmt"

	"golang.org/x/arch/arm64/arm64asm"
)

// prologueWindow is how many instructions after a symbol are searched for a
// frame setup. Kernels built with BTI or pointer authentication put
// bti/paciasp hints before it.
const prologueWindow = 8

// PrologueKind names a recognised ARM64 function entry sequence.
type PrologueKind string

const (
	// PrologueSTPFramePair is stp x29, x30, [sp, #-N]! (optionally followed by mov x29, sp).
	PrologueSTPFramePair PrologueKind = "stp_frame_pair"
	// PrologueSubSP is sub sp, sp, #N.
	PrologueSubSP PrologueKind = "sub_sp"
	// PrologueSTRLRPreIndex is str x30, [sp, #-N]!.
	PrologueSTRLRPreIndex PrologueKind = "str_lr_preindex"
)

// Prologue is a frame setup found near a symbol address.
type Prologue struct {
	Kind PrologueKind
	// Skip is the byte distance from the symbol to the matched instruction.
	Skip int
	Text string
}

// FindPrologue decodes the first instructions of code and returns the first
// frame setup it recognises.
func FindPrologue(code []byte) (Prologue, bool) {
	for i := 0; i < prologueWindow && 4*i+4 <= len(code); i++ {
		inst, err := arm64asm.Decode(code[4*i : 4*i+4])
		if err != nil {
			continue
		}

		var kind PrologueKind
		switch {
		case isSTPx29x30PreIndex(inst):
			kind = PrologueSTPFramePair
		case isSubSP(inst):
			kind = PrologueSubSP
		case isSTRx30PreIndex(inst):
			kind = PrologueSTRLRPreIndex
		default:
			continue
		}

		return Prologue{Kind: kind, Skip: 4 * i, Text: inst.String()}, true
	}
	return Prologue{}, false
}

func (p Prologue) String() string {
	return fmt.Sprintf("%s at +%d: %s", p.Kind, p.Skip, p.Text)
}

func isSTPx29x30PreIndex(inst arm64asm.Inst) bool {
	if inst.Op != arm64asm.STP {
		return false
	}
	r0, ok0 := inst.Args[0].(arm64asm.Reg)
	r1, ok1 := inst.Args[1].(arm64asm.Reg)
	mem, ok2 := inst.Args[2].(arm64asm.MemImmediate)
	return ok0 && ok1 && ok2 &&
		r0 == arm64asm.X29 && r1 == arm64asm.X30 &&
		mem.Mode == arm64asm.AddrPreIndex
}

func isSubSP(inst arm64asm.Inst) bool {
	if inst.Op != arm64asm.SUB {
		return false
	}
	dst, ok0 := inst.Args[0].(arm64asm.RegSP)
	src, ok1 := inst.Args[1].(arm64asm.RegSP)
	return ok0 && ok1 &&
		dst == arm64asm.RegSP(arm64asm.SP) && src == arm64asm.RegSP(arm64asm.SP)
}

func isSTRx30PreIndex(inst arm64asm.Inst) bool {
	if inst.Op != arm64asm.STR {
		return false
	}
	r0, ok0 := inst.Args[0].(arm64asm.Reg)
	mem, ok1 := inst.Args[1].(arm64asm.MemImmediate)
	return ok0 && ok1 && r0 == arm64asm.X30 && mem.Mode == arm64asm.AddrPreIndex
}
