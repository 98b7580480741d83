package encoder

import (
	"github.com/lookbusy1344/lc3-emulator/isa"
	"github.com/lookbusy1344/lc3-emulator/parser"
)

// branchFlags gives the nzp field (bits 11..9) for each BR variant. A bare
// BR branches unconditionally.
var branchFlags = map[parser.TokenKind]uint16{
	parser.TokenBR:    isa.CondN | isa.CondZ | isa.CondP,
	parser.TokenBRn:   isa.CondN,
	parser.TokenBRz:   isa.CondZ,
	parser.TokenBRp:   isa.CondP,
	parser.TokenBRnz:  isa.CondN | isa.CondZ,
	parser.TokenBRnp:  isa.CondN | isa.CondP,
	parser.TokenBRzp:  isa.CondZ | isa.CondP,
	parser.TokenBRnzp: isa.CondN | isa.CondZ | isa.CondP,
}

// trapVectors gives the vector for each trap alias mnemonic
var trapVectors = map[parser.TokenKind]uint16{
	parser.TokenGETC:  isa.TrapGETC,
	parser.TokenOUT:   isa.TrapOUT,
	parser.TokenPUTS:  isa.TrapPUTS,
	parser.TokenIN:    isa.TrapIN,
	parser.TokenPUTSP: isa.TrapPUTSP,
	parser.TokenHALT:  isa.TrapHALT,
}

// pcRelativeOpcodes maps the PC-relative load/store mnemonics to opcodes
var pcRelativeOpcodes = map[parser.TokenKind]uint16{
	parser.TokenLD:  isa.OpLD,
	parser.TokenLDI: isa.OpLDI,
	parser.TokenLEA: isa.OpLEA,
	parser.TokenST:  isa.OpST,
	parser.TokenSTI: isa.OpSTI,
}

// encodeInstruction dispatches on the mnemonic, computes the instruction
// word and emits it. Operand consumers handle reporting and recovery, so a
// failed line emits nothing.
func (e *Encoder) encodeInstruction() {
	tok := e.advance()

	var word uint16
	var ok bool

	switch kind := tok.Kind; {
	case kind == parser.TokenADD:
		word, ok = e.encodeArithmetic(isa.OpADD)
	case kind == parser.TokenAND:
		word, ok = e.encodeArithmetic(isa.OpAND)
	case kind == parser.TokenNOT:
		word, ok = e.encodeNot()
	case kind.IsBranch():
		word, ok = e.encodeBranch(tok)
	case kind == parser.TokenJMP:
		word, ok = e.encodeJmp()
	case kind == parser.TokenRET:
		word, ok = isa.OpJMP<<12|7<<6, true
	case kind == parser.TokenJSR:
		word, ok = e.encodeJsr(tok)
	case kind == parser.TokenJSRR:
		word, ok = e.encodeJsrr()
	case kind == parser.TokenLDR:
		word, ok = e.encodeBaseOffset(isa.OpLDR)
	case kind == parser.TokenSTR:
		word, ok = e.encodeBaseOffset(isa.OpSTR)
	case kind == parser.TokenRTI:
		word, ok = isa.OpRTI<<12, true
	case kind == parser.TokenTRAP:
		word, ok = e.encodeTrap()
	default:
		if op, isPCRel := pcRelativeOpcodes[kind]; isPCRel {
			word, ok = e.encodePCRelative(op, tok)
		} else if vec, isTrap := trapVectors[kind]; isTrap {
			word, ok = isa.OpTRAP<<12|vec, true
		}
	}

	if !ok {
		return
	}
	if !e.endLine() {
		return
	}
	e.emit(word)
}

// encodeArithmetic encodes ADD and AND: register mode clears bit 5,
// immediate mode sets it and carries a 5-bit immediate
func (e *Encoder) encodeArithmetic(op uint16) (uint16, bool) {
	rd, ok := e.reg()
	if !ok {
		return 0, false
	}
	if !e.comma() {
		return 0, false
	}
	rs, ok := e.reg()
	if !ok {
		return 0, false
	}
	if !e.comma() {
		return 0, false
	}
	v, imm, ok := e.regOrNum()
	if !ok {
		return 0, false
	}

	word := op<<12 | rd<<9 | rs<<6
	if imm {
		word |= 1<<5 | v&0x1F
	} else {
		word |= v
	}
	return word, true
}

func (e *Encoder) encodeNot() (uint16, bool) {
	rd, ok := e.reg()
	if !ok {
		return 0, false
	}
	if !e.comma() {
		return 0, false
	}
	rs, ok := e.reg()
	if !ok {
		return 0, false
	}
	return isa.OpNOT<<12 | rd<<9 | rs<<6 | 0x3F, true
}

func (e *Encoder) encodeBranch(tok parser.Token) (uint16, bool) {
	target, ok := e.label()
	if !ok {
		return 0, false
	}
	offset, ok := e.pcOffset(tok, target, 9)
	if !ok {
		return 0, false
	}
	return isa.OpBR<<12 | branchFlags[tok.Kind]<<9 | offset, true
}

func (e *Encoder) encodeJmp() (uint16, bool) {
	rs, ok := e.reg()
	if !ok {
		return 0, false
	}
	return isa.OpJMP<<12 | rs<<6, true
}

func (e *Encoder) encodeJsr(tok parser.Token) (uint16, bool) {
	target, ok := e.label()
	if !ok {
		return 0, false
	}
	offset, ok := e.pcOffset(tok, target, 11)
	if !ok {
		return 0, false
	}
	return isa.OpJSR<<12 | 1<<11 | offset, true
}

func (e *Encoder) encodeJsrr() (uint16, bool) {
	rs, ok := e.reg()
	if !ok {
		return 0, false
	}
	return isa.OpJSR<<12 | rs<<6, true
}

// encodePCRelative encodes LD, LDI, LEA, ST and STI, which all share the
// register + pcoffset9 shape
func (e *Encoder) encodePCRelative(op uint16, tok parser.Token) (uint16, bool) {
	r, ok := e.reg()
	if !ok {
		return 0, false
	}
	if !e.comma() {
		return 0, false
	}
	target, ok := e.label()
	if !ok {
		return 0, false
	}
	offset, ok := e.pcOffset(tok, target, 9)
	if !ok {
		return 0, false
	}
	return op<<12 | r<<9 | offset, true
}

// encodeBaseOffset encodes LDR and STR: register, base register and a
// 6-bit offset
func (e *Encoder) encodeBaseOffset(op uint16) (uint16, bool) {
	r, ok := e.reg()
	if !ok {
		return 0, false
	}
	if !e.comma() {
		return 0, false
	}
	base, ok := e.reg()
	if !ok {
		return 0, false
	}
	if !e.comma() {
		return 0, false
	}
	v, ok := e.num()
	if !ok {
		return 0, false
	}
	return op<<12 | r<<9 | base<<6 | v&0x3F, true
}

func (e *Encoder) encodeTrap() (uint16, bool) {
	v, ok := e.num()
	if !ok {
		return 0, false
	}
	return isa.OpTRAP<<12 | v&0xFF, true
}
