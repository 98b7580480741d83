package encoder

import (
	"github.com/lookbusy1344/lc3-emulator/parser"
)

// Token cursor and operand consumers. Each consumer either succeeds and
// returns the decoded value, or reports an error and resynchronizes the
// encoder past the next NEWLINE so the rest of the line is skipped.

func (e *Encoder) atEnd() bool {
	return e.pos >= len(e.tokens)
}

func (e *Encoder) current() parser.Token {
	return e.tokens[e.pos]
}

func (e *Encoder) advance() parser.Token {
	tok := e.tokens[e.pos]
	e.pos++
	return tok
}

func (e *Encoder) check(kind parser.TokenKind) bool {
	return !e.atEnd() && e.current().Kind == kind
}

func (e *Encoder) tokenPos(tok parser.Token) parser.Position {
	return parser.Position{Filename: e.filename, Line: tok.Line}
}

// resync advances past the next NEWLINE. Error recovery is line-scoped: a
// single bad operand poisons its line and nothing else.
func (e *Encoder) resync() {
	for !e.atEnd() {
		if e.advance().Kind == parser.TokenNewline {
			return
		}
	}
}

// operandError reports an operand-shape mismatch at the current token and
// resynchronizes
func (e *Encoder) operandError(message string) {
	if e.atEnd() {
		line := 0
		if len(e.tokens) > 0 {
			line = e.tokens[len(e.tokens)-1].Line
		}
		e.errors.AddError(parser.NewError(
			parser.Position{Filename: e.filename, Line: line},
			parser.ErrorInvalidOperand, message+", got end of input"))
		return
	}

	tok := e.current()
	e.errors.AddError(parser.NewErrorWithLexeme(e.tokenPos(tok),
		parser.ErrorInvalidOperand, message, tok.Lexeme))
	e.resync()
}

// reg requires one of the register tokens R0-R7
func (e *Encoder) reg() (uint16, bool) {
	if e.atEnd() || !e.current().Kind.IsRegister() {
		e.operandError("expected register")
		return 0, false
	}
	tok := e.advance()
	return uint16(tok.Kind - parser.TokenR0), true
}

// num requires a DECIMAL or HEX literal and returns its decoded value
func (e *Encoder) num() (uint16, bool) {
	if e.atEnd() || (!e.check(parser.TokenDecimal) && !e.check(parser.TokenHex)) {
		e.operandError("expected numeric literal")
		return 0, false
	}
	return e.advance().Value, true
}

// regOrNum accepts either a register or a numeric literal. The second
// return value reports whether the operand was a numeric (immediate) one.
func (e *Encoder) regOrNum() (value uint16, imm, ok bool) {
	if !e.atEnd() && e.current().Kind.IsRegister() {
		tok := e.advance()
		return uint16(tok.Kind - parser.TokenR0), false, true
	}
	if e.check(parser.TokenDecimal) || e.check(parser.TokenHex) {
		return e.advance().Value, true, true
	}
	e.operandError("expected register or numeric literal")
	return 0, false, false
}

// label requires an IDENT and resolves it in the symbol table
func (e *Encoder) label() (uint16, bool) {
	if e.atEnd() || !e.check(parser.TokenIdent) {
		e.operandError("expected label")
		return 0, false
	}

	tok := e.advance()
	offset, err := e.symbols.Get(tok.Lexeme)
	if err != nil {
		e.errors.AddError(parser.NewErrorWithLexeme(e.tokenPos(tok),
			parser.ErrorUndefinedLabel, "undefined label", tok.Lexeme))
		e.resync()
		return 0, false
	}
	return offset, true
}

// comma requires a COMMA separator
func (e *Encoder) comma() bool {
	if !e.check(parser.TokenComma) {
		e.operandError("expected comma")
		return false
	}
	e.advance()
	return true
}

// endLine requires a NEWLINE (or end of input) after a statement
func (e *Encoder) endLine() bool {
	if e.atEnd() {
		return true
	}
	if e.check(parser.TokenNewline) {
		e.advance()
		return true
	}
	e.operandError("expected end of line")
	return false
}

// pcOffset computes the PC-relative displacement from the instruction being
// emitted to the target word offset. The displacement is relative to the
// incremented PC, hence the +1. Targets outside the signed bit-width are
// rejected rather than silently truncated.
func (e *Encoder) pcOffset(tok parser.Token, target uint16, bits uint) (uint16, bool) {
	k := len(e.words) // offset the current instruction will occupy
	offset := int(target) - (k + 1)

	limit := 1 << (bits - 1)
	if offset < -limit || offset > limit-1 {
		e.errors.AddError(parser.NewErrorWithLexeme(e.tokenPos(tok),
			parser.ErrorRange, "pc-relative offset out of range", tok.Lexeme))
		e.resync()
		return 0, false
	}

	return uint16(offset) & (1<<bits - 1), true
}
