// Package encoder implements the second assembly pass: it walks the token
// sequence again, resolves labels against the symbol table built by the
// first pass, and emits the 16-bit instruction words.
package encoder

import (
	"github.com/lookbusy1344/lc3-emulator/objfile"
	"github.com/lookbusy1344/lc3-emulator/parser"
)

// Encoder converts a scanned token sequence into an object image
type Encoder struct {
	tokens   []parser.Token
	pos      int
	symbols  *parser.SymbolTable
	filename string
	errors   *parser.ErrorList

	origin    uint16
	originSet bool
	words     []uint16 // emitted program words, not counting the origin
}

// New creates an encoder over the token sequence and the sealed symbol
// table from the first pass
func New(tokens []parser.Token, symbols *parser.SymbolTable, filename string) *Encoder {
	return &Encoder{
		tokens:   tokens,
		symbols:  symbols,
		filename: filename,
		errors:   &parser.ErrorList{},
	}
}

// Encode runs the pass over the whole token sequence. On success it returns
// the object image; if any error was recorded the image is nil and the
// caller must not produce an object file.
func (e *Encoder) Encode() (*objfile.Image, *parser.ErrorList) {
	for !e.atEnd() {
		e.encodeLine()
	}

	if !e.originSet {
		e.errors.AddError(parser.NewError(
			parser.Position{Filename: e.filename, Line: 1},
			parser.ErrorSyntax,
			"missing .orig directive"))
	}

	if e.errors.HasErrors() {
		return nil, e.errors
	}
	return &objfile.Image{Origin: e.origin, Words: e.words}, e.errors
}

// Errors returns the accumulated encoding errors
func (e *Encoder) Errors() *parser.ErrorList {
	return e.errors
}

// encodeLine encodes one logical line: an optional label, then an
// instruction or directive with its operands, then a newline. Any mismatch
// is reported and recovery advances past the next NEWLINE.
func (e *Encoder) encodeLine() {
	for e.check(parser.TokenNewline) {
		e.advance()
	}
	if e.atEnd() {
		return
	}

	// Labels were bound in the first pass; here they are just consumed.
	if e.check(parser.TokenLabel) {
		e.advance()
	}
	if e.atEnd() {
		return
	}

	tok := e.current()
	switch {
	case tok.Kind == parser.TokenOrig:
		e.encodeOrig()
	case tok.Kind == parser.TokenFill:
		e.encodeFill()
	case tok.Kind == parser.TokenBlkw:
		e.encodeBlkw()
	case tok.Kind == parser.TokenStringz:
		e.encodeStringz()
	case tok.Kind.IsInstruction():
		e.encodeInstruction()
	case tok.Kind == parser.TokenIdent:
		e.errors.AddError(parser.NewErrorWithLexeme(e.tokenPos(tok),
			parser.ErrorSyntax, "unknown mnemonic", tok.Lexeme))
		e.resync()
	default:
		e.errors.AddError(parser.NewErrorWithLexeme(e.tokenPos(tok),
			parser.ErrorSyntax, "unexpected token", tok.Lexeme))
		e.resync()
	}
}

// encodeOrig handles the .orig directive, which supplies the load address.
// It must be the first statement of the program and consumes no word of the
// program image.
func (e *Encoder) encodeOrig() {
	start := e.pos
	tok := e.advance()

	v, ok := e.num()
	if !ok {
		return
	}
	if !e.endLine() {
		return
	}

	// Only labels and newlines may come before it
	first := true
	for _, prev := range e.tokens[:start] {
		if prev.Kind != parser.TokenNewline && prev.Kind != parser.TokenLabel {
			first = false
			break
		}
	}

	if e.originSet || !first {
		e.errors.AddError(parser.NewError(e.tokenPos(tok), parser.ErrorSyntax,
			".orig must be the first statement"))
		return
	}

	e.origin = v
	e.originSet = true
}

// encodeFill emits a single word
func (e *Encoder) encodeFill() {
	e.advance()

	v, ok := e.num()
	if !ok {
		return
	}
	if !e.endLine() {
		return
	}
	e.emit(v)
}

// encodeBlkw emits a block of zero words
func (e *Encoder) encodeBlkw() {
	e.advance()

	n, ok := e.num()
	if !ok {
		return
	}
	if !e.endLine() {
		return
	}
	for i := 0; i < int(n); i++ {
		e.emit(0)
	}
}

// encodeStringz emits one word per character plus a zero terminator. The
// low byte of each word is the character, the high byte is zero.
func (e *Encoder) encodeStringz() {
	e.advance()

	if e.atEnd() || !e.check(parser.TokenString) {
		e.operandError("expected string literal")
		return
	}
	str := e.advance()
	if !e.endLine() {
		return
	}

	for _, b := range str.StringBytes() {
		e.emit(uint16(b))
	}
	e.emit(0)
}

func (e *Encoder) emit(word uint16) {
	e.words = append(e.words, word)
}
