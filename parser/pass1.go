package parser

// CollectSymbols performs the first pass of two-pass assembly. It walks the
// token sequence, counts the number of words each line will encode, and
// records every label binding as a word offset from the program's load
// address. The returned table is complete and must not be modified by the
// second pass.
//
// A label is bound to the address of the instruction that follows it on the
// same line, which equals the running word offset at the point the label
// token is seen: the offset only advances when a NEWLINE closes out a line.
func CollectSymbols(tokens []Token, filename string) (*SymbolTable, *ErrorList) {
	symbols := NewSymbolTable()
	errors := &ErrorList{}

	addrOffset := 0 // word offset of the current line
	lineWords := 0  // words the current line will encode

	for i, tok := range tokens {
		pos := Position{Filename: filename, Line: tok.Line}

		switch {
		case tok.Kind == TokenNewline:
			addrOffset += lineWords
			lineWords = 0

		case tok.Kind == TokenLabel:
			if err := symbols.Define(tok.Lexeme, uint16(addrOffset), pos); err != nil {
				errors.AddError(NewError(pos, ErrorDuplicateLabel, err.Error()))
			}

		case tok.Kind == TokenOrig:
			// .orig sets the load address; it does not consume a slot
			lineWords = 0

		case tok.Kind == TokenFill:
			lineWords = 1

		case tok.Kind == TokenBlkw:
			lineWords = 0
			if i+1 < len(tokens) && (tokens[i+1].Kind == TokenDecimal || tokens[i+1].Kind == TokenHex) {
				lineWords = int(tokens[i+1].Value)
			}

		case tok.Kind == TokenStringz:
			// one word per character plus the zero terminator
			lineWords = 0
			if i+1 < len(tokens) && tokens[i+1].Kind == TokenString {
				lineWords = len(tokens[i+1].StringBytes()) + 1
			}

		case tok.Kind.IsInstruction():
			lineWords = 1
		}
	}

	return symbols, errors
}
