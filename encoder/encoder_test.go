package encoder_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/lc3-emulator/encoder"
	"github.com/lookbusy1344/lc3-emulator/isa"
	"github.com/lookbusy1344/lc3-emulator/objfile"
	"github.com/lookbusy1344/lc3-emulator/parser"
)

// assemble runs the full scan / first pass / encode pipeline over a source
// fragment
func assemble(t *testing.T, source string) (*objfile.Image, *parser.ErrorList) {
	t.Helper()

	lexer := parser.NewLexer(source, "test.asm")
	tokens := lexer.Tokenize()
	require.False(t, lexer.Errors().HasErrors(), "scan errors: %v", lexer.Errors())

	symbols, pass1Errors := parser.CollectSymbols(tokens, "test.asm")
	require.False(t, pass1Errors.HasErrors(), "pass 1 errors: %v", pass1Errors)

	return encoder.New(tokens, symbols, "test.asm").Encode()
}

// assembleWords assembles a body wrapped in .orig/.end and requires success
func assembleWords(t *testing.T, body string) []uint16 {
	t.Helper()
	img, errs := assemble(t, ".orig x3000\n"+body+"\n.end\n")
	require.False(t, errs.HasErrors(), "unexpected errors: %v", errs)
	require.NotNil(t, img)
	return img.Words
}

func TestEncode_LoadAddHalt(t *testing.T) {
	img, errs := assemble(t, `
.orig x3000
and r0, r0, #0
add r0, r0, #5
add r0, r0, #3
halt
.end
`)
	require.False(t, errs.HasErrors(), "unexpected errors: %v", errs)

	assert.Equal(t, uint16(0x3000), img.Origin)
	assert.Equal(t, []uint16{0x5020, 0x1025, 0x1023, 0xF025}, img.Words)
}

func TestEncode_Instructions(t *testing.T) {
	tests := []struct {
		source   string
		expected uint16
	}{
		{"add r1, r2, r3", 0x1283},
		{"add r1, r2, #-1", 0x12BF},
		{"and r4, r5, r6", 0x5946},
		{"and r0, r1, #15", 0x506F},
		{"not r1, r2", 0x92BF},
		{"jmp r2", 0xC080},
		{"ret", 0xC1C0},
		{"jsrr r5", 0x4140},
		{"ldr r1, r2, #-1", 0x62BF},
		{"str r3, r4, #2", 0x7702},
		{"rti", 0x8000},
		{"trap x21", 0xF021},
		{"getc", 0xF020},
		{"out", 0xF021},
		{"puts", 0xF022},
		{"in", 0xF023},
		{"putsp", 0xF024},
		{"halt", 0xF025},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			words := assembleWords(t, tt.source)
			require.Len(t, words, 1)
			assert.Equal(t, tt.expected, words[0], "encoded x%04X, expected x%04X", words[0], tt.expected)
		})
	}
}

func TestEncode_ImmediateWrap(t *testing.T) {
	// imm5 is masked to 5 bits, so #16 encodes the same bits as #-16
	high := assembleWords(t, "add r0, r0, #16")
	low := assembleWords(t, "add r0, r0, #-16")
	assert.Equal(t, uint16(0x1030), high[0])
	assert.Equal(t, low[0], high[0])
}

func TestEncode_ImmediateLimits(t *testing.T) {
	min := assembleWords(t, "add r0, r0, #-16")
	max := assembleWords(t, "add r0, r0, #15")
	assert.Equal(t, uint16(0xFFF0), isa.Sext(min[0]&0x1F, 5))
	assert.Equal(t, uint16(0x000F), isa.Sext(max[0]&0x1F, 5))
}

func TestEncode_BranchVariants(t *testing.T) {
	words := assembleWords(t, `here brn here
brz fwd
brp fwd
brnz here
brnp fwd
brzp fwd
brnzp here
br fwd
fwd halt`)

	expected := []uint16{
		0x09FF, // brn here
		0x0406, // brz fwd
		0x0205, // brp fwd
		0x0DFC, // brnz here
		0x0A03, // brnp fwd
		0x0602, // brzp fwd
		0x0FF9, // brnzp here
		0x0E00, // br fwd (unconditional)
		0xF025,
	}
	assert.Equal(t, expected, words)
}

func TestEncode_LabelsAndDirectives(t *testing.T) {
	words := assembleWords(t, `lea r0, msg
ld r1, data
ldi r2, ptr
st r1, data
sti r1, ptr
jsr sub
halt
sub ret
data .fill x1234
ptr .fill x3008
msg .stringz "ok"`)

	expected := []uint16{
		0xE009, // lea r0, msg
		0x2206, // ld r1, data
		0xA406, // ldi r2, ptr
		0x3204, // st r1, data
		0xB204, // sti r1, ptr
		0x4801, // jsr sub
		0xF025, // halt
		0xC1C0, // sub: ret
		0x1234, // data
		0x3008, // ptr
		0x006F, // 'o'
		0x006B, // 'k'
		0x0000, // terminator
	}
	assert.Equal(t, expected, words)
}

func TestEncode_OffsetReconstruction(t *testing.T) {
	// For every label reference, target = sext(offset) + instruction + 1
	words := assembleWords(t, `br end
lea r0, end
jsr end
end halt`)

	targets := []struct {
		k    int
		bits uint
		mask uint16
	}{
		{0, 9, 0x1FF},
		{1, 9, 0x1FF},
		{2, 11, 0x7FF},
	}
	for _, ref := range targets {
		reconstructed := isa.Sext(words[ref.k]&ref.mask, ref.bits) + uint16(ref.k) + 1
		assert.Equal(t, uint16(3), reconstructed, "instruction at offset %d", ref.k)
	}
}

func TestEncode_EmptyStringz(t *testing.T) {
	words := assembleWords(t, `.stringz ""`)
	assert.Equal(t, []uint16{0}, words)
}

func TestEncode_BlkwZero(t *testing.T) {
	words := assembleWords(t, ".blkw #0")
	assert.Empty(t, words)
}

func TestEncode_Blkw(t *testing.T) {
	words := assembleWords(t, ".blkw #3")
	assert.Equal(t, []uint16{0, 0, 0}, words)
}

func TestEncode_UndefinedLabel(t *testing.T) {
	img, errs := assemble(t, `
.orig x3000
ld r0, foo
halt
.end
`)
	assert.Nil(t, img, "no image on error")
	require.Len(t, errs.Errors, 1, "exactly one error: %v", errs)
	assert.Equal(t, parser.ErrorUndefinedLabel, errs.Errors[0].Kind)
}

func TestEncode_OrigMustBeFirst(t *testing.T) {
	img, errs := assemble(t, `
.orig x3000
halt
.orig x4000
.end
`)
	assert.Nil(t, img)
	require.True(t, errs.HasErrors())
	assert.Equal(t, parser.ErrorSyntax, errs.Errors[0].Kind)
}

func TestEncode_MissingOrig(t *testing.T) {
	img, errs := assemble(t, "halt\n.end\n")
	assert.Nil(t, img)
	require.True(t, errs.HasErrors())
}

func TestEncode_BranchOutOfRange(t *testing.T) {
	img, errs := assemble(t, `
.orig x3000
br far
.blkw #300
far halt
.end
`)
	assert.Nil(t, img)
	require.Len(t, errs.Errors, 1)
	assert.Equal(t, parser.ErrorRange, errs.Errors[0].Kind)
}

func TestEncode_BranchAtRangeLimit(t *testing.T) {
	// offset 255 is the last word reachable forwards with 9 bits
	img, errs := assemble(t, `
.orig x3000
br far
.blkw #255
far halt
.end
`)
	require.False(t, errs.HasErrors(), "unexpected errors: %v", errs)
	assert.Equal(t, uint16(0x0EFF), img.Words[0])
}

func TestEncode_OperandErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing operand", "add r0, r0\n"},
		{"missing comma", "add r0 r0, #1\n"},
		{"register where number expected", "trap r0\n"},
		{"number where register expected", "jmp #1\n"},
		{"extra operand", "halt r0\n"},
		{"stringz without string", ".stringz #5\n"},
		{"unknown mnemonic", "foo bar\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, errs := assemble(t, ".orig x3000\n"+tt.source+".end\n")
			assert.Nil(t, img)
			assert.True(t, errs.HasErrors())
		})
	}
}

func TestEncode_LineScopedRecovery(t *testing.T) {
	// Two bad lines are reported independently
	_, errs := assemble(t, `
.orig x3000
add r0, r0
and r1
halt
.end
`)
	assert.Len(t, errs.Errors, 2, "errors: %v", errs)
}

func TestEncode_Deterministic(t *testing.T) {
	source := `
.orig x3000
lea r0, msg
puts
halt
msg .stringz "hi"
.end
`
	first, errs := assemble(t, source)
	require.False(t, errs.HasErrors())
	second, errs := assemble(t, source)
	require.False(t, errs.HasErrors())

	var a, b bytes.Buffer
	require.NoError(t, first.Write(&a))
	require.NoError(t, second.Write(&b))
	assert.Equal(t, a.Bytes(), b.Bytes())
}
