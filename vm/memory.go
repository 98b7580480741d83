package vm

import (
	"fmt"

	"github.com/lookbusy1344/lc3-emulator/isa"
)

// Memory is the LC-3 word-addressed memory: 65,536 words of 16 bits each.
// Every 16-bit address is valid, so plain reads and writes cannot fail.
type Memory struct {
	words [isa.MemorySize]uint16
}

// NewMemory creates a zeroed memory
func NewMemory() *Memory {
	return &Memory{}
}

// Read returns the word at the given address
func (m *Memory) Read(addr uint16) uint16 {
	return m.words[addr]
}

// Write stores a word at the given address
func (m *Memory) Write(addr uint16, value uint16) {
	m.words[addr] = value
}

// LoadWords places a program image at consecutive addresses starting at
// origin. The image must fit below the top of memory.
func (m *Memory) LoadWords(origin uint16, words []uint16) error {
	if int(origin)+len(words) > isa.MemorySize {
		return fmt.Errorf("program image of %d words does not fit at origin x%04X",
			len(words), origin)
	}

	copy(m.words[origin:], words)
	return nil
}

// Reset zeroes all of memory
func (m *Memory) Reset() {
	m.words = [isa.MemorySize]uint16{}
}
