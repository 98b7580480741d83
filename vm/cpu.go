package vm

import (
	"github.com/lookbusy1344/lc3-emulator/isa"
)

// CPU represents the LC-3 processor state: eight general purpose registers,
// the program counter and the processor status register. PSR bit 15 is the
// privilege bit; bits 2..0 hold the N, Z and P condition codes.
type CPU struct {
	R   [isa.NumRegisters]uint16
	PC  uint16
	PSR uint16
}

// NewCPU creates and initializes a new CPU instance
func NewCPU() *CPU {
	return &CPU{}
}

// Reset resets the CPU to initial state
func (c *CPU) Reset() {
	for i := range c.R {
		c.R[i] = 0
	}
	c.PC = 0
	c.PSR = 0
}

// SetCC updates the condition codes from a result value. Exactly one of N,
// Z and P is set afterwards; the privilege bit is preserved.
func (c *CPU) SetCC(value uint16) {
	var nzp uint16
	switch {
	case value == 0:
		nzp = isa.CondZ
	case value>>15 != 0:
		nzp = isa.CondN
	default:
		nzp = isa.CondP
	}

	c.PSR = c.PSR&isa.PSRPrivilege | nzp
}

// CC returns the current condition-code bits (PSR bits 2..0)
func (c *CPU) CC() uint16 {
	return c.PSR & (isa.CondN | isa.CondZ | isa.CondP)
}
