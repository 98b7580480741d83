package vm

import (
	"fmt"

	"github.com/lookbusy1344/lc3-emulator/isa"
)

// trap dispatches a TRAP instruction on its 8-bit vector. The service
// routines interact with the VM's input and output streams as raw bytes.
func (v *VM) trap(vector uint16) error {
	switch vector {
	case isa.TrapGETC:
		b, err := v.stdin.ReadByte()
		if err != nil {
			return fmt.Errorf("GETC failed: %w", err)
		}
		v.CPU.R[0] = uint16(b)

	case isa.TrapOUT:
		if err := v.writeByte(byte(v.CPU.R[0])); err != nil {
			return fmt.Errorf("OUT failed: %w", err)
		}

	case isa.TrapPUTS:
		// One character per word, low byte, until a zero word
		addr := v.CPU.R[0]
		for {
			word := v.Memory.Read(addr)
			if word == 0 {
				break
			}
			if err := v.writeByte(byte(word)); err != nil {
				return fmt.Errorf("PUTS failed: %w", err)
			}
			addr++
		}

	case isa.TrapIN:
		if _, err := fmt.Fprint(v.Output, "Enter a character: "); err != nil {
			return fmt.Errorf("IN failed: %w", err)
		}
		b, err := v.stdin.ReadByte()
		if err != nil {
			return fmt.Errorf("IN failed: %w", err)
		}
		if err := v.writeByte(b); err != nil {
			return fmt.Errorf("IN failed: %w", err)
		}
		v.CPU.R[0] = uint16(b)

	case isa.TrapPUTSP:
		// Two packed characters per word, low byte first, until a zero word
		addr := v.CPU.R[0]
		for {
			word := v.Memory.Read(addr)
			if word == 0 {
				break
			}
			if err := v.writeByte(byte(word)); err != nil {
				return fmt.Errorf("PUTSP failed: %w", err)
			}
			if high := byte(word >> 8); high != 0 {
				if err := v.writeByte(high); err != nil {
					return fmt.Errorf("PUTSP failed: %w", err)
				}
			}
			addr++
		}

	case isa.TrapHALT:
		v.State = StateHalted

	default:
		return fmt.Errorf("trap vector x%02X out of bounds", vector)
	}

	return nil
}

func (v *VM) writeByte(b byte) error {
	_, err := v.Output.Write([]byte{b})
	return err
}
