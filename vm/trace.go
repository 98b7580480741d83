package vm

import (
	"bufio"
	"fmt"
	"io"
)

// ExecutionTrace records one line per executed instruction: the address it
// was fetched from, the instruction word and the register state afterwards.
// Output is buffered; call Flush when the run is over.
type ExecutionTrace struct {
	w       *bufio.Writer
	Entries uint64
}

// NewExecutionTrace creates a trace writing to w
func NewExecutionTrace(w io.Writer) *ExecutionTrace {
	return &ExecutionTrace{w: bufio.NewWriter(w)}
}

// Record appends a trace entry for an executed instruction
func (t *ExecutionTrace) Record(pc, inst uint16, cpu *CPU) {
	fmt.Fprintf(t.w, "PC=x%04X inst=x%04X", pc, inst)
	for i, r := range cpu.R {
		fmt.Fprintf(t.w, " R%d=x%04X", i, r)
	}
	fmt.Fprintf(t.w, " PSR=x%04X\n", cpu.PSR)
	t.Entries++
}

// Flush writes any buffered entries out
func (t *ExecutionTrace) Flush() error {
	return t.w.Flush()
}
