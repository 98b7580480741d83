package parser

import (
	"fmt"
	"sort"
)

// Symbol represents a label binding discovered in the first pass
type Symbol struct {
	Name   string
	Offset uint16 // word offset from the program's load address
	Pos    Position
}

// SymbolTable maps label names to addresses. It is populated during the
// first pass and read-only during the second.
type SymbolTable struct {
	symbols map[string]*Symbol
}

// NewSymbolTable creates a new symbol table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]*Symbol),
	}
}

// Define binds a label to a word offset. Redefining a label is an error.
func (st *SymbolTable) Define(name string, offset uint16, pos Position) error {
	if sym, exists := st.symbols[name]; exists {
		return fmt.Errorf("label %q already defined at %s", name, sym.Pos)
	}

	st.symbols[name] = &Symbol{
		Name:   name,
		Offset: offset,
		Pos:    pos,
	}
	return nil
}

// Lookup looks up a symbol by name
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, exists := st.symbols[name]
	return sym, exists
}

// Get returns a label's word offset, or an error if the label is undefined
func (st *SymbolTable) Get(name string) (uint16, error) {
	sym, exists := st.symbols[name]
	if !exists {
		return 0, fmt.Errorf("undefined label: %q", name)
	}
	return sym.Offset, nil
}

// Len returns the number of defined symbols
func (st *SymbolTable) Len() int {
	return len(st.symbols)
}

// All returns all symbols sorted by offset, then name
func (st *SymbolTable) All() []*Symbol {
	all := make([]*Symbol, 0, len(st.symbols))
	for _, sym := range st.symbols {
		all = append(all, sym)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Offset != all[j].Offset {
			return all[i].Offset < all[j].Offset
		}
		return all[i].Name < all[j].Name
	})
	return all
}
