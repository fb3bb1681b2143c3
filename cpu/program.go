package cpu

import (
	"fmt"
	"io"
)

// Program is an ordered instruction sequence; an instruction's address is
// its index.
type Program struct {
	Instructions []Instruction
}

// SymbolTable is a label table usable as a LabelResolver.
type SymbolTable map[string]int

// ResolveLabel looks up a label in the table.
func (st SymbolTable) ResolveLabel(name string) (addr int, err error) {
	addr, ok := st[name]
	if !ok {
		err = ErrLabelMissing(name)
	}
	return
}

// Labels returns the label table of the program. A label defined twice
// resolves to its last definition.
func (prog *Program) Labels() (labels SymbolTable) {
	labels = SymbolTable{}
	for n, inst := range prog.Instructions {
		if len(inst.Label) != 0 {
			labels[inst.Label] = n
		}
	}
	return
}

// Binary encodes every instruction against the program's own labels.
func (prog *Program) Binary() (bins []uint32, err error) {
	labels := prog.Labels()
	for n, inst := range prog.Instructions {
		inst.Address = n
		var word uint32
		word, err = inst.Encode(labels)
		if err != nil {
			err = &ErrSyntax{LineNo: inst.LineNo, Line: inst.String(), Err: err}
			return
		}
		bins = append(bins, word)
	}

	return
}

// Export writes the program as machine code, one hexadecimal word per line.
func (prog *Program) Export(w io.Writer) (err error) {
	bins, err := prog.Binary()
	if err != nil {
		return
	}

	for _, word := range bins {
		_, err = fmt.Fprintln(w, WordToHex(word))
		if err != nil {
			return
		}
	}

	return
}

// Listing returns one line per instruction: address, machine word and source.
func (prog *Program) Listing() (lines []string, err error) {
	bins, err := prog.Binary()
	if err != nil {
		return
	}

	for n, inst := range prog.Instructions {
		label := ""
		if len(inst.Label) != 0 {
			label = inst.Label + ":"
		}
		lines = append(lines, fmt.Sprintf("%04d %v %-8s %v", n, WordToHex(bins[n]), label, inst))
	}

	return
}
