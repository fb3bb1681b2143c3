package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/kindasim/kinda/cpu"
	"github.com/kindasim/kinda/emulator"
)

// termWidth returns the width of the terminal on stdout, 0 if unknown.
func termWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

func newTable(title string) table.Writer {
	tw := table.NewWriter()
	tw.SetTitle(title)
	tw.SetStyle(table.StyleLight)
	tw.SetAllowedRowLength(termWidth())
	return tw
}

// registerTable renders the register bank, the PC and the IR.
func registerTable(m *cpu.Machine) string {
	tw := newTable("Registers")

	header := table.Row{}
	row := table.Row{}
	for n, value := range m.Registers() {
		header = append(header, fmt.Sprintf("r%d", n))
		row = append(row, value)
	}
	header = append(header, "pc", "ir")
	row = append(row, m.GetPC(), cpu.WordToHex(m.GetIR()))

	tw.AppendHeader(header)
	tw.AppendRow(row)

	return tw.Render()
}

// memoryTable renders the executable view of memory.
func memoryTable(emu *emulator.Emulator) string {
	m := emu.Machine()
	tw := newTable("Memory")
	tw.AppendHeader(table.Row{"", "Address", "Word", "Value", "Label", "Contents"})

	labels := map[int]string{}
	for name, addr := range m.Labels() {
		labels[addr] = name
	}

	for addr, slot := range emu.Slots() {
		value, _ := m.ReadMemory(int64(addr))
		marker := ""
		if addr == m.GetPC() {
			marker = "->"
		}
		tw.AppendRow(table.Row{marker, addr, cpu.WordToHex(uint32(value)), value, labels[addr], slot})
	}

	return tw.Render()
}
