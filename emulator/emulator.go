package emulator

import (
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kindasim/kinda/cpu"
	"github.com/kindasim/kinda/internal"
)

const (
	DEFAULT_CLOCK = 500 * time.Millisecond // Delay between cycles of Run.
)

var _emulator_defines = map[string]string{
	"MAX_ADDRESS": fmt.Sprintf("%v", cpu.MAX_ADDRESS),
}

// Slot is one cell of the executable view of memory: a loaded instruction,
// or a raw data word that can not be fetched.
type Slot struct {
	Raw         bool            // Set if the cell holds data.
	Data        int32           // Stored word of a raw cell.
	Instruction cpu.Instruction // Loaded instruction of a non-raw cell.
}

func (slot Slot) String() string {
	if slot.Raw {
		return fmt.Sprintf("%d", slot.Data)
	}
	return slot.Instruction.String()
}

// Emulator loads programs into a virtual machine and executes them,
// continuously or one step at a time.
//
// Only Stop and SetClock may be called while another goroutine is in Run.
type Emulator struct {
	Verbose  bool     // If set, enables verbose logging.
	Observer Observer // Receives state change notifications.

	machine *cpu.Machine
	program []Slot // Executable view, indexed by address.
	extent  int64  // Highest address of the executable view.
	state   State
	defines map[string]string

	clock atomic.Int64 // time.Duration between cycles.
	stop  atomic.Bool
}

// NewEmulator creates a new emulator with an empty machine.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Observer: NopObserver{},
		machine:  cpu.NewMachine(),
		extent:   -1,
		defines:  map[string]string{},
	}
	emu.clock.Store(int64(DEFAULT_CLOCK))
	emu.machine.ClearChanges()

	return
}

// Define sets an expression constant for the programs loaded afterwards.
func (emu *Emulator) Define(name string, value string) {
	emu.defines[name] = value
}

// Defines returns an iterator over all of the defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines), maps.All(emu.defines))
}

// Machine returns the virtual machine, for inspection only.
func (emu *Emulator) Machine() *cpu.Machine {
	return emu.machine
}

// State returns the execution state.
func (emu *Emulator) State() State {
	return emu.state
}

// Extent returns the highest address of the executable view, -1 if
// nothing is loaded.
func (emu *Emulator) Extent() int64 {
	return emu.extent
}

// SetClock sets the delay between cycles of Run, in seconds. It may be
// changed at any time and applies from the next cycle.
func (emu *Emulator) SetClock(seconds float64) {
	emu.clock.Store(int64(max(seconds, 0) * float64(time.Second)))
}

// ClockDuration returns the delay between cycles of Run.
func (emu *Emulator) ClockDuration() time.Duration {
	return time.Duration(emu.clock.Load())
}

// Stop requests a running or stepping program to end before its next cycle.
func (emu *Emulator) Stop() {
	emu.stop.Store(true)
}

func (emu *Emulator) observer() Observer {
	if emu.Observer == nil {
		return NopObserver{}
	}
	return emu.Observer
}

func (emu *Emulator) console(text string) {
	if emu.Verbose {
		log.Printf("emu: %v", text)
	}
	emu.observer().OnConsoleMessage(text)
}

// flush turns the pending machine changes into observer notifications.
func (emu *Emulator) flush() {
	m := emu.machine
	changes := m.Changes()
	m.ClearChanges()

	obs := emu.observer()
	if changes&cpu.CHANGE_REGISTERS != 0 {
		obs.OnRegistersChanged()
	}
	if changes&cpu.CHANGE_MEMORY != 0 {
		obs.OnMemoryChanged()
	}
	if changes&cpu.CHANGE_PC != 0 {
		obs.OnProgramCounterChanged(m.GetPC())
	}
	if changes&cpu.CHANGE_IR != 0 {
		obs.OnInstructionRegisterChanged(m.GetIR())
	}
}

// ready returns to the Ready state.
func (emu *Emulator) ready() {
	if emu.state == STATE_WAITING {
		emu.observer().OnStepModeExited()
	}
	emu.state = STATE_READY
}

func (emu *Emulator) assembler() (asm *cpu.Assembler) {
	asm = &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}
	return
}

// Load translates text and loads it into a fresh machine: addresses are
// assigned, labels are bound, every word is stored and the loaded words are
// write protected. On error the previously loaded machine is kept.
func (emu *Emulator) Load(text string) (err error) {
	emu.ready()

	insts, err := emu.assembler().Assemble(text)
	if err != nil {
		emu.console(err.Error())
		return
	}

	m := cpu.NewMachine()
	m.Verbose = emu.Verbose

	for n := range insts {
		insts[n].Address = n
		if len(insts[n].Label) == 0 {
			continue
		}
		err = m.AddLabel(insts[n].Label, n)
		if err != nil {
			emu.console(err.Error())
			return
		}
	}

	program := make([]Slot, len(insts))
	for n, inst := range insts {
		var data int32
		data, err = inst.MemoryWord(m)
		if err == nil {
			err = m.WriteMemory(int64(n), data)
		}
		if err != nil {
			err = &cpu.ErrSyntax{LineNo: inst.LineNo, Line: inst.String(), Err: err}
			emu.console(err.Error())
			return
		}
		program[n] = Slot{Instruction: inst}
	}
	m.Protect(int64(len(program)) - 1)

	emu.machine = m
	emu.program = program
	emu.extent = int64(len(program)) - 1

	emu.console(f("translation succeeded"))
	emu.flush()

	return
}

// Reset clears the machine and drops the loaded program.
func (emu *Emulator) Reset() {
	emu.ready()
	emu.machine.Reset()
	emu.program = nil
	emu.extent = -1
	emu.flush()
}

// Export translates text and returns it as machine code, one word per line.
func (emu *Emulator) Export(text string) (code string, err error) {
	prog, err := emu.assembler().Parse(strings.NewReader(text))
	if err != nil {
		return
	}

	var sb strings.Builder
	err = prog.Export(&sb)
	if err != nil {
		return
	}

	code = sb.String()
	return
}

// Slots walks the executable view in address order: the loaded program
// followed by the data stored past it.
func (emu *Emulator) Slots() iter.Seq2[int, Slot] {
	program := emu.program
	data := func(yield func(int, Slot) bool) {
		for addr, value := range emu.machine.Memory() {
			if int64(addr) < int64(len(program)) {
				continue
			}
			if !yield(int(addr), Slot{Raw: true, Data: value}) {
				return
			}
		}
	}

	return internal.IterSeq2Concat(slices.All(program), data)
}

// fetch returns the instruction at pc, if there is one.
func (emu *Emulator) fetch(pc int) (inst cpu.Instruction, err error) {
	if pc < 0 || int64(pc) > emu.extent {
		err = ErrFetchRange
		return
	}

	if pc < len(emu.program) {
		slot := emu.program[pc]
		if !slot.Raw && !slot.Instruction.Op.Directive() {
			inst = slot.Instruction
			return
		}
	}

	value, _ := emu.machine.ReadMemory(int64(pc))
	err = &ErrFetchData{Address: pc, Value: value}
	return
}

// reconcile brings the executable view in line with memory after a store.
// Program cells whose stored word no longer matches their instruction
// become raw data, data past the program extends the view, and the write
// protection follows the extent.
func (emu *Emulator) reconcile() {
	m := emu.machine

	for addr, data := range m.Memory() {
		if int64(addr) >= int64(len(emu.program)) {
			emu.extent = max(emu.extent, int64(addr))
			continue
		}

		slot := &emu.program[addr]
		if !slot.Raw {
			word, err := slot.Instruction.MemoryWord(m)
			if err == nil && word == data {
				continue
			}
			if emu.Verbose {
				log.Printf("emu: %04d: '%v' overwritten by %d", addr, slot.Instruction, data)
			}
			slot.Raw = true
		}
		slot.Data = data
	}

	m.Protect(emu.extent)
}

// Tick performs a single fetch, execute and advance cycle. It is done
// when the program halts or fails; a failure also returns the program
// counter to 0.
func (emu *Emulator) Tick() (done bool, err error) {
	m := emu.machine
	pc := m.GetPC()

	var inst cpu.Instruction

	defer func() {
		if err != nil {
			done = true
			err = &ErrRuntime{Address: pc, LineNo: inst.LineNo, Err: err}
			_ = m.SetPC(0)
		}
		emu.flush()
	}()

	inst, err = emu.fetch(pc)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emu: %04d: %v", pc, inst)
	}

	word, err := inst.Encode(m)
	if err != nil {
		return
	}
	m.SetIR(word)

	done, err = inst.Execute(m)
	if err != nil || done {
		return
	}

	m.IncrementPC()
	if inst.Op == cpu.OP_SW {
		emu.reconcile()
	}

	return
}

// finish reports the end of a run or of step execution.
func (emu *Emulator) finish(err error, end string) {
	if err != nil {
		emu.console(err.Error())
	}
	emu.console(end)
	emu.ready()
}

// pause waits one clock period, or until ctx is done.
func (emu *Emulator) pause(ctx context.Context) (err error) {
	delay := emu.ClockDuration()
	if delay <= 0 {
		err = ctx.Err()
		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
	}

	return
}

// Run loads text and executes it until it halts, fails, or is stopped.
// The clock delay precedes every cycle. Cancelling ctx or calling Stop
// ends the run between cycles.
func (emu *Emulator) Run(ctx context.Context, text string) (err error) {
	end := f("end of execution")

	if len(strings.TrimSpace(text)) == 0 {
		err = ErrSourceEmpty
		emu.finish(err, end)
		return
	}

	err = emu.Load(text)
	if err != nil {
		emu.finish(nil, end)
		return
	}

	emu.stop.Store(false)
	emu.state = STATE_RUNNING

	for {
		err = emu.pause(ctx)
		if err != nil {
			emu.finish(nil, f("execution stopped"))
			return
		}

		if emu.stop.Load() {
			emu.finish(nil, f("execution stopped"))
			return
		}

		var done bool
		done, err = emu.Tick()
		if done {
			emu.finish(err, end)
			return
		}
	}
}

// BeginSteps loads text and waits for Step calls.
func (emu *Emulator) BeginSteps(text string) (err error) {
	end := f("end of step execution")

	if len(strings.TrimSpace(text)) == 0 {
		err = ErrSourceEmpty
		emu.finish(err, end)
		return
	}

	err = emu.Load(text)
	if err != nil {
		emu.finish(nil, end)
		return
	}

	emu.stop.Store(false)
	emu.state = STATE_WAITING
	emu.console(f("step execution started"))
	emu.observer().OnStepModeEntered()

	return
}

// Step executes the next instruction in step execution mode. It is done,
// and back in the Ready state, when the program halts, fails or is stopped.
func (emu *Emulator) Step() (done bool, err error) {
	if emu.state != STATE_WAITING {
		err = ErrNotStepping
		emu.console(err.Error())
		return
	}

	if emu.stop.Load() {
		done = true
		emu.finish(nil, f("execution stopped"))
		return
	}

	done, err = emu.Tick()
	if done {
		emu.finish(err, f("end of step execution"))
	}

	return
}
