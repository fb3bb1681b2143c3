package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/tebeka/atexit"
	"golang.org/x/term"

	"github.com/kindasim/kinda/cpu"
	"github.com/kindasim/kinda/emulator"
	"github.com/kindasim/kinda/image"
)

// console prints emulator messages.
type console struct {
	emulator.NopObserver
}

func (console) OnConsoleMessage(text string) {
	fmt.Println(text)
}

func main() {
	var compile string
	var export string
	var step bool
	var translate bool
	var clock float64
	var dump bool
	var verbose bool

	defines := map[string]string{}

	flag.StringVar(&compile, "c", "", ".asc or .mc file to load")
	flag.StringVar(&export, "x", "", ".mc file to export machine code to, do not execute")
	flag.BoolVar(&step, "s", false, "Step mode, one instruction per line of input ('q' quits)")
	flag.BoolVar(&translate, "t", false, "Translate only, do not execute")
	flag.Float64Var(&clock, "clock", emulator.DEFAULT_CLOCK.Seconds(), "Seconds between instructions")
	flag.Func("D", "Expression constant NAME=VALUE (repeatable)", func(arg string) error {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || len(name) == 0 {
			return fmt.Errorf("expected NAME=VALUE, got %q", arg)
		}
		defines[name] = value
		return nil
	})
	flag.BoolVar(&dump, "dump", false, "Dump the translated program")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		atexit.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) == 0 {
		flag.Usage()
		atexit.Exit(2)
	}

	text, err := image.Load(compile)
	if err != nil {
		atexit.Fatalf("%v: %v", compile, err)
	}

	if dump || len(export) != 0 {
		asm := &cpu.Assembler{Verbose: verbose}
		for name, value := range defines {
			asm.Predefine(name, value)
		}
		prog, err := asm.Parse(strings.NewReader(text))
		if err != nil {
			atexit.Fatalf("%v: %v", compile, err)
		}

		if dump {
			pp.Default.SetColoringEnabled(term.IsTerminal(int(os.Stdout.Fd())))
			pp.Println(prog)

			lines, err := prog.Listing()
			if err != nil {
				atexit.Fatalf("%v: %v", compile, err)
			}
			fmt.Println(strings.Join(lines, "\n"))
		}

		if len(export) != 0 {
			err = image.Export(export, prog)
			if err != nil {
				atexit.Fatalf("%v: %v", export, err)
			}
			atexit.Exit(0)
		}
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Observer = console{}
	emu.SetClock(clock)
	for name, value := range defines {
		emu.Define(name, value)
	}

	switch {
	case translate:
		err = emu.Load(text)
		if err == nil {
			fmt.Println(memoryTable(emu))
		}
	case step:
		err = runSteps(emu, text)
	default:
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		err = emu.Run(ctx, text)
		cancel()
		fmt.Println(registerTable(emu.Machine()))
		fmt.Println(memoryTable(emu))
	}

	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// runSteps executes one instruction per line read from stdin.
func runSteps(emu *emulator.Emulator, text string) (err error) {
	err = emu.BeginSteps(text)
	if err != nil {
		return
	}

	prompt := term.IsTerminal(int(os.Stdin.Fd()))
	input := bufio.NewScanner(os.Stdin)

	for emu.State() == emulator.STATE_WAITING {
		fmt.Println(registerTable(emu.Machine()))
		if prompt {
			fmt.Printf("%04d: %v > ", emu.Machine().GetPC(), currentSlot(emu))
		}

		if !input.Scan() || strings.TrimSpace(input.Text()) == "q" {
			emu.Stop()
		}

		_, err = emu.Step()
	}

	fmt.Println(registerTable(emu.Machine()))
	fmt.Println(memoryTable(emu))

	return
}

// currentSlot returns the slot at the program counter.
func currentSlot(emu *emulator.Emulator) (slot emulator.Slot) {
	pc := emu.Machine().GetPC()
	for addr, s := range emu.Slots() {
		if addr == pc {
			slot = s
			break
		}
	}
	return
}
