package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined expression constants.
var sysEquate = map[string]string{
	"WORD_SIZE": fmt.Sprintf("%d", WORD_SIZE),
	"REGISTERS": fmt.Sprintf("%d", REGISTERS),
	"VALUE_MIN": fmt.Sprintf("%d", -(1 << (VALUE_BITS - 1))),
	"VALUE_MAX": fmt.Sprintf("%d", (1<<(VALUE_BITS-1))-1),
}

var reExpression = regexp.MustCompile(`\$\([^\$]*\)`)

// Assembler translates assembly source, or already assembled machine code,
// into a Program.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	equate    map[string]string // Constants visible to $() expressions.
}

// Predefine defines a new expression constant or redefines an existing one.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// parenEval does translation time $(...) evaluations.
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.equate {
		v64, perr := strconv.ParseInt(str, 0, 64)
		if perr != nil {
			// Ignore non-integer constants.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrExpression, err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrExpression
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrExpression
		return
	}
	return
}

// expand replaces every $(...) in a line with its value.
func (asm *Assembler) expand(line string) (out string, err error) {
	out = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return strconv.FormatInt(value, 10)
	})
	return
}

// splitWords drops a trailing ';' or '#' comment and splits on whitespace.
func splitWords(line string) (words []string) {
	for _, word := range strings.Fields(line) {
		if strings.HasPrefix(word, ";") || strings.HasPrefix(word, "#") {
			break
		}
		words = append(words, word)
	}
	return
}

// IsMachineCode is true if every non-blank line is a single 8 digit
// hexadecimal word.
func IsMachineCode(lines [][]string) bool {
	seen := false
	for _, words := range lines {
		if len(words) == 0 {
			continue
		}
		if len(words) != 1 {
			return false
		}
		if _, err := HexToWord(words[0]); err != nil {
			return false
		}
		seen = true
	}

	return seen
}

// translateLine turns the words of one source line into an instruction.
func (asm *Assembler) translateLine(words []string) (inst Instruction, err error) {
	var label string

	if before, after, ok := strings.Cut(words[0], ":"); ok {
		label = strings.ToLower(before)
		if !validLabel(label) {
			err = ErrLabelInvalid
			return
		}
		words = words[1:]
		if len(after) != 0 {
			words = append([]string{after}, words...)
		}
		if len(words) == 0 {
			err = ErrLabelLonely
			return
		}
	}

	op, ok := ParseOpcode(words[0])
	if !ok {
		err = fmt.Errorf("%w: %q", ErrInstructionUnknown, strings.ToLower(words[0]))
		return
	}

	inst, err = NewInstruction(op, label, words[1:])
	return
}

// Parse translates an input stream into a Program. All failing lines are
// reported together, each as an *ErrSyntax.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	asm.equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.equate[attr] = val
	}

	var lines [][]string
	var texts []string
	var lineErr []error

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		text := scanner.Text()
		lineno := len(texts) + 1
		texts = append(texts, text)

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		line, xerr := asm.expand(text)
		lineErr = append(lineErr, xerr)
		if xerr != nil {
			lines = append(lines, nil)
			continue
		}
		lines = append(lines, splitWords(line))
	}
	err = scanner.Err()
	if err != nil {
		return
	}

	binary := IsMachineCode(lines)
	if asm.Verbose && binary {
		log.Printf("asm: input is machine code")
	}

	var errs []error

	prog = &Program{}
	for n, words := range lines {
		if lineErr[n] != nil {
			errs = append(errs, &ErrSyntax{LineNo: n + 1, Line: texts[n], Err: lineErr[n]})
			continue
		}
		if len(words) == 0 {
			continue
		}

		var inst Instruction
		var lerr error
		if binary {
			inst, lerr = DecodeHex(words[0])
		} else {
			inst, lerr = asm.translateLine(words)
		}
		if lerr != nil {
			errs = append(errs, &ErrSyntax{LineNo: n + 1, Line: texts[n], Err: lerr})
			continue
		}

		inst.LineNo = n + 1
		inst.Address = len(prog.Instructions)
		prog.Instructions = append(prog.Instructions, inst)
	}

	if len(errs) != 0 {
		prog = nil
		err = errors.Join(errs...)
		return
	}

	return
}

// Assemble translates text into the ordered instruction sequence.
// Blank text is an empty program.
func (asm *Assembler) Assemble(text string) (insts []Instruction, err error) {
	prog, err := asm.Parse(strings.NewReader(text))
	if err != nil {
		return
	}

	insts = prog.Instructions
	return
}
