// Package image reads and writes kindA program files: assembly source
// (.asc) and exported machine code (.mc).
package image

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/kindasim/kinda/cpu"
)

// Kind of a program file, from its extension.
type Kind int

const (
	KIND_UNKNOWN = Kind(iota)
	KIND_SOURCE  // .asc
	KIND_MACHINE // .mc
)

const (
	EXT_SOURCE  = ".asc"
	EXT_MACHINE = ".mc"
)

// KindOf returns the kind of a program file name.
func KindOf(fileName string) Kind {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case EXT_SOURCE:
		return KIND_SOURCE
	case EXT_MACHINE:
		return KIND_MACHINE
	default:
		return KIND_UNKNOWN
	}
}

// Load returns the text of program file fileName.
func Load(fileName string) (string, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return "", errors.Wrap(err, "Load")
	}
	if !utf8.Valid(data) {
		return "", errors.Errorf("Load %v: invalid file", fileName)
	}
	// Editors on some hosts save CRLF line endings.
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	return string(data), nil
}

// Save writes program text to file fileName.
func Save(fileName string, text string) error {
	err := os.WriteFile(fileName, []byte(text), 0o644)
	if err != nil {
		return errors.Wrap(err, "Save")
	}
	return nil
}

// Export writes the machine code of prog to file fileName.
func Export(fileName string, prog *cpu.Program) error {
	if prog == nil {
		return errors.Errorf("Export %v: no program", fileName)
	}

	var buf bytes.Buffer
	err := prog.Export(&buf)
	if err != nil {
		return errors.Wrapf(err, "Export %v", fileName)
	}

	err = os.WriteFile(fileName, buf.Bytes(), 0o644)
	if err != nil {
		return errors.Wrap(err, "Export")
	}
	return nil
}
