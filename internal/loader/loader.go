// Package loader handles program file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/machine"
)

// ErrEmptyProgram is returned for program files without content.
var ErrEmptyProgram = errors.New("empty program")

// Loader handles loading program images from disk.
type Loader struct{}

// New creates a new program loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the program image stored in the file at path.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("reading file info of %s: %w", path, err)
	}
	if info.Size() > machine.MaxProgramSize {
		return nil, fmt.Errorf("%w: file %s has %d bytes, maximum is %d",
			machine.ErrProgramTooLarge, path, info.Size(), machine.MaxProgramSize)
	}

	program, err := l.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return program, nil
}

// LoadFromReader reads a program image from r. At most one byte more than
// the program area can hold is read before the image is rejected.
func (l *Loader) LoadFromReader(r io.Reader) ([]byte, error) {
	program, err := io.ReadAll(io.LimitReader(r, machine.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	switch {
	case len(program) == 0:
		return nil, ErrEmptyProgram
	case len(program) > machine.MaxProgramSize:
		return nil, fmt.Errorf("%w: more than %d bytes", machine.ErrProgramTooLarge, machine.MaxProgramSize)
	}
	return program, nil
}
