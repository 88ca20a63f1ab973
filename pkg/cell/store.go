package cell

import (
	"errors"
	"fmt"

	"cellar/pkg/bytecode"
)

// DefaultCapacity is the store size used when none is configured.
const DefaultCapacity = 2000

var (
	ErrCapacityExceeded = errors.New("program too big")
	ErrBadAddress       = errors.New("address out of range")
)

// Store is the fixed-capacity cell array holding code and literals.
type Store struct {
	cells  []Cell
	cursor bytecode.Addr // next cell to be written
}

// NewStore creates a store with the given capacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{cells: make([]Cell, capacity)}
}

// Cap returns the capacity in cells.
func (s *Store) Cap() int { return len(s.cells) }

// Cursor returns the address the next Append writes to.
func (s *Store) Cursor() bytecode.Addr { return s.cursor }

// Append writes c at the cursor and advances it.
func (s *Store) Append(c Cell) (bytecode.Addr, error) {
	if int(s.cursor) >= len(s.cells) {
		return bytecode.NoAddr, fmt.Errorf("%w: %d cells", ErrCapacityExceeded, len(s.cells))
	}
	at := s.cursor
	s.cells[at] = c
	s.cursor++
	return at, nil
}

// Reserve appends a placeholder to be patched later.
func (s *Store) Reserve() (bytecode.Addr, error) {
	return s.Append(NewAddress(bytecode.NoAddr))
}

// Write overwrites an already written cell.
func (s *Store) Write(at bytecode.Addr, c Cell) error {
	if at < 0 || at >= s.cursor {
		return fmt.Errorf("%w: write %d", ErrBadAddress, at)
	}
	s.cells[at] = c
	return nil
}

// Read returns the cell at an address. Cells at or past the cursor are empty.
func (s *Store) Read(at bytecode.Addr) (Cell, error) {
	if at < 0 || int(at) >= len(s.cells) {
		return Cell{}, fmt.Errorf("%w: read %d", ErrBadAddress, at)
	}
	if at >= s.cursor {
		return Cell{}, nil
	}
	return s.cells[at], nil
}

// Truncate rewinds the cursor, clearing everything from at onward.
func (s *Store) Truncate(at bytecode.Addr) {
	if at < 0 {
		at = 0
	}
	if at >= s.cursor {
		return
	}
	clear(s.cells[at:s.cursor])
	s.cursor = at
}
