package esocial

import (
	"fmt"
	"strings"
	"sync/atomic"
)

type EventFamily string

// Code returns the numeric part of the family, e.g. "1200" for "S-1200".
func (f EventFamily) Code() string {
	return digitsOnly(string(f))
}

// EventID is unique within a batch as long as every event draws its
// sequence from the same Sequencer.
type EventID struct {
	Family       EventFamily
	EmployerRoot string
	Sequence     int64
}

// NextEventID is pure: identical inputs always yield the same ID text.
func NextEventID(family EventFamily, employerRoot string, sequence int64) EventID {
	return EventID{Family: family, EmployerRoot: employerRoot, Sequence: sequence}
}

// String lays the ID out as ID + inscription type + root padded to 14 +
// family code + 15-digit sequence.
func (id EventID) String() string {
	root := id.EmployerRoot
	if len(root) < RegistryLength {
		root += strings.Repeat("0", RegistryLength-len(root))
	}
	code := id.Family.Code()
	if len(code) < 4 {
		code = strings.Repeat("0", 4-len(code)) + code
	}
	return fmt.Sprintf("ID%s%s%s%015d", InscriptionCNPJ, root, code, id.Sequence)
}

func (id EventID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Sequencer hands out strictly increasing sequence numbers for one batch.
type Sequencer struct {
	last atomic.Int64
}

func NewSequencer(start int64) *Sequencer {
	s := &Sequencer{}
	s.last.Store(start - 1)
	return s
}

func (s *Sequencer) Next() int64 {
	return s.last.Add(1)
}
