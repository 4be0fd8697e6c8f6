package interpreter

import (
	"github.com/Manu343726/iridium/pkg/utils"
)

// Number of general purpose registers of the machine
const TotalRegisters = 32

// State represents the complete state of the machine
type State struct {
	// General purpose registers (r0-r31)
	Registers [TotalRegisters]int32
	// Program counter (byte offset into the program)
	PC uint32
	// Remainder of the last executed division
	Remainder uint32
	// Program being executed. Owned by the machine once loaded
	Program []byte

	halted bool
	// Program counter left by the last executed HLT
	haltPC uint32
}

// NewState creates a zeroed machine state with an empty program
func NewState() *State {
	return &State{
		Program: []byte{},
	}
}

// Installs a program and rewinds the program counter. Registers and remainder are left untouched
func (s *State) LoadProgram(program []byte) {
	s.Program = program
	s.PC = 0
	s.halted = false
}

// Zeroes registers, program counter and remainder. The program is kept
func (s *State) Reset() {
	s.Registers = [TotalRegisters]int32{}
	s.PC = 0
	s.Remainder = 0
	s.halted = false
}

// Moves the program counter to the given offset, resuming a halted machine
func (s *State) Jump(pc uint32) {
	s.PC = pc
	s.halted = false
}

// Records the execution of a HLT instruction leaving the program counter at pc
func (s *State) halt(pc uint32) {
	s.PC = pc
	s.halted = true
	s.haltPC = pc
}

// Halted returns true if a HLT instruction stopped the machine and the program counter
// was not moved since. Assigning PC directly, as when replacing Program and rewinding
// to 0, resumes the machine
func (s *State) Halted() bool {
	return s.halted && s.PC == s.haltPC
}

// Returns true if the program counter is past the end of the program
func (s *State) AtEnd() bool {
	return uint64(s.PC) >= uint64(len(s.Program))
}

// Returns true if the machine will not execute more instructions
func (s *State) Done() bool {
	return s.Halted() || s.AtEnd()
}

// GetRegister returns the value of a register by index
func (s *State) GetRegister(idx uint8) (int32, error) {
	if err := checkRegister(idx); err != nil {
		return 0, err
	}

	return s.Registers[idx], nil
}

// SetRegister sets the value of a register by index
func (s *State) SetRegister(idx uint8, value int32) error {
	if err := checkRegister(idx); err != nil {
		return err
	}

	s.Registers[idx] = value
	return nil
}

func checkRegister(idx uint8) error {
	if int(idx) >= TotalRegisters {
		return utils.MakeError(ErrRegisterOutOfRange, "r%v (machine has %v registers)", idx, TotalRegisters)
	}

	return nil
}
