// Package interpreter implements the execution engine of the iridium register machine.
//
// The interpreter only ever sees program bytes: instructions are fetched and decoded
// through the program counter at run time, one fetch-decode-execute cycle per step.
package interpreter

import (
	"encoding/binary"
	"fmt"

	"github.com/Manu343726/iridium/pkg/utils"
	"github.com/Manu343726/iridium/pkg/vm/instructions"
)

// Interpreter executes iridium programs
type Interpreter struct {
	state  *State
	tracer Tracer
}

// NewInterpreter creates an interpreter with zeroed registers and an empty program
func NewInterpreter() *Interpreter {
	return &Interpreter{
		state: NewState(),
	}
}

// State returns the current machine state
func (i *Interpreter) State() *State {
	return i.state
}

// SetTracer installs a tracer notified of every executed instruction. Use nil to disable tracing
func (i *Interpreter) SetTracer(tracer Tracer) {
	i.tracer = tracer
}

// LoadProgram installs a program and rewinds the program counter
func (i *Interpreter) LoadProgram(program []byte) {
	i.state.LoadProgram(program)
}

// Reset resets the machine state, keeping the loaded program
func (i *Interpreter) Reset() {
	i.state.Reset()
}

// Run executes instructions until the machine halts, runs past the end of the program or
// an error occurs. There is no step limit, see RunN()
func (i *Interpreter) Run() error {
	for {
		done, err := i.RunOnce()
		if err != nil {
			return err
		}

		if done {
			return nil
		}
	}
}

// RunN executes at most n instructions. Returns true if the machine finished
func (i *Interpreter) RunN(n int) (bool, error) {
	for count := 0; count < n; count++ {
		done, err := i.RunOnce()
		if err != nil || done {
			return done, err
		}
	}

	return i.state.Done(), nil
}

// RunOnce executes a single fetch-decode-execute cycle.
//
// Returns true when the machine is done, either because a HLT instruction was executed or
// because the program counter is past the end of the program. A failed step returns an
// *ExecutionError and leaves the machine state untouched
func (i *Interpreter) RunOnce() (bool, error) {
	s := i.state

	if s.Done() {
		return true, nil
	}

	c := cursor{program: s.Program, pc: s.PC}

	opCode, err := c.nextOpCode()
	if err != nil {
		return false, i.fail(opCode, err)
	}

	switch opCode {
	case instructions.OpCode_HLT:
		s.halt(c.pc)
		i.trace(&Trace{Operation: TraceHalt, PC: c.start, Instruction: instructions.Hlt()})
		return true, nil

	case instructions.OpCode_LOAD:
		dst, err := c.nextRegister()
		if err != nil {
			return false, i.fail(opCode, err)
		}
		imm, err := c.next16Bits()
		if err != nil {
			return false, i.fail(opCode, err)
		}

		s.Registers[dst] = int32(imm)
		s.PC = c.pc
		i.traceExecute(c.start, instructions.Load(dst, imm), fmt.Sprintf("r%d = %d", dst, s.Registers[dst]))

	case instructions.OpCode_ADD, instructions.OpCode_SUB, instructions.OpCode_MUL, instructions.OpCode_DIV:
		lhs, rhs, dst, err := c.nextRegisters()
		if err != nil {
			return false, i.fail(opCode, err)
		}

		a, b := s.Registers[lhs], s.Registers[rhs]
		var result int32

		switch opCode {
		case instructions.OpCode_ADD:
			result = a + b
		case instructions.OpCode_SUB:
			result = a - b
		case instructions.OpCode_MUL:
			result = a * b
		case instructions.OpCode_DIV:
			if b == 0 {
				return false, i.fail(opCode, utils.MakeError(ErrDivisionByZero, "r%d / r%d with r%d = 0", lhs, rhs, rhs))
			}

			result = a / b
			s.Remainder = uint32(a % b)
		}

		s.Registers[dst] = result
		s.PC = c.pc
		i.traceExecute(c.start, instructions.NewInstruction(opCode, lhs, rhs, dst), fmt.Sprintf("r%d = %d", dst, result))

	case instructions.OpCode_GT:
		lhs, rhs, target, err := c.nextRegisters()
		if err != nil {
			return false, i.fail(opCode, err)
		}

		s.PC = c.pc
		result := "no jump"

		if s.Registers[lhs] > s.Registers[rhs] {
			s.PC = uint32(s.Registers[target])
			result = fmt.Sprintf("jump to 0x%08X", s.PC)
		}

		i.traceExecute(c.start, instructions.Gt(lhs, rhs, target), result)

	default:
		return false, i.fail(opCode, utils.MakeError(instructions.ErrInstructionNotImplemented, "%v", opCode))
	}

	return false, nil
}

func (i *Interpreter) fail(opCode instructions.OpCode, err error) error {
	execErr := &ExecutionError{
		PC:     i.state.PC,
		OpCode: opCode,
		Err:    err,
	}

	i.trace(&Trace{Operation: TraceError, PC: i.state.PC, Error: execErr})

	return execErr
}

func (i *Interpreter) traceExecute(pc uint32, instr instructions.Instruction, result string) {
	i.trace(&Trace{
		Operation:   TraceExecute,
		PC:          pc,
		Instruction: instr,
		Result:      result,
	})
}

func (i *Interpreter) trace(t *Trace) {
	if i.tracer != nil {
		i.tracer.SaveTrace(t)
	}
}

// Reads the program through a private program counter, so nothing is committed to the
// machine state until the whole instruction has been fetched and validated
type cursor struct {
	program []byte
	start   uint32
	pc      uint32
}

func (c *cursor) require(n int) error {
	if uint64(c.pc)+uint64(n) > uint64(len(c.program)) {
		return utils.MakeError(ErrTruncatedProgram, "instruction at 0x%08X needs %v more bytes at 0x%08X but the program is %v bytes long", c.start, n, c.pc, len(c.program))
	}

	return nil
}

func (c *cursor) nextOpCode() (instructions.OpCode, error) {
	c.start = c.pc

	b, err := c.next8Bits()
	if err != nil {
		return 0, err
	}

	opCode, err := instructions.Opcodes.DecodeOpCode(b)
	if err != nil {
		return instructions.OpCode(b), err
	}

	return opCode, nil
}

func (c *cursor) next8Bits() (uint8, error) {
	if err := c.require(1); err != nil {
		return 0, err
	}

	result := c.program[c.pc]
	c.pc++
	return result, nil
}

// Immediates are encoded most significant byte first
func (c *cursor) next16Bits() (uint16, error) {
	if err := c.require(2); err != nil {
		return 0, err
	}

	result := binary.BigEndian.Uint16(c.program[c.pc:])
	c.pc += 2
	return result, nil
}

func (c *cursor) nextRegister() (uint8, error) {
	idx, err := c.next8Bits()
	if err != nil {
		return 0, err
	}

	if err := checkRegister(idx); err != nil {
		return 0, err
	}

	return idx, nil
}

func (c *cursor) nextRegisters() (uint8, uint8, uint8, error) {
	var registers [3]uint8

	for n := range registers {
		idx, err := c.nextRegister()
		if err != nil {
			return 0, 0, 0, err
		}

		registers[n] = idx
	}

	return registers[0], registers[1], registers[2], nil
}
