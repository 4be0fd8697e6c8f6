package interpreter

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/Manu343726/iridium/pkg/vm/instructions"
)

// ExecutionEvent represents events that can occur during execution
type ExecutionEvent int

const (
	// EventStep is fired after each instruction execution
	EventStep ExecutionEvent = iota
	// EventBreakpoint is fired when a breakpoint is hit
	EventBreakpoint
	// EventWatchpoint is fired when a watched register is modified
	EventWatchpoint
	// EventHalt is fired when the machine halts or runs past the end of the program
	EventHalt
	// EventError is fired when an execution error occurs
	EventError
)

// String returns the string representation of an ExecutionEvent
func (e ExecutionEvent) String() string {
	switch e {
	case EventStep:
		return "step"
	case EventBreakpoint:
		return "breakpoint"
	case EventWatchpoint:
		return "watchpoint"
	case EventHalt:
		return "halt"
	case EventError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", e)
	}
}

// StopReason indicates why execution stopped
type StopReason int

const (
	// StopNone indicates execution has not stopped
	StopNone StopReason = iota
	// StopStep indicates execution stopped after a single step
	StopStep
	// StopBreakpoint indicates execution stopped at a breakpoint
	StopBreakpoint
	// StopWatchpoint indicates execution stopped due to a watchpoint
	StopWatchpoint
	// StopHalt indicates the machine halted
	StopHalt
	// StopError indicates an execution error occurred
	StopError
	// StopMaxSteps indicates max steps limit was reached
	StopMaxSteps
	// StopInterrupted indicates execution was interrupted by the user
	StopInterrupted
)

// String returns the string representation of a StopReason
func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopStep:
		return "step"
	case StopBreakpoint:
		return "breakpoint"
	case StopWatchpoint:
		return "watchpoint"
	case StopHalt:
		return "halt"
	case StopError:
		return "error"
	case StopMaxSteps:
		return "max_steps"
	case StopInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("unknown(%d)", r)
	}
}

// Breakpoint represents a code breakpoint
type Breakpoint struct {
	// ID is the unique breakpoint identifier
	ID int
	// Offset is the program offset of the breakpoint
	Offset uint32
	// Enabled indicates if the breakpoint is active
	Enabled bool
	// HitCount tracks how many times this breakpoint has been hit
	HitCount int
}

// Watchpoint stops execution when the value of a register changes
type Watchpoint struct {
	// ID is the unique watchpoint identifier
	ID int
	// Register is the index of the watched register
	Register uint8
	// Enabled indicates if the watchpoint is active
	Enabled bool
	// HitCount tracks how many times this watchpoint has been triggered
	HitCount int
	// LastValue stores the last known value of the register
	LastValue int32
}

// ExecutionResult contains the result of an execution operation
type ExecutionResult struct {
	// StopReason indicates why execution stopped
	StopReason StopReason
	// StepsExecuted is the number of instructions executed
	StepsExecuted int
	// Error contains any error that occurred (nil if none)
	Error error
	// BreakpointID is set if stopped at a breakpoint
	BreakpointID int
	// WatchpointID is set if stopped at a watchpoint
	WatchpointID int
	// LastPC is the offset of the last executed (or faulting) instruction
	LastPC uint32
	// LastInstruction is the last decoded instruction (nil if it could not be decoded)
	LastInstruction *instructions.Instruction
}

// EventCallback is called when an execution event occurs
// Return true to continue execution, false to stop
type EventCallback func(event ExecutionEvent, result *ExecutionResult) bool

// Debugger provides debugging capabilities for the interpreter
type Debugger struct {
	interp *Interpreter

	// Breakpoints indexed by ID
	breakpoints map[int]*Breakpoint
	// Breakpoint offsets for fast lookup
	breakpointOffsets map[uint32]*Breakpoint
	// Next breakpoint ID
	nextBreakpointID int

	// Watchpoints indexed by ID
	watchpoints map[int]*Watchpoint
	// Next watchpoint ID
	nextWatchpointID int

	// Event callback
	eventCallback EventCallback

	// Execution state
	lastResult *ExecutionResult
	// Set by Interrupt(), consumed by the next execution loop iteration
	interrupted atomic.Bool
}

// NewDebugger creates a new debugger for the given interpreter
func NewDebugger(interp *Interpreter) *Debugger {
	return &Debugger{
		interp:            interp,
		breakpoints:       make(map[int]*Breakpoint),
		breakpointOffsets: make(map[uint32]*Breakpoint),
		watchpoints:       make(map[int]*Watchpoint),
	}
}

// Interpreter returns the underlying interpreter
func (d *Debugger) Interpreter() *Interpreter {
	return d.interp
}

// State returns the current machine state
func (d *Debugger) State() *State {
	return d.interp.State()
}

// SetEventCallback sets the callback for execution events
func (d *Debugger) SetEventCallback(callback EventCallback) {
	d.eventCallback = callback
}

// LastResult returns the result of the last execution operation
func (d *Debugger) LastResult() *ExecutionResult {
	return d.lastResult
}

// --- Breakpoint Management ---

// AddBreakpoint adds a breakpoint at the given program offset
func (d *Debugger) AddBreakpoint(offset uint32) *Breakpoint {
	bp := &Breakpoint{
		ID:      d.nextBreakpointID,
		Offset:  offset,
		Enabled: true,
	}
	d.nextBreakpointID++
	d.breakpoints[bp.ID] = bp
	d.breakpointOffsets[offset] = bp
	return bp
}

// RemoveBreakpoint removes a breakpoint by ID
func (d *Debugger) RemoveBreakpoint(id int) bool {
	bp, exists := d.breakpoints[id]
	if !exists {
		return false
	}
	if d.breakpointOffsets[bp.Offset] == bp {
		delete(d.breakpointOffsets, bp.Offset)
	}
	delete(d.breakpoints, id)
	return true
}

// GetBreakpoint returns a breakpoint by ID
func (d *Debugger) GetBreakpoint(id int) *Breakpoint {
	return d.breakpoints[id]
}

// GetBreakpointAt returns the breakpoint at the given offset
func (d *Debugger) GetBreakpointAt(offset uint32) *Breakpoint {
	return d.breakpointOffsets[offset]
}

// ListBreakpoints returns all breakpoints sorted by offset
func (d *Debugger) ListBreakpoints() []*Breakpoint {
	bps := make([]*Breakpoint, 0, len(d.breakpoints))
	for _, bp := range d.breakpoints {
		bps = append(bps, bp)
	}
	sort.Slice(bps, func(i, j int) bool {
		return bps[i].Offset < bps[j].Offset
	})
	return bps
}

// EnableBreakpoint enables or disables a breakpoint
func (d *Debugger) EnableBreakpoint(id int, enabled bool) bool {
	bp, exists := d.breakpoints[id]
	if !exists {
		return false
	}
	bp.Enabled = enabled
	return true
}

// ClearBreakpoints removes all breakpoints
func (d *Debugger) ClearBreakpoints() {
	d.breakpoints = make(map[int]*Breakpoint)
	d.breakpointOffsets = make(map[uint32]*Breakpoint)
}

// --- Watchpoint Management ---

// AddWatchpoint watches a register for changes
func (d *Debugger) AddWatchpoint(register uint8) (*Watchpoint, error) {
	value, err := d.interp.state.GetRegister(register)
	if err != nil {
		return nil, err
	}

	wp := &Watchpoint{
		ID:        d.nextWatchpointID,
		Register:  register,
		Enabled:   true,
		LastValue: value,
	}
	d.nextWatchpointID++
	d.watchpoints[wp.ID] = wp
	return wp, nil
}

// RemoveWatchpoint removes a watchpoint by ID
func (d *Debugger) RemoveWatchpoint(id int) bool {
	_, exists := d.watchpoints[id]
	if !exists {
		return false
	}
	delete(d.watchpoints, id)
	return true
}

// GetWatchpoint returns a watchpoint by ID
func (d *Debugger) GetWatchpoint(id int) *Watchpoint {
	return d.watchpoints[id]
}

// ListWatchpoints returns all watchpoints sorted by register
func (d *Debugger) ListWatchpoints() []*Watchpoint {
	wps := make([]*Watchpoint, 0, len(d.watchpoints))
	for _, wp := range d.watchpoints {
		wps = append(wps, wp)
	}
	sort.Slice(wps, func(i, j int) bool {
		if wps[i].Register == wps[j].Register {
			return wps[i].ID < wps[j].ID
		}
		return wps[i].Register < wps[j].Register
	})
	return wps
}

// ClearWatchpoints removes all watchpoints
func (d *Debugger) ClearWatchpoints() {
	d.watchpoints = make(map[int]*Watchpoint)
}

// --- Execution Control ---

// Interrupt stops the current Run() or Continue() before its next instruction.
// It is safe to call from other goroutines
func (d *Debugger) Interrupt() {
	d.interrupted.Store(true)
}

// Step executes a single instruction, ignoring any breakpoint at the current offset
func (d *Debugger) Step() *ExecutionResult {
	result := &ExecutionResult{
		LastPC: d.interp.state.PC,
	}

	if d.interp.state.Done() {
		result.StopReason = StopHalt
		d.lastResult = result
		d.fireEvent(EventHalt, result)
		return result
	}

	if !d.execute(result) {
		d.lastResult = result
		return result
	}

	// Check watchpoints after execution
	if wp := d.checkWatchpoints(); wp != nil {
		result.StopReason = StopWatchpoint
		result.WatchpointID = wp.ID
		d.lastResult = result
		d.fireEvent(EventWatchpoint, result)
		return result
	}

	result.StopReason = StopStep
	d.lastResult = result
	d.fireEvent(EventStep, result)
	return result
}

// Continue executes until a stop condition is met
func (d *Debugger) Continue() *ExecutionResult {
	return d.Run(0)
}

// Run executes up to maxSteps instructions (0 = unlimited)
func (d *Debugger) Run(maxSteps int) *ExecutionResult {
	result := &ExecutionResult{
		LastPC: d.interp.state.PC,
	}

	// Interrupts requested before the run started are stale
	d.interrupted.Store(false)

	for {
		if d.interrupted.Swap(false) {
			result.StopReason = StopInterrupted
			break
		}

		// Check step limit
		if maxSteps > 0 && result.StepsExecuted >= maxSteps {
			result.StopReason = StopMaxSteps
			break
		}

		// Check for breakpoint (not on first step if we're already there)
		if result.StepsExecuted > 0 {
			if bp := d.breakpointOffsets[d.interp.state.PC]; bp != nil && bp.Enabled {
				bp.HitCount++
				result.StopReason = StopBreakpoint
				result.BreakpointID = bp.ID
				d.fireEvent(EventBreakpoint, result)
				break
			}
		}

		// Check if halted
		if d.interp.state.Done() {
			result.StopReason = StopHalt
			d.fireEvent(EventHalt, result)
			break
		}

		if !d.execute(result) {
			break
		}

		// Fire step event and check if we should continue
		if !d.fireEvent(EventStep, result) {
			result.StopReason = StopStep
			break
		}

		// Check watchpoints
		if wp := d.checkWatchpoints(); wp != nil {
			result.StopReason = StopWatchpoint
			result.WatchpointID = wp.ID
			d.fireEvent(EventWatchpoint, result)
			break
		}
	}

	d.lastResult = result
	return result
}

// RunUntil executes until the PC reaches the target offset. Returns without executing
// anything if the PC is already there
func (d *Debugger) RunUntil(target uint32) *ExecutionResult {
	// Add temporary breakpoint, restoring any user breakpoint on the same offset afterwards
	previous := d.breakpointOffsets[target]
	bp := d.AddBreakpoint(target)
	defer func() {
		d.RemoveBreakpoint(bp.ID)
		if previous != nil {
			d.breakpointOffsets[target] = previous
		}
	}()

	if d.interp.state.PC == target {
		bp.HitCount++
		result := &ExecutionResult{
			StopReason:   StopBreakpoint,
			BreakpointID: bp.ID,
			LastPC:       target,
		}
		d.fireEvent(EventBreakpoint, result)
		d.lastResult = result
		return result
	}

	return d.Continue()
}

// Executes one instruction, recording it into the result. Returns false if execution failed
func (d *Debugger) execute(result *ExecutionResult) bool {
	result.LastPC = d.interp.state.PC

	if instr, err := d.Disassemble(result.LastPC); err == nil {
		result.LastInstruction = &instr
	} else {
		result.LastInstruction = nil
	}

	done, err := d.interp.RunOnce()
	if err != nil {
		result.StopReason = StopError
		result.Error = err
		d.fireEvent(EventError, result)
		return false
	}

	result.StepsExecuted++

	if done {
		result.StopReason = StopHalt
		d.fireEvent(EventHalt, result)
		return false
	}

	return true
}

// --- Introspection ---

// CurrentInstruction decodes the instruction at the current program counter
func (d *Debugger) CurrentInstruction() (instructions.Instruction, error) {
	return d.Disassemble(d.interp.state.PC)
}

// Disassemble decodes the instruction record starting at the given offset, without executing it.
// Records are decoded wherever the offset lands, aligned or not
func (d *Debugger) Disassemble(offset uint32) (instructions.Instruction, error) {
	program := d.interp.state.Program

	if uint64(offset) >= uint64(len(program)) {
		return instructions.Instruction{}, fmt.Errorf("offset 0x%08X is out of the program (%v bytes)", offset, len(program))
	}

	// A HLT record may be truncated at the end of the program, it only needs its opcode byte
	if program[offset] == byte(instructions.OpCode_HLT) {
		return instructions.Hlt(), nil
	}

	return instructions.DecodeInstruction(program[offset:])
}

// GetRegister returns the value of a register by index
func (d *Debugger) GetRegister(idx uint8) (int32, error) {
	return d.interp.state.GetRegister(idx)
}

// SetRegister sets the value of a register by index
func (d *Debugger) SetRegister(idx uint8, value int32) error {
	if err := d.interp.state.SetRegister(idx, value); err != nil {
		return err
	}

	// Changes made from the debugger do not trigger watchpoints
	for _, wp := range d.watchpoints {
		if wp.Register == idx {
			wp.LastValue = value
		}
	}

	return nil
}

// GetPC returns the current program counter
func (d *Debugger) GetPC() uint32 {
	return d.interp.state.PC
}

// SetPC sets the program counter
func (d *Debugger) SetPC(pc uint32) {
	d.interp.state.Jump(pc)
}

// IsHalted returns whether the machine will not execute more instructions
func (d *Debugger) IsHalted() bool {
	return d.interp.state.Done()
}

// --- Helper functions ---

func (d *Debugger) fireEvent(event ExecutionEvent, result *ExecutionResult) bool {
	if d.eventCallback != nil {
		return d.eventCallback(event, result)
	}
	return true // Continue by default
}

func (d *Debugger) checkWatchpoints() *Watchpoint {
	var hit *Watchpoint

	for _, wp := range d.ListWatchpoints() {
		if !wp.Enabled {
			continue
		}

		currentValue := d.interp.state.Registers[wp.Register]

		if currentValue != wp.LastValue {
			wp.HitCount++
			wp.LastValue = currentValue

			if hit == nil {
				hit = wp
			}
		}
	}

	return hit
}
