// cpu.go - CPU wrapper around the Z80 core (component L12).

package msx1

// CPU wraps the Z80 instruction core with the single-step / run-for-cycles
// contract the Machine drives, plus interrupt delivery. The core's opcode
// semantics (cpu_z80.go) are standard Z80 and are not re-specified here;
// this wrapper only adds the scheduling and interrupt surface the Machine
// needs.
type CPU struct {
	z80 *CPU_Z80
	bus *Bus
}

// NewCPU builds a CPU wrapper around a fresh Z80 core driven by bus.
func NewCPU(bus *Bus) *CPU {
	return &CPU{
		z80: NewCPU_Z80(bus),
		bus: bus,
	}
}

// Reset puts the CPU in its post-reset state: PC=0, IFF1/2 clear, IM 0.
func (c *CPU) Reset() {
	c.z80.Reset()
}

// Step executes exactly one instruction (or services a pending interrupt,
// or ticks through a HALT) and returns the cycles consumed.
func (c *CPU) Step() int {
	before := c.z80.Cycles
	c.z80.Step()
	return int(c.z80.Cycles - before)
}

// Interrupt asserts the CPU's interrupt line; it stays asserted until
// ClearInterrupt. If IFF1 is
// set the CPU enters its configured interrupt mode (IM1 pushes PC and jumps
// to 0x0038, which is what an MSX BIOS expects) before the next
// instruction; otherwise the request is ignored, matching real Z80
// behaviour. vector is only consulted in IM2.
func (c *CPU) Interrupt(vector byte) {
	c.z80.SetIRQVector(vector)
	c.z80.SetIRQLine(true)
}

// ClearInterrupt deasserts the interrupt line. Machine.Step calls it once
// a read of the VDP status register has cleared the VDP's interrupt.
func (c *CPU) ClearInterrupt() {
	c.z80.SetIRQLine(false)
}

// IFF1 reports whether maskable interrupts are currently enabled.
func (c *CPU) IFF1() bool {
	return c.z80.IFF1
}

// PC returns the current program counter, for host introspection.
func (c *CPU) PC() uint16 { return c.z80.PC }

// RegisterSnapshot returns a copy of the CPU's architectural registers.
type RegisterSnapshot struct {
	A, F                         byte
	B, C, D, E, H, L             byte
	A2, F2                       byte
	B2, C2, D2, E2, H2, L2       byte
	IX, IY, SP, PC               uint16
	I, R, IM                     byte
	IFF1, IFF2                   bool
	Halted                       bool
}

// RegisterSnapshot captures the full register file for debuggers.
func (c *CPU) RegisterSnapshot() RegisterSnapshot {
	z := c.z80
	return RegisterSnapshot{
		A: z.A, F: z.F, B: z.B, C: z.C, D: z.D, E: z.E, H: z.H, L: z.L,
		A2: z.A2, F2: z.F2, B2: z.B2, C2: z.C2, D2: z.D2, E2: z.E2, H2: z.H2, L2: z.L2,
		IX: z.IX, IY: z.IY, SP: z.SP, PC: z.PC,
		I: z.I, R: z.R, IM: z.IM,
		IFF1: z.IFF1, IFF2: z.IFF2,
		Halted: z.Halted,
	}
}

// Disassemble decodes one instruction at addr, reading through the bus
// (so banked memory disassembles correctly), returning its text and
// byte length.
func (c *CPU) Disassemble(addr uint16) (text string, length int) {
	data := make([]byte, 4)
	for i := range data {
		data[i] = c.bus.Read(addr + uint16(i))
	}
	size, mnemonic := decodeZ80Instruction(data, addr)
	return mnemonic, size
}

// DisassembleRange decodes count instructions starting at addr, reading
// through the bus, and flags the line at the CPU's current PC for a
// debugger's cursor.
func (c *CPU) DisassembleRange(addr uint16, count int) []DisassembledLine {
	readMem := func(a uint64, size int) []byte {
		data := make([]byte, size)
		for i := range data {
			data[i] = c.bus.Read(uint16(a) + uint16(i))
		}
		return data
	}
	lines := disassembleZ80(readMem, uint64(addr), count)
	for i := range lines {
		lines[i].IsPC = uint16(lines[i].Address) == c.z80.PC
	}
	return lines
}
