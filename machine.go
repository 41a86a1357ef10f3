// machine.go - orchestrator: ROM layout, tick scheduling, host surface (component L13).

package msx1

const (
	romSize        = 0x10000
	diskROMMarkerA = 0x41 // 'A'
	diskROMMarkerB = 0x42 // 'B'
	diskROMAddr    = 0x4000
)

// Machine is the top-level emulator: it owns the bus, CPU, VDP, PSG, PPI,
// keyboard, and (if a disk ROM is present) the disk subsystem, and drives
// them all from one logical thread (spec §5).
type Machine struct {
	bus    *Bus
	cpu    *CPU
	vdp    *VDP
	psg    *PSG
	ppi    *PPI
	kbd    *Keyboard
	clock  Clock
	drives *DiskDriveSet
	driver *DiskDriver
}

// New constructs a Machine from a 64 KiB BIOS ROM image with no disk ROM.
func New(biosROM []byte) (*Machine, error) {
	return newMachine(biosROM, nil)
}

// NewWithDisk constructs a Machine with both a BIOS ROM and a slot-1 ROM
// (disk ROM or cartridge, up to 64 KiB). If the slot-1 image starts with
// 'A','B' at offset 0x4000 it is treated as a disk ROM: the patcher runs
// and the disk driver is registered (spec §4.11).
func NewWithDisk(biosROM, slot1ROM []byte) (*Machine, error) {
	return newMachine(biosROM, slot1ROM)
}

func newMachine(biosROM, slot1ROM []byte) (*Machine, error) {
	if len(biosROM) == 0 || len(biosROM) > romSize {
		return nil, &MachineError{Kind: InvalidRomSize, Op: "New", Detail: "BIOS ROM must be 1..65536 bytes"}
	}
	if slot1ROM != nil && len(slot1ROM) > romSize {
		return nil, &MachineError{Kind: InvalidRomSize, Op: "NewWithDisk", Detail: "slot-1 ROM must be at most 65536 bytes"}
	}

	bus := NewBus()
	bus.SetSlot(0, NewROMSlot(biosROM))
	bus.SetSlot(2, NewEmptySlot())
	bus.SetSlot(3, NewRAMSlot())

	m := &Machine{
		bus: bus,
		vdp: NewVDP(),
		psg: NewPSG(),
		kbd: NewKeyboard(),
	}
	m.ppi = NewPPI(bus, m.kbd)
	bus.AttachVDP(m.vdp)
	bus.AttachPSG(m.psg)
	bus.AttachPPI(m.ppi)
	m.cpu = NewCPU(bus)

	isDiskROM := false
	if slot1ROM != nil {
		slot1Copy := make([]byte, len(slot1ROM))
		copy(slot1Copy, slot1ROM)
		if len(slot1Copy) > diskROMAddr+1 &&
			slot1Copy[diskROMAddr] == diskROMMarkerA && slot1Copy[diskROMAddr+1] == diskROMMarkerB {
			isDiskROM = true
		}

		rom := make([]byte, romSize)
		for i := range rom {
			rom[i] = 0xFF
		}
		copy(rom, slot1Copy)

		if isDiskROM {
			PatchDiskROM(rom)
			m.drives = NewDiskDriveSet()
			m.driver = NewDiskDriver(m.drives)
			m.driver.RegisterHandlers(bus)
		}
		bus.SetSlot(1, NewROMSlot(rom))
	} else {
		bus.SetSlot(1, NewEmptySlot())
	}

	m.Reset()
	return m, nil
}

// Reset puts the CPU and clock back to their post-reset state.
func (m *Machine) Reset() {
	m.cpu.Reset()
	m.clock.Reset()
}

// Step executes one CPU instruction (the CPU core ticks the VDP through the
// Bus as it runs), raises the CPU interrupt line while the VDP asserts its
// VBlank interrupt, clears it once a status read has cleared the VDP's, and
// returns the cycles consumed.
func (m *Machine) Step() int {
	cycles := m.cpu.Step()
	m.clock.Advance(cycles)
	if m.vdp.IRQAsserted() {
		if m.cpu.IFF1() {
			m.cpu.Interrupt(0xFF)
		}
	} else {
		m.cpu.ClearInterrupt()
	}
	return cycles
}

// StepFor executes instructions until at least cycles worth of CPU time
// has elapsed.
func (m *Machine) StepFor(cycles int) {
	remaining := cycles
	for remaining > 0 {
		remaining -= m.Step()
	}
}

// Screen returns the rendered 256x192 palette-index frame buffer.
func (m *Machine) Screen() []byte { return m.vdp.Screen() }

// GenerateAudioSamples returns n signed PCM samples at the PSG's native
// tick rate; the host resamples to its audio device rate.
func (m *Machine) GenerateAudioSamples(n int) []int16 {
	return m.psg.GenerateSamples(n)
}

// KeyDown / KeyUp forward host key events to the keyboard matrix.
func (m *Machine) KeyDown(code rune) { m.kbd.KeyDown(code) }
func (m *Machine) KeyUp(code rune)   { m.kbd.KeyUp(code) }

// InsertDisk inserts a DSK image into drive (0=A:, 1=B:). name is
// currently unused (no disk label surface in this design) but kept in
// the signature to match the host-facing operation table.
func (m *Machine) InsertDisk(driveIdx int, data []byte, name string) error {
	if m.drives == nil {
		return &MachineError{Kind: NoDisk, Op: "InsertDisk", Detail: "machine has no disk subsystem (no disk ROM loaded)"}
	}
	image, err := NewDiskImage(data)
	if err != nil {
		return err
	}
	return m.drives.Insert(driveIdx, image)
}

// EjectDisk removes any image from drive.
func (m *Machine) EjectDisk(driveIdx int) error {
	if m.drives == nil {
		return &MachineError{Kind: NoDisk, Op: "EjectDisk", Detail: "machine has no disk subsystem (no disk ROM loaded)"}
	}
	return m.drives.Eject(driveIdx)
}

// PC returns the CPU's current program counter, for host introspection.
func (m *Machine) PC() uint16 { return m.cpu.PC() }

// VRAM returns a copy of the VDP's 16 KiB video memory.
func (m *Machine) VRAM() []byte { return m.vdp.VRAM() }

// DisplayMode returns the VDP's currently decoded display mode.
func (m *Machine) DisplayMode() DisplayMode { return m.vdp.Mode() }

// RegisterSnapshot returns a copy of the CPU's architectural registers.
func (m *Machine) RegisterSnapshot() RegisterSnapshot { return m.cpu.RegisterSnapshot() }

// VDPRegisters returns a copy of the VDP's R0..R7.
func (m *Machine) VDPRegisters() [8]byte { return m.vdp.Registers() }

// PSGRegisters returns a copy of the PSG's 16 registers.
func (m *Machine) PSGRegisters() [16]byte {
	m.psg.mutex.Lock()
	defer m.psg.mutex.Unlock()
	return m.psg.regs
}

// Disassemble decodes one instruction at addr through the current page
// mapping.
func (m *Machine) Disassemble(addr uint16) (text string, length int) {
	return m.cpu.Disassemble(addr)
}

// DisassembleRange decodes count instructions starting at addr, for a
// debugger view; the line matching the CPU's current PC has IsPC set.
func (m *Machine) DisassembleRange(addr uint16, count int) []DisassembledLine {
	return m.cpu.DisassembleRange(addr, count)
}
