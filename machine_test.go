package msx1

import "testing"

func minimalBIOS() []byte {
	rom := make([]byte, romSize)
	return rom // all zeros: NOP NOP NOP ... runs forever without side effects
}

func TestMachineConstructionResetsCPU(t *testing.T) {
	m, err := New(minimalBIOS())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.PC() != 0 {
		t.Fatalf("PC after construction = %#x, want 0", m.PC())
	}
}

func TestMachineRejectsOversizeROM(t *testing.T) {
	_, err := New(make([]byte, romSize+1))
	if err == nil {
		t.Fatalf("expected InvalidRomSize error for oversize BIOS")
	}
}

func TestMachineStepAdvancesPC(t *testing.T) {
	bios := minimalBIOS() // 0x00 = NOP
	m, _ := New(bios)
	m.Step()
	if m.PC() != 1 {
		t.Fatalf("PC after one NOP = %d, want 1", m.PC())
	}
}

func TestMachineSlotPageRemapViaPPI(t *testing.T) {
	m, _ := New(minimalBIOS())
	// PPI port A write: 0xFF maps every page to primary slot 3 (RAM).
	m.ppi.Out(0, 0xFF)
	for page := 0; page < 4; page++ {
		if got := m.bus.PageSelect(page); got != 3 {
			t.Fatalf("page %d select after remap = %d, want 3", page, got)
		}
	}
	// Reading anywhere in page 0 now reads RAM, initially zero, not BIOS.
	if got := m.bus.Read(0x0000); got != 0x00 {
		t.Fatalf("Read(0x0000) after remap = %#x, want 0x00", got)
	}
}

func TestMachineVBlankDeliversInterrupt(t *testing.T) {
	bios := minimalBIOS()
	m, _ := New(bios)
	m.vdp.regs[1] = 0x20 // IE on
	// Enable interrupts on the CPU as EI would.
	m.cpu.z80.IFF1 = true

	cyclesPerFrame := VDPDotsPerLine * VDPLinesPerFrame / VDPDotRatio
	m.StepFor(cyclesPerFrame)

	if m.cpu.z80.PC == 0 {
		t.Fatalf("interrupt was never serviced: PC still at reset vector")
	}
}

func TestMachineDiskFILESScenario(t *testing.T) {
	bios := minimalBIOS()

	diskROM := make([]byte, romSize)
	diskROM[0x4000] = 'A'
	diskROM[0x4001] = 'B'
	jumpTableBase := 0x4100
	for i := 0; i < 8; i++ {
		off := jumpTableBase + i*3
		diskROM[off] = 0xC3
		diskROM[off+1] = byte(i)
		diskROM[off+2] = 0x00
	}

	m, err := NewWithDisk(bios, diskROM)
	if err != nil {
		t.Fatalf("NewWithDisk: %v", err)
	}
	if m.drives == nil {
		t.Fatalf("disk subsystem not registered for a recognised disk ROM")
	}
	m.ppi.Out(0, 0xFC) // pages 1-3 -> slot 3 (RAM) so transfers to 0x5000/0x6000 land in RAM

	data := make([]byte, diskSize720K)
	boot := sampleBootSector()
	copy(data, boot)
	rootDirOffset := 7 * sectorSize // first root directory sector: reservedSectors(1) + numFATs(2)*sectorsPerFAT(3)
	copy(data[rootDirOffset:], []byte("HELLO   TXT"))

	if err := m.InsertDisk(0, data, "test.dsk"); err != nil {
		t.Fatalf("InsertDisk: %v", err)
	}

	changed, _, _ := m.bus.HandleExtension(0xE5, ExtRegs{A: 0})
	if changed.F&flagCarry != 0 || byte(changed.BC>>8) != 0xFF {
		t.Fatalf("DSKCHG after insert = F=%#x B=%#x, want CF=0 B=0xFF", changed.F, byte(changed.BC>>8))
	}

	dpbRegs, _, _ := m.bus.HandleExtension(0xE6, ExtRegs{A: 0, HL: 0x5000})
	if dpbRegs.F&flagCarry != 0 {
		t.Fatalf("GETDPB failed: F=%#x", dpbRegs.F)
	}
	dpb := m.bus.ReadBlock(0x5000, 18)
	dirSector := le16(dpb, 16)

	ioRegs := ExtRegs{A: 0, BC: uint16(1) << 8, DE: dirSector, HL: 0x6000}
	ioResult, _, _ := m.bus.HandleExtension(0xE4, ioRegs)
	if ioResult.F&flagCarry != 0 {
		t.Fatalf("DSKIO on root directory sector failed: F=%#x", ioResult.F)
	}
	sector := m.bus.ReadBlock(0x6000, sectorSize)
	if string(sector[0:11]) != "HELLO   TXT" {
		t.Fatalf("root directory sector does not contain HELLO   TXT, got %q", sector[0:11])
	}
}

// TestMachineDiskTrapsViaCPUExecution drives DSKCHG/GETDPB/DSKIO through
// real Z80 instruction decode (ED E5 / ED E6 / ED E4 fetched and executed
// by cpu.Step, not called directly against the Bus), so it exercises the
// CPU's opExtension trap-index lookup rather than bypassing it.
func TestMachineDiskTrapsViaCPUExecution(t *testing.T) {
	bios := minimalBIOS()
	prog := []byte{
		0x3E, 0x00, // LD A,0            ; drive 0
		0xED, 0xE5, // DSKCHG
		0x3E, 0x00, // LD A,0            ; drive 0
		0x21, 0x00, 0x50, // LD HL,0x5000 ; DPB destination
		0xED, 0xE6, // GETDPB
		0x3E, 0x00, // LD A,0 ; drive 0
		0x01, 0x00, 0x01, // LD BC,0x0100 ; B=1 sector, C=0 media
		0x11, 0x07, 0x00, // LD DE,0x0007 ; start sector = root dir sector
		0x21, 0x00, 0x60, // LD HL,0x6000 ; transfer destination
		0xB7,       // OR A             ; clear carry -> read
		0xED, 0xE4, // DSKIO
	}
	copy(bios, prog)

	diskROM := make([]byte, romSize)
	diskROM[0x4000] = 'A'
	diskROM[0x4001] = 'B'

	m, err := NewWithDisk(bios, diskROM)
	if err != nil {
		t.Fatalf("NewWithDisk: %v", err)
	}
	m.ppi.Out(0, 0xFC) // page 0 stays on the BIOS (program); pages 1-3 -> slot 3 (RAM)

	data := make([]byte, diskSize720K)
	copy(data, sampleBootSector())
	const rootDirSector = 7 // reservedSectors(1) + numFATs(2)*sectorsPerFAT(3), see sampleBootSector
	copy(data[rootDirSector*sectorSize:], []byte("HELLO   TXT"))
	if err := m.InsertDisk(0, data, "test.dsk"); err != nil {
		t.Fatalf("InsertDisk: %v", err)
	}

	m.Step() // LD A,0
	m.Step() // ED E5 (DSKCHG)
	regs := m.RegisterSnapshot()
	if regs.F&flagCarry != 0 || regs.B != 0xFF {
		t.Fatalf("DSKCHG via CPU execution: F=%#x B=%#x, want CF=0 B=0xFF", regs.F, regs.B)
	}

	m.Step() // LD A,0
	m.Step() // LD HL,0x5000
	m.Step() // ED E6 (GETDPB)
	regs = m.RegisterSnapshot()
	if regs.F&flagCarry != 0 {
		t.Fatalf("GETDPB via CPU execution failed: F=%#x", regs.F)
	}
	dpb := m.bus.ReadBlock(0x5000, 18)
	if dpb[0] != 0xF9 {
		t.Fatalf("DPB media descriptor via CPU execution = %#x, want 0xF9", dpb[0])
	}

	m.Step() // LD A,0
	m.Step() // LD BC,0x0100
	m.Step() // LD DE,0x0007
	m.Step() // LD HL,0x6000
	m.Step() // OR A
	m.Step() // ED E4 (DSKIO)
	regs = m.RegisterSnapshot()
	if regs.F&flagCarry != 0 {
		t.Fatalf("DSKIO via CPU execution failed: F=%#x", regs.F)
	}
	sector := m.bus.ReadBlock(0x6000, sectorSize)
	if string(sector[0:11]) != "HELLO   TXT" {
		t.Fatalf("DSKIO via CPU execution did not transfer HELLO   TXT, got %q", sector[0:11])
	}
}
