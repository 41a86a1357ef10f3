// diskdriver.go - BIOS disk-call trap handlers (component L10).

package msx1

// MSX-DOS error codes returned in A on DSKIO failure (spec §4.10).
const (
	errWriteProtect   = 0x01
	errNotReady       = 0x02
	errDataError      = 0x04
	errRecordNotFound = 0x08
	errWriteFault     = 0x10
	errOther          = 0x12
)

// flagCarry is the Z80 F-register carry bit, which the BIOS return
// convention uses for success/failure.
const flagCarry = 0x01

// DiskDriver registers the nine BIOS-call trap handlers with a Bus,
// backed by a DiskDriveSet. Each handler mutates and returns an ExtRegs
// value per spec §4.10; a handler never returns an error to the CPU —
// failures are translated to the CF+A convention (spec §7).
type DiskDriver struct {
	drives *DiskDriveSet
}

// NewDiskDriver wraps drives for extension dispatch.
func NewDiskDriver(drives *DiskDriveSet) *DiskDriver {
	return &DiskDriver{drives: drives}
}

// RegisterHandlers installs all nine trap handlers on bus.
func (d *DiskDriver) RegisterHandlers(bus *Bus) {
	bus.RegisterExtension(0xE0, d.inihrd)
	bus.RegisterExtension(0xE2, d.drivesCall)
	bus.RegisterExtension(0xE4, d.dskio)
	bus.RegisterExtension(0xE5, d.dskchg)
	bus.RegisterExtension(0xE6, d.getdpb)
	bus.RegisterExtension(0xE7, d.choice)
	bus.RegisterExtension(0xE8, d.dskfmt)
	bus.RegisterExtension(0xE9, d.dskstp)
	bus.RegisterExtension(0xEA, d.mtoff)
}

func clearCarry(regs ExtRegs) ExtRegs {
	regs.F &^= flagCarry
	return regs
}

func setCarry(regs ExtRegs, errCode byte) ExtRegs {
	regs.F |= flagCarry
	regs.A = errCode
	return regs
}

// inihrd / CHOICE / DSKFMT / DSKSTP are deliberate stubs per
// spec §4.10: they return success with no side effects.
func (d *DiskDriver) inihrd(regs ExtRegs, bus *Bus) (ExtRegs, int, bool) {
	return clearCarry(regs), 12, true
}

func (d *DiskDriver) choice(regs ExtRegs, bus *Bus) (ExtRegs, int, bool) {
	return clearCarry(regs), 12, true
}

func (d *DiskDriver) dskfmt(regs ExtRegs, bus *Bus) (ExtRegs, int, bool) {
	return clearCarry(regs), 12, true
}

func (d *DiskDriver) dskstp(regs ExtRegs, bus *Bus) (ExtRegs, int, bool) {
	return clearCarry(regs), 12, true
}

// mtoff clears the motor flag of both drives at once and returns success;
// it schedules no delayed motor-off time. The motor flag affects no other
// disk operation.
func (d *DiskDriver) mtoff(regs ExtRegs, bus *Bus) (ExtRegs, int, bool) {
	d.drives.SetMotor(0, false)
	d.drives.SetMotor(1, false)
	return clearCarry(regs), 12, true
}

// drivesCall implements DRIVES: L = number of drives (2).
func (d *DiskDriver) drivesCall(regs ExtRegs, bus *Bus) (ExtRegs, int, bool) {
	hl := regs.HL
	l := byte(2)
	h := byte(hl >> 8)
	regs.HL = uint16(h)<<8 | uint16(l)
	return clearCarry(regs), 12, true
}

// dskio implements DSKIO per spec §4.10's exact register contract.
func (d *DiskDriver) dskio(regs ExtRegs, bus *Bus) (ExtRegs, int, bool) {
	driveIdx := int(regs.A)
	if driveIdx > 1 {
		return setCarry(regs, errNotReady), 12, true
	}
	image := d.drives.Image(driveIdx)
	if image == nil {
		return setCarry(regs, errNotReady), 12, true
	}

	sectorCount := int(regs.BC >> 8) // B = sector count
	startSector := int(regs.DE)
	destAddr := regs.HL
	isWrite := regs.F&flagCarry != 0

	if isWrite {
		data := bus.ReadBlock(destAddr, sectorCount*sectorSize)
		if err := image.WriteSectors(startSector, data); err != nil {
			return setCarry(regs, errRecordNotFound), 200, true
		}
	} else {
		data, err := image.ReadSectors(startSector, sectorCount)
		if err != nil {
			return setCarry(regs, errRecordNotFound), 200, true
		}
		bus.WriteBlock(destAddr, data)
	}

	regs.BC &^= 0xFF00 // B=0: all sectors transferred
	return clearCarry(regs), 200, true
}

// dskchg implements DSKCHG per spec §4.10/§8.
func (d *DiskDriver) dskchg(regs ExtRegs, bus *Bus) (ExtRegs, int, bool) {
	driveIdx := int(regs.A)
	if driveIdx > 1 {
		return setCarry(regs, errNotReady), 12, true
	}
	if d.drives.Image(driveIdx) == nil {
		return setCarry(regs, errNotReady), 12, true
	}
	if d.drives.PollChanged(driveIdx) {
		regs.BC = (regs.BC &^ 0xFF00) | 0xFF00 // B=0xFF (changed)
		return clearCarry(regs), 12, true
	}
	regs.BC = (regs.BC &^ 0xFF00) | 0x0100 // B=0x01 (unchanged)
	return clearCarry(regs), 12, true
}

// getdpb implements GETDPB: derives an 18-byte DPB from the inserted
// disk's boot-sector BPB and writes it at HL, per the exact byte layout
// in spec §4.10.
func (d *DiskDriver) getdpb(regs ExtRegs, bus *Bus) (ExtRegs, int, bool) {
	driveIdx := int(regs.A)
	if driveIdx > 1 {
		return setCarry(regs, errNotReady), 12, true
	}
	image := d.drives.Image(driveIdx)
	if image == nil {
		return setCarry(regs, errNotReady), 12, true
	}

	boot := image.BootSector()
	bytesPerSector := le16(boot, 0x0B)
	reservedSectors := le16(boot, 0x0E)
	numFATs := boot[0x10]
	rootEntries := le16(boot, 0x11)
	media := boot[0x15]
	sectorsPerFAT := le16(boot, 0x16)

	if media < 0xF8 || media > 0xFF {
		media = 0xF9 // 720 KB fallback
	}

	firstFATSector := reservedSectors
	rootDirSize := (int(rootEntries) * 32) / sectorSize
	firstDataSector := firstFATSector + uint16(numFATs)*sectorsPerFAT + uint16(rootDirSize)
	totalSectors := uint16(image.Size() / sectorSize)
	dataSectors := totalSectors - firstDataSector
	maxClusters := dataSectors / 2 // 1 KB cluster = 2 sectors on MSX-DOS 360/720KB media

	dpb := make([]byte, 18)
	dpb[0] = media
	putLE16(dpb, 1, bytesPerSector)
	dpb[3] = 0 // directory mask / shift / cluster params, implementation-defined beyond media geometry
	dpb[4] = 0
	dpb[5] = 0
	dpb[6] = 0
	putLE16(dpb, 7, firstFATSector)
	dpb[9] = numFATs
	dpb[10] = byte(rootEntries) // one byte, per spec
	putLE16(dpb, 11, firstDataSector)
	putLE16(dpb, 13, maxClusters)
	dpb[15] = byte(sectorsPerFAT)
	putLE16(dpb, 16, firstFATSector+uint16(numFATs)*sectorsPerFAT)

	bus.WriteBlock(regs.HL, dpb)

	firstDirSector := le16(dpb, 16)
	regs.BC = uint16(byte(firstDirSector>>8))<<8 | uint16(byte(firstDirSector))
	return clearCarry(regs), 40, true
}

func le16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

func putLE16(b []byte, off int, v uint16) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
}
