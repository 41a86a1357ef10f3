// slot.go - 16 KiB page storage backing a primary slot (component L1).

package msx1

// SlotKind identifies what backs a slot's storage.
type SlotKind int

const (
	SlotEmpty SlotKind = iota
	SlotROM
	SlotRAM
)

// Slot is one primary slot's backing storage: empty, read-only ROM, or
// writable RAM. A slot always presents a full 64 KiB address range to the
// page selector in Bus, even though MSX hardware slots are often smaller;
// unused tail bytes behave like Empty.
type Slot struct {
	kind SlotKind
	data []byte // len 0 (Empty) or up to 0x10000
}

// NewEmptySlot returns a slot that reads as 0xFF and discards writes.
func NewEmptySlot() *Slot {
	return &Slot{kind: SlotEmpty}
}

// NewROMSlot wraps rom as a read-only slot, padding to 64 KiB with 0xFF so
// addresses past the image's natural size still read deterministically.
func NewROMSlot(rom []byte) *Slot {
	data := make([]byte, 0x10000)
	for i := range data {
		data[i] = 0xFF
	}
	copy(data, rom)
	return &Slot{kind: SlotROM, data: data}
}

// NewRAMSlot returns a freshly zeroed 64 KiB writable slot.
func NewRAMSlot() *Slot {
	return &Slot{kind: SlotRAM, data: make([]byte, 0x10000)}
}

// Read returns the byte at addr, or 0xFF for an empty slot.
func (s *Slot) Read(addr uint16) byte {
	if s.kind == SlotEmpty {
		return 0xFF
	}
	return s.data[addr]
}

// Write stores value at addr. Writes to an empty or ROM slot are
// discarded; the disk ROM patcher rewrites BIOS jump-table bytes before
// the ROM is ever wrapped in a Slot, so it never goes through here.
func (s *Slot) Write(addr uint16, value byte) {
	if s.kind != SlotRAM {
		return
	}
	s.data[addr] = value
}

// Kind reports the slot's storage kind.
func (s *Slot) Kind() SlotKind { return s.kind }
