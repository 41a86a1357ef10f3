// ppi.go - 8255 peripheral interface (component L5).

package msx1

// PPI wires the MSX's 8255 ports: port A selects the primary slot mapped
// into each of the four 16 KiB pages, port B reads back the selected
// keyboard row (inverted), and port C selects that row and drives the
// CAPS LED (cassette bits are a no-op in this design, per spec §4.5).
type PPI struct {
	bus *Bus
	kbd *Keyboard

	portA    byte
	portCLow byte // keyboard row select, bits 0-3 of last port C write
	capsLED  bool
}

// NewPPI returns a PPI wired to bus (for page-select writes) and kbd (for
// row reads).
func NewPPI(bus *Bus, kbd *Keyboard) *PPI {
	return &PPI{bus: bus, kbd: kbd}
}

// In reads one of the PPI's three ports, offset 0..3 within the 0xA8..0xAB
// range (0=A, 1=B, 2=C, 3=control). Port A and C read back their last
// written value; undriven port reads (control) return 0xFF.
func (p *PPI) In(offset byte) byte {
	switch offset {
	case 0:
		return p.portA
	case 1:
		row := p.kbd.ReadRow(p.portCLow)
		return ^row
	case 2:
		v := p.portCLow
		if p.capsLED {
			v |= 1 << 4
		}
		return v
	default:
		return 0xFF
	}
}

// Out writes one of the PPI's ports. A port-A write atomically rewrites
// all four of the Bus's page selections (spec §4.5); a port-C write
// updates the keyboard row select and CAPS LED.
func (p *PPI) Out(offset byte, value byte) {
	switch offset {
	case 0:
		p.portA = value
		p.bus.SetPageSelect(0, value&0x03)
		p.bus.SetPageSelect(1, (value>>2)&0x03)
		p.bus.SetPageSelect(2, (value>>4)&0x03)
		p.bus.SetPageSelect(3, (value>>6)&0x03)
	case 2:
		p.portCLow = value & 0x0F
		p.capsLED = value&(1<<4) != 0
		// bits 5-7: cassette motor/output, no-op.
	}
}

// CapsLED reports the last-written CAPS LED state, for host introspection.
func (p *PPI) CapsLED() bool { return p.capsLED }
