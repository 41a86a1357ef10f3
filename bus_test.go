package msx1

import "testing"

func TestBusRAMReadAfterWrite(t *testing.T) {
	bus := NewBus()
	bus.SetSlot(3, NewRAMSlot())
	bus.SetPageSelect(3, 3)

	bus.Write(0xC000, 0x42)
	if got := bus.Read(0xC000); got != 0x42 {
		t.Fatalf("Read after Write = %#x, want 0x42", got)
	}
}

func TestBusPageSelectRemap(t *testing.T) {
	bus := NewBus()
	bus.SetSlot(0, NewROMSlot([]byte{0xAA}))
	bus.SetSlot(3, NewRAMSlot())

	// Page 0 defaults to primary slot 0.
	if got := bus.Read(0x0000); got != 0xAA {
		t.Fatalf("Read(0x0000) before remap = %#x, want 0xAA", got)
	}

	bus.SetPageSelect(0, 3)
	for addr := 0; addr < 0x4000; addr += 0x1000 {
		if got := bus.Read(uint16(addr)); got != 0x00 {
			t.Fatalf("Read(%#x) after remap = %#x, want 0x00 (RAM)", addr, got)
		}
	}
}

func TestBusOpenBusPort(t *testing.T) {
	bus := NewBus()
	if got := bus.In(0x50); got != 0xFF {
		t.Fatalf("In(0x50) = %#x, want 0xFF (open bus)", got)
	}
	bus.Out(0x50, 0x99) // must not panic, discarded
}

func TestBusExtensionDispatch(t *testing.T) {
	bus := NewBus()
	called := false
	bus.RegisterExtension(0xE4, func(regs ExtRegs, b *Bus) (ExtRegs, int, bool) {
		called = true
		regs.A = 7
		return regs, 20, true
	})

	regs, cycles, handled := bus.HandleExtension(0xE4, ExtRegs{})
	if !called || !handled {
		t.Fatalf("registered handler was not invoked")
	}
	if regs.A != 7 || cycles != 20 {
		t.Fatalf("HandleExtension returned regs=%+v cycles=%d", regs, cycles)
	}

	_, _, handled = bus.HandleExtension(0xE0, ExtRegs{})
	if handled {
		t.Fatalf("unregistered trap index reported handled")
	}
}
