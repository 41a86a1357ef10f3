// clock.go - Scalar cycle counter and derived scan position (component L3).

package msx1

// CPU/VDP/PSG frequency relationship constants (spec §5).
const (
	CPUClockHz  = 3579545
	VDPDotRatio = 2 // VDP dot clock = CPU clock * VDPDotRatio
	PSGDivider  = 32 // PSG tick = CPU clock / PSGDivider (~111.86 kHz)

	VDPDotsPerLine   = 342
	VDPLinesPerFrame = 262
	VDPVisibleLines  = 192
	VDPVisibleCols   = 256
)

// Clock counts elapsed Z80 cycles. It holds no device state of its own:
// the VDP keeps its own scanline/dot counters, ticked through the Bus as
// the CPU runs, and the PSG advances only when samples are generated.
type Clock struct {
	cycles uint64
}

// Advance adds n cycles to the running total.
func (c *Clock) Advance(n int) {
	c.cycles += uint64(n)
}

// Cycles returns the total elapsed CPU cycles since construction or Reset.
func (c *Clock) Cycles() uint64 {
	return c.cycles
}

// Reset zeroes the cycle counter.
func (c *Clock) Reset() {
	c.cycles = 0
}

// VDPDotsForCycles converts a CPU cycle count into VDP dot ticks.
func VDPDotsForCycles(cpuCycles int) int {
	return cpuCycles * VDPDotRatio
}
