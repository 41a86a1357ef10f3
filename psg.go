// psg.go - AY-3-8910 programmable sound generator (component L6).

package msx1

import "sync"

// PSG register indices (spec §4.4).
const (
	psgRTonePeriodALo = iota
	psgRTonePeriodAHi
	psgRTonePeriodBLo
	psgRTonePeriodBHi
	psgRTonePeriodCLo
	psgRTonePeriodCHi
	psgRNoisePeriod
	psgRMixer
	psgRVolumeA
	psgRVolumeB
	psgRVolumeC
	psgREnvPeriodLo
	psgREnvPeriodHi
	psgREnvShape
	psgRPortA // joystick / keyboard extension, unused beyond R14 per spec
	psgRPortB
)

// ayVolumeTable is the AY-3-8910's non-linear 16-step amplitude table,
// giving each 4-bit volume/envelope level a perceptually-even loudness
// step rather than a linear one.
var ayVolumeTable = [16]int16{
	0, 1, 3, 5, 7, 11, 15, 22,
	31, 44, 63, 90, 127, 180, 255, 255,
}

// envShape describes one of the ten distinct envelope waveforms produced
// by the four CONT/ATT/ALT/HOLD bits of R13 (two bit patterns are
// degenerate duplicates, giving 10 distinct shapes from 16 codes).
type envShape struct {
	hold       bool
	alternate  bool
	attack     bool
	continuing bool
}

// PSG emulates three tone channels, a shared noise generator, and an
// envelope generator, mutex-guarded because the host audio callback reads
// it from a different goroutine than the CPU thread that writes registers
// (spec §5).
type PSG struct {
	mutex sync.Mutex

	regs         [16]byte
	selectedReg  byte

	toneCounter [3]uint16
	toneBit     [3]bool

	noiseCounter uint16
	noiseLFSR    uint32 // 17-bit, taps at bits 0 and 3

	envCounter uint16
	envStep    int // 0..31, wraps per shape
	envShape   envShape
	envLevel   byte // 0..15, current envelope output level

	joystickBits byte // R14 read value, default all-1 (no joystick)
}

// NewPSG returns a PSG with all registers zero (silent), noise LFSR seeded
// non-zero (an all-zero LFSR would never toggle), and no joystick present.
func NewPSG() *PSG {
	return &PSG{
		noiseLFSR:    1,
		joystickBits: 0xFF,
		envShape:     decodeEnvShape(0),
	}
}

// decodeEnvShape maps an R13 nibble to its CONT/ATT/ALT/HOLD bits.
func decodeEnvShape(shape byte) envShape {
	return envShape{
		hold:       shape&0x01 != 0,
		alternate:  shape&0x02 != 0,
		attack:     shape&0x04 != 0,
		continuing: shape&0x08 != 0,
	}
}

// SelectRegister latches the register index for the next WriteData/ReadData,
// driven by writes to port 0xA0.
func (p *PSG) SelectRegister(index byte) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.selectedReg = index & 0x0F
}

// WriteData writes value into the currently selected register (port 0xA1).
// A write to R13 resets the envelope phase and selects its shape, per
// spec §4.4.
func (p *PSG) WriteData(value byte) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.regs[p.selectedReg] = value
	if p.selectedReg == psgREnvShape {
		p.envShape = decodeEnvShape(value & 0x0F)
		p.envStep = 0
		p.envLevel = 0
	}
}

// ReadData reads the currently selected register (port 0xA2). R14
// (joystick/keyboard port A) returns the host-supplied joystick bits
// instead of the raw register, since no write ever drives it directly.
func (p *PSG) ReadData() byte {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.selectedReg == psgRPortA {
		return p.joystickBits
	}
	return p.regs[p.selectedReg]
}

// SetJoystickBits sets the bits DSKIO-independent code reads back on R14;
// the host calls this from its input layer. Default (no joystick wired)
// is all bits 1.
func (p *PSG) SetJoystickBits(bits byte) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.joystickBits = bits
}

func tonePeriod(hi, lo byte) uint16 {
	period := (uint16(hi&0x0F) << 8) | uint16(lo)
	if period == 0 {
		period = 1
	}
	return period
}

func (p *PSG) tonePeriodFor(ch int) uint16 {
	switch ch {
	case 0:
		return tonePeriod(p.regs[psgRTonePeriodAHi], p.regs[psgRTonePeriodALo])
	case 1:
		return tonePeriod(p.regs[psgRTonePeriodBHi], p.regs[psgRTonePeriodBLo])
	default:
		return tonePeriod(p.regs[psgRTonePeriodCHi], p.regs[psgRTonePeriodCLo])
	}
}

func (p *PSG) noisePeriod() uint16 {
	period := uint16(p.regs[psgRNoisePeriod] & 0x1F)
	if period == 0 {
		period = 1
	}
	return period
}

func (p *PSG) envPeriod() uint16 {
	period := uint16(p.regs[psgREnvPeriodHi])<<8 | uint16(p.regs[psgREnvPeriodLo])
	if period == 0 {
		period = 1
	}
	return period
}

// tick advances all internal counters by one PSG clock (CPU/32, spec §5)
// and returns the mixed signed sample for that tick. Caller holds mutex.
func (p *PSG) tick() int16 {
	for ch := 0; ch < 3; ch++ {
		p.toneCounter[ch]++
		if p.toneCounter[ch] >= p.tonePeriodFor(ch) {
			p.toneCounter[ch] = 0
			p.toneBit[ch] = !p.toneBit[ch]
		}
	}

	p.noiseCounter++
	if p.noiseCounter >= p.noisePeriod() {
		p.noiseCounter = 0
		bit := (p.noiseLFSR ^ (p.noiseLFSR >> 3)) & 1
		p.noiseLFSR = (p.noiseLFSR >> 1) | (bit << 16)
	}
	noiseBit := p.noiseLFSR&1 != 0

	p.envCounter++
	if p.envCounter >= p.envPeriod() {
		p.envCounter = 0
		p.advanceEnvelope()
	}

	mixer := p.regs[psgRMixer]
	var sample int32
	volRegs := [3]byte{p.regs[psgRVolumeA], p.regs[psgRVolumeB], p.regs[psgRVolumeC]}
	for ch := 0; ch < 3; ch++ {
		toneDisabled := mixer&(1<<uint(ch)) != 0
		noiseDisabled := mixer&(1<<uint(ch+3)) != 0

		toneLevel := p.toneBit[ch] || toneDisabled
		noiseLevel := noiseBit || noiseDisabled
		gate := toneLevel && noiseLevel

		if !gate {
			continue
		}

		var level byte
		if volRegs[ch]&0x10 != 0 {
			level = p.envLevel
		} else {
			level = volRegs[ch] & 0x0F
		}
		sample += int32(ayVolumeTable[level])
	}
	return int16(sample)
}

// advanceEnvelope steps the 10-shape envelope state machine one position.
// Caller holds mutex.
func (p *PSG) advanceEnvelope() {
	p.envStep++
	if p.envStep > 31 {
		if p.envShape.continuing && !p.envShape.hold {
			p.envStep = 0
		} else {
			p.envStep = 31
		}
	}

	step := p.envStep
	if p.envShape.hold && p.envShape.continuing {
		if p.envShape.alternate {
			// Hold at the level reached at the end of the first half-cycle.
			if step >= 16 {
				step = 15
			}
		} else {
			step = 31
		}
	} else if !p.envShape.continuing {
		step = 0
	} else if p.envShape.alternate && step >= 16 {
		step -= 16
		step = 15 - step
	} else if step >= 16 {
		step -= 16
	}

	level := step & 0x0F
	if !p.envShape.attack {
		level = 15 - level
	}
	p.envLevel = byte(level)
}

// GenerateSamples returns n signed samples at the PSG's native tick rate
// (CPU/32, ~111.86 kHz). The Machine or host is responsible for
// downsampling to the audio device's rate by block averaging.
func (p *PSG) GenerateSamples(n int) []int16 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	out := make([]int16, n)
	for i := range out {
		out[i] = p.tick()
	}
	return out
}
