// vdp.go - TMS9918 video display processor (component L7).

package msx1

const (
	vramSize = 16 * 1024

	screenWidth  = 256
	screenHeight = 192
)

// DisplayMode identifies one of the four canonical TMS9918 modes; illegal
// (M1,M2,M3) combinations alias to Graphic1 per spec §9.
type DisplayMode int

const (
	ModeGraphic1 DisplayMode = iota
	ModeGraphic2
	ModeMulticolor
	ModeText
)

// VDP emulates the TMS9918: register file, VRAM, the two-step address
// latch on the control port, scanline timing, and the sprite engine. Its
// operations are infallible (spec §4.3); malformed register writes just
// produce deterministic, if meaningless, pixels.
type VDP struct {
	regs   [8]byte
	status byte

	vram [vramSize]byte

	addr       uint16
	writeLatch byte
	haveLatch  bool
	readMode   bool // true once a read-address setup has been latched

	readBuffer byte // byte prefetched for the next port-0x98 read

	line  int
	pixel int

	irqLine bool

	fifthSpriteIndex int

	screen [screenWidth * screenHeight]byte
}

// NewVDP returns a VDP in its post-reset state: all registers zero, VRAM
// zeroed, scan position at line 0.
func NewVDP() *VDP {
	v := &VDP{}
	v.prefetch()
	return v
}

func (v *VDP) prefetch() {
	v.readBuffer = v.vram[v.addr&(vramSize-1)]
}

// ReadData implements port 0x98 reads: returns the prefetched VRAM byte
// at the latched address, then advances the address and refills the
// prefetch buffer (spec §4.3).
func (v *VDP) ReadData() byte {
	value := v.readBuffer
	v.addr = (v.addr + 1) % vramSize
	v.prefetch()
	v.writeLatch = 0
	v.haveLatch = false
	return value
}

// WriteData implements port 0x98 writes: stores to VRAM at the latched
// address and advances, wrapping at 16 KiB.
func (v *VDP) WriteData(value byte) {
	v.vram[v.addr&(vramSize-1)] = value
	v.addr = (v.addr + 1) % vramSize
	v.prefetch()
	v.writeLatch = 0
	v.haveLatch = false
}

// WriteCtrl implements the two-step control port 0x99 protocol: the first
// write after any status read latches the low byte, the second combines
// it with the high byte and either updates a register (top bits 10) or
// sets up a VRAM address for read (top bit 0) or write (top bit 1, not 10).
func (v *VDP) WriteCtrl(value byte) {
	if !v.haveLatch {
		v.writeLatch = value
		v.haveLatch = true
		return
	}
	v.haveLatch = false
	low := v.writeLatch
	high := value

	if high&0xC0 == 0x80 {
		reg := high & 0x07
		v.regs[reg] = low
		return
	}

	v.addr = (uint16(high&0x3F)<<8 | uint16(low)) & (vramSize - 1)
	if high&0x80 == 0 {
		v.readMode = true
		v.prefetch()
	} else {
		v.readMode = false
	}
}

// ReadStatus implements port 0x99 reads: returns the status byte (F, 5S,
// C, 5th-sprite index) and clears F, C, 5S, plus the control-port latch.
func (v *VDP) ReadStatus() byte {
	value := v.status
	v.status &^= 0xE0 // clear F(bit7), 5S(bit6), C(bit5)
	v.haveLatch = false
	v.irqLine = false
	return value
}

// Mode decodes the current display mode from R0.M3 / R1.M1 / R1.M2.
func (v *VDP) Mode() DisplayMode {
	m3 := v.regs[0]&0x02 != 0
	m1 := v.regs[1]&0x10 != 0
	m2 := v.regs[1]&0x08 != 0
	switch {
	case !m3 && !m1 && !m2:
		return ModeGraphic1
	case m3 && !m1 && !m2:
		return ModeGraphic2
	case !m3 && !m1 && m2:
		return ModeMulticolor
	case !m3 && m1 && !m2:
		return ModeText
	default:
		return ModeGraphic1
	}
}

func (v *VDP) interruptsEnabled() bool { return v.regs[1]&0x20 != 0 }

// Tick advances the scanline/pixel counters by cpuCycles worth of CPU
// time (converted via the CPU:VDP dot ratio), setting the frame-end
// status flag and interrupt line when line 192 begins, and rendering the
// just-finished frame's pixels into the screen buffer once per frame.
func (v *VDP) Tick(cpuCycles int) {
	dots := VDPDotsForCycles(cpuCycles)
	for i := 0; i < dots; i++ {
		v.pixel++
		if v.pixel >= VDPDotsPerLine {
			v.pixel = 0
			v.line++
			if v.line == VDPVisibleLines {
				v.status |= 0x80 // F
				if v.interruptsEnabled() {
					v.irqLine = true
				}
				v.renderFrame()
			}
			if v.line >= VDPLinesPerFrame {
				v.line = 0
			}
		}
	}
}

// IRQAsserted reports whether the VDP's interrupt line is currently high.
func (v *VDP) IRQAsserted() bool { return v.irqLine }

// Screen returns the rendered 256x192 palette-index frame buffer.
func (v *VDP) Screen() []byte { return v.screen[:] }

// Registers returns a copy of R0..R7, for host/debugger introspection.
func (v *VDP) Registers() [8]byte { return v.regs }

func (v *VDP) borderColor() byte { return v.regs[7] & 0x0F }

// renderFrame rebuilds the whole screen buffer for the mode active when
// VBlank begins, per spec §4.3.
func (v *VDP) renderFrame() {
	switch v.Mode() {
	case ModeText:
		v.renderText()
	case ModeMulticolor:
		v.renderMulticolor()
	case ModeGraphic2:
		v.renderGraphic2()
	default:
		v.renderGraphic1()
	}
	if v.Mode() != ModeText {
		v.renderSprites()
	}
}

func (v *VDP) nameTableBase() uint16   { return uint16(v.regs[2]&0x0F) << 10 }
func (v *VDP) patternTableG1() uint16  { return uint16(v.regs[4]&0x07) << 11 }
func (v *VDP) colorTableG1() uint16    { return uint16(v.regs[3]) << 6 }
func (v *VDP) patternTableMC() uint16  { return uint16(v.regs[4]&0x07) << 11 }

func (v *VDP) setPixel(x, y int, color byte) {
	if x < 0 || x >= screenWidth || y < 0 || y >= screenHeight {
		return
	}
	v.screen[y*screenWidth+x] = color
}

// renderGraphic1 draws the 32x24 text-like tile mode: one pattern/color
// pair per name-table byte, 8x8 cells.
func (v *VDP) renderGraphic1() {
	nameBase := v.nameTableBase()
	patBase := v.patternTableG1()
	colBase := v.colorTableG1()
	border := v.borderColor()

	for cy := 0; cy < 24; cy++ {
		for cx := 0; cx < 32; cx++ {
			nameIdx := cy*32 + cx
			pattern := v.vram[nameBase+uint16(nameIdx)]
			colorByte := v.vram[colBase+uint16(pattern/8)]
			fg := colorByte >> 4
			bg := colorByte & 0x0F
			if fg == 0 {
				fg = border
			}
			if bg == 0 {
				bg = border
			}
			for row := 0; row < 8; row++ {
				patByte := v.vram[patBase+uint16(pattern)*8+uint16(row)]
				for col := 0; col < 8; col++ {
					set := patByte&(0x80>>uint(col)) != 0
					color := bg
					if set {
						color = fg
					}
					v.setPixel(cx*8+col, cy*8+row, color)
				}
			}
		}
	}
}

// renderGraphic2 draws the 32x24 tile mode partitioned into three
// 256-tile banks (spec §4.3).
func (v *VDP) renderGraphic2() {
	nameBase := v.nameTableBase()
	patSelector := v.regs[4] & 0x04
	colSelector := v.regs[3] & 0x80
	border := v.borderColor()

	for cy := 0; cy < 24; cy++ {
		bank := uint16(cy / 8)
		patBase := uint16(patSelector) << 11
		colBase := uint16(colSelector) << 6
		if patSelector != 0 {
			patBase = patBase | (bank * 2048)
		} else {
			patBase = bank * 2048
		}
		if colSelector != 0 {
			colBase = colBase | (bank * 2048)
		} else {
			colBase = bank * 2048
		}

		for cx := 0; cx < 32; cx++ {
			nameIdx := cy*32 + cx
			pattern := v.vram[nameBase+uint16(nameIdx)]
			for row := 0; row < 8; row++ {
				patByte := v.vram[patBase+uint16(pattern)*8+uint16(row)]
				colorByte := v.vram[colBase+uint16(pattern)*8+uint16(row)]
				fg := colorByte >> 4
				bg := colorByte & 0x0F
				if fg == 0 {
					fg = border
				}
				if bg == 0 {
					bg = border
				}
				for col := 0; col < 8; col++ {
					set := patByte&(0x80>>uint(col)) != 0
					color := bg
					if set {
						color = fg
					}
					v.setPixel(cx*8+col, cy*8+row, color)
				}
			}
		}
	}
}

// renderMulticolor draws the 64x48 grid of 4x4 color blocks. Each
// name-table entry selects 8 pattern bytes; bytes 0-3 are the top 4x4
// block's color nibble pairs, 4-7 the bottom.
func (v *VDP) renderMulticolor() {
	nameBase := v.nameTableBase()
	patBase := v.patternTableMC()
	border := v.borderColor()

	for cy := 0; cy < 24; cy++ {
		for cx := 0; cx < 32; cx++ {
			nameIdx := cy*32 + cx
			pattern := v.vram[nameBase+uint16(nameIdx)]
			for blockY := 0; blockY < 2; blockY++ {
				for sub := 0; sub < 4; sub++ {
					patByte := v.vram[patBase+uint16(pattern)*8+uint16(blockY*4+sub)]
					fg := patByte >> 4
					bg := patByte & 0x0F
					if fg == 0 {
						fg = border
					}
					if bg == 0 {
						bg = border
					}
					y := cy*8 + blockY*4 + sub
					for half := 0; half < 2; half++ {
						color := fg
						if half == 1 {
							color = bg
						}
						for px := 0; px < 4; px++ {
							v.setPixel(cx*8+half*4+px, y, color)
						}
					}
				}
			}
		}
	}
}

// renderText draws the 40x24 6x8-cell text mode; there are no sprites in
// text mode and the border uses R7's low nibble.
func (v *VDP) renderText() {
	nameBase := v.nameTableBase()
	patBase := v.patternTableG1()
	fg := v.regs[7] >> 4
	bg := v.regs[7] & 0x0F

	for i := range v.screen {
		v.screen[i] = bg
	}

	for cy := 0; cy < 24; cy++ {
		for cx := 0; cx < 40; cx++ {
			nameIdx := cy*40 + cx
			pattern := v.vram[nameBase+uint16(nameIdx)]
			for row := 0; row < 8; row++ {
				patByte := v.vram[patBase+uint16(pattern)*8+uint16(row)]
				for col := 0; col < 6; col++ {
					set := patByte&(0x80>>uint(col)) != 0
					if set {
						v.setPixel(cx*6+col, cy*8+row, fg)
					}
				}
			}
		}
	}
}

type spriteAttr struct {
	y, x    int
	pattern byte
	ec      bool
	color   byte
}

func (v *VDP) spriteAttrTableBase() uint16  { return uint16(v.regs[5]&0x7F) << 7 }
func (v *VDP) spritePatternBase() uint16    { return uint16(v.regs[6]&0x07) << 11 }
func (v *VDP) spriteSize16() bool           { return v.regs[1]&0x02 != 0 }
func (v *VDP) spriteMagnified() bool        { return v.regs[1]&0x01 != 0 }

// renderSprites evaluates all 32 sprite slots per scanline, applying the
// first-four-per-line limit, the 5th-sprite status flag, and pixel-level
// collision detection (spec §4.3).
func (v *VDP) renderSprites() {
	base := v.spriteAttrTableBase()
	size := 8
	if v.spriteSize16() {
		size = 16
	}
	mag := 1
	if v.spriteMagnified() {
		mag = 2
	}
	extent := size * mag

	var sprites []spriteAttr
	for i := 0; i < 32; i++ {
		off := base + uint16(i*4)
		y := int(v.vram[off])
		if y == 0xD0 {
			break
		}
		x := int(v.vram[off+1])
		pattern := v.vram[off+2]
		attr := v.vram[off+3]
		sprites = append(sprites, spriteAttr{
			y:       (y + 1) % 256,
			x:       x,
			pattern: pattern,
			ec:      attr&0x80 != 0,
			color:   attr & 0x0F,
		})
	}

	patBase := v.spritePatternBase()

	for line := 0; line < screenHeight; line++ {
		drawnOnLine := 0
		var coincidence [screenWidth]bool
		for idx, s := range sprites {
			if line < s.y || line >= s.y+extent {
				continue
			}
			if drawnOnLine == 4 {
				if v.status&0x40 == 0 {
					v.status |= 0x40 // 5S
					v.status = (v.status &^ 0x1F) | byte(idx&0x1F)
				}
				break
			}
			drawnOnLine++

			row := (line - s.y) / mag
			x0 := s.x
			if s.ec {
				x0 -= 32
			}

			var patOff uint16
			if size == 16 {
				quadRow := row
				patNum := uint16(s.pattern &^ 0x03)
				patOff = patBase + patNum*8 + uint16(quadRow)
				hi := v.vram[patOff]
				lo := v.vram[patOff+16]
				for col := 0; col < 8; col++ {
					if hi&(0x80>>uint(col)) != 0 {
						v.plotSpritePixel(x0+col*mag, line, mag, s.color, &coincidence)
					}
				}
				for col := 0; col < 8; col++ {
					if lo&(0x80>>uint(col)) != 0 {
						v.plotSpritePixel(x0+(8+col)*mag, line, mag, s.color, &coincidence)
					}
				}
				continue
			}

			patOff = patBase + uint16(s.pattern)*8 + uint16(row)
			patByte := v.vram[patOff]
			for col := 0; col < 8; col++ {
				if patByte&(0x80>>uint(col)) != 0 {
					v.plotSpritePixel(x0+col*mag, line, mag, s.color, &coincidence)
				}
			}
		}
	}
}

func (v *VDP) plotSpritePixel(x, y, mag int, color byte, coincidence *[screenWidth]bool) {
	if color == 0 {
		return
	}
	for dx := 0; dx < mag; dx++ {
		px := x + dx
		if px < 0 || px >= screenWidth {
			continue
		}
		if coincidence[px] {
			v.status |= 0x20 // C
		}
		coincidence[px] = true
		v.setPixel(px, y, color)
	}
}

// VRAM exposes a copy of the 16 KiB video memory for host introspection
// and test assertions.
func (v *VDP) VRAM() []byte {
	out := make([]byte, vramSize)
	copy(out, v.vram[:])
	return out
}
