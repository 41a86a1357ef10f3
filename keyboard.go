// keyboard.go - 11x8 key matrix (component L4).

package msx1

// Keyboard holds the 11-row x 8-column MSX key matrix as one bit per key,
// active-low from the host's point of view but stored here as 1=down for
// clarity; PPI.In inverts on the way out.
type Keyboard struct {
	rows [11]byte
}

// keyPos locates a key code's (row, column) bit position.
type keyPos struct {
	row, col byte
}

// keyMap covers the full MSX key set; unmapped host key codes are ignored
// by KeyDown/KeyUp. Row/column assignments follow the standard MSX matrix
// layout (row 0: 0-7 digits style row with punctuation, rows 1-6: letters,
// row 7: function/control keys, rows 8-10: cursor/numeric keypad).
var keyMap = map[rune]keyPos{
	'0': {0, 0}, '1': {0, 1}, '2': {0, 2}, '3': {0, 3},
	'4': {0, 4}, '5': {0, 5}, '6': {0, 6}, '7': {0, 7},
	'8': {1, 0}, '9': {1, 1}, '-': {1, 2}, '=': {1, 3},
	'\\': {1, 4}, '[': {1, 5}, ']': {1, 6}, ';': {1, 7},
	'\'': {2, 0}, '`': {2, 1}, ',': {2, 2}, '.': {2, 3},
	'/': {2, 4},
	'A': {2, 5}, 'B': {2, 6}, 'C': {2, 7},
	'D': {3, 0}, 'E': {3, 1}, 'F': {3, 2}, 'G': {3, 3},
	'H': {3, 4}, 'I': {3, 5}, 'J': {3, 6}, 'K': {3, 7},
	'L': {4, 0}, 'M': {4, 1}, 'N': {4, 2}, 'O': {4, 3},
	'P': {4, 4}, 'Q': {4, 5}, 'R': {4, 6}, 'S': {4, 7},
	'T': {5, 0}, 'U': {5, 1}, 'V': {5, 2}, 'W': {5, 3},
	'X': {5, 4}, 'Y': {5, 5}, 'Z': {5, 6},
}

// Named non-printable key codes, passed as runes above 0xFF so they never
// collide with the printable map above.
const (
	KeySpace = rune(0x100) + iota
	KeyReturn
	KeyShift
	KeyCtrl
	KeyGraph
	KeyCode
	KeyCaps
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEsc
	KeyBackspace
)

func init() {
	keyMap[KeySpace] = keyPos{8, 0}
	keyMap[KeyReturn] = keyPos{7, 7}
	keyMap[KeyShift] = keyPos{6, 0}
	keyMap[KeyCtrl] = keyPos{6, 1}
	keyMap[KeyGraph] = keyPos{6, 2}
	keyMap[KeyCode] = keyPos{6, 3}
	keyMap[KeyCaps] = keyPos{6, 4}
	keyMap[KeyUp] = keyPos{8, 5}
	keyMap[KeyDown] = keyPos{8, 6}
	keyMap[KeyLeft] = keyPos{8, 4}
	keyMap[KeyRight] = keyPos{8, 7}
	keyMap[KeyEsc] = keyPos{7, 2}
	keyMap[KeyBackspace] = keyPos{7, 5}
}

// NewKeyboard returns a keyboard with every key up (all bits clear).
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// KeyDown sets the bit for code, if mapped.
func (k *Keyboard) KeyDown(code rune) {
	pos, ok := keyMap[code]
	if !ok {
		return
	}
	k.rows[pos.row] |= 1 << pos.col
}

// KeyUp clears the bit for code, if mapped.
func (k *Keyboard) KeyUp(code rune) {
	pos, ok := keyMap[code]
	if !ok {
		return
	}
	k.rows[pos.row] &^= 1 << pos.col
}

// ReadRow returns the raw (1=down) bits for row r (0..10); out-of-range
// rows return 0 (all up).
func (k *Keyboard) ReadRow(r byte) byte {
	if r > 10 {
		return 0
	}
	return k.rows[r]
}
