// diskpatcher.go - disk ROM BIOS jump-table patcher (component L11).

package msx1

// trapIndices assigns each of the first 8 BIOS jump-table entries its
// CPU-extension trap index (spec §4.9).
var trapIndices = [8]byte{
	0xE0, // INIHRD/INIENV
	0xE2, // DRIVES
	0xE4, // DSKIO
	0xE5, // DSKCHG
	0xE6, // GETDPB
	0xE7, // CHOICE
	0xE8, // DSKFMT
	0xEA, // MTOFF
}

const biosTableScanLimit = 0x4000 // first 16 KiB page

// PatchDiskROM scans rom (a 64 KiB disk ROM image, modified in place) for
// a run of at least 8 consecutive `C3 xx xx` (JP nn) opcodes within the
// first 16 KiB, and rewrites the first 8 entries found to
// `ED 0xEn C9` trap sequences. Returns whether a table was found and
// patched.
func PatchDiskROM(rom []byte) bool {
	limit := biosTableScanLimit
	if limit > len(rom) {
		limit = len(rom)
	}

	tableStart := -1
	for start := 0; start+8*3 <= limit; start++ {
		if rom[start] != 0xC3 {
			continue
		}
		ok := true
		for e := 0; e < 8; e++ {
			if rom[start+e*3] != 0xC3 {
				ok = false
				break
			}
		}
		if ok {
			tableStart = start
			break
		}
	}
	if tableStart < 0 {
		return false
	}

	for i, trap := range trapIndices {
		off := tableStart + i*3
		rom[off] = 0xED
		rom[off+1] = trap
		rom[off+2] = 0xC9
	}
	return true
}
