// diskdrive.go - two-slot floppy drive set (component L9).

package msx1

import "sync"

// drive holds one floppy slot's runtime state.
type drive struct {
	image       *DiskImage
	changed     bool // set true on insert, cleared on next DSKCHG query
	motorOn     bool
	motorOffAt  uint64 // scheduled Clock.Cycles() value, 0 = none scheduled
}

// DiskDriveSet models the two floppy slots (A: and B:) the disk driver
// dispatches against. Access is guarded by a single mutex: contention
// between the CPU thread and any host insert/eject call is trivially low
// (spec §4.8), so one exclusive lock around drive operations suffices.
type DiskDriveSet struct {
	mutex   sync.Mutex
	drives  [2]drive
}

// NewDiskDriveSet returns two empty drives.
func NewDiskDriveSet() *DiskDriveSet {
	return &DiskDriveSet{}
}

// Insert places image into drive (0 or 1), setting its disk-change
// flipflop.
func (d *DiskDriveSet) Insert(driveIdx int, image *DiskImage) error {
	if driveIdx < 0 || driveIdx > 1 {
		return &MachineError{Kind: DriveOutOfRange, Op: "Insert", Detail: "drive must be 0 or 1"}
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.drives[driveIdx].image = image
	d.drives[driveIdx].changed = true
	return nil
}

// Eject removes any image from drive, setting its disk-change flipflop so
// a subsequent DSKCHG observes the removal.
func (d *DiskDriveSet) Eject(driveIdx int) error {
	if driveIdx < 0 || driveIdx > 1 {
		return &MachineError{Kind: DriveOutOfRange, Op: "Eject", Detail: "drive must be 0 or 1"}
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.drives[driveIdx].image = nil
	d.drives[driveIdx].changed = true
	return nil
}

// Image returns the currently inserted image for drive, or nil.
func (d *DiskDriveSet) Image(driveIdx int) *DiskImage {
	if driveIdx < 0 || driveIdx > 1 {
		return nil
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.drives[driveIdx].image
}

// PollChanged reports and clears the disk-change flipflop for drive,
// returning the value seen before clearing (true exactly once after an
// insert or eject).
func (d *DiskDriveSet) PollChanged(driveIdx int) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	changed := d.drives[driveIdx].changed
	d.drives[driveIdx].changed = false
	return changed
}

// SetMotor sets drive's motor flag; MTOFF calls it with false for both
// drives.
func (d *DiskDriveSet) SetMotor(driveIdx int, on bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.drives[driveIdx].motorOn = on
}

// ScheduleMotorOff records the cycle count at which the motor should be
// considered off; it is not actively timed, only applied when PollMotor is
// called. No disk operation calls either method.
func (d *DiskDriveSet) ScheduleMotorOff(driveIdx int, atCycles uint64) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.drives[driveIdx].motorOffAt = atCycles
}

// PollMotor clears the motor flag if nowCycles has passed the scheduled
// off time, then reports the current flag.
func (d *DiskDriveSet) PollMotor(driveIdx int, nowCycles uint64) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	dr := &d.drives[driveIdx]
	if dr.motorOffAt != 0 && nowCycles >= dr.motorOffAt {
		dr.motorOn = false
		dr.motorOffAt = 0
	}
	return dr.motorOn
}
