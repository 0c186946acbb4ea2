package session

import "zinkdriver/zerr"

// Status is the normalized view of printer state surfaced to callers
// (§3 "Printer status").
type Status struct {
	BatteryPercent int
	IsReady        bool
	Err            *zerr.Error

	// Optional flags, populated only when the device reports them.
	CoverOpen *bool
	NoPaper   *bool
	Charging  *bool
}

// MinBattery is the default minimum battery percentage required for
// IsReady / print() to proceed (§4.6 config default, §7).
const MinBattery = 30

func boolPtr(b bool) *bool { return &b }

func computeReady(battery int, minBattery int, blocking *zerr.Error) bool {
	return blocking == nil && battery >= minBattery
}
