package printer

// Capability is a bit in the Info.Capabilities set. Callers must check
// this before invoking a family-specific extension (§4.6).
type Capability uint8

const (
	CapAutoPowerOff Capability = 1 << iota
	CapReboot
	CapPageType
	CapPrintCount
)

// Has reports whether cap is set in c.
func (c Capability) Has(cap Capability) bool { return c&cap != 0 }

// Info is the static descriptor returned by info() (§4.6): family, model
// name, print dimensions, accepted formats, and capability bitset.
type Info struct {
	Family          Family
	Model           string
	PrintWidthPx    int
	PrintHeightPx   int
	AcceptedFormats []string
	Capabilities    Capability
}

func kodakInfo(isSlim bool) Info {
	model := "Kodak Step"
	if isSlim {
		model = "Kodak Step Slim"
	}
	return Info{
		Family:          FamilyKodak,
		Model:           model,
		PrintWidthPx:    640,
		PrintHeightPx:   1104,
		AcceptedFormats: []string{"jpeg"},
		Capabilities:    CapAutoPowerOff | CapPageType | CapPrintCount,
	}
}

func canonInfo() Info {
	return Info{
		Family:          FamilyCanon,
		Model:           "Canon Ivy 2",
		PrintWidthPx:    640,
		PrintHeightPx:   1616,
		AcceptedFormats: []string{"jpeg"},
		Capabilities:    CapAutoPowerOff | CapReboot,
	}
}
