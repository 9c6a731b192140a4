package cpu

// Quirks selects between historically divergent instruction behaviours.
//
// The zero value gives the later "CHIP-48" flavour; DefaultQuirks gives
// the original COSMAC VIP behaviour.
type Quirks struct {
	// ShiftUsesVY makes 8xy6 and 8xyE shift Vy into Vx.
	// Otherwise Vx is shifted in place and y is ignored.
	ShiftUsesVY bool

	// LoadStoreIncrementsI makes Fx55 and Fx65 advance I by x+1.
	LoadStoreIncrementsI bool

	// LogicResetsVF makes 8xy1, 8xy2 and 8xy3 clear VF.
	LogicResetsVF bool
}

// DefaultQuirks returns the quirk set matching the original interpreter.
func DefaultQuirks() Quirks {
	return Quirks{
		ShiftUsesVY:          true,
		LoadStoreIncrementsI: true,
		LogicResetsVF:        true,
	}
}
