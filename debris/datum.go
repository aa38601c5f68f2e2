package debris

// Composition holds material shares in percent. Shares are non-negative
// and need not sum to exactly 100.
type Composition struct {
	Plastic     float64
	FishingGear float64
	Glass       float64
	Metal       float64
	Other       float64
}

// Total returns the sum of all shares.
func (c Composition) Total() float64 {
	return c.Plastic + c.FishingGear + c.Glass + c.Metal + c.Other
}

// Dominant returns the name of the largest share. Ties resolve in field
// order.
func (c Composition) Dominant() string {
	names := [...]string{"plastic", "fishing gear", "glass", "metal", "other"}
	shares := [...]float64{c.Plastic, c.FishingGear, c.Glass, c.Metal, c.Other}

	best := 0
	for i := 1; i < len(shares); i++ {
		if shares[i] > shares[best] {
			best = i
		}
	}
	return names[best]
}

// Datum is one debris observation.
type Datum struct {
	ID   string
	Name string

	// Density in items per square kilometre.
	Density     float64
	Severity    Severity
	Composition Composition

	Latitude  float64
	Longitude float64
}
