package fundamental

// GrahamMultiple is PE × PB. Benjamin Graham's rule of thumb treats a
// multiple below 22.5 as undervalued. Returns 0 when either ratio is unknown.
func GrahamMultiple(pe, pb float64) float64 {
	if pe <= 0 || pb <= 0 {
		return 0
	}
	return pe * pb
}
