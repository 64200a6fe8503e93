package metadata

// ToDecimalDegrees converts a degrees/minutes/seconds triple to signed
// decimal degrees. No range checks are applied.
func ToDecimalDegrees(negate bool, degrees, minutes, seconds float64) float64 {
	ddd := degrees + minutes/60 + seconds/3600
	if negate {
		return -ddd
	}
	return ddd
}
