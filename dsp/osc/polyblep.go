package osc

// PolyBLEP returns the polynomial band-limited step residual for phase t
// and phase increment dt. It is non-zero only within one sample on either
// side of the discontinuity at t = 0 (equivalently t = 1).
func PolyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	switch {
	case t < dt:
		t /= dt
		return t + t - t*t - 1
	case t > 1-dt:
		t = (t - 1) / dt
		return t*t + t + t + 1
	default:
		return 0
	}
}
