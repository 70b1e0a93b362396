// Package osc provides phase accumulators and band-limited waveform
// generation.
//
// Square and saw waveforms are corrected with a two-sample polynomial
// band-limited step ([PolyBLEP]) at each discontinuity, which removes most
// of the aliasing of the naive waveforms at negligible cost.
package osc
