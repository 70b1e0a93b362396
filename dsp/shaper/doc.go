// Package shaper provides waveshaping nonlinearities and a 2x oversampler
// that runs them at double rate to keep generated harmonics from folding
// back below Nyquist.
package shaper
