// Package interp provides the fractional-read kernels used by delay lines:
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite
//
// [Mode] selects one of them at construction time.
package interp
