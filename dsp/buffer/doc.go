// Package buffer provides pre-sized multi-channel sample storage for block
// processing. A Multi is allocated once for a session (maximum block size
// and channel count) and then handed out as [][]float64 views of the
// requested block length, so the render path never allocates.
package buffer
