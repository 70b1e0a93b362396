// Package graph connects module instances into a processing graph and
// renders it block by block.
//
// Topology changes happen on control goroutines under a mutex. Each change
// compiles an immutable render plan (execution order, pre-allocated
// buffers and routing tables) which is swapped in between two blocks, so
// the audio goroutine never waits for more than a pointer swap and never
// allocates.
package graph
