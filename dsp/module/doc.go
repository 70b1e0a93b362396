// Package module defines the contract every processing unit in the graph
// implements, the parameter model shared by all modules, and the registry
// that maps module type names to constructors.
//
// A module is prepared on a control goroutine with the session sample rate
// and maximum block size, then processed on the audio thread one block at
// a time. Process must not block or allocate; everything it needs is sized
// in Prepare. Parameter values are stored atomically so the control side
// can change them while the audio thread reads them.
package module
