// Package modules contains the concrete synthesizer modules and the
// default registry that maps their type names to constructors.
//
// Every module embeds module.Base and works in place on the channel block
// the graph hands it. Control-rate changes reach the audio thread through
// atomic parameter values; events arrive in the block's midi.Buffer.
package modules
