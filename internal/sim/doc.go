// Package sim plays complete battles through the command handler with
// scripted decisions. The demo tooling uses it to produce a full
// journal, from profile creation to battle resolution, without any
// interactive input.
//
// The simulator is an ordinary client: it issues commands over the
// same handler every other caller uses and reads only the folded state
// that comes back. Given the same seed and configuration it always
// produces the same journal.
package sim
