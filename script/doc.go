// Package script executes short user-supplied routines against a restricted
// capability object that drives the instrument through the shared transport.
//
// The runtime is a small fixed-grammar interpreter (arithmetic, conditionals,
// loops, named capability calls), not embedded host-language execution: the
// security boundary is structural. A routine can only resolve symbols present
// in the explicit allowlist of its trust tier, and every symbol it references
// is checked before the first statement runs.
//
// A minimal routine:
//
//	set_range("10V")
//	set_speed("MED")
//	for io = 0 to 7
//	    set_io(io)
//	    wait(0.2)
//	    measure(5, 50)
//	end
//	log("sweep done, mean " + str(stats()["mean"]))
package script
