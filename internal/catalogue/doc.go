// Package catalogue holds the transit network reference data: stops, bus routes and
// directed road distances between stops.
//
// A Store is populated by AddStop, SetDistance and AddBus calls, then frozen with Freeze.
// Stops and buses live in arenas addressed by StopID and BusID; every cross reference
// (bus routes, distance keys, stop-to-bus index) uses those indices rather than pointers.
// After Freeze the Store is immutable and safe for concurrent readers without locking.
package catalogue
