// Package schedule provides the simulated clock and the global discrete-event
// queue driving the simulation.
//
// The queue is a min-heap keyed on (time, sequence). Every entry points at an
// aircraft and carries the aircraft's plan version at push time; when a
// coordinator replans an aircraft its version is bumped, a fresh head entry
// is pushed, and older entries for that aircraft are silently discarded when
// they surface. Entries are never mutated or removed in place, which keeps
// pops deterministic: equal times resolve in insertion order.
package schedule
