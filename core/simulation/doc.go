// Package simulation runs one scenario end to end: it feeds the time-ordered
// strike stream to the UAV coordinator, advances aircraft through the global
// event queue, hands ignited strikes to the water-bomber coordinator as they
// are inspected, and ticks the optional idle-UAV force controller between
// strikes. The run ends when the stream is exhausted and every aircraft is
// idle.
package simulation
