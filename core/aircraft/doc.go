// Package aircraft models the simulated aircraft: a tagged-variant type
// covering inspection UAVs and water bombers, the event queue each one works
// through, and the linear fuel and water accounting that governs what a plan
// may contain.
//
// Aircraft are passive. Coordinators decide plans and install them with
// SetPlan; the simulation loop drives execution one event at a time through
// ExecuteHead. Simulate replays a hypothetical plan without touching state
// and is the feasibility primitive everything above builds on.
package aircraft
