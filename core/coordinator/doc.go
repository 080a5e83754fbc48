// Package coordinator implements the dispatch policy layer: deciding which
// aircraft answers each lightning strike and where in its task queue the new
// work goes.
//
// One Coordinator serves one fleet. The UAV coordinator is invoked at every
// strike's spawn; the water-bomber coordinator at every ignited strike's
// inspection. Both run the same machinery over the four policies:
//
//   - Simple: append to the tail of whichever aircraft arrives first.
//   - Insertion: consider every queue position, minimise the new strike's
//     own arrival time.
//   - MinimiseMeanTime: minimise the summed (weighted, powered) change in
//     response times across affected strikes, under a soft worst-response
//     ceiling.
//   - ReprocessMaxTime: MinimiseMeanTime, then pull the worst-off scheduled
//     strike and re-place it once.
//
// Candidate plans are validated by replaying them against the aircraft's
// fuel and water model, with refuel and tank stops inserted just-in-time
// when the bare service does not fit. Committing a plan bumps the aircraft's
// version and pushes a fresh head event onto the global queue; stale queue
// entries fall out at pop time.
//
// Strikes the coordinator cannot place anywhere are reported back to the
// simulator and stay unserviced; that is an observable outcome, not an
// error.
package coordinator
