package schedule

import "container/heap"

// Entry is one dated entry in the global event queue. It refers to an
// aircraft rather than carrying the event itself: the aircraft's own plan
// queue holds the event payload, and Version lets stale entries be discarded
// at pop time after a replan.
type Entry struct {
	Time       float64
	Seq        uint64
	AircraftID int
	Version    uint64
}

type entryHeap []Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(Entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Queue is the global min-heap of dated aircraft events, keyed on
// (time, sequence). The sequence number is a monotonically increasing
// tiebreaker so that entries pushed earlier are popped first among equal
// times. Entries are never removed or mutated once pushed; replanning pushes
// a fresh entry under a bumped aircraft version and the stale one is
// discarded when popped.
type Queue struct {
	h   entryHeap
	seq uint64
}

// NewQueue returns an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push enqueues an entry for the given aircraft at the given time.
func (q *Queue) Push(time float64, aircraftID int, version uint64) {
	heap.Push(&q.h, Entry{Time: time, Seq: q.seq, AircraftID: aircraftID, Version: version})
	q.seq++
}

// PopMin removes and returns the earliest entry.
func (q *Queue) PopMin() (Entry, bool) {
	if len(q.h) == 0 {
		return Entry{}, false
	}
	return heap.Pop(&q.h).(Entry), true
}

// PeekMin returns the earliest entry without removing it.
func (q *Queue) PeekMin() (Entry, bool) {
	if len(q.h) == 0 {
		return Entry{}, false
	}
	return q.h[0], true
}

// Len returns the number of enqueued entries, stale ones included.
func (q *Queue) Len() int { return len(q.h) }
