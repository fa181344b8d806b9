package sim

import "container/heap"

// EventQueue orders events by time. Events of the same time leave in the
// order they arrived, which keeps runs reproducible.
type EventQueue struct {
	entries eventHeap
	arrived uint64
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	heap.Push(&q.entries, queueEntry{evt: evt, arrival: q.arrived})
	q.arrived++
}

// Pop removes and returns the earliest event.
func (q *EventQueue) Pop() Event {
	return heap.Pop(&q.entries).(queueEntry).evt
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() Event {
	return q.entries[0].evt
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return len(q.entries)
}

type queueEntry struct {
	evt     Event
	arrival uint64
}

type eventHeap []queueEntry

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].evt.Time() == h[j].evt.Time() {
		return h[i].arrival < h[j].arrival
	}

	return h[i].evt.Time() < h[j].evt.Time()
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queueEntry))
}

func (h *eventHeap) Pop() any {
	last := len(*h) - 1
	e := (*h)[last]
	*h = (*h)[:last]

	return e
}
