package core

import (
	"sort"

	"github.com/automoto/bouncerz-mp/shared/arena"
)

// InputQueue buffers one player's inputs between ticks. It is not
// synchronized; the owning room's mutex guards it.
type InputQueue struct {
	items   []arena.Input
	limit   int
	dropped int
}

// NewInputQueue creates a queue holding at most limit inputs. A non-positive
// limit means unbounded.
func NewInputQueue(limit int) InputQueue {
	return InputQueue{limit: limit}
}

// Push appends an input. When the queue is full the oldest input is dropped
// and Push returns false.
func (q *InputQueue) Push(in arena.Input) bool {
	ok := true
	if q.limit > 0 && len(q.items) >= q.limit {
		q.items = q.items[1:]
		q.dropped++
		ok = false
	}
	q.items = append(q.items, in)
	return ok
}

// Drain empties the queue and returns its inputs ordered by timestamp. Equal
// timestamps keep their arrival order.
func (q *InputQueue) Drain() []arena.Input {
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// Clear discards every queued input.
func (q *InputQueue) Clear() {
	q.items = nil
}

// Len reports the number of queued inputs.
func (q *InputQueue) Len() int {
	return len(q.items)
}

// Dropped reports how many inputs were discarded for overflowing the queue.
func (q *InputQueue) Dropped() int {
	return q.dropped
}
