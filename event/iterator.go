package event

import (
	"container/heap"

	"github.com/entropic-dev/eos/envelope"
	"github.com/entropic-dev/eos/store"
)

// node pairs an event with the address it was read from, for the
// iterator's seen-set and for yielding to callers.
type node struct {
	addr envelope.Address
	ev   *Event
}

// nodeHeap is a max-heap ordered by event timestamp: the newest event
// is popped first.
type nodeHeap []node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].ev.At().After(h[j].ev.At()) }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(node)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Iterator walks an event DAG newest-first by timestamp, lazily
// pulling parents from a store.Readable as it descends. Each address
// is yielded at most once.
type Iterator struct {
	reader store.Readable
	seen   map[envelope.Address]struct{}
	heap   nodeHeap
	err    error
}

// NewIterator starts an Iterator at root, reading root's bytes from
// reader.
func NewIterator(reader store.Readable, root envelope.Address) (*Iterator, error) {
	it := &Iterator{
		reader: reader,
		seen:   make(map[envelope.Address]struct{}),
	}
	if err := it.push(root); err != nil {
		return nil, err
	}
	return it, nil
}

func (it *Iterator) push(addr envelope.Address) error {
	if _, ok := it.seen[addr]; ok {
		return nil
	}

	env, found, err := it.reader.Get(addr)
	if err != nil {
		return err
	}
	if !found || env.Tag() != envelope.TagEvent {
		return nil
	}

	ev, err := Parse(env.Payload())
	if err != nil {
		return err
	}

	it.seen[addr] = struct{}{}
	heap.Push(&it.heap, node{addr: addr, ev: ev})
	return nil
}

// Next returns the next (address, event) pair in timestamp-descending
// order, or (zero, nil, false) once the DAG is exhausted. If reading or
// parsing a parent fails, the call that hit the failure still returns
// its own event with a nil error, and every later call returns that
// error; Next never panics on a read or parse failure.
func (it *Iterator) Next() (envelope.Address, *Event, bool, error) {
	if it.err != nil {
		return envelope.Address{}, nil, false, it.err
	}
	if it.heap.Len() == 0 {
		return envelope.Address{}, nil, false, nil
	}

	n := heap.Pop(&it.heap).(node)

	for _, p := range n.ev.Parents() {
		if err := it.push(envelope.Address(p)); err != nil {
			it.err = err
			return n.addr, n.ev, true, nil
		}
	}

	return n.addr, n.ev, true, nil
}
