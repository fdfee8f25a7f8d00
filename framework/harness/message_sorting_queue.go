package harness

import (
	"sort"
	"sync"
)

// MessageSortingQueue restores the order of callback messages that the test service numbers
// sequentially starting at 1. The service may post them concurrently, so they can arrive out
// of order; anything that arrives early is held back until the gap before it is filled.
type MessageSortingQueue struct {
	C           chan []byte
	lastCounter int
	deferred    []deferredMessage
	closed      bool
	lock        sync.Mutex
}

type deferredMessage struct {
	counter int
	message []byte
}

func NewMessageSortingQueue(channelSize int) *MessageSortingQueue {
	return &MessageSortingQueue{C: make(chan []byte, channelSize)}
}

// Accept adds a message with the given sequence number. It returns false if the message was
// discarded, either because the queue is closed or because that number was already seen.
func (q *MessageSortingQueue) Accept(counter int, message []byte) bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.closed || counter <= q.lastCounter {
		return false
	}
	if counter > q.lastCounter+1 {
		for _, d := range q.deferred {
			if d.counter == counter {
				return false
			}
		}
		q.deferred = append(q.deferred, deferredMessage{counter: counter, message: message})
		sort.Slice(q.deferred, func(i, j int) bool { return q.deferred[i].counter < q.deferred[j].counter })
		return true
	}
	q.lastCounter = counter
	q.C <- message
	for len(q.deferred) > 0 {
		next := q.deferred[0]
		if next.counter != q.lastCounter+1 {
			break
		}
		q.deferred = q.deferred[1:]
		q.lastCounter++
		q.C <- next.message
	}
	return true
}

// Deferred returns the messages that are being held back, in sequence order.
func (q *MessageSortingQueue) Deferred() [][]byte {
	q.lock.Lock()
	ret := make([][]byte, 0, len(q.deferred))
	for _, d := range q.deferred {
		ret = append(ret, d.message)
	}
	q.lock.Unlock()
	return ret
}

// Close closes the output channel. Messages accepted after this are dropped.
func (q *MessageSortingQueue) Close() {
	q.lock.Lock()
	defer q.lock.Unlock()
	if !q.closed {
		q.closed = true
		q.deferred = nil
		close(q.C)
	}
}
