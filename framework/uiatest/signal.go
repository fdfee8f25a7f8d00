package uiatest

import (
	"sync"
	"time"
)

// Signal is a boolean flag that one goroutine sets and another waits for with a timeout.
// Event callbacks set it; the test goroutine waits on it.
type Signal struct {
	ch   chan struct{}
	set  bool
	lock sync.Mutex
}

func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

func (s *Signal) Set() {
	s.lock.Lock()
	if !s.set {
		s.set = true
		close(s.ch)
	}
	s.lock.Unlock()
}

func (s *Signal) Reset() {
	s.lock.Lock()
	if s.set {
		s.set = false
		s.ch = make(chan struct{})
	}
	s.lock.Unlock()
}

func (s *Signal) IsSet() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.set
}

// Wait blocks until the signal is set or the timeout elapses, and returns whether it was set.
// A timeout is not an error; it just means nothing happened.
func (s *Signal) Wait(timeout time.Duration) bool {
	s.lock.Lock()
	ch := s.ch
	s.lock.Unlock()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}

// changeNotifier lets a goroutine wait for the next change to some shared state without
// polling: each call to changed closes the channel that C returned before.
type changeNotifier struct {
	ch   chan struct{}
	lock sync.Mutex
}

func newChangeNotifier() *changeNotifier {
	return &changeNotifier{ch: make(chan struct{})}
}

func (n *changeNotifier) C() <-chan struct{} {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.ch
}

func (n *changeNotifier) changed() {
	n.lock.Lock()
	close(n.ch)
	n.ch = make(chan struct{})
	n.lock.Unlock()
}
