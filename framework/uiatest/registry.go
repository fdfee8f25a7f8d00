package uiatest

import (
	"sort"
	"sync"
)

// Registry maps (suite, test name) to cases. Both keys are case-insensitive. It is safe to
// share between dispatchers once registration is done.
type Registry struct {
	suites map[string]*registeredSuite
	lock   sync.RWMutex
}

type registeredSuite struct {
	id     string
	cases  []Case
	byName map[string]int
}

func NewRegistry() *Registry {
	return &Registry{suites: make(map[string]*registeredSuite)}
}

// Register adds a suite. It fails if the suite ID is already registered, if two cases in it
// have the same normalized name, or if a case has no body.
func (r *Registry) Register(s Suite) error {
	key := normalizeName(s.ID)
	if key == "" {
		return &RegistrationError{Suite: s.ID, Reason: "suite ID is empty"}
	}
	rs := &registeredSuite{id: s.ID, byName: make(map[string]int)}
	for _, c := range s.Cases {
		name := c.Normalized()
		if name == "" {
			return &RegistrationError{Suite: s.ID, Reason: "test name is empty"}
		}
		if c.Run == nil {
			return &RegistrationError{Suite: s.ID, Name: c.Name, Reason: "test has no body"}
		}
		if _, exists := rs.byName[name]; exists {
			return &RegistrationError{Suite: s.ID, Name: c.Name, Reason: "duplicate test name"}
		}
		rs.byName[name] = len(rs.cases)
		rs.cases = append(rs.cases, c)
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if _, exists := r.suites[key]; exists {
		return &RegistrationError{Suite: s.ID, Reason: "suite is already registered"}
	}
	r.suites[key] = rs
	return nil
}

// Suites returns the registered suite IDs in alphabetical order.
func (r *Registry) Suites() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	ret := make([]string, 0, len(r.suites))
	for _, s := range r.suites {
		ret = append(ret, s.id)
	}
	sort.Strings(ret)
	return ret
}

func (r *Registry) suite(suiteID string) (*registeredSuite, error) {
	r.lock.RLock()
	s := r.suites[normalizeName(suiteID)]
	r.lock.RUnlock()
	if s == nil {
		return nil, &NotFoundError{Suite: suiteID}
	}
	return s, nil
}

// Lookup finds one case by exact, case-insensitive name.
func (r *Registry) Lookup(suiteID, name string) (Case, error) {
	s, err := r.suite(suiteID)
	if err != nil {
		return Case{}, err
	}
	i, ok := s.byName[normalizeName(name)]
	if !ok {
		return Case{}, &NotFoundError{Suite: suiteID, Test: name}
	}
	return s.cases[i], nil
}

// Filter selects the cases of a suite that can run unattended: status Works, not
// arguments-only, priority intersecting the requested one (or PriAll), and category
// intersecting mask (or mask Generic for any category). Cases keep their registration order.
func (r *Registry) Filter(suiteID string, priority Priority, mask CaseType) (CaseSequence, error) {
	s, err := r.suite(suiteID)
	if err != nil {
		return CaseSequence{}, err
	}
	return CaseSequence{
		cases: s.cases,
		match: func(c Case) bool {
			return c.Status == Works &&
				!c.IsArgumentsOnly() &&
				(priority == PriAll || c.Priority&priority != 0) &&
				(mask == Generic || c.Type&mask != 0)
		},
	}, nil
}

// CaseSequence is the lazily evaluated result of Filter. It can be iterated any number of
// times; each Iterator starts from the beginning.
type CaseSequence struct {
	cases []Case
	match func(Case) bool
}

func (s CaseSequence) Iterator() *CaseIterator {
	return &CaseIterator{seq: s}
}

// Cases evaluates the whole sequence.
func (s CaseSequence) Cases() []Case {
	var ret []Case
	it := s.Iterator()
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		ret = append(ret, c)
	}
	return ret
}

type CaseIterator struct {
	seq CaseSequence
	pos int
}

// Next returns the next matching case, or false when the sequence is exhausted.
func (it *CaseIterator) Next() (Case, bool) {
	for it.pos < len(it.seq.cases) {
		c := it.seq.cases[it.pos]
		it.pos++
		if it.seq.match == nil || it.seq.match(c) {
			return c, true
		}
	}
	return Case{}, false
}
