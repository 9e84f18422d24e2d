package rumpu

import "sync"

type (
	// Pattern is one lane's trigger pattern, in practice just a slice of
	// bools, but provides convenience functions that return false for indices
	// out of bounds, so callers do not need to bounds-check while a lane's
	// step count is being edited.
	Pattern []bool

	euclideanKey struct {
		steps, hits, rotation int
	}
)

// Get returns the value at index, or false if the index is out of range.
func (p Pattern) Get(index int) bool {
	if index < 0 || index >= len(p) {
		return false
	}
	return p[index]
}

// Set sets the value at index, appending false until the slice is long enough.
func (p *Pattern) Set(index int, value bool) {
	for len(*p) <= index {
		*p = append(*p, false)
	}
	(*p)[index] = value
}

// Copy returns a deep copy of the pattern.
func (p Pattern) Copy() Pattern {
	out := make(Pattern, len(p))
	copy(out, p)
	return out
}

// Hits counts the true steps.
func (p Pattern) Hits() int {
	n := 0
	for _, b := range p {
		if b {
			n++
		}
	}
	return n
}

// Rotate returns the pattern rotated so that the step previously at index
// rotation becomes step 0.
func (p Pattern) Rotate(rotation int) Pattern {
	n := len(p)
	if n == 0 {
		return Pattern{}
	}
	rotation = ((rotation % n) + n) % n
	out := make(Pattern, n)
	for i := range p {
		out[i] = p[(i+rotation)%n]
	}
	return out
}

// euclideanCache memoizes generated patterns. Four lanes with user-editable
// steps/hits/rotation regenerate identical patterns all the time, so a small
// evict-oldest cache covers essentially every regeneration.
const euclideanCacheLimit = 256

var (
	euclideanMu     sync.Mutex
	euclideanCache  = map[euclideanKey]Pattern{}
	euclideanOrder  []euclideanKey
	euclideanMisses int // probe for the cache tests
)

// Euclidean returns a pattern of the given length with hits distributed as
// evenly as possible (Bjorklund's algorithm), rotated by rotation steps.
// Rotation is normalized to [0, steps) before the cache lookup, so all
// equivalent rotations share one entry. The returned slice is a copy; callers
// may mutate it freely.
func Euclidean(steps, hits, rotation int) Pattern {
	if steps < 1 {
		return Pattern{}
	}
	hits = clampInt(hits, 0, steps)
	rotation = ((rotation % steps) + steps) % steps
	key := euclideanKey{steps, hits, rotation}
	euclideanMu.Lock()
	defer euclideanMu.Unlock()
	if p, ok := euclideanCache[key]; ok {
		return p.Copy()
	}
	euclideanMisses++
	p := bjorklund(steps, hits).Rotate(rotation)
	if len(euclideanOrder) >= euclideanCacheLimit {
		delete(euclideanCache, euclideanOrder[0])
		euclideanOrder = euclideanOrder[1:]
	}
	euclideanCache[key] = p
	euclideanOrder = append(euclideanOrder, key)
	return p.Copy()
}

// bjorklund builds the maximally even pattern with the classic
// partition-merge construction: start with hits [1] groups and steps-hits [0]
// groups, then repeatedly distribute the remainder groups into the others.
func bjorklund(steps, hits int) Pattern {
	if hits <= 0 {
		return make(Pattern, steps)
	}
	if hits >= steps {
		p := make(Pattern, steps)
		for i := range p {
			p[i] = true
		}
		return p
	}
	groups := make([][]bool, hits)
	for i := range groups {
		groups[i] = []bool{true}
	}
	remainder := make([][]bool, steps-hits)
	for i := range remainder {
		remainder[i] = []bool{false}
	}
	for len(remainder) > 1 {
		n := len(groups)
		if len(remainder) < n {
			n = len(remainder)
		}
		for i := 0; i < n; i++ {
			groups[i] = append(groups[i], remainder[i]...)
		}
		rest := remainder[n:]
		if len(groups) > n {
			rest = append(groups[n:], rest...)
		}
		groups, remainder = groups[:n], rest
	}
	var p Pattern
	for _, g := range groups {
		p = append(p, g...)
	}
	for _, g := range remainder {
		p = append(p, g...)
	}
	return p
}
