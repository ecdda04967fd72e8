package services

// tally is an insertion-ordered counter. Map iteration order is
// undefined in Go, so most/least-popular tie-breaks go through the
// keys slice: the first key to reach the extreme count wins.
type tally struct {
	keys   []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

// seed registers a key at zero without counting anything.
func (t *tally) seed(key string) {
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
		t.counts[key] = 0
	}
}

func (t *tally) add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key]++
}

func (t *tally) len() int {
	return len(t.keys)
}

func (t *tally) toMap() map[string]int {
	m := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		m[k] = v
	}
	return m
}

// extremes returns the first-encountered keys holding the maximum and
// minimum counts, or empty strings when the tally is empty.
func (t *tally) extremes() (most, least string) {
	for i, k := range t.keys {
		if i == 0 {
			most, least = k, k
			continue
		}
		if t.counts[k] > t.counts[most] {
			most = k
		}
		if t.counts[k] < t.counts[least] {
			least = k
		}
	}
	return most, least
}
