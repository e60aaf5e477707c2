package stats

import "time"

// Aggregator maps a species key (normally the preferred common name) to its
// PassStat. Keys keep first-insertion order so reports are deterministic.
type Aggregator struct {
	keys  []string
	stats map[string]*PassStat
}

func NewAggregator() *Aggregator {
	return &Aggregator{stats: make(map[string]*PassStat)}
}

// Accumulate adds one interval for key, creating the entry on first use.
// A rejected duration never creates an entry.
func (a *Aggregator) Accumulate(key string, d time.Duration) {
	if s, ok := a.stats[key]; ok {
		s.AddDuration(d)
		return
	}
	if d <= 0 {
		return
	}
	a.insert(key, NewWithDuration(key, d))
}

// Merge folds stat into the entry for key, inserting a copy when absent.
func (a *Aggregator) Merge(key string, stat *PassStat) {
	if stat == nil {
		return
	}
	if s, ok := a.stats[key]; ok {
		s.Add(stat)
		return
	}
	a.insert(key, stat.Clone())
}

// MergeFrom merges every entry of child into a.
func (a *Aggregator) MergeFrom(child *Aggregator) {
	if child == nil {
		return
	}
	for _, key := range child.keys {
		a.Merge(key, child.stats[key])
	}
}

// Get returns the entry for key.
func (a *Aggregator) Get(key string) (*PassStat, bool) {
	s, ok := a.stats[key]
	return s, ok
}

// Len returns the number of species tracked.
func (a *Aggregator) Len() int {
	return len(a.keys)
}

// Keys returns species keys in insertion order.
func (a *Aggregator) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Stats returns the aggregates in insertion order. The pointers are live.
func (a *Aggregator) Stats() []*PassStat {
	out := make([]*PassStat, 0, len(a.keys))
	for _, key := range a.keys {
		out = append(out, a.stats[key])
	}
	return out
}

func (a *Aggregator) insert(key string, s *PassStat) {
	a.keys = append(a.keys, key)
	a.stats[key] = s
}

// MergeUpward rolls every entry of child into parent.
func MergeUpward(child, parent *Aggregator) {
	parent.MergeFrom(child)
}

// Condense collapses a flat list into one aggregate per distinct common name.
// The first occurrence of a name seeds its result; later ones merge into it.
func Condense(list []*PassStat) []*PassStat {
	index := make(map[string]*PassStat, len(list))
	out := make([]*PassStat, 0, len(list))
	for _, s := range list {
		if s == nil {
			continue
		}
		if seed, ok := index[s.CommonName]; ok {
			seed.Add(s)
			continue
		}
		c := s.Clone()
		index[s.CommonName] = c
		out = append(out, c)
	}
	return out
}
