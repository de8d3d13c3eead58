// Package ranking provides an ordered score index with O(log n) rank queries.
//
// The index is a skip list augmented with span counts (Pugh 1990, the same
// layout Redis uses for sorted sets). Entries are ordered by descending
// score; equal scores are ordered by ascending key.
package ranking

import (
	"math/rand"
	"sync"
)

const (
	maxLevel         = 32
	levelProbability = 0.25
)

// Entry is one ranked key
type Entry struct {
	Key   int
	Score float64
}

// before reports whether a ranks ahead of b
func before(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Key < b.Key
}

type node struct {
	entry Entry
	next  []*node
	span  []int // ranks skipped to reach next at each level
}

// SkipList is a concurrency-safe ranked index keyed by int
type SkipList struct {
	mu     sync.RWMutex
	head   *node
	level  int
	length int
	scores map[int]float64
	rng    *rand.Rand
}

// New creates an empty index. Level draws use a fixed seed so the layout
// is reproducible for a given insertion order.
func New() *SkipList {
	return &SkipList{
		head: &node{
			next: make([]*node, maxLevel),
			span: make([]int, maxLevel),
		},
		level:  1,
		scores: make(map[int]float64),
		rng:    rand.New(rand.NewSource(1)),
	}
}

func (sl *SkipList) randomLevel() int {
	level := 1
	for level < maxLevel && sl.rng.Float64() < levelProbability {
		level++
	}
	return level
}

// Set inserts key or moves it to its new score
func (sl *SkipList) Set(key int, score float64) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if old, ok := sl.scores[key]; ok {
		if old == score {
			return
		}
		sl.remove(Entry{Key: key, Score: old})
	}
	sl.insert(Entry{Key: key, Score: score})
	sl.scores[key] = score
}

// Add increments the score of key, inserting it at delta if absent
func (sl *SkipList) Add(key int, delta float64) float64 {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	score := delta
	if old, ok := sl.scores[key]; ok {
		score += old
		if delta == 0 {
			return score
		}
		sl.remove(Entry{Key: key, Score: old})
	}
	sl.insert(Entry{Key: key, Score: score})
	sl.scores[key] = score
	return score
}

func (sl *SkipList) insert(e Entry) {
	var update [maxLevel]*node
	var rank [maxLevel]int

	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		if i < sl.level-1 {
			rank[i] = rank[i+1]
		}
		for x.next[i] != nil && before(x.next[i].entry, e) {
			rank[i] += x.span[i]
			x = x.next[i]
		}
		update[i] = x
	}

	level := sl.randomLevel()
	if level > sl.level {
		for i := sl.level; i < level; i++ {
			rank[i] = 0
			update[i] = sl.head
			update[i].span[i] = sl.length
		}
		sl.level = level
	}

	n := &node{
		entry: e,
		next:  make([]*node, level),
		span:  make([]int, level),
	}
	for i := 0; i < level; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n

		n.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = (rank[0] - rank[i]) + 1
	}
	for i := level; i < sl.level; i++ {
		update[i].span[i]++
	}
	sl.length++
}

func (sl *SkipList) remove(e Entry) bool {
	var update [maxLevel]*node

	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && before(x.next[i].entry, e) {
			x = x.next[i]
		}
		update[i] = x
	}

	x = x.next[0]
	if x == nil || x.entry.Key != e.Key {
		return false
	}

	for i := 0; i < sl.level; i++ {
		if update[i].next[i] == x {
			update[i].span[i] += x.span[i] - 1
			update[i].next[i] = x.next[i]
		} else {
			update[i].span[i]--
		}
	}
	for sl.level > 1 && sl.head.next[sl.level-1] == nil {
		sl.level--
	}
	sl.length--
	return true
}

// Score returns the score of key
func (sl *SkipList) Score(key int) (float64, bool) {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	score, ok := sl.scores[key]
	return score, ok
}

// Rank returns the 1-based rank of key, or 0 if absent
func (sl *SkipList) Rank(key int) int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	score, ok := sl.scores[key]
	if !ok {
		return 0
	}
	e := Entry{Key: key, Score: score}

	rank := 0
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && !before(e, x.next[i].entry) {
			rank += x.span[i]
			x = x.next[i]
		}
		if x != sl.head && x.entry.Key == key {
			return rank
		}
	}
	return 0
}

// Range returns the entries ranked start..end inclusive (1-based)
func (sl *SkipList) Range(start, end int) []Entry {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	start = max(start, 1)
	end = min(end, sl.length)
	if start > end {
		return nil
	}

	traversed := 0
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && traversed+x.span[i] < start {
			traversed += x.span[i]
			x = x.next[i]
		}
	}

	out := make([]Entry, 0, end-start+1)
	for x = x.next[0]; x != nil && traversed < end; x = x.next[0] {
		traversed++
		out = append(out, x.entry)
	}
	return out
}

// Len returns the number of keys
func (sl *SkipList) Len() int {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.length
}
