package jsondiff

import (
	"context"
	"sort"
)

// result is the outcome of diffing a pair of values: the delta rendered by the
// active syntax, a similarity score in [0, 1] and the edit counts behind it
type result struct {
	delta  interface{}
	score  float64
	counts tally
}

// diff is the state of a single diff computation. it's created per call and
// never shared, which keeps a Differ free of mutable state
type diff struct {
	ctx    context.Context
	syntax Syntax
	err    error
}

// obj dispatches on the kinds of a & b:
//
//  1. identical containers are equal without looking inside
//  2. mapping/mapping, list/list, tuple/tuple & set/set pairs are diffed
//     structurally
//  3. anything else is either equal (score 1) or a full replacement (score 0)
//
// mixed kinds, including a list paired with a tuple, always land in step 3
func (d *diff) obj(a, b interface{}) result {
	if d.err != nil {
		return result{delta: Delta{}}
	}
	if sameRef(a, b) {
		return result{delta: d.syntax.EmitValueDiff(a, b, 1.0), score: 1.0}
	}

	switch x := a.(type) {
	case map[string]interface{}:
		if y, ok := b.(map[string]interface{}); ok {
			return d.mapping(x, y)
		}
	case []interface{}:
		if y, ok := b.([]interface{}); ok {
			return d.sequence(x, y, x, y)
		}
	case Tuple:
		if y, ok := b.(Tuple); ok {
			return d.sequence(x, y, x, y)
		}
	case Set:
		if y, ok := b.(Set); ok {
			return d.set(x, y)
		}
	}

	if !equal(a, b) {
		return result{
			delta:  d.syntax.EmitValueDiff(a, b, 0.0),
			score:  0.0,
			counts: tally{updates: 1},
		}
	}
	return result{delta: d.syntax.EmitValueDiff(a, b, 1.0), score: 1.0}
}

// mapping partitions keys into removed, common & added. each common key is
// worth half a point for being present on both sides and up to another half
// for the similarity of its values
func (d *diff) mapping(a, b map[string]interface{}) result {
	var (
		added    = map[string]interface{}{}
		changed  = map[string]interface{}{}
		removed  = map[string]interface{}{}
		nmatched int
		smatched float64
		counts   tally
	)

	for _, k := range sortedKeys(a) {
		w, ok := b[k]
		if !ok {
			removed[k] = a[k]
			counts.deletes += countNodes(a[k])
			continue
		}
		nmatched++
		sub := d.obj(a[k], w)
		if sub.score < 1.0 {
			changed[k] = sub.delta
			counts.add(sub.counts)
		}
		smatched += 0.5 + 0.5*sub.score
	}
	for _, k := range sortedKeys(b) {
		if _, ok := a[k]; !ok {
			added[k] = b[k]
			counts.inserts += countNodes(b[k])
		}
	}

	s := 1.0
	if total := len(removed) + nmatched + len(added); total != 0 {
		s = smatched / float64(total)
	}
	return result{
		delta:  d.syntax.EmitDictDiff(a, b, s, added, changed, removed),
		score:  s,
		counts: counts,
	}
}

// set compares members by exact equality, then pairs the leftovers greedily by
// similarity to smooth the score. the pairing only affects the score: the
// delta still reports plain added & removed members
func (d *diff) set(a, b Set) result {
	removed := a.difference(b)
	added := b.difference(a)
	if len(removed) == 0 && len(added) == 0 {
		return result{delta: Delta{}, score: 1.0}
	}

	type candidate struct {
		score float64
		x, y  int
	}
	ranking := make([]candidate, 0, len(removed)*len(added))
	for i, x := range removed {
		if err := d.ctx.Err(); err != nil {
			d.err = err
			return result{delta: Delta{}}
		}
		for j, y := range added {
			ranking = append(ranking, candidate{score: d.obj(x, y).score, x: i, y: j})
		}
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].score > ranking[j].score
	})

	var (
		usedX   = make([]bool, len(removed))
		usedY   = make([]bool, len(added))
		remX    = len(removed)
		remY    = len(added)
		sCommon = float64(len(a) - len(removed))
	)
	for _, c := range ranking {
		if remX == 0 || remY == 0 {
			break
		}
		if usedX[c.x] || usedY[c.y] {
			continue
		}
		usedX[c.x], usedY[c.y] = true, true
		remX--
		remY--
		sCommon += c.score
	}

	var counts tally
	for _, m := range added {
		counts.inserts += countNodes(m)
	}
	for _, m := range removed {
		counts.deletes += countNodes(m)
	}

	s := 1.0
	if total := len(a) + len(added); total != 0 {
		s = sCommon / float64(total)
	}
	return result{
		delta:  d.syntax.EmitSetDiff(a, b, s, added, removed),
		score:  s,
		counts: counts,
	}
}
