package jsondiff

// sequence aligns two ordered sequences with a longest common subsequence
// computed over similarity scores instead of equality. Background on LCSS:
// https://en.wikipedia.org/wiki/Longest_common_subsequence_problem
//
// C[i][j] holds the best total similarity aligning X[:i] with Y[:j]:
//
//	C[i][j] = max(C[i][j-1], C[i-1][j], C[i-1][j-1] + s(X[i-1], Y[j-1]))
//
// the pairwise results are kept so the backtrace reuses them instead of
// diffing each pair twice. time & space are O(len(X) * len(Y))
func (d *diff) sequence(a, b interface{}, X, Y []interface{}) result {
	m, n := len(X), len(Y)
	c := make([][]float64, m+1)
	c[0] = make([]float64, n+1)
	pairs := make([][]result, m)

	for i := 1; i <= m; i++ {
		if err := d.ctx.Err(); err != nil {
			d.err = err
			return result{delta: Delta{}}
		}
		c[i] = make([]float64, n+1)
		pairs[i-1] = make([]result, n)
		for j := 1; j <= n; j++ {
			sub := d.obj(X[i-1], Y[j-1])
			pairs[i-1][j-1] = sub
			c[i][j] = max(c[i][j-1], c[i-1][j], c[i-1][j-1]+sub.score)
		}
	}
	if d.err != nil {
		return result{delta: Delta{}}
	}

	var (
		inserted []Edit
		deleted  []Edit
		changed  = map[int]interface{}{}
		scores   []float64
		counts   tally
	)

	// backtrack from the bottom-right corner. a diagonal step is preferred
	// whenever it explains the cell, then insertion over deletion on ties
	i, j := m, n
	for i > 0 || j > 0 {
		if i > 0 && j > 0 {
			sub := pairs[i-1][j-1]
			if sub.score > 0 && c[i][j] == c[i-1][j-1]+sub.score {
				if sub.score < 1.0 {
					changed[j-1] = sub.delta
					counts.add(sub.counts)
				}
				scores = append(scores, sub.score)
				i, j = i-1, j-1
				continue
			}
		}
		if j > 0 && (i == 0 || c[i][j-1] >= c[i-1][j]) {
			inserted = append(inserted, Edit{Pos: j - 1, Value: Y[j-1]})
			counts.inserts += countNodes(Y[j-1])
			j--
			continue
		}
		deleted = append(deleted, Edit{Pos: i - 1, Value: X[i-1]})
		counts.deletes += countNodes(X[i-1])
		i--
	}

	// the backtrace walks positions in descending order
	reverseEdits(inserted)
	reverseEdits(deleted)

	var total float64
	for k := len(scores) - 1; k >= 0; k-- {
		total += scores[k]
	}
	s := 1.0
	if tot := m + len(inserted); tot != 0 {
		s = total / float64(tot)
	}

	return result{
		delta:  d.syntax.EmitListDiff(a, b, s, inserted, changed, deleted),
		score:  s,
		counts: counts,
	}
}

func reverseEdits(es []Edit) {
	for l, r := 0, len(es)-1; l < r; l, r = l+1, r-1 {
		es[l], es[r] = es[r], es[l]
	}
}
