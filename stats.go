package jsondiff

// Stats holds statistical metadata about a diff
type Stats struct {
	Left  int `json:"leftNodes"`  // count of nodes in the left tree
	Right int `json:"rightNodes"` // count of nodes in the right tree

	Inserts int `json:"inserts,omitempty"` // number of nodes inserted
	Updates int `json:"updates,omitempty"` // number of values replaced
	Deletes int `json:"deletes,omitempty"` // number of nodes deleted

	Similarity float64 `json:"similarity"` // score of the root pair
}

// NodeChange returns a count of the shift between left & right trees
func (s Stats) NodeChange() int {
	return s.Right - s.Left
}

// tally counts the edits behind a result. inserted & deleted containers count
// every node they hold
type tally struct {
	inserts, deletes, updates int
}

func (t *tally) add(o tally) {
	t.inserts += o.inserts
	t.deletes += o.deletes
	t.updates += o.updates
}

func (s *Stats) record(a, b interface{}, r result) {
	s.Left = countNodes(a)
	s.Right = countNodes(b)
	s.Inserts = r.counts.inserts
	s.Deletes = r.counts.deletes
	s.Updates = r.counts.updates
	s.Similarity = r.score
}
