package jsondiff

import (
	"fmt"
	"sort"
)

// patchFunc applies a nested delta to a nested value
type patchFunc func(v, d interface{}) (interface{}, error)

// patchSequence applies positional edits to a copy of a list or tuple:
// deletions first, highest position first so earlier removals don't shift
// later ones, then insertions in ascending target position, then nested
// changes keyed by target position
func patchSequence(a interface{}, deletes []int, inserts []Edit, changes []entry, patch patchFunc) (interface{}, error) {
	list, _ := asList(a)
	out := make([]interface{}, len(list), len(list)+len(inserts))
	copy(out, list)

	deletes = append([]int(nil), deletes...)
	sort.Sort(sort.Reverse(sort.IntSlice(deletes)))
	var err error
	for _, pos := range deletes {
		if out, err = removeAt(out, pos); err != nil {
			return nil, err
		}
	}

	inserts = append([]Edit(nil), inserts...)
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].Pos < inserts[j].Pos })
	for _, e := range inserts {
		if out, err = insertAt(out, e.Pos, e.Value); err != nil {
			return nil, err
		}
	}

	if err := patchPositions(out, changes, patch); err != nil {
		return nil, err
	}
	return restoreSequence(a, out), nil
}

// unpatchSequence reverses patchSequence on a copy of b: nested changes are
// undone while b still has the target layout, insertions are removed highest
// position first, then deletions are restored lowest position first
func unpatchSequence(b interface{}, deletes, inserts []Edit, changes []entry, unpatch patchFunc) (interface{}, error) {
	list, _ := asList(b)
	out := make([]interface{}, len(list), len(list)+len(deletes))
	copy(out, list)

	if err := patchPositions(out, changes, unpatch); err != nil {
		return nil, err
	}

	inserts = append([]Edit(nil), inserts...)
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].Pos > inserts[j].Pos })
	var err error
	for _, e := range inserts {
		if out, err = removeAt(out, e.Pos); err != nil {
			return nil, err
		}
	}

	deletes = append([]Edit(nil), deletes...)
	sort.SliceStable(deletes, func(i, j int) bool { return deletes[i].Pos < deletes[j].Pos })
	for _, e := range deletes {
		if out, err = insertAt(out, e.Pos, e.Value); err != nil {
			return nil, err
		}
	}
	return restoreSequence(b, out), nil
}

func patchPositions(out []interface{}, changes []entry, patch patchFunc) error {
	for _, e := range changes {
		pos, err := toIndex(e.key)
		if err != nil {
			return err
		}
		if pos < 0 || pos >= len(out) {
			return fmt.Errorf("%w: array index %d exceeds %d", ErrInvalidDiff, pos, len(out))
		}
		v, err := patch(out[pos], e.val)
		if err != nil {
			return fmt.Errorf("index %d: %w", pos, err)
		}
		out[pos] = v
	}
	return nil
}

// restoreSequence gives a patched slice the container type of the original
func restoreSequence(orig interface{}, out []interface{}) interface{} {
	if _, ok := orig.(Tuple); ok {
		return Tuple(out)
	}
	return out
}

func removeAt(s []interface{}, i int) ([]interface{}, error) {
	l := len(s)
	if i < 0 || i >= l {
		return nil, fmt.Errorf("%w: array index %d exceeds %d", ErrInvalidDiff, i, l)
	}
	return append(s[:i], s[i+1:]...), nil
}

func insertAt(s []interface{}, i int, v interface{}) ([]interface{}, error) {
	l := len(s)
	if i < 0 || i > l {
		return nil, fmt.Errorf("%w: array index %d exceeds %d", ErrInvalidDiff, i, l)
	}
	s = append(s, nil)
	copy(s[i+1:], s[i:l])
	s[i] = v
	return s, nil
}

// patchMembers removes the members listed under rm and adds the ones listed
// under add, working on a copy of a set, list or tuple
func patchMembers(a interface{}, d Delta, rm, add Symbol) (interface{}, error) {
	for k := range d {
		if k != rm && k != add {
			return nil, fmt.Errorf("%w: %v in a set diff", ErrTypeMismatch, k)
		}
	}
	members, _ := asList(a)
	out := make([]interface{}, 0, len(members))

	drop := map[string]bool{}
	if v, ok := d[rm]; ok {
		list, ok := asList(v)
		if !ok {
			return nil, fmt.Errorf("%w: %v must list members, got %T", ErrInvalidDiff, rm, v)
		}
		for _, m := range list {
			drop[fingerprint(m)] = true
		}
	}
	present := map[string]bool{}
	for _, m := range members {
		key := fingerprint(m)
		if drop[key] {
			continue
		}
		present[key] = true
		out = append(out, m)
	}
	if v, ok := d[add]; ok {
		list, ok := asList(v)
		if !ok {
			return nil, fmt.Errorf("%w: %v must list members, got %T", ErrInvalidDiff, add, v)
		}
		for _, m := range list {
			if key := fingerprint(m); !present[key] {
				present[key] = true
				out = append(out, m)
			}
		}
	}

	switch a.(type) {
	case Set:
		return Set(out), nil
	case Tuple:
		return Tuple(out), nil
	}
	return out, nil
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// asMapping views a mapping-valued marker payload, such as the symmetric
// Delete & Insert key maps
func asMapping(v interface{}) (map[string]interface{}, error) {
	switch x := v.(type) {
	case map[string]interface{}:
		return x, nil
	case Delta:
		m := make(map[string]interface{}, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string key %v", ErrInvalidDiff, k)
			}
			m[ks] = e
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: expected a mapping of keys, got %T", ErrInvalidDiff, v)
}

// deleteKeys removes a list of keys from m. every key must be present
func deleteKeys(m map[string]interface{}, keys interface{}) error {
	list, ok := asList(keys)
	if !ok {
		return fmt.Errorf("%w: %v must list keys, got %T", ErrInvalidDiff, Delete, keys)
	}
	for _, k := range list {
		ks, ok := k.(string)
		if !ok {
			return fmt.Errorf("%w: key %v is not a string", ErrInvalidDiff, k)
		}
		if _, ok := m[ks]; !ok {
			return fmt.Errorf("%w: %q", ErrMissingKey, ks)
		}
		delete(m, ks)
	}
	return nil
}
