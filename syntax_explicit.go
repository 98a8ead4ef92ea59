package jsondiff

import "fmt"

// Explicit keeps inserted, updated & deleted mapping keys under separate
// markers instead of merging them into one mapping. replacements are written
// as the new value with no wrapper, so a replacement by a mapping can only be
// told apart from a mapping delta by its keys, and a replacement by an empty
// mapping can't be told apart from "no change" at all. deltas in this syntax
// are meant to be read, Patch is best-effort and Unpatch isn't supported
var Explicit Syntax = explicitSyntax{}

type explicitSyntax struct{}

func (explicitSyntax) EmitSetDiff(a, b Set, s float64, added, removed Set) interface{} {
	if s == 0.0 || len(removed) == len(a) {
		return b
	}
	return setDelta(added, removed)
}

func (explicitSyntax) EmitListDiff(a, b interface{}, s float64, inserted []Edit, changed map[int]interface{}, deleted []Edit) interface{} {
	if s == 0.0 {
		return b
	} else if s == 1.0 {
		return Delta{}
	}

	d := make(Delta, len(changed)+2)
	for pos, sub := range changed {
		d[pos] = sub
	}
	if len(inserted) > 0 {
		d[Insert] = editPairs(inserted)
	}
	if len(deleted) > 0 {
		d[Delete] = editPositions(deleted)
	}
	return d
}

func (explicitSyntax) EmitDictDiff(a, b map[string]interface{}, s float64, added, changed, removed map[string]interface{}) interface{} {
	if s == 0.0 {
		return b
	} else if s == 1.0 {
		return Delta{}
	}

	d := Delta{}
	if len(added) > 0 {
		d[Insert] = copyMap(added)
	}
	if len(changed) > 0 {
		upd := make(Delta, len(changed))
		for k, sub := range changed {
			upd[k] = sub
		}
		d[Update] = upd
	}
	if len(removed) > 0 {
		keys := make([]interface{}, 0, len(removed))
		for _, k := range sortedKeys(removed) {
			keys = append(keys, k)
		}
		d[Delete] = keys
	}
	return d
}

func (explicitSyntax) EmitValueDiff(a, b interface{}, s float64) interface{} {
	if s == 1.0 {
		return Delta{}
	}
	return b
}

// structural decides whether d describes changes to a or replaces it
func (explicitSyntax) structural(a interface{}, d Delta) bool {
	for k := range d {
		switch kindOf(a) {
		case kMapping:
			if k != Insert && k != Update && k != Delete {
				return false
			}
		case kList, kTuple:
			if k == Insert || k == Delete || k == Add || k == Discard {
				continue
			}
			if _, ok := k.(Symbol); ok {
				return false
			}
			if _, err := toIndex(k); err != nil {
				return false
			}
		case kSet:
			if k != Add && k != Discard {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (e explicitSyntax) Patch(a, d interface{}) (interface{}, error) {
	dd, ok := asDelta(d)
	if !ok {
		return d, nil
	}
	if len(dd) == 0 {
		return a, nil
	}
	if !e.structural(a, dd) {
		return d, nil
	}

	switch x := a.(type) {
	case map[string]interface{}:
		out := copyMap(x)
		if del, ok := dd[Delete]; ok {
			if err := deleteKeys(out, del); err != nil {
				return nil, err
			}
		}
		if v, ok := dd[Insert]; ok {
			added, err := asMapping(v)
			if err != nil {
				return nil, err
			}
			for k, val := range added {
				out[k] = val
			}
		}
		if v, ok := dd[Update]; ok {
			upd, ok := asDelta(v)
			if !ok {
				return nil, fmt.Errorf("%w: %v must be a mapping, got %T", ErrInvalidDiff, Update, v)
			}
			for _, en := range upd.entries() {
				k, _ := en.key.(string)
				av, ok := out[k]
				if !ok {
					return nil, fmt.Errorf("%w: %q", ErrMissingKey, k)
				}
				nv, err := e.Patch(av, en.val)
				if err != nil {
					return nil, fmt.Errorf("key %q: %w", k, err)
				}
				out[k] = nv
			}
		}
		return out, nil
	case []interface{}, Tuple:
		if isSetDelta(dd) {
			return patchMembers(a, dd, Discard, Add)
		}
		deletes, err := optionalPositions(dd)
		if err != nil {
			return nil, err
		}
		inserts, err := optionalEdits(dd, Insert)
		if err != nil {
			return nil, err
		}
		return patchSequence(a, deletes, inserts, dd.entries(), e.Patch)
	case Set:
		return patchMembers(x, dd, Discard, Add)
	}
	return d, nil
}

func (explicitSyntax) Unpatch(b, d interface{}) (interface{}, error) {
	return nil, fmt.Errorf("explicit: %w", ErrUnpatchNotSupported)
}
