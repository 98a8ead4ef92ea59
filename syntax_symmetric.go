package jsondiff

import "fmt"

// Symmetric keeps enough of the source document in every delta to reverse it.
// replacements are [old, new] pairs, deleted sequence elements keep their
// values as [pos, value] pairs and removed mapping keys keep theirs in a
// {key: old} mapping
var Symmetric Syntax = symmetricSyntax{}

type symmetricSyntax struct{}

func (symmetricSyntax) EmitSetDiff(a, b Set, s float64, added, removed Set) interface{} {
	if s == 0.0 || len(removed) == len(a) {
		return []interface{}{a, b}
	}
	return setDelta(added, removed)
}

func (symmetricSyntax) EmitListDiff(a, b interface{}, s float64, inserted []Edit, changed map[int]interface{}, deleted []Edit) interface{} {
	if s == 0.0 {
		return []interface{}{a, b}
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
		d[Delete] = editPairs(deleted)
	}
	return d
}

func (symmetricSyntax) EmitDictDiff(a, b map[string]interface{}, s float64, added, changed, removed map[string]interface{}) interface{} {
	if s == 0.0 {
		return []interface{}{a, b}
	} else if s == 1.0 {
		return Delta{}
	}

	d := make(Delta, len(changed)+2)
	for k, sub := range changed {
		d[k] = sub
	}
	if len(added) > 0 {
		d[Insert] = copyMap(added)
	}
	if len(removed) > 0 {
		d[Delete] = copyMap(removed)
	}
	return d
}

func (symmetricSyntax) EmitValueDiff(a, b interface{}, s float64) interface{} {
	if s == 1.0 {
		return Delta{}
	}
	return []interface{}{a, b}
}

// replacementPair reads an [old, new] pair
func replacementPair(d interface{}) (prev, next interface{}, ok bool, err error) {
	pair, isList := d.([]interface{})
	if !isList {
		return nil, nil, false, nil
	}
	if len(pair) != 2 {
		return nil, nil, true, fmt.Errorf("%w: replacement must be an [old, new] pair, got %d elements", ErrInvalidDiff, len(pair))
	}
	return pair[0], pair[1], true, nil
}

func (s symmetricSyntax) Patch(a, d interface{}) (interface{}, error) {
	if _, b, ok, err := replacementPair(d); ok || err != nil {
		return b, err
	}
	dd, ok := asDelta(d)
	if !ok {
		return nil, fmt.Errorf("%w: symmetric diff must be a pair or a mapping, got %T", ErrInvalidDiff, d)
	}
	if len(dd) == 0 {
		return a, nil
	}

	switch x := a.(type) {
	case map[string]interface{}:
		if dd.has(Add, Discard, Update, Replace) {
			return nil, fmt.Errorf("%w: set markers in a mapping diff", ErrTypeMismatch)
		}
		out := copyMap(x)
		if v, ok := dd[Delete]; ok {
			removed, err := asMapping(v)
			if err != nil {
				return nil, err
			}
			for k := range removed {
				if _, ok := out[k]; !ok {
					return nil, fmt.Errorf("%w: %q", ErrMissingKey, k)
				}
				delete(out, k)
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
		if err := s.patchKeys(out, dd.entries(), s.Patch); err != nil {
			return nil, err
		}
		return out, nil
	case []interface{}, Tuple:
		if isSetDelta(dd) {
			return patchMembers(a, dd, Discard, Add)
		}
		if dd.has(Add, Discard, Update, Replace) {
			return nil, fmt.Errorf("%w: set or mapping markers in a sequence diff", ErrTypeMismatch)
		}
		deletes, err := optionalEdits(dd, Delete)
		if err != nil {
			return nil, err
		}
		inserts, err := optionalEdits(dd, Insert)
		if err != nil {
			return nil, err
		}
		positions := make([]int, len(deletes))
		for i, e := range deletes {
			positions[i] = e.Pos
		}
		return patchSequence(a, positions, inserts, dd.entries(), s.Patch)
	case Set:
		return patchMembers(x, dd, Discard, Add)
	}
	return nil, fmt.Errorf("%w: cannot apply a structural diff to a %s", ErrTypeMismatch, kindOf(a))
}

func (s symmetricSyntax) Unpatch(b, d interface{}) (interface{}, error) {
	if a, _, ok, err := replacementPair(d); ok || err != nil {
		return a, err
	}
	dd, ok := asDelta(d)
	if !ok {
		return nil, fmt.Errorf("%w: symmetric diff must be a pair or a mapping, got %T", ErrInvalidDiff, d)
	}
	if len(dd) == 0 {
		return b, nil
	}

	switch x := b.(type) {
	case map[string]interface{}:
		if dd.has(Add, Discard, Update, Replace) {
			return nil, fmt.Errorf("%w: set markers in a mapping diff", ErrTypeMismatch)
		}
		out := copyMap(x)
		if err := s.patchKeys(out, dd.entries(), s.Unpatch); err != nil {
			return nil, err
		}
		if v, ok := dd[Insert]; ok {
			added, err := asMapping(v)
			if err != nil {
				return nil, err
			}
			for k := range added {
				if _, ok := out[k]; !ok {
					return nil, fmt.Errorf("%w: %q", ErrMissingKey, k)
				}
				delete(out, k)
			}
		}
		if v, ok := dd[Delete]; ok {
			removed, err := asMapping(v)
			if err != nil {
				return nil, err
			}
			for k, val := range removed {
				out[k] = val
			}
		}
		return out, nil
	case []interface{}, Tuple:
		if isSetDelta(dd) {
			return patchMembers(b, dd, Add, Discard)
		}
		if dd.has(Add, Discard, Update, Replace) {
			return nil, fmt.Errorf("%w: set or mapping markers in a sequence diff", ErrTypeMismatch)
		}
		deletes, err := optionalEdits(dd, Delete)
		if err != nil {
			return nil, err
		}
		inserts, err := optionalEdits(dd, Insert)
		if err != nil {
			return nil, err
		}
		return unpatchSequence(b, deletes, inserts, dd.entries(), s.Unpatch)
	case Set:
		return patchMembers(x, dd, Add, Discard)
	}
	return nil, fmt.Errorf("%w: cannot apply a structural diff to a %s", ErrTypeMismatch, kindOf(b))
}

// patchKeys recurses into changed mapping keys, which must exist in m
func (symmetricSyntax) patchKeys(m map[string]interface{}, changes []entry, patch patchFunc) error {
	for _, e := range changes {
		k, ok := e.key.(string)
		if !ok {
			return fmt.Errorf("%w: position %v in a mapping diff", ErrTypeMismatch, e.key)
		}
		v, ok := m[k]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingKey, k)
		}
		nv, err := patch(v, e.val)
		if err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		m[k] = nv
	}
	return nil
}
