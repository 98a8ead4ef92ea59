package jsondiff

import (
	"fmt"
	"sort"
)

// Syntax renders the structural changes found by the differ into a concrete
// delta shape, and applies deltas of that shape. The emit methods receive the
// pair being compared, its similarity score & the classified changes. they
// must not keep or mutate the maps & slices passed in
type Syntax interface {
	EmitSetDiff(a, b Set, s float64, added, removed Set) interface{}
	EmitListDiff(a, b interface{}, s float64, inserted []Edit, changed map[int]interface{}, deleted []Edit) interface{}
	EmitDictDiff(a, b map[string]interface{}, s float64, added, changed, removed map[string]interface{}) interface{}
	EmitValueDiff(a, b interface{}, s float64) interface{}

	// Patch applies d to a, producing b. a is never modified
	Patch(a, d interface{}) (interface{}, error)
	// Unpatch applies d in reverse to b, producing a. syntaxes that don't
	// retain enough information return ErrUnpatchNotSupported
	Unpatch(b, d interface{}) (interface{}, error)
}

var syntaxes = map[string]Syntax{
	"compact":   Compact,
	"explicit":  Explicit,
	"symmetric": Symmetric,
}

// SyntaxByName looks up a builtin syntax
func SyntaxByName(name string) (Syntax, error) {
	if s, ok := syntaxes[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSyntax, name)
}

// SyntaxNames lists builtin syntax names, sorted
func SyntaxNames() []string {
	names := make([]string, 0, len(syntaxes))
	for name := range syntaxes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compact is the most space-efficient syntax. a replaced value is written
// as-is (wrapped in a Replace marker when it is a mapping, to tell it apart
// from a mapping delta), added mapping keys sit next to changed ones, and
// deleted sequence positions drop their values
var Compact Syntax = compactSyntax{}

type compactSyntax struct{}

// replacement wraps mappings so a whole-value replacement can't be read as a
// mapping delta
func (compactSyntax) replacement(b interface{}) interface{} {
	if kindOf(b) == kMapping {
		return Delta{Replace: b}
	}
	return b
}

func (c compactSyntax) EmitSetDiff(a, b Set, s float64, added, removed Set) interface{} {
	if s == 0.0 || len(removed) == len(a) {
		return c.replacement(b)
	}
	return setDelta(added, removed)
}

func (c compactSyntax) EmitListDiff(a, b interface{}, s float64, inserted []Edit, changed map[int]interface{}, deleted []Edit) interface{} {
	if s == 0.0 {
		return c.replacement(b)
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

func (c compactSyntax) EmitDictDiff(a, b map[string]interface{}, s float64, added, changed, removed map[string]interface{}) interface{} {
	if s == 0.0 {
		return c.replacement(b)
	} else if s == 1.0 {
		return Delta{}
	}

	d := make(Delta, len(changed)+len(added)+1)
	for k, sub := range changed {
		d[k] = sub
	}
	for k, v := range added {
		d[k] = v
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

func (c compactSyntax) EmitValueDiff(a, b interface{}, s float64) interface{} {
	if s == 1.0 {
		return Delta{}
	}
	return c.replacement(b)
}

func (c compactSyntax) Patch(a, d interface{}) (interface{}, error) {
	dd, ok := asDelta(d)
	if !ok {
		return d, nil
	}
	if len(dd) == 0 {
		return a, nil
	}
	if r, ok := dd[Replace]; ok {
		return r, nil
	}

	switch x := a.(type) {
	case map[string]interface{}:
		if dd.has(Insert, Add, Discard, Update) {
			return nil, fmt.Errorf("%w: sequence or set markers in a mapping diff", ErrTypeMismatch)
		}
		out := copyMap(x)
		if del, ok := dd[Delete]; ok {
			if err := deleteKeys(out, del); err != nil {
				return nil, err
			}
		}
		for _, e := range dd.entries() {
			k, ok := e.key.(string)
			if !ok {
				return nil, fmt.Errorf("%w: position %v in a mapping diff", ErrTypeMismatch, e.key)
			}
			av, ok := out[k]
			if !ok {
				out[k] = e.val
				continue
			}
			v, err := c.Patch(av, e.val)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	case []interface{}, Tuple:
		if isSetDelta(dd) {
			return patchMembers(a, dd, Discard, Add)
		}
		if dd.has(Add, Discard, Update) {
			return nil, fmt.Errorf("%w: set or mapping markers in a sequence diff", ErrTypeMismatch)
		}
		deletes, err := optionalPositions(dd)
		if err != nil {
			return nil, err
		}
		inserts, err := optionalEdits(dd, Insert)
		if err != nil {
			return nil, err
		}
		return patchSequence(a, deletes, inserts, dd.entries(), c.Patch)
	case Set:
		return patchMembers(x, dd, Discard, Add)
	}
	return nil, fmt.Errorf("%w: cannot apply a structural diff to a %s", ErrTypeMismatch, kindOf(a))
}

func (compactSyntax) Unpatch(b, d interface{}) (interface{}, error) {
	return nil, fmt.Errorf("compact: %w", ErrUnpatchNotSupported)
}

// setDelta renders add & discard markers, omitting empty sides
func setDelta(added, removed Set) Delta {
	d := Delta{}
	if len(removed) > 0 {
		d[Discard] = removed
	}
	if len(added) > 0 {
		d[Add] = added
	}
	return d
}

// isSetDelta reports whether d only carries set markers. sets decode as lists
// after a round trip through JSON, so list bases accept set deltas too
func isSetDelta(d Delta) bool {
	if !d.has(Add, Discard) {
		return false
	}
	for k := range d {
		if k != Add && k != Discard {
			return false
		}
	}
	return true
}

// optionalPositions reads a Delete marker holding bare positions
func optionalPositions(d Delta) ([]int, error) {
	v, ok := d[Delete]
	if !ok {
		return nil, nil
	}
	return toPositions(v)
}

// optionalEdits reads a marker holding [pos, value] pairs
func optionalEdits(d Delta, sym Symbol) ([]Edit, error) {
	v, ok := d[sym]
	if !ok {
		return nil, nil
	}
	return toEdits(v)
}
