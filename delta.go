package jsondiff

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	// ErrInvalidDiff indicates a delta with a shape the syntax cannot apply
	ErrInvalidDiff = errors.New("invalid diff")
	// ErrUnpatchNotSupported is returned by syntaxes that discard the
	// information needed to reverse a delta
	ErrUnpatchNotSupported = errors.New("unpatch is not supported by this syntax")
	// ErrMissingKey indicates a patch referencing a mapping key the base lacks
	ErrMissingKey = errors.New("missing key")
	// ErrTypeMismatch indicates a delta shape that doesn't fit the base value
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnsupportedType is returned for go values outside the document model
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrUnknownSyntax is returned when looking up an unregistered syntax name
	ErrUnknownSyntax = errors.New("unknown syntax")
	// ErrUnknownFormat is returned when looking up an unregistered format name
	ErrUnknownFormat = errors.New("unknown format")
)

// Symbol is a reserved delta marker. Symbols are a distinct type from string,
// so the document key "delete" and the Delete marker never compare equal
type Symbol string

const (
	// Replace discards the base value in favour of the marked value
	Replace = Symbol("replace")
	// Insert marks added sequence elements as [position, value] pairs, or
	// added mapping keys in explicit & symmetric syntaxes
	Insert = Symbol("insert")
	// Delete marks removed sequence positions or removed mapping keys
	Delete = Symbol("delete")
	// Add marks members added to a set
	Add = Symbol("add")
	// Discard marks members removed from a set
	Discard = Symbol("discard")
	// Update marks changed mapping keys in the explicit syntax
	Update = Symbol("update")
)

// Symbols lists every marker, in a stable order
var Symbols = []Symbol{Add, Discard, Insert, Delete, Update, Replace}

// Label is the name a symbol is written with on the wire, minus the escape
func (s Symbol) Label() string { return string(s) }

func (s Symbol) String() string { return "$" + string(s) }

// Delta is a mapping-shaped diff. Keys are document keys (string), sequence
// positions (int) or markers (Symbol). An empty Delta means "no change"
type Delta map[interface{}]interface{}

// MarshalJSON implements a custom JSON Marshaller. positions become string
// keys & markers are written with the default escape string. document strings
// are written as-is, pass the delta through Marshal first to escape them
func (d Delta) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireForm(d))
}

// Edit is a positional sequence change: an element inserted at Pos in the
// target sequence, or deleted from Pos in the source sequence
type Edit struct {
	Pos   int
	Value interface{}
}

// pair renders an edit as the [pos, value] wire form
func (e Edit) pair() []interface{} {
	return []interface{}{e.Pos, e.Value}
}

func editPairs(edits []Edit) []interface{} {
	ps := make([]interface{}, len(edits))
	for i, e := range edits {
		ps[i] = e.pair()
	}
	return ps
}

func editPositions(edits []Edit) []interface{} {
	ps := make([]interface{}, len(edits))
	for i, e := range edits {
		ps[i] = e.Pos
	}
	return ps
}

// entry is a single key/value of a mapping-shaped delta
type entry struct {
	key interface{}
	val interface{}
}

// asDelta views d as a mapping-shaped delta. unmarshalled deltas that carry no
// marker arrive as map[string]interface{}
func asDelta(d interface{}) (Delta, bool) {
	switch x := d.(type) {
	case Delta:
		return x, true
	case map[string]interface{}:
		dd := make(Delta, len(x))
		for k, v := range x {
			dd[k] = v
		}
		return dd, true
	}
	return nil, false
}

// entries lists non-marker keys of d in a stable order: positions ascending,
// then strings
func (d Delta) entries() []entry {
	es := make([]entry, 0, len(d))
	for k, v := range d {
		if _, ok := k.(Symbol); ok {
			continue
		}
		es = append(es, entry{k, v})
	}
	sort.Slice(es, func(i, j int) bool {
		return keyLess(es[i].key, es[j].key)
	})
	return es
}

// has reports whether d has any of the given marker keys
func (d Delta) has(syms ...Symbol) bool {
	for _, s := range syms {
		if _, ok := d[s]; ok {
			return true
		}
	}
	return false
}

func keyLess(a, b interface{}) bool {
	ai, aInt := a.(int)
	bi, bInt := b.(int)
	switch {
	case aInt && bInt:
		return ai < bi
	case aInt:
		return true
	case bInt:
		return false
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	an, aErr := strconv.Atoi(as)
	bn, bErr := strconv.Atoi(bs)
	if aErr == nil && bErr == nil {
		return an < bn
	}
	return as < bs
}

// toIndex reads a sequence position from a delta key or pair element. after a
// JSON round trip positions may be strings (keys) or float64 (values)
func toIndex(v interface{}) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != float64(int(x)) {
			return 0, fmt.Errorf("%w: non-integer position %v", ErrInvalidDiff, x)
		}
		return int(x), nil
	case string:
		i, err := strconv.Atoi(x)
		if err != nil {
			return 0, fmt.Errorf("%w: position %q is not an integer", ErrTypeMismatch, x)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: invalid position %v (%T)", ErrInvalidDiff, v, v)
}

// toEdits reads a list of [pos, value] pairs
func toEdits(v interface{}) ([]Edit, error) {
	list, ok := asList(v)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list of [position, value] pairs, got %T", ErrInvalidDiff, v)
	}
	edits := make([]Edit, len(list))
	for i, p := range list {
		pair, ok := asList(p)
		if !ok || len(pair) != 2 {
			return nil, fmt.Errorf("%w: edit %d is not a [position, value] pair", ErrInvalidDiff, i)
		}
		pos, err := toIndex(pair[0])
		if err != nil {
			return nil, err
		}
		edits[i] = Edit{Pos: pos, Value: pair[1]}
	}
	return edits, nil
}

// toPositions reads a list of bare positions
func toPositions(v interface{}) ([]int, error) {
	list, ok := asList(v)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list of positions, got %T", ErrInvalidDiff, v)
	}
	ps := make([]int, len(list))
	for i, p := range list {
		pos, err := toIndex(p)
		if err != nil {
			return nil, err
		}
		ps[i] = pos
	}
	return ps, nil
}

// asList views any sequence-like value as a plain slice
func asList(v interface{}) ([]interface{}, bool) {
	switch x := v.(type) {
	case []interface{}:
		return x, true
	case Tuple:
		return x, true
	case Set:
		return x, true
	}
	return nil, false
}
