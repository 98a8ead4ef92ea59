package jsondiff

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"

	"fortio.org/safecast"
	"github.com/cespare/xxhash"
)

// kind defines all of the atoms in our universe, or the types of data we
// will encounter while generating a diff
type kind uint8

const (
	kUnknown kind = iota
	kMapping
	kList
	kTuple
	kSet
	kString
	kNumber
	kBool
	kNull
)

func (k kind) String() string {
	switch k {
	case kMapping:
		return "mapping"
	case kList:
		return "list"
	case kTuple:
		return "tuple"
	case kSet:
		return "set"
	case kString:
		return "string"
	case kNumber:
		return "number"
	case kBool:
		return "bool"
	case kNull:
		return "null"
	}
	return "unknown"
}

// kindOf classifies a normalized document value
func kindOf(v interface{}) kind {
	switch v.(type) {
	case map[string]interface{}:
		return kMapping
	case []interface{}:
		return kList
	case Tuple:
		return kTuple
	case Set:
		return kSet
	case string:
		return kString
	case int64, float64:
		return kNumber
	case bool:
		return kBool
	case nil:
		return kNull
	}
	return kUnknown
}

// isSequence reports whether v is a list or a tuple
func isSequence(v interface{}) bool {
	k := kindOf(v)
	return k == kList || k == kTuple
}

// Tuple is an ordered sequence that keeps its container type through a patch.
// JSON has no tuples, so tuples decode as plain lists after a round trip
type Tuple []interface{}

// Set is an unordered collection of unique document values. Member order
// carries no meaning, two sets are equal when they hold the same members
type Set []interface{}

// NewSet creates a set from vals, dropping duplicates
func NewSet(vals ...interface{}) Set {
	s := make(Set, 0, len(vals))
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		key := fingerprint(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		s = append(s, v)
	}
	return s
}

// Contains reports whether v is a member of s
func (s Set) Contains(v interface{}) bool {
	key := fingerprint(v)
	for _, m := range s {
		if fingerprint(m) == key {
			return true
		}
	}
	return false
}

// Equal reports whether s and o hold the same members, regardless of order
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	idx := s.index()
	for _, m := range o {
		if _, ok := idx[fingerprint(m)]; !ok {
			return false
		}
	}
	return true
}

// index maps member fingerprints to their position in s
func (s Set) index() map[string]int {
	idx := make(map[string]int, len(s))
	for i, m := range s {
		idx[fingerprint(m)] = i
	}
	return idx
}

// difference returns the members of s that are not in o, in s order
func (s Set) difference(o Set) Set {
	idx := o.index()
	d := Set{}
	for _, m := range s {
		if _, ok := idx[fingerprint(m)]; !ok {
			d = append(d, m)
		}
	}
	return d
}

// NewHash returns a new hash interface, wrapped in a function for easy
// hash algorithm switching, package consumers can override NewHash
// with their own desired hash.Hash implementation if the value space is
// particularly large. default is 64-bit xxhash for fast, cheap,
// (non-cryptographic) hashing
var NewHash = func() hash.Hash {
	return xxhash.New()
}

// hashStr converts a hash sum to a string using hex encoding
// localized here for easy encoding swapping
func hashStr(sum []byte) string {
	return hex.EncodeToString(sum)
}

// fingerprint computes a structural identity for a value. values that compare
// equal produce the same fingerprint, including int64(1) and float64(1)
func fingerprint(v interface{}) string {
	h := NewHash()
	writeCanonical(h, v)
	return hashStr(h.Sum(nil))
}

// writeCanonical writes a type-tagged encoding of v. mapping keys are sorted
// and set members are ordered by their own fingerprint
func writeCanonical(w io.Writer, v interface{}) {
	switch x := v.(type) {
	case nil:
		io.WriteString(w, "n")
	case bool:
		if x {
			io.WriteString(w, "t")
		} else {
			io.WriteString(w, "f")
		}
	case int64:
		io.WriteString(w, "#"+strconv.FormatInt(x, 10)+";")
	case float64:
		io.WriteString(w, "#"+formatFloat(x)+";")
	case string:
		io.WriteString(w, "s"+strconv.Itoa(len(x))+":"+x)
	case []interface{}:
		io.WriteString(w, "[")
		for _, e := range x {
			writeCanonical(w, e)
		}
		io.WriteString(w, "]")
	case Tuple:
		io.WriteString(w, "(")
		for _, e := range x {
			writeCanonical(w, e)
		}
		io.WriteString(w, ")")
	case Set:
		keys := make([]string, len(x))
		for i, e := range x {
			keys[i] = fingerprint(e)
		}
		sort.Strings(keys)
		io.WriteString(w, "<")
		for _, k := range keys {
			io.WriteString(w, k+";")
		}
		io.WriteString(w, ">")
	case map[string]interface{}:
		io.WriteString(w, "{")
		for _, k := range sortedKeys(x) {
			io.WriteString(w, "s"+strconv.Itoa(len(k))+":"+k)
			writeCanonical(w, x[k])
		}
		io.WriteString(w, "}")
	default:
		fmt.Fprintf(w, "?%T:%v;", v, v)
	}
}

// formatFloat renders integral floats the way integers render so the two
// number kinds share fingerprints
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// equal compares two normalized document values. numbers compare by value
func equal(a, b interface{}) bool {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case kNull:
		return true
	case kBool:
		return a.(bool) == b.(bool)
	case kString:
		return a.(string) == b.(string)
	case kNumber:
		return numEqual(a, b)
	}
	return fingerprint(a) == fingerprint(b)
}

func numEqual(a, b interface{}) bool {
	ai, aInt := a.(int64)
	bi, bInt := b.(int64)
	if aInt && bInt {
		return ai == bi
	}
	return toFloat(a) == toFloat(b)
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return math.NaN()
}

// sameRef reports whether a and b are the same container: one map, or two
// slice headers over the same backing array with the same length
func sameRef(a, b interface{}) bool {
	switch x := a.(type) {
	case map[string]interface{}:
		y, ok := b.(map[string]interface{})
		return ok && x != nil && reflect.ValueOf(x).Pointer() == reflect.ValueOf(y).Pointer()
	case []interface{}:
		y, ok := b.([]interface{})
		return ok && sameSlice(x, y)
	case Tuple:
		y, ok := b.(Tuple)
		return ok && sameSlice(x, y)
	case Set:
		y, ok := b.(Set)
		return ok && sameSlice(x, y)
	}
	return false
}

func sameSlice(a, b []interface{}) bool {
	return len(a) > 0 && len(a) == len(b) && &a[0] == &b[0]
}

// Normalize converts a go value into the document model: mappings become
// map[string]interface{}, slices & arrays become []interface{}, integers
// become int64 & other floats float64. Tuple and Set keep their types.
// values that already conform are returned unchanged, without copying
func Normalize(v interface{}) (interface{}, error) {
	n, _, err := normalize(v)
	return n, err
}

func normalize(v interface{}) (interface{}, bool, error) {
	switch x := v.(type) {
	case nil, string, bool, int64, float64:
		return v, false, nil
	case int:
		return int64(x), true, nil
	case int8:
		return int64(x), true, nil
	case int16:
		return int64(x), true, nil
	case int32:
		return int64(x), true, nil
	case uint8:
		return int64(x), true, nil
	case uint16:
		return int64(x), true, nil
	case uint32:
		return int64(x), true, nil
	case uint:
		return normalizeUint(uint64(x)), true, nil
	case uint64:
		return normalizeUint(x), true, nil
	case float32:
		return float64(x), true, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, false, fmt.Errorf("%w: number %q", ErrUnsupportedType, x.String())
		}
		return f, true, nil
	case time.Time:
		return x.Format(time.RFC3339Nano), true, nil
	case []byte:
		return string(x), true, nil
	case map[string]interface{}:
		return normalizeMap(x)
	case []interface{}:
		out, changed, err := normalizeSlice(x)
		if err != nil || !changed {
			return v, false, err
		}
		return out, true, nil
	case Tuple:
		out, changed, err := normalizeSlice(x)
		if err != nil || !changed {
			return v, false, err
		}
		return Tuple(out), true, nil
	case Set:
		out, changed, err := normalizeSlice(x)
		if err != nil {
			return v, false, err
		}
		// members must be unique even when none needed converting
		set := NewSet(out...)
		if !changed && len(set) == len(x) {
			return v, false, nil
		}
		return set, true, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, e := range x {
			m[fmt.Sprint(k)] = e
		}
		n, _, err := normalizeMap(m)
		return n, true, err
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil, true, nil
		}
		n, _, err := normalize(rv.Elem().Interface())
		return n, true, err
	case reflect.Map:
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		n, _, err := normalizeMap(m)
		return n, true, err
	case reflect.Slice, reflect.Array:
		s := make([]interface{}, rv.Len())
		for i := range s {
			s[i] = rv.Index(i).Interface()
		}
		n, _, err := normalizeSlice(s)
		return n, true, err
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Bool:
		return rv.Bool(), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return normalizeUint(rv.Uint()), true, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true, nil
	}
	return nil, false, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// normalizeUint keeps unsigned values as int64 when they fit, falling back to
// float64 for the top half of the uint64 range
func normalizeUint(u uint64) interface{} {
	i, err := safecast.Conv[int64](u)
	if err != nil {
		return float64(u)
	}
	return i
}

func normalizeMap(x map[string]interface{}) (interface{}, bool, error) {
	var out map[string]interface{}
	for k, e := range x {
		n, changed, err := normalize(e)
		if err != nil {
			return nil, false, fmt.Errorf("key %q: %w", k, err)
		}
		if changed && out == nil {
			out = make(map[string]interface{}, len(x))
			for k2, e2 := range x {
				out[k2] = e2
			}
		}
		if out != nil {
			out[k] = n
		}
	}
	if out == nil {
		return x, false, nil
	}
	return out, true, nil
}

func normalizeSlice(x []interface{}) ([]interface{}, bool, error) {
	var out []interface{}
	for i, e := range x {
		n, changed, err := normalize(e)
		if err != nil {
			return nil, false, fmt.Errorf("index %d: %w", i, err)
		}
		if changed && out == nil {
			out = make([]interface{}, len(x))
			copy(out, x)
		}
		if out != nil {
			out[i] = n
		}
	}
	if out == nil {
		return x, false, nil
	}
	return out, true, nil
}

// countNodes counts every value in a document tree, containers included
func countNodes(v interface{}) int {
	n := 1
	switch x := v.(type) {
	case map[string]interface{}:
		for _, e := range x {
			n += countNodes(e)
		}
	case []interface{}:
		for _, e := range x {
			n += countNodes(e)
		}
	case Tuple:
		for _, e := range x {
			n += countNodes(e)
		}
	case Set:
		for _, e := range x {
			n += countNodes(e)
		}
	}
	return n
}
