package jsondiff

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultEscape prefixes markers when a delta is written out
const DefaultEscape = "$"

// escaper translates between in-memory deltas, where markers are Symbols, and
// the wire form, where markers are strings starting with the escape string.
// document strings that happen to start with the escape get it doubled
type escaper struct {
	esc     string
	symbols map[string]Symbol
}

func newEscaper(esc string) escaper {
	if esc == "" {
		esc = DefaultEscape
	}
	symbols := make(map[string]Symbol, len(Symbols))
	for _, s := range Symbols {
		symbols[esc+s.Label()] = s
	}
	return escaper{esc: esc, symbols: symbols}
}

var defaultEscaper = newEscaper(DefaultEscape)

// Marshal escapes a delta with the default escape: markers become
// "$"-prefixed strings and document strings starting with "$" get the prefix
// doubled. positions stay ints and deltas stay Deltas, so
// Unmarshal(Marshal(d)) gives back d
func Marshal(d interface{}) interface{} {
	return defaultEscaper.marshal(d)
}

// Unmarshal reverses Marshal, turning escaped strings back into markers
func Unmarshal(w interface{}) interface{} {
	return defaultEscaper.unmarshal(w)
}

func (e escaper) escapeStr(s string) string {
	if strings.HasPrefix(s, e.esc) {
		return e.esc + s
	}
	return s
}

func (e escaper) key(k interface{}) interface{} {
	switch x := k.(type) {
	case Symbol:
		return e.esc + x.Label()
	case string:
		return e.escapeStr(x)
	}
	return k
}

func (e escaper) marshal(v interface{}) interface{} {
	switch x := v.(type) {
	case Symbol:
		return e.esc + x.Label()
	case string:
		return e.escapeStr(x)
	case Delta:
		out := make(Delta, len(x))
		for k, val := range x {
			out[e.key(k)] = e.marshal(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[e.escapeStr(k)] = e.marshal(val)
		}
		return out
	case []interface{}:
		return e.marshalSlice(x)
	case Tuple:
		return Tuple(e.marshalSlice(x))
	case Set:
		return Set(e.marshalSlice(x))
	}
	return v
}

func (e escaper) marshalSlice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = e.marshal(v)
	}
	return out
}

// unescape reports the marker s names, or s with one escape stripped
func (e escaper) unescape(s string) interface{} {
	if sym, ok := e.symbols[s]; ok {
		return sym
	}
	return strings.TrimPrefix(s, e.esc)
}

func (e escaper) unmarshal(v interface{}) interface{} {
	switch x := v.(type) {
	case string:
		return e.unescape(x)
	case map[string]interface{}:
		var (
			marked bool
			keys   = make([]interface{}, 0, len(x))
			vals   = make([]interface{}, 0, len(x))
		)
		for k, val := range x {
			uk := e.unescape(k)
			if _, ok := uk.(Symbol); ok {
				marked = true
			}
			keys = append(keys, uk)
			vals = append(vals, e.unmarshal(val))
		}
		if marked {
			d := make(Delta, len(keys))
			for i, k := range keys {
				d[k] = vals[i]
			}
			return d
		}
		out := make(map[string]interface{}, len(keys))
		for i, k := range keys {
			out[k.(string)] = vals[i]
		}
		return out
	case Delta:
		out := make(Delta, len(x))
		for k, val := range x {
			if s, ok := k.(string); ok {
				out[e.unescape(s)] = e.unmarshal(val)
				continue
			}
			out[k] = e.unmarshal(val)
		}
		return out
	case []interface{}:
		return e.unmarshalSlice(x)
	case Tuple:
		return Tuple(e.unmarshalSlice(x))
	case Set:
		return Set(e.unmarshalSlice(x))
	}
	return v
}

func (e escaper) unmarshalSlice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = e.unmarshal(v)
	}
	return out
}

// wireForm rewrites a delta for encoders, which need string keys: positions
// become decimal strings & markers are written with the default escape.
// strings are not escaped here, that's Marshal's job
func wireForm(v interface{}) interface{} {
	switch x := v.(type) {
	case Delta:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[formatKey(k)] = wireForm(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = wireForm(val)
		}
		return out
	case []interface{}:
		return wireSlice(x)
	case Tuple:
		return Tuple(wireSlice(x))
	case Set:
		return Set(wireSlice(x))
	}
	return v
}

func wireSlice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = wireForm(v)
	}
	return out
}

// formatKey renders a delta key as a string
func formatKey(k interface{}) string {
	switch x := k.(type) {
	case string:
		return x
	case Symbol:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	}
	return fmt.Sprint(k)
}
