// Package jsondiff is a structural differ for JSON-like documents. It computes
// a compact, semantically meaningful delta between two document trees, applies
// deltas to reconstruct the target, and reverses them to reconstruct the
// source when the delta keeps enough of it
//
// Instead of operating on JSON directly, jsondiff operates on document trees
// consisting of the go types created by unmarshaling, four complex types:
//
//	map[string]interface{}
//	[]interface{}
//	Tuple (an ordered sequence that is never diffed against a list)
//	Set (an unordered collection of unique members)
//
// and five scalar types:
//
//	string, int64, float64, bool, nil
//
// values of other go types are converted with Normalize. by operating on
// native go types jsondiff can compare documents encoded in different formats,
// see FormatByName for the builtin JSON, YAML, TOML & MessagePack codecs
//
// Every comparison produces a similarity score between 0 (nothing in common)
// and 1 (equal). mapping scores credit shared keys, sequence scores come from
// a longest common subsequence weighted by element similarity, so an element
// that changed a little is reported as a nested change instead of a delete &
// an insert. set scores pair removed & added members greedily by similarity
//
// Deltas are written in one of three syntaxes:
//
//	Compact   smallest output, can't be reversed
//	Explicit  separates inserted, updated & deleted keys, can't be reversed
//	Symmetric keeps old values, so Unpatch can reverse it
//
// markers in a delta are Symbols in memory. Marshal turns them into
// "$"-prefixed strings for the wire, doubling the prefix of any document
// string that starts with "$", and Unmarshal turns them back
package jsondiff
