package jsondiff

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Example() {
	// we'll use the background as our execution context
	ctx := context.Background()

	// start with two slightly different json documents
	aJSON := []byte(`{
		"a": 100,
		"foo": [1,2,3],
		"bar": false,
		"baz": {
			"e": null,
			"g": "apples-and-oranges"
		}
	}`)

	bJSON := []byte(`{
		"a": 99,
		"foo": [1,3,4],
		"bar": false,
		"baz": {
			"e": "thirty-thousand-something-dogecoin",
			"g": "apples-and-oranges"
		}
	}`)

	// create a differ that parses its inputs & encodes its outputs as JSON
	dd := New(OptionLoad(true), OptionDump(true), OptionDumper(JSONDumper(2)))

	// Diff produces a single delta describing the structural changes, in the
	// compact syntax by default
	delta, err := dd.Diff(ctx, aJSON, bJSON)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(delta.([]byte)))

	// applying the delta to the first document reproduces the second
	patched, err := dd.Patch(aJSON, delta)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(patched.([]byte)))
	// Output:
	// {
	//   "a": 99,
	//   "baz": {
	//     "e": "thirty-thousand-something-dogecoin"
	//   },
	//   "foo": {
	//     "$delete": [
	//       1
	//     ],
	//     "$insert": [
	//       [
	//         2,
	//         4
	//       ]
	//     ]
	//   }
	// }
	// {
	//   "a": 99,
	//   "bar": false,
	//   "baz": {
	//     "e": "thirty-thousand-something-dogecoin",
	//     "g": "apples-and-oranges"
	//   },
	//   "foo": [
	//     1,
	//     3,
	//     4
	//   ]
	// }
}

func ExampleSimilarity() {
	a := map[string]interface{}{"a": 1, "b": []interface{}{1, 2, 3}}
	b := map[string]interface{}{"a": 1, "b": []interface{}{1, 3, 4}}

	s, err := Similarity(a, b)
	if err != nil {
		panic(err)
	}
	fmt.Println(s)
	// Output: 0.875
}

func ExampleUnpatch() {
	a := []interface{}{"apples", "pears"}
	b := []interface{}{"apples", "plums", "pears"}

	delta, err := Diff(a, b, OptionSyntax(Symmetric))
	if err != nil {
		panic(err)
	}
	src, err := Unpatch(b, delta, OptionSyntax(Symmetric))
	if err != nil {
		panic(err)
	}
	fmt.Println(src)
	// Output: [apples pears]
}

type TestCase struct {
	description string      // description of what test is checking
	src, dst    string      // express test cases as json strings
	expect      interface{} // expected delta
}

func mustLoad(t *testing.T, s string) interface{} {
	t.Helper()
	v, err := JSONLoader([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// RunTestCases diffs each case, checks the delta, then checks the delta
// patches src into dst, both in memory & after a trip through JSON. syntaxes
// that support it must also unpatch dst back into src
func RunTestCases(t *testing.T, cases []TestCase, opts ...Option) {
	var (
		dd  = New(opts...)
		ctx = context.Background()
	)

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			src := mustLoad(t, c.src)
			dst := mustLoad(t, c.dst)

			diff, err := dd.Diff(ctx, src, dst)
			if err != nil {
				t.Fatalf("Diff error: %s", err)
			}
			if diffDiff := cmp.Diff(c.expect, diff); diffDiff != "" {
				t.Errorf("delta mismatch (-want +got):\n%s", diffDiff)
			}

			patched, err := dd.Patch(src, diff)
			if err != nil {
				t.Fatalf("error patching source: %s", err)
			}
			if diff := cmp.Diff(dst, patched); diff != "" {
				t.Errorf("patched result mismatch (-want +got):\n%s", diff)
			}

			data, err := json.Marshal(dd.Marshal(diff))
			if err != nil {
				t.Fatal(err)
			}
			wire := dd.Unmarshal(mustLoad(t, string(data)))
			patched, err = dd.Patch(src, wire)
			if err != nil {
				t.Fatalf("error patching source with %s: %s", data, err)
			}
			if diff := cmp.Diff(dst, patched); diff != "" {
				t.Errorf("patched result from %s mismatch (-want +got):\n%s", data, diff)
			}

			unpatched, err := dd.Unpatch(dst, diff)
			if errors.Is(err, ErrUnpatchNotSupported) {
				return
			}
			if err != nil {
				t.Fatalf("error unpatching destination: %s", err)
			}
			if diff := cmp.Diff(src, unpatched); diff != "" {
				t.Errorf("unpatched result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompactDiffing(t *testing.T) {
	cases := []TestCase{
		{
			"identical documents",
			`{"a":[1,2],"b":{"c":null}}`,
			`{"a":[1,2],"b":{"c":null}}`,
			Delta{},
		},
		{
			"replace root scalar",
			`1`,
			`2`,
			int64(2),
		},
		{
			"change & add keys",
			`{"a":1,"b":2}`,
			`{"a":1,"b":3,"c":4}`,
			Delta{"b": int64(3), "c": int64(4)},
		},
		{
			"remove key",
			`{"a":1,"b":2}`,
			`{"a":1}`,
			Delta{Delete: []interface{}{"b"}},
		},
		{
			"replace mapping with nothing in common",
			`{"a":1}`,
			`{"b":2}`,
			Delta{Replace: map[string]interface{}{"b": int64(2)}},
		},
		{
			"sequence insert & delete",
			`[1,2,3]`,
			`[1,3,4]`,
			Delta{
				Insert: []interface{}{[]interface{}{2, int64(4)}},
				Delete: []interface{}{1},
			},
		},
		{
			"nested change in sequence",
			`[{"a":1,"b":2}]`,
			`[{"a":1,"b":3}]`,
			Delta{0: Delta{"b": int64(3)}},
		},
		{
			"nested change with shifted positions",
			`[1,{"x":1},3]`,
			`[{"x":2},3,5]`,
			Delta{
				0:      Delta{"x": int64(2)},
				Insert: []interface{}{[]interface{}{2, int64(5)}},
				Delete: []interface{}{0},
			},
		},
		{
			"sequence with nothing in common",
			`[1]`,
			`["1"]`,
			[]interface{}{"1"},
		},
		{
			"sequence to mapping",
			`[1]`,
			`{"a":1}`,
			Delta{Replace: map[string]interface{}{"a": int64(1)}},
		},
		{
			"deeply nested",
			`{"a":{"b":{"c":[1,2]}},"d":true}`,
			`{"a":{"b":{"c":[1,2,3]}},"d":true}`,
			Delta{"a": Delta{"b": Delta{"c": Delta{Insert: []interface{}{[]interface{}{2, int64(3)}}}}}},
		},
	}

	RunTestCases(t, cases)
}

func TestExplicitDiffing(t *testing.T) {
	cases := []TestCase{
		{
			"identical documents",
			`{"a":[1,2],"b":{"c":null},"d":"$e"}`,
			`{"a":[1,2],"b":{"c":null},"d":"$e"}`,
			Delta{},
		},
		{
			"change & add keys",
			`{"a":1,"b":2}`,
			`{"a":1,"b":3,"c":4}`,
			Delta{
				Insert: map[string]interface{}{"c": int64(4)},
				Update: Delta{"b": int64(3)},
			},
		},
		{
			"remove key",
			`{"a":1,"b":2}`,
			`{"a":1}`,
			Delta{Delete: []interface{}{"b"}},
		},
		{
			"replace mapping with nothing in common",
			`{"a":1}`,
			`{"b":2}`,
			map[string]interface{}{"b": int64(2)},
		},
		{
			"sequence insert & delete",
			`[1,2,3]`,
			`[1,3,4]`,
			Delta{
				Insert: []interface{}{[]interface{}{2, int64(4)}},
				Delete: []interface{}{1},
			},
		},
		{
			"nested update",
			`{"a":{"x":1,"y":2},"b":[1]}`,
			`{"a":{"x":1,"y":3},"b":[1]}`,
			Delta{Update: Delta{"a": Delta{Update: Delta{"y": int64(3)}}}},
		},
	}

	RunTestCases(t, cases, OptionSyntax(Explicit))
}

func TestSymmetricDiffing(t *testing.T) {
	cases := []TestCase{
		{
			"identical documents",
			`{"a":[1,2],"b":{"c":null},"d":"$e"}`,
			`{"a":[1,2],"b":{"c":null},"d":"$e"}`,
			Delta{},
		},
		{
			"replace root scalar",
			`1`,
			`2`,
			[]interface{}{int64(1), int64(2)},
		},
		{
			"change & add keys",
			`{"a":1,"b":2}`,
			`{"a":1,"b":3,"c":4}`,
			Delta{
				"b":    []interface{}{int64(2), int64(3)},
				Insert: map[string]interface{}{"c": int64(4)},
			},
		},
		{
			"remove key",
			`{"a":1,"b":2}`,
			`{"a":1}`,
			Delta{Delete: map[string]interface{}{"b": int64(2)}},
		},
		{
			"replace mapping with nothing in common",
			`{"a":1}`,
			`{"b":2}`,
			[]interface{}{
				map[string]interface{}{"a": int64(1)},
				map[string]interface{}{"b": int64(2)},
			},
		},
		{
			"nested change with shifted positions",
			`[1,{"x":1},3]`,
			`[{"x":2},3,5]`,
			Delta{
				0:      Delta{"x": []interface{}{int64(1), int64(2)}},
				Insert: []interface{}{[]interface{}{2, int64(5)}},
				Delete: []interface{}{[]interface{}{0, int64(1)}},
			},
		},
		{
			"several deletes & inserts",
			`["a","b","c","d","e"]`,
			`["b","x","d","y","z"]`,
			Delta{
				Insert: []interface{}{
					[]interface{}{1, "x"},
					[]interface{}{3, "y"},
					[]interface{}{4, "z"},
				},
				Delete: []interface{}{
					[]interface{}{0, "a"},
					[]interface{}{2, "c"},
					[]interface{}{4, "e"},
				},
			},
		},
	}

	RunTestCases(t, cases, OptionSyntax(Symmetric))
}

func TestSetDiffing(t *testing.T) {
	a := NewSet(1, 2, 3)
	b := NewSet(2, 3, 4)

	cases := []struct {
		description string
		syntax      Syntax
		a, b        interface{}
		expect      interface{}
		patched     interface{}
	}{
		{"compact members", Compact, a, b,
			Delta{Discard: Set{int64(1)}, Add: Set{int64(4)}},
			Set{int64(2), int64(3), int64(4)},
		},
		{"symmetric members", Symmetric, a, b,
			Delta{Discard: Set{int64(1)}, Add: Set{int64(4)}},
			Set{int64(2), int64(3), int64(4)},
		},
		{"equal regardless of order", Compact, NewSet(1, 2), NewSet(2, 1),
			Delta{},
			Set{int64(1), int64(2)},
		},
		{"every member removed", Compact, NewSet(1), NewSet(2),
			Set{int64(2)},
			Set{int64(2)},
		},
		{"symmetric replacement", Symmetric, NewSet(1), NewSet(2),
			[]interface{}{Set{int64(1)}, Set{int64(2)}},
			Set{int64(2)},
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			dd := New(OptionSyntax(c.syntax))
			diff, err := dd.Diff(context.Background(), c.a, c.b)
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(c.expect, diff); d != "" {
				t.Errorf("delta mismatch (-want +got):\n%s", d)
			}
			patched, err := dd.Patch(c.a, diff)
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(c.patched, patched); d != "" {
				t.Errorf("patched result mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestTupleDiffing(t *testing.T) {
	a := Tuple{int64(1), int64(2)}
	b := Tuple{int64(1), int64(3)}

	diff, err := Diff(a, b)
	if err != nil {
		t.Fatal(err)
	}
	expect := Delta{
		Insert: []interface{}{[]interface{}{1, int64(3)}},
		Delete: []interface{}{1},
	}
	if d := cmp.Diff(expect, diff); d != "" {
		t.Errorf("delta mismatch (-want +got):\n%s", d)
	}

	patched, err := Patch(a, diff)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(b, patched); d != "" {
		t.Errorf("patched result mismatch (-want +got):\n%s", d)
	}

	// lists & tuples never diff structurally against each other
	diff, err = Diff([]interface{}{int64(1)}, Tuple{int64(1)})
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(Tuple{int64(1)}, diff); d != "" {
		t.Errorf("list/tuple delta mismatch (-want +got):\n%s", d)
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		description string
		a, b        interface{}
		expect      float64
	}{
		{"equal scalars", "a", "a", 1},
		{"unequal scalars", "a", "b", 0},
		{"numbers compare by value", int64(1), float64(1), 1},
		{"bool is not a number", true, int64(1), 0},
		{"empty sequences", []interface{}{}, []interface{}{}, 1},
		{"empty mappings", map[string]interface{}{}, map[string]interface{}{}, 1},
		{"sequence edit", []interface{}{1, 2, 3}, []interface{}{1, 3, 4}, 0.5},
		{"insert into empty sequence", []interface{}{}, []interface{}{1}, 0},
		{"mapping without common keys",
			map[string]interface{}{"a": 1},
			map[string]interface{}{"b": 1},
			0,
		},
		{"mapping with one changed key",
			map[string]interface{}{"a": 1},
			map[string]interface{}{"a": 2},
			0.5,
		},
		{"set members", NewSet(1, 2, 3), NewSet(2, 3, 4), 0.5},
		{"set members paired by similarity",
			NewSet(map[string]interface{}{"a": 1, "b": 2}),
			NewSet(map[string]interface{}{"a": 1, "b": 3}),
			0.375,
		},
		{"duplicate set members count once",
			Set{int64(1), int64(1), int64(2)},
			Set{int64(1), int64(3)},
			1.0 / 3,
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			got, err := Similarity(c.a, c.b)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-c.expect) > 1e-9 {
				t.Errorf("similarity mismatch. want: %f. got: %f", c.expect, got)
			}
		})
	}
}

func TestIdenticalDocuments(t *testing.T) {
	docs := []string{
		`null`,
		`"$delete"`,
		`[]`,
		`{}`,
		`[1,[2,3],{"a":4}]`,
		`{"a":[1,2],"b":{"c":null,"$insert":[true]}}`,
	}

	for _, name := range SyntaxNames() {
		for _, doc := range docs {
			t.Run(name+" "+doc, func(t *testing.T) {
				a, b := mustLoad(t, doc), mustLoad(t, doc)
				s, err := Similarity(a, b, OptionSyntaxName(name))
				if err != nil {
					t.Fatal(err)
				}
				if s != 1.0 {
					t.Errorf("expected similarity 1, got: %f", s)
				}
				delta, err := Diff(a, b, OptionSyntaxName(name))
				if err != nil {
					t.Fatal(err)
				}
				if diff := cmp.Diff(Delta{}, delta); diff != "" {
					t.Errorf("expected an empty delta (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestDiffIsDeterministic(t *testing.T) {
	a := mustLoad(t, `{"body":[["Avatar ",178],["Spectre ",148],["John Carter ",132]],"meta":{"title":"example movie data","tags":["a","b"]},"qri":"ds:0"}`)
	b := mustLoad(t, `{"body":[["Avatar ",178],["The Dark Knight Rises ",164],["Spectre ",149],["Tangled ",100]],"meta":{"title":"different title","tags":["b","c"]},"name":"test_ds"}`)

	for _, s := range []Syntax{Compact, Explicit, Symmetric} {
		first, err := Diff(a, b, OptionSyntax(s), OptionDump(true))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 50; i++ {
			got, err := Diff(a, b, OptionSyntax(s), OptionDump(true))
			if err != nil {
				t.Fatal(err)
			}
			if string(first.([]byte)) != string(got.([]byte)) {
				t.Fatalf("run %d produced a different delta:\nfirst: %s\ngot:   %s", i, first, got)
			}
		}
	}
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	src := `{"a":[1,{"x":1},3],"b":{"c":true}}`
	dst := `{"a":[{"x":2},3,5],"b":{}}`
	a, b := mustLoad(t, src), mustLoad(t, dst)

	for _, s := range []Syntax{Compact, Explicit, Symmetric} {
		dd := New(OptionSyntax(s))
		delta, err := dd.Diff(context.Background(), a, b)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := dd.Patch(a, delta); err != nil {
			t.Fatal(err)
		}
		if _, err := dd.Unpatch(b, delta); err != nil && !errors.Is(err, ErrUnpatchNotSupported) {
			t.Fatal(err)
		}
	}

	if d := cmp.Diff(mustLoad(t, src), a); d != "" {
		t.Errorf("source was modified (-want +got):\n%s", d)
	}
	if d := cmp.Diff(mustLoad(t, dst), b); d != "" {
		t.Errorf("destination was modified (-want +got):\n%s", d)
	}
}

func TestDiffCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Diff(ctx, []interface{}{1, 2, 3}, []interface{}{2, 3, 4})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
	_, err = New().Similarity(ctx, map[string]interface{}{"a": []interface{}{1}}, map[string]interface{}{"a": []interface{}{2}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled from nested sequence, got: %v", err)
	}
}

func TestOptions(t *testing.T) {
	if _, err := Diff(1, 2, OptionSyntaxName("verbose")); !errors.Is(err, ErrUnknownSyntax) {
		t.Errorf("expected ErrUnknownSyntax, got: %v", err)
	}
	if _, err := Patch(1, 2, OptionSyntaxName("verbose")); !errors.Is(err, ErrUnknownSyntax) {
		t.Errorf("expected ErrUnknownSyntax from patch, got: %v", err)
	}
	if _, err := Diff(1, 2, OptionLoad(true)); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType loading an int, got: %v", err)
	}
	if _, err := Diff(make(chan int), 2); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType diffing a channel, got: %v", err)
	}

	got, err := Diff(`[1,2]`, `[1,2,3]`, OptionLoad(true), OptionMarshal(true))
	if err != nil {
		t.Fatal(err)
	}
	expect := Delta{
		"$insert": []interface{}{[]interface{}{2, int64(3)}},
	}
	if d := cmp.Diff(expect, got); d != "" {
		t.Errorf("marshalled delta mismatch (-want +got):\n%s", d)
	}

	names := SyntaxNames()
	if d := cmp.Diff([]string{"compact", "explicit", "symmetric"}, names); d != "" {
		t.Errorf("syntax names mismatch (-want +got):\n%s", d)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		description string
		in          interface{}
		expect      interface{}
	}{
		{"typed map", map[string]int{"a": 1}, map[string]interface{}{"a": int64(1)}},
		{"typed slice", []string{"x", "y"}, []interface{}{"x", "y"}},
		{"small unsigned", uint8(7), int64(7)},
		{"huge unsigned", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"float32", float32(1.5), float64(1.5)},
		{"json number", json.Number("12"), int64(12)},
		{"interface keys", map[interface{}]interface{}{1: "a"}, map[string]interface{}{"1": "a"}},
		{"nested", []interface{}{map[string]interface{}{"a": []int{1}}},
			[]interface{}{map[string]interface{}{"a": []interface{}{int64(1)}}},
		},
		{"set duplicates", Set{int64(1), int64(1), int64(2)}, Set{int64(1), int64(2)}},
		{"set duplicates after conversion", Set{1, int64(1)}, Set{int64(1)}},
		{"set of unique members", Set{int64(2), "2"}, Set{int64(2), "2"}},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			got, err := Normalize(c.in)
			if err != nil {
				t.Fatal(err)
			}
			if d := cmp.Diff(c.expect, got); d != "" {
				t.Errorf("result mismatch (-want +got):\n%s", d)
			}
		})
	}
}
