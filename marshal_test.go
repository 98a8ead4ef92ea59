package jsondiff

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshal(t *testing.T) {
	cases := []struct {
		description string
		delta       interface{}
		expect      interface{}
	}{
		{"markers & positions",
			Delta{0: int64(1), Insert: []interface{}{[]interface{}{1, "x"}}, Delete: []interface{}{2}},
			Delta{
				0:         int64(1),
				"$insert": []interface{}{[]interface{}{1, "x"}},
				"$delete": []interface{}{2},
			},
		},
		{"escaped document keys & values",
			Delta{"$delete": "$x", "plain": "y"},
			Delta{"$$delete": "$$x", "plain": "y"},
		},
		{"nested mappings",
			Delta{"a": map[string]interface{}{"$b": int64(1)}},
			Delta{"a": map[string]interface{}{"$$b": int64(1)}},
		},
		{"sets & tuples keep their kind",
			Delta{Add: Set{"$a"}, "t": Tuple{int64(1)}},
			Delta{"$add": Set{"$$a"}, "t": Tuple{int64(1)}},
		},
		{"scalars pass through", int64(3), int64(3)},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			got := Marshal(c.delta)
			if diff := cmp.Diff(c.expect, got); diff != "" {
				t.Errorf("marshal mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnmarshal(t *testing.T) {
	cases := []struct {
		description string
		wire        interface{}
		expect      interface{}
	}{
		{"markers become symbols",
			map[string]interface{}{"$delete": []interface{}{"b"}, "$$a": "$$x"},
			Delta{Delete: []interface{}{"b"}, "$a": "$x"},
		},
		{"mapping without markers stays a mapping",
			map[string]interface{}{"a": int64(1), "$$b": int64(2)},
			map[string]interface{}{"a": int64(1), "$b": int64(2)},
		},
		{"nested deltas",
			map[string]interface{}{"0": map[string]interface{}{"$replace": map[string]interface{}{"a": int64(1)}}},
			map[string]interface{}{"0": Delta{Replace: map[string]interface{}{"a": int64(1)}}},
		},
		{"unknown marker label is unescaped",
			map[string]interface{}{"$move": int64(1)},
			map[string]interface{}{"move": int64(1)},
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			got := Unmarshal(c.wire)
			if diff := cmp.Diff(c.expect, got); diff != "" {
				t.Errorf("unmarshal mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cases := []struct {
		description string
		delta       interface{}
	}{
		{"sequence delta",
			Delta{
				0:      Delta{"b": int64(3)},
				Insert: []interface{}{[]interface{}{2, "c"}},
				Delete: []interface{}{1},
			},
		},
		{"mapping delta without markers", Delta{"a": int64(1)}},
		{"escaped keys & values",
			Delta{"$delete": "$x", "b": Delta{Replace: map[string]interface{}{"$c": "$$d"}}},
		},
		{"symmetric mapping delta",
			Delta{
				"a":    []interface{}{int64(1), "$2"},
				Insert: map[string]interface{}{"b": true},
				Delete: map[string]interface{}{"$c": nil},
			},
		},
		{"set delta", Delta{Add: Set{"$a", int64(1)}, Discard: Set{2.5}}},
		{"nested positions", Delta{1: Delta{0: "x", Delete: []interface{}{2}}}},
		{"empty delta", Delta{}},
		{"scalar", "$value"},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			if diff := cmp.Diff(c.delta, Unmarshal(Marshal(c.delta))); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			dd := New(OptionEscape("@"))
			if diff := cmp.Diff(c.delta, dd.Unmarshal(dd.Marshal(c.delta))); diff != "" {
				t.Errorf("custom escape round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalledDeltaJSON(t *testing.T) {
	d := Delta{"$a": "$b", 0: Delta{Delete: []interface{}{1}}}
	got, err := json.Marshal(Marshal(d))
	if err != nil {
		t.Fatal(err)
	}
	expect := `{"$$a":"$$b","0":{"$delete":[1]}}`
	if string(got) != expect {
		t.Errorf("json mismatch.\nwant: %s\ngot:  %s", expect, got)
	}
}

func TestDeltaJSON(t *testing.T) {
	d := Delta{
		0:      Delta{"b": int64(3)},
		Insert: []interface{}{[]interface{}{2, "c"}},
		Delete: []interface{}{1},
	}
	got, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	expect := `{"$delete":[1],"$insert":[[2,"c"]],"0":{"b":3}}`
	if string(got) != expect {
		t.Errorf("json mismatch.\nwant: %s\ngot:  %s", expect, got)
	}
}

func TestEscapeCollision(t *testing.T) {
	a := map[string]interface{}{"$delete": int64(1), "keep": "$value"}
	b := map[string]interface{}{"$delete": int64(2), "keep": "$value"}

	delta, err := Diff(a, b, OptionMarshal(true))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Delta{"$$delete": int64(2)}, delta); diff != "" {
		t.Errorf("marshalled delta mismatch (-want +got):\n%s", diff)
	}

	got, err := Patch(a, delta, OptionMarshal(true))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("patched result mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomEscape(t *testing.T) {
	dd := New(OptionEscape("@"), OptionMarshal(true))
	delta, err := dd.Diff(context.Background(), []interface{}{1, 2, 3}, []interface{}{1, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	expect := Delta{
		"@delete": []interface{}{1},
		"@insert": []interface{}{[]interface{}{2, int64(4)}},
	}
	if diff := cmp.Diff(expect, delta); diff != "" {
		t.Errorf("marshalled delta mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(Delta{Delete: []interface{}{1}}, dd.Unmarshal(map[string]interface{}{"@delete": []interface{}{1}})); diff != "" {
		t.Errorf("unmarshal mismatch (-want +got):\n%s", diff)
	}
}
