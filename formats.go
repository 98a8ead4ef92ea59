package jsondiff

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Loader parses encoded data into a document
type Loader func(data []byte) (interface{}, error)

// Dumper encodes a document or a marshalled delta
type Dumper func(v interface{}) ([]byte, error)

// JSONLoader decodes a single JSON value. numbers keep integer precision
func JSONLoader(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding json: unexpected data after top-level value")
	}
	return Normalize(v)
}

// JSONDumper encodes JSON, indenting nested values by indent spaces when
// indent is positive
func JSONDumper(indent int) Dumper {
	return func(v interface{}) ([]byte, error) {
		if indent > 0 {
			return json.MarshalIndent(v, "", strings.Repeat(" ", indent))
		}
		return json.Marshal(v)
	}
}

// YAMLLoader decodes a single YAML document
func YAMLLoader(data []byte) (interface{}, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return Normalize(v)
}

// YAMLDumper encodes a YAML document
func YAMLDumper(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TOMLLoader decodes a TOML document, which is always a mapping. dates &
// times become RFC 3339 strings
func TOMLLoader(data []byte) (interface{}, error) {
	var m map[string]interface{}
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("decoding toml: %w", err)
	}
	if m == nil {
		m = map[string]interface{}{}
	}
	return Normalize(m)
}

// TOMLDumper encodes a TOML document. TOML documents are tables, so only
// mappings can be dumped
func TOMLDumper(v interface{}) ([]byte, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: toml can only encode a mapping, got %s", ErrUnsupportedType, kindOf(v))
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encoding toml: %w", err)
	}
	return buf.Bytes(), nil
}

// MsgpackLoader decodes a MessagePack value
func MsgpackLoader(data []byte) (interface{}, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	v, err := dec.DecodeInterface()
	if err != nil {
		return nil, fmt.Errorf("decoding msgpack: %w", err)
	}
	return Normalize(v)
}

// MsgpackDumper encodes a MessagePack value
func MsgpackDumper(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding msgpack: %w", err)
	}
	return buf.Bytes(), nil
}

type format struct {
	load Loader
	dump func(indent int) Dumper
}

var formats = map[string]format{
	"json":    {JSONLoader, JSONDumper},
	"yaml":    {YAMLLoader, func(int) Dumper { return YAMLDumper }},
	"toml":    {TOMLLoader, func(int) Dumper { return TOMLDumper }},
	"msgpack": {MsgpackLoader, func(int) Dumper { return MsgpackDumper }},
}

// FormatByName looks up the loader & dumper of a builtin format. indent only
// applies to JSON
func FormatByName(name string, indent int) (Loader, Dumper, error) {
	f, ok := formats[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f.load, f.dump(indent), nil
}

// FormatNames lists builtin format names, sorted
func FormatNames() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
