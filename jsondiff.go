package jsondiff

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// Config are any possible configuration parameters for a Differ
type Config struct {
	// Syntax renders & applies deltas, default is Compact
	Syntax Syntax
	// Load parses inputs with Loader before diffing, and the delta before
	// patching. inputs must be []byte, string or io.Reader
	Load bool
	// Dump encodes outputs with Dumper, which implies Marshal for deltas
	Dump bool
	// Marshal escapes markers in diff output, and unescapes deltas handed to
	// Patch & Unpatch
	Marshal bool
	// Loader & Dumper default to JSON
	Loader Loader
	Dumper Dumper
	// EscapeStr prefixes markers on the wire, default is DefaultEscape
	EscapeStr string
	// Provide a non-nil stats pointer & Diff will populate it with data from
	// the diff process. a Differ with Stats set must not be used concurrently
	Stats *Stats
}

// Option is a function that adjusts a config, zero or more Options can be
// passed to New or to the package level functions
type Option func(cfg *Config)

// OptionSyntax sets the syntax deltas are written in
func OptionSyntax(s Syntax) Option {
	return func(cfg *Config) {
		cfg.Syntax = s
	}
}

// OptionSyntaxName sets a builtin syntax by name. unknown names are reported
// by the first call that needs the syntax
func OptionSyntaxName(name string) Option {
	return func(cfg *Config) {
		s, err := SyntaxByName(name)
		if err != nil {
			cfg.Syntax = badSyntax{err}
			return
		}
		cfg.Syntax = s
	}
}

// OptionLoad switches input parsing on or off
func OptionLoad(load bool) Option {
	return func(cfg *Config) {
		cfg.Load = load
	}
}

// OptionDump switches output encoding on or off
func OptionDump(dump bool) Option {
	return func(cfg *Config) {
		cfg.Dump = dump
	}
}

// OptionMarshal switches marker escaping on or off
func OptionMarshal(marshal bool) Option {
	return func(cfg *Config) {
		cfg.Marshal = marshal
	}
}

// OptionLoader sets the function used to parse inputs
func OptionLoader(l Loader) Option {
	return func(cfg *Config) {
		cfg.Loader = l
	}
}

// OptionDumper sets the function used to encode outputs
func OptionDumper(d Dumper) Option {
	return func(cfg *Config) {
		cfg.Dumper = d
	}
}

// OptionEscape sets the string markers are prefixed with on the wire
func OptionEscape(esc string) Option {
	return func(cfg *Config) {
		cfg.EscapeStr = esc
	}
}

// OptionSetStats will set the passed-in stats pointer when Diff is called
func OptionSetStats(st *Stats) Option {
	return func(cfg *Config) {
		cfg.Stats = st
	}
}

// Differ computes, applies & reverses deltas with a fixed configuration. a
// Differ holds no mutable state of its own and is safe for concurrent use,
// unless configured with OptionSetStats
type Differ struct {
	cfg Config
	esc escaper
}

// New creates a Differ, applying options over the defaults: compact syntax,
// no loading or dumping, JSON as the wire format
func New(opts ...Option) *Differ {
	cfg := Config{
		Syntax: Compact,
		Loader: JSONLoader,
		Dumper: JSONDumper(0),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Syntax == nil {
		cfg.Syntax = Compact
	}
	return &Differ{cfg: cfg, esc: newEscaper(cfg.EscapeStr)}
}

// Config returns a copy of the configuration d was created with
func (d *Differ) Config() Config {
	return d.cfg
}

// Diff computes the delta turning a into b, rendered in the configured
// syntax. sequence diffs take time & space proportional to the product of
// the sequence lengths, ctx is checked while they run
func (d *Differ) Diff(ctx context.Context, a, b interface{}) (interface{}, error) {
	r, a, b, err := d.run(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if d.cfg.Stats != nil {
		d.cfg.Stats.record(a, b, r)
	}

	out := r.delta
	if d.cfg.Marshal || d.cfg.Dump {
		out = d.esc.marshal(out)
	}
	if d.cfg.Dump {
		return d.cfg.Dumper(wireForm(out))
	}
	return out, nil
}

// Similarity scores a & b in the range [0, 1], 1 meaning equal
func (d *Differ) Similarity(ctx context.Context, a, b interface{}) (float64, error) {
	r, _, _, err := d.run(ctx, a, b)
	if err != nil {
		return 0, err
	}
	return r.score, nil
}

func (d *Differ) run(ctx context.Context, a, b interface{}) (result, interface{}, interface{}, error) {
	if err := d.syntaxErr(); err != nil {
		return result{}, nil, nil, err
	}
	a, err := d.input(a)
	if err != nil {
		return result{}, nil, nil, fmt.Errorf("left: %w", err)
	}
	b, err = d.input(b)
	if err != nil {
		return result{}, nil, nil, fmt.Errorf("right: %w", err)
	}

	df := &diff{ctx: ctx, syntax: d.cfg.Syntax}
	r := df.obj(a, b)
	if df.err != nil {
		return result{}, nil, nil, df.err
	}
	return r, a, b, nil
}

// Patch applies delta to a, producing the document a delta was computed
// against. a is never modified
func (d *Differ) Patch(a, delta interface{}) (interface{}, error) {
	return d.apply(a, delta, d.cfg.Syntax.Patch)
}

// Unpatch applies delta in reverse to b, producing the source document. only
// syntaxes that keep old values support it
func (d *Differ) Unpatch(b, delta interface{}) (interface{}, error) {
	return d.apply(b, delta, d.cfg.Syntax.Unpatch)
}

func (d *Differ) apply(doc, delta interface{}, patch patchFunc) (interface{}, error) {
	if err := d.syntaxErr(); err != nil {
		return nil, err
	}
	doc, err := d.input(doc)
	if err != nil {
		return nil, err
	}
	// deltas hold markers & positions outside the document model, so they're
	// only parsed, never normalized
	if d.cfg.Load {
		if delta, err = d.input(delta); err != nil {
			return nil, fmt.Errorf("delta: %w", err)
		}
	}
	if d.cfg.Load || d.cfg.Marshal {
		delta = d.esc.unmarshal(delta)
	}

	out, err := patch(doc, delta)
	if err != nil {
		return nil, err
	}
	if d.cfg.Dump {
		return d.cfg.Dumper(out)
	}
	return out, nil
}

// Marshal escapes the markers in delta with the configured escape string
func (d *Differ) Marshal(delta interface{}) interface{} {
	return d.esc.marshal(delta)
}

// Unmarshal reverses Marshal
func (d *Differ) Unmarshal(w interface{}) interface{} {
	return d.esc.unmarshal(w)
}

// input parses v when loading is on, and normalizes it otherwise
func (d *Differ) input(v interface{}) (interface{}, error) {
	if !d.cfg.Load {
		return Normalize(v)
	}
	var data []byte
	switch x := v.(type) {
	case []byte:
		data = x
	case string:
		data = []byte(x)
	case io.Reader:
		buf := &bytes.Buffer{}
		if _, err := buf.ReadFrom(x); err != nil {
			return nil, err
		}
		data = buf.Bytes()
	default:
		return nil, fmt.Errorf("%w: cannot load %T, expected []byte, string or io.Reader", ErrUnsupportedType, v)
	}
	return d.cfg.Loader(data)
}

func (d *Differ) syntaxErr() error {
	if bad, ok := d.cfg.Syntax.(badSyntax); ok {
		return bad.err
	}
	return nil
}

// badSyntax stands in for a syntax name that failed to resolve
type badSyntax struct {
	err error
}

func (badSyntax) EmitSetDiff(a, b Set, s float64, added, removed Set) interface{} {
	return nil
}

func (badSyntax) EmitListDiff(a, b interface{}, s float64, inserted []Edit, changed map[int]interface{}, deleted []Edit) interface{} {
	return nil
}

func (badSyntax) EmitDictDiff(a, b map[string]interface{}, s float64, added, changed, removed map[string]interface{}) interface{} {
	return nil
}

func (badSyntax) EmitValueDiff(a, b interface{}, s float64) interface{} {
	return nil
}

func (s badSyntax) Patch(a, d interface{}) (interface{}, error) {
	return nil, s.err
}

func (s badSyntax) Unpatch(b, d interface{}) (interface{}, error) {
	return nil, s.err
}

// Diff computes the delta turning a into b with a Differ built from opts
func Diff(a, b interface{}, opts ...Option) (interface{}, error) {
	return New(opts...).Diff(context.Background(), a, b)
}

// Similarity scores a & b with a Differ built from opts
func Similarity(a, b interface{}, opts ...Option) (float64, error) {
	return New(opts...).Similarity(context.Background(), a, b)
}

// Patch applies delta to a with a Differ built from opts
func Patch(a, delta interface{}, opts ...Option) (interface{}, error) {
	return New(opts...).Patch(a, delta)
}

// Unpatch reverses delta on b with a Differ built from opts
func Unpatch(b, delta interface{}, opts ...Option) (interface{}, error) {
	return New(opts...).Unpatch(b, delta)
}
