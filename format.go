package jsondiff

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// palette colors report output. with color off every entry prints plain text
type palette struct {
	neutral, insert, delete, update *color.Color
}

func newPalette(colorTTY bool) palette {
	p := palette{
		neutral: color.New(color.FgWhite),
		insert:  color.New(color.FgGreen),
		delete:  color.New(color.FgRed),
		update:  color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.neutral, p.insert, p.delete, p.update} {
		if colorTTY {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// FormatPrettyString is a convenience wrapper that outputs to a string instead
// of an io.Writer
func FormatPrettyString(delta interface{}, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatPretty(buf, delta, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatPretty writes a text report of a delta to w, one change per line,
// nesting changes inside containers by indentation. if colorTTY is true it
// will add
// red "-" for deletions
// green "+" for insertions
// blue "~" for replacements & values of unknown origin
func FormatPretty(w io.Writer, delta interface{}, colorTTY bool) error {
	p := newPalette(colorTTY)
	d, ok := asDelta(delta)
	if !ok {
		return p.line(w, 0, p.update, "~", "", delta)
	}
	return p.delta(w, 0, d)
}

func (p palette) delta(w io.Writer, indent int, d Delta) error {
	if v, ok := d[Replace]; ok {
		if err := p.line(w, indent, p.update, "~", "", v); err != nil {
			return err
		}
	}
	if v, ok := d[Delete]; ok {
		if err := p.marked(w, indent, p.delete, "-", v); err != nil {
			return err
		}
	}
	if v, ok := d[Discard]; ok {
		if err := p.members(w, indent, p.delete, "-", v); err != nil {
			return err
		}
	}
	if v, ok := d[Insert]; ok {
		if err := p.marked(w, indent, p.insert, "+", v); err != nil {
			return err
		}
	}
	if v, ok := d[Add]; ok {
		if err := p.members(w, indent, p.insert, "+", v); err != nil {
			return err
		}
	}
	if v, ok := d[Update]; ok {
		if upd, ok := asDelta(v); ok {
			if err := p.entries(w, indent, upd); err != nil {
				return err
			}
		}
	}
	return p.entries(w, indent, d)
}

func (p palette) entries(w io.Writer, indent int, d Delta) error {
	for _, e := range d.entries() {
		key := fmt.Sprint(e.key)
		sub, ok := asDelta(e.val)
		switch {
		case !ok:
			if err := p.line(w, indent, p.update, "~", key, e.val); err != nil {
				return err
			}
		case len(sub) == 1 && sub.has(Replace):
			if err := p.line(w, indent, p.update, "~", key, sub[Replace]); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", indent), p.neutral.Sprint(key+":")); err != nil {
				return err
			}
			if err := p.delta(w, indent+1, sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// marked prints the payload of an Insert or Delete marker: a list of
// positions, a list of [pos, value] pairs or a mapping of keys
func (p palette) marked(w io.Writer, indent int, c *color.Color, op string, v interface{}) error {
	if m, err := asMapping(v); err == nil {
		for _, k := range sortedKeys(m) {
			if err := p.line(w, indent, c, op, k, m[k]); err != nil {
				return err
			}
		}
		return nil
	}
	list, _ := asList(v)
	for _, el := range list {
		var err error
		if pair, ok := asList(el); ok && len(pair) == 2 {
			err = p.line(w, indent, c, op, fmt.Sprint(pair[0]), pair[1])
		} else {
			_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", indent), c.Sprint(op+fmt.Sprint(el)))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p palette) members(w io.Writer, indent int, c *color.Color, op string, v interface{}) error {
	list, _ := asList(v)
	for _, m := range list {
		if err := p.line(w, indent, c, op, "", m); err != nil {
			return err
		}
	}
	return nil
}

func (p palette) line(w io.Writer, indent int, c *color.Color, op, key string, v interface{}) error {
	data, err := json.Marshal(Marshal(v))
	if err != nil {
		return err
	}
	label := op + key
	if key != "" {
		label += ":"
	}
	_, err = fmt.Fprintf(w, "%s%s %s\n", strings.Repeat("  ", indent), c.Sprint(label), data)
	return err
}

// FormatPrettyStats prints a string of stats info
func FormatPrettyStats(diffStat *Stats) string {
	return formatStats(diffStat, false)
}

// FormatPrettyStatsColor prints a string of stats info with ANSI colors
func FormatPrettyStatsColor(diffStat *Stats) string {
	return formatStats(diffStat, true)
}

func formatStats(ds *Stats, colorTTY bool) string {
	if ds == nil {
		return "<nil>"
	}
	p := newPalette(colorTTY)
	buf := &bytes.Buffer{}

	elsColor := p.insert
	change := ds.NodeChange()
	elementsWord := "elements"
	sign := "+"
	if change < 0 {
		elsColor = p.delete
		sign = ""
	} else if change == 0 {
		elsColor = p.neutral
		sign = ""
	}
	if change == 1 || change == -1 {
		elementsWord = "element"
	}
	buf.WriteString(fmt.Sprintf("%s %s.", elsColor.Sprintf("%s%d", sign, change), p.neutral.Sprint(elementsWord)))

	buf.WriteString(" " + p.insert.Sprintf("%d %s.", ds.Inserts, plural(ds.Inserts, "insert")))
	buf.WriteString(" " + p.delete.Sprintf("%d %s.", ds.Deletes, plural(ds.Deletes, "delete")))
	buf.WriteString(" " + p.update.Sprintf("%d %s.", ds.Updates, plural(ds.Updates, "update")))
	buf.WriteString(" " + p.neutral.Sprintf("%.0f%% similar.", ds.Similarity*100))

	buf.WriteRune('\n')
	return buf.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
