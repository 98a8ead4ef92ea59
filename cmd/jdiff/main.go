// Command jdiff diffs, patches & compares structured documents from the
// command line
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/qri-io/jsondiff"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	syntax  string
	format  string
	indent  int
	color   string
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "jdiff",
		Short:        "Structural diff & patch for JSON-like documents",
		Long:         `jdiff computes deltas between JSON, YAML, TOML or MessagePack documents, applies them and reverses them`,
		Version:      version,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.syntax, "syntax", "compact", fmt.Sprintf("delta syntax %v", jsondiff.SyntaxNames()))
	flags.StringVar(&opts.format, "format", "json", fmt.Sprintf("document & delta format %v", jsondiff.FormatNames()))
	flags.IntVar(&opts.indent, "indent", 0, "indent json output by this many spaces")
	flags.StringVar(&opts.color, "color", "auto", "colorize output (auto|on|off)")
	flags.BoolVar(&opts.verbose, "verbose", false, "log debug information to stderr")

	cmd.AddCommand(
		newDiffCmd(opts),
		newPatchCmd(opts),
		newUnpatchCmd(opts),
		newSimilarityCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// differ builds a Differ that loads & dumps in the configured format
func (o *rootOptions) differ(extra ...jsondiff.Option) (*jsondiff.Differ, error) {
	syntax, err := jsondiff.SyntaxByName(o.syntax)
	if err != nil {
		return nil, err
	}
	loader, dumper, err := jsondiff.FormatByName(o.format, o.indent)
	if err != nil {
		return nil, err
	}
	opts := []jsondiff.Option{
		jsondiff.OptionSyntax(syntax),
		jsondiff.OptionLoad(true),
		jsondiff.OptionDump(true),
		jsondiff.OptionLoader(loader),
		jsondiff.OptionDumper(dumper),
	}
	return jsondiff.New(append(opts, extra...)...), nil
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
}

// colorize resolves the --color flag against the command's output
func (o *rootOptions) colorize(w io.Writer) (bool, error) {
	switch o.color {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		f, ok := w.(*os.File)
		return ok && isTerminal(f), nil
	}
	return false, fmt.Errorf("invalid --color value %q, expected auto, on or off", o.color)
}

// writeOutput writes dumped output, ending text formats with a newline
func (o *rootOptions) writeOutput(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return err
	}
	if o.format == "json" {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
