package main

import (
	"fmt"
	"strconv"

	"github.com/qri-io/jsondiff"
	"github.com/spf13/cobra"
)

func newDiffCmd(opts *rootOptions) *cobra.Command {
	var pretty, stats bool
	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Print the delta turning document A into document B",
		Long: `diff reads two documents and prints the delta that turns the first into the second.
use - in place of a path to read from stdin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd)
			docs, err := readDocuments(cmd.Context(), cmd.InOrStdin(), args...)
			if err != nil {
				return err
			}
			log.Debug("loaded documents", "left", args[0], "leftBytes", len(docs[0]), "right", args[1], "rightBytes", len(docs[1]))

			st := &jsondiff.Stats{}
			extra := []jsondiff.Option{jsondiff.OptionSetStats(st)}
			if pretty {
				extra = append(extra, jsondiff.OptionDump(false))
			}
			d, err := opts.differ(extra...)
			if err != nil {
				return err
			}
			colorTTY, err := opts.colorize(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			delta, err := d.Diff(cmd.Context(), docs[0], docs[1])
			if err != nil {
				return err
			}
			log.Debug("diff complete", "syntax", opts.syntax, "similarity", st.Similarity, "inserts", st.Inserts, "deletes", st.Deletes, "updates", st.Updates)

			if pretty {
				if err := jsondiff.FormatPretty(cmd.OutOrStdout(), delta, colorTTY); err != nil {
					return err
				}
			} else if err := opts.writeOutput(cmd.OutOrStdout(), delta.([]byte)); err != nil {
				return err
			}

			if stats {
				if colorTTY {
					fmt.Fprint(cmd.ErrOrStderr(), jsondiff.FormatPrettyStatsColor(st))
				} else {
					fmt.Fprint(cmd.ErrOrStderr(), jsondiff.FormatPrettyStats(st))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "print a human readable report instead of a delta")
	cmd.Flags().BoolVar(&stats, "stats", false, "print change statistics to stderr")
	return cmd
}

func newSimilarityCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "similarity A B",
		Short: "Print a similarity score between 0 and 1 for two documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := readDocuments(cmd.Context(), cmd.InOrStdin(), args...)
			if err != nil {
				return err
			}
			d, err := opts.differ()
			if err != nil {
				return err
			}
			s, err := d.Similarity(cmd.Context(), docs[0], docs[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(s, 'f', -1, 64))
			return nil
		},
	}
}
