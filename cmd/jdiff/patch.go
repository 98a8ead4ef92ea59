package main

import (
	"github.com/qri-io/jsondiff"
	"github.com/spf13/cobra"
)

func newPatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "patch A DELTA",
		Short: "Apply a delta to document A, printing the result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args, (*jsondiff.Differ).Patch)
		},
	}
}

func newUnpatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unpatch B DELTA",
		Short: "Reverse a symmetric delta on document B, printing the source document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, opts, args, (*jsondiff.Differ).Unpatch)
		},
	}
}

func runApply(cmd *cobra.Command, opts *rootOptions, args []string, apply func(*jsondiff.Differ, interface{}, interface{}) (interface{}, error)) error {
	log := opts.logger(cmd)
	docs, err := readDocuments(cmd.Context(), cmd.InOrStdin(), args...)
	if err != nil {
		return err
	}
	log.Debug("loaded documents", "document", args[0], "delta", args[1])

	d, err := opts.differ()
	if err != nil {
		return err
	}
	out, err := apply(d, docs[0], docs[1])
	if err != nil {
		return err
	}
	return opts.writeOutput(cmd.OutOrStdout(), out.([]byte))
}
