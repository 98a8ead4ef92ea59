package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// stdinPath names standard input in place of a file path
const stdinPath = "-"

// readDocuments reads every path concurrently, returning contents in argument
// order. at most one path may be stdin
func readDocuments(ctx context.Context, stdin io.Reader, paths ...string) ([][]byte, error) {
	stdinCount := 0
	for _, p := range paths {
		if p == stdinPath {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return nil, fmt.Errorf("only one argument can read from stdin")
	}

	docs := make([][]byte, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := readDocument(stdin, p)
			if err != nil {
				return err
			}
			docs[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func readDocument(stdin io.Reader, path string) ([]byte, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
