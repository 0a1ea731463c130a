package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/formscout/internal/workbook"
	"github.com/JaimeStill/formscout/internal/workflow"
	"github.com/JaimeStill/formscout/pkg/formatting"
)

func newHighlightCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "highlight <workbook.xlsx> <fields.json>",
		Short: "Write a copy of a workbook with the given cells highlighted",
		Long: `highlight fills the listed cells on every sheet. fields.json is either a
structured definition ({"fields": [{"cell_address": ...}]}) or a flat
definition ({"B2": "description"}).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd.ErrOrStderr())

			addresses, err := readAddresses(args[1])
			if err != nil {
				return err
			}

			if output == "" {
				output = highlightedName(args[0])
			}

			res, err := workbook.Highlight(args[0], output, addresses)
			if err != nil {
				return fmt.Errorf("highlight %s: %w", args[0], err)
			}

			if len(res.Skipped) > 0 {
				logger.Warn("skipped malformed addresses", "addresses", res.Skipped)
			}
			logger.Info("workbook highlighted", "output", output, "cells", res.Applied)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output workbook (default: {name}_highlighted.xlsx)")

	return cmd
}

// readAddresses loads cell addresses from a structured or flat definition
// file. Flat keys are returned sorted.
func readAddresses(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fields: %w", err)
	}

	if fs, err := formatting.Parse[workflow.FieldSet](string(data)); err == nil && len(fs.Fields) > 0 {
		return fs.Addresses(), nil
	}

	flat, err := formatting.Parse[map[string]string](string(data))
	if err != nil {
		return nil, fmt.Errorf("parse fields %s: %w", path, err)
	}

	addresses := make([]string, 0, len(flat))
	for addr := range flat {
		addresses = append(addresses, addr)
	}
	slices.Sort(addresses)

	if len(addresses) == 0 {
		return nil, fmt.Errorf("parse fields %s: no cell addresses", path)
	}
	return addresses, nil
}

func highlightedName(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + "_highlighted" + ext
}
