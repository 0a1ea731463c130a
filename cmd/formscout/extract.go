package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/formscout/internal/workbook"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <workbook.xlsx>",
		Short: "Print the text description the model receives for a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := workbook.Extract(args[0])
			if err != nil {
				return fmt.Errorf("extract %s: %w", args[0], err)
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}
