package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/formscout/internal/config"
	"github.com/JaimeStill/formscout/internal/prompts"
	"github.com/JaimeStill/formscout/internal/render"
	"github.com/JaimeStill/formscout/internal/workflow"
)

var errDetectionFailed = errors.New("detection failed")

func newDetectCmd(opts *options) *cobra.Command {
	var (
		outputDir     string
		maxIterations int
	)

	cmd := &cobra.Command{
		Use:   "detect <workbook.xlsx>",
		Short: "Run the detection loop against a local workbook",
		Long: `detect runs the full estimate, highlight, validate, and correct loop.
Artifacts are written to {output-dir}/format_data and the result summary is
printed as JSON. The command exits with status 1 when the run ends in ERROR.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadLocal(opts.configPath)
			if err != nil {
				return err
			}

			if maxIterations == 0 {
				maxIterations = cfg.Workflow.MaxIterations
			}

			logger := opts.logger(cmd.ErrOrStderr())

			capturer, err := render.FromConfig(cfg.Workflow.Render, logger)
			if err != nil {
				return err
			}

			rt := &workflow.Runtime{
				Reasoner: workflow.NewAgentReasoner(cfg.Agent),
				Capturer: capturer,
				Prompts:  prompts.Defaults(),
				Logger:   logger.With("workflow", "detect"),
			}

			result, err := workflow.Execute(cmd.Context(), rt, workflow.Input{
				ExcelFile:     args[0],
				OutputDir:     outputDir,
				MaxIterations: maxIterations,
			})
			if err != nil {
				return err
			}

			if err := printResult(cmd, result); err != nil {
				return err
			}

			if result.Status != workflow.StatusComplete {
				return fmt.Errorf("%w: %s", errDetectionFailed, result.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Artifact directory (default: the workbook's directory)")
	cmd.Flags().IntVarP(&maxIterations, "max-iterations", "n", 0, "Iteration budget (default from config, 5)")

	return cmd
}

type summary struct {
	Status       workflow.RunStatus `json:"status"`
	ErrorMessage string             `json:"error_message,omitempty"`
	Iterations   int                `json:"iterations"`
	DataDir      string             `json:"data_dir"`
	Definition   workflow.FlatMap   `json:"definition"`
}

func printResult(cmd *cobra.Command, result *workflow.Result) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(summary{
		Status:       result.Status,
		ErrorMessage: result.ErrorMessage,
		Iterations:   result.Iterations,
		DataDir:      result.DataDir,
		Definition:   result.Definition,
	})
}
