// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cvforge/internal/form"
	"github.com/pdiddy/cvforge/internal/pipeline"
	"github.com/pdiddy/cvforge/pkg/types"
)

var renderCmd = &cobra.Command{
	Use:   "render <form-file>",
	Short: "Render a form file as a PDF",
	Long: `Render lays out the record in a YAML or JSON form file as a single-column
A4 document and writes it to --output (default CV_Updated.pdf).

Fields missing from the form are treated as empty; sections with no entries
are left out.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output PDF path (default from render.output)")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	rec, err := form.ReadFile(args[0])
	if err != nil {
		return err
	}
	p := pipeline.New(pipelineConfig(), logger)
	return export(cmd, p, rec)
}

// export renders rec and writes it to the output path.
func export(cmd *cobra.Command, p *pipeline.Pipeline, rec types.CvRecord) error {
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = pipelineConfig().Render.Output
	}

	data, err := p.Export(pipeline.ExportRequested{Record: rec})
	if err != nil {
		logger.Debug().Err(err).Msg("export failed")
		return errors.New(pipeline.Describe(err))
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Info().Str("file", out).Int("bytes", len(data)).Msg("document saved")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}
