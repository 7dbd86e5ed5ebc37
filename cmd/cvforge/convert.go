// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/cvforge/internal/pipeline"
)

var convertCmd = &cobra.Command{
	Use:   "convert <cv.pdf>",
	Short: "Extract a CV PDF and render it again in one step",
	Long: `Convert runs extract and render back to back without writing a form
file. Use it when the extracted data needs no manual edits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := pipeline.New(pipelineConfig(), logger)
		rec, err := upload(cmd, p, args[0])
		if err != nil {
			return err
		}
		return export(cmd, p, rec)
	},
}

func init() {
	convertCmd.Flags().String("api-key", "", "Gemini API key")
	convertCmd.Flags().StringP("output", "o", "", "output PDF path (default from render.output)")

	rootCmd.AddCommand(convertCmd)
}
