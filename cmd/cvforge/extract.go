// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cvforge/internal/form"
	"github.com/pdiddy/cvforge/internal/pipeline"
	"github.com/pdiddy/cvforge/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <cv.pdf>",
	Short: "Extract a CV PDF into an editable form file",
	Long: `Extract renders every page of the PDF, sends the pages to Gemini in page
order and saves the structured reply as a form file. Edit the form file,
then run render to produce the new PDF.

The form file defaults to the PDF name with a .yaml extension. An existing
form file is never overwritten unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("api-key", "", "Gemini API key")
	extractCmd.Flags().StringP("form", "f", "", "form file to write (.yaml, .yml or .json)")
	extractCmd.Flags().String("format", "", "form format when --form is not given: yaml or json")
	extractCmd.Flags().Bool("force", false, "overwrite an existing form file")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	formPath, err := formPathFor(cmd, args[0])
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if _, err := os.Stat(formPath); err == nil {
			return fmt.Errorf("%s already exists; use --force to replace it", formPath)
		}
	}

	p := pipeline.New(pipelineConfig(), logger)
	rec, err := upload(cmd, p, args[0])
	if err != nil {
		return err
	}

	if err := form.WriteFile(formPath, rec, force); err != nil {
		if errors.Is(err, form.ErrExists) {
			return fmt.Errorf("%s already exists; use --force to replace it", formPath)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", formPath)
	return nil
}

// formPathFor returns --form, or the PDF path with its extension replaced.
func formPathFor(cmd *cobra.Command, pdfPath string) (string, error) {
	if p, _ := cmd.Flags().GetString("form"); p != "" {
		if _, err := form.FormatFromPath(p); err != nil {
			return "", err
		}
		return p, nil
	}

	ext := "yaml"
	if s, _ := cmd.Flags().GetString("format"); s != "" {
		f, err := form.ParseFormat(s)
		if err != nil {
			return "", err
		}
		ext = string(f)
	}
	base := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	return base + "." + ext, nil
}

// upload reads the PDF at path and runs the extraction half of the pipeline.
// Failures come back as the user-facing message.
func upload(cmd *cobra.Command, p *pipeline.Pipeline, path string) (rec types.CvRecord, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("reading PDF: %w", err)
	}

	rec, err = p.Upload(cmd.Context(), pipeline.UploadRequested{PDF: data, APIKey: apiKey(cmd)})
	if err != nil {
		logger.Debug().Err(err).Str("file", path).Msg("upload failed")
		return rec, errors.New(pipeline.Describe(err))
	}
	return rec, nil
}
