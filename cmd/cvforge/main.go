// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the cvforge CLI.
//
// cvforge reads a CV from a PDF with a multimodal model, keeps the result in
// an editable form file and renders the form back into a clean PDF.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cvforge/internal/logging"
	"github.com/pdiddy/cvforge/internal/secrets"
	"github.com/pdiddy/cvforge/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is configured in PersistentPreRunE once flags and config are known.
var logger = zerolog.Nop()

// rootCmd is the base command for the cvforge CLI.
var rootCmd = &cobra.Command{
	Use:   "cvforge",
	Short: "Extract a CV from PDF, edit it as data, render it again",
	Long: `cvforge turns a CV in PDF form into structured data and back.

  extract   render each page, send the pages to Gemini and save the reply as
            an editable YAML or JSON form file
  render    lay out a form file as a single-column A4 PDF
  convert   extract and render in one step

The Gemini API key is read from --api-key, CVFORGE_API_KEY, GEMINI_API_KEY
or .secrets/gemini-api-key, in that order. A .env file in the working
directory is loaded first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		logger = logging.New(pipelineConfig().Log, os.Stderr)

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug().Str("file", f).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cvforge.yaml or ~/.config/cvforge/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	setDefaults(types.DefaultPipelineConfig())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cvforge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cvforge"))
		}
	}

	viper.SetEnvPrefix("CVFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// setDefaults registers every configuration key with its default so that
// environment variables and config files can override any of them.
func setDefaults(d types.PipelineConfig) {
	viper.SetDefault("raster.scale", d.Raster.Scale)
	viper.SetDefault("raster.workers", d.Raster.Workers)

	viper.SetDefault("extraction.model", d.Extraction.Model)
	viper.SetDefault("extraction.endpoint", d.Extraction.Endpoint)
	viper.SetDefault("extraction.timeout", d.Extraction.Timeout)
	viper.SetDefault("extraction.user_agent", d.Extraction.UserAgent)

	viper.SetDefault("render.output", d.Render.Output)
	viper.SetDefault("render.font_family", d.Render.FontFamily)
	viper.SetDefault("render.layout.page_width", d.Render.Layout.PageWidth)
	viper.SetDefault("render.layout.margin", d.Render.Layout.Margin)
	viper.SetDefault("render.layout.top", d.Render.Layout.Top)
	viper.SetDefault("render.layout.line_height", d.Render.Layout.LineHeight)
	viper.SetDefault("render.layout.header_threshold", d.Render.Layout.HeaderThreshold)
	viper.SetDefault("render.layout.entry_threshold", d.Render.Layout.EntryThreshold)
	viper.SetDefault("render.layout.languages_threshold", d.Render.Layout.LanguagesThreshold)

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)
}

// pipelineConfig builds the effective configuration from viper.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Raster: types.RasterConfig{
			Scale:   viper.GetFloat64("raster.scale"),
			Workers: viper.GetInt("raster.workers"),
		},
		Extraction: types.ExtractionConfig{
			AIConfig: types.AIConfig{
				Model: viper.GetString("extraction.model"),
			},
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("extraction.timeout"),
				UserAgent: viper.GetString("extraction.user_agent"),
			},
			Endpoint: viper.GetString("extraction.endpoint"),
		},
		Render: types.RenderConfig{
			Layout: types.LayoutConfig{
				PageWidth:          viper.GetFloat64("render.layout.page_width"),
				Margin:             viper.GetFloat64("render.layout.margin"),
				Top:                viper.GetFloat64("render.layout.top"),
				LineHeight:         viper.GetFloat64("render.layout.line_height"),
				HeaderThreshold:    viper.GetFloat64("render.layout.header_threshold"),
				EntryThreshold:     viper.GetFloat64("render.layout.entry_threshold"),
				LanguagesThreshold: viper.GetFloat64("render.layout.languages_threshold"),
			},
			FontFamily: viper.GetString("render.font_family"),
			Output:     viper.GetString("render.output"),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
}

// apiKey resolves the extraction key for cmd.
func apiKey(cmd *cobra.Command) string {
	flag, _ := cmd.Flags().GetString("api-key")
	key, src := secrets.ResolveAPIKey(flag, os.Getenv, loadedSecrets)
	if src != secrets.SourceNone {
		logger.Debug().Str("source", string(src)).Msg("using API key")
	}
	return key
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
