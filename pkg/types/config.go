package types

import "time"

// HTTPConfig holds HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds the whole extraction call. Zero means no timeout:
	// the call resolves only when the service answers or the context ends.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cvforge/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RasterConfig holds settings for the rasterization stage.
type RasterConfig struct {
	// Scale is the magnification relative to the PDF's intrinsic page
	// size (default 2). Rendering DPI is 72 * Scale.
	Scale float64 `json:"scale" yaml:"scale"`

	// Workers bounds how many pages render concurrently (default 1).
	Workers int `json:"workers" yaml:"workers"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API. It is passed to each
	// call and never retained by the client.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// Endpoint is the base URL that model names are appended to.
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// LayoutConfig holds the page geometry used by the layout engine. All
// lengths are millimetres in the writer's page coordinate space.
type LayoutConfig struct {
	PageWidth  float64 `json:"page_width" yaml:"page_width"`
	Margin     float64 `json:"margin" yaml:"margin"`
	Top        float64 `json:"top" yaml:"top"`
	LineHeight float64 `json:"line_height" yaml:"line_height"`

	// Overflow thresholds: a y position strictly past the threshold starts
	// a new page before the next heading or entry.
	HeaderThreshold    float64 `json:"header_threshold" yaml:"header_threshold"`
	EntryThreshold     float64 `json:"entry_threshold" yaml:"entry_threshold"`
	LanguagesThreshold float64 `json:"languages_threshold" yaml:"languages_threshold"`
}

// RenderConfig holds settings for document emission.
type RenderConfig struct {
	Layout LayoutConfig `json:"layout" yaml:"layout"`

	// FontFamily is a core PDF font (default "Helvetica").
	FontFamily string `json:"font_family" yaml:"font_family"`

	// Output is the filename the finished document is saved under.
	Output string `json:"output" yaml:"output"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Raster     RasterConfig     `json:"raster" yaml:"raster"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Render     RenderConfig     `json:"render" yaml:"render"`
	Log        LogConfig        `json:"log" yaml:"log"`
}

// DefaultLayoutConfig returns the A4 geometry the CV template was tuned for.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		PageWidth:          210,
		Margin:             20,
		Top:                20,
		LineHeight:         7,
		HeaderThreshold:    250,
		EntryThreshold:     270,
		LanguagesThreshold: 260,
	}
}

// DefaultPipelineConfig returns the configuration used when no config file
// or flag overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Raster: RasterConfig{
			Scale:   2,
			Workers: 1,
		},
		Extraction: ExtractionConfig{
			AIConfig: AIConfig{Model: "gemini-2.5-flash"},
			HTTPConfig: HTTPConfig{
				UserAgent: "cvforge/0.1",
			},
			Endpoint: "https://generativelanguage.googleapis.com/v1beta/models/",
		},
		Render: RenderConfig{
			Layout:     DefaultLayoutConfig(),
			FontFamily: "Helvetica",
			Output:     "CV_Updated.pdf",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
