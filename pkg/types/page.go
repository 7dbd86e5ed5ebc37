// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MIMETypePNG is the only image encoding the rasterizer produces.
const MIMETypePNG = "image/png"

// PageImage is one rendered PDF page.
type PageImage struct {
	// Index is the 1-based page number. A rasterized document always
	// yields indexes 1..N in order.
	Index int `json:"index" yaml:"index"`

	// Width and Height are in device pixels.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// MIMEType describes Data (always MIMETypePNG today).
	MIMEType string `json:"mime_type" yaml:"mime_type"`

	// Data is the encoded image.
	Data []byte `json:"-" yaml:"-"`
}

// ExtractionRequest pairs the instructional prompt with the ordered page
// images of one upload. It is built once and not modified afterwards.
type ExtractionRequest struct {
	Prompt string
	Images []PageImage
}
