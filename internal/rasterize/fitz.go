// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rasterize

import (
	"bytes"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// FitzOpener opens documents with MuPDF through go-fitz.
type FitzOpener struct{}

// Open implements Opener.
func (FitzOpener) Open(pdf []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, err
	}
	return &fitzDocument{doc: doc}, nil
}

// fitzDocument adapts *fitz.Document. go-fitz serializes access to the
// MuPDF context internally; PNG encoding happens outside that lock, which
// is where extra workers pay off.
type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPage() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) RenderPNG(page int, dpi float64) ([]byte, int, int, error) {
	img, err := d.doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, 0, 0, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, 0, 0, err
	}
	b := img.Bounds()
	return buf.Bytes(), b.Dx(), b.Dy(), nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
