// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rasterize renders every page of a PDF into a PNG image.
//
// The byte buffer is first checked with pdfcpu, which rejects structurally
// broken files that MuPDF would otherwise repair silently. Pages are then
// rendered by go-fitz at 72*Scale DPI. Rendering may run on several workers,
// but each page is written into its own slot, so the result is always
// ordered 1..N.
package rasterize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/cvforge/pkg/types"
)

// baseDPI is the PDF user-space resolution: one point per pixel at scale 1.
const baseDPI = 72

// DocumentParseError reports a byte buffer that is not a usable PDF. It is
// terminal for the upload; the user has to supply a different file.
type DocumentParseError struct {
	Err error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("cannot parse PDF document: %v", e.Err)
}

func (e *DocumentParseError) Unwrap() error {
	return e.Err
}

// Document is an opened PDF that can render individual pages.
type Document interface {
	// NumPage returns the number of pages.
	NumPage() int

	// RenderPNG renders the zero-based page at dpi and returns the PNG
	// bytes and pixel dimensions. Implementations must be safe for
	// concurrent use.
	RenderPNG(page int, dpi float64) (data []byte, width, height int, err error)

	Close() error
}

// Opener opens PDF bytes for rendering.
type Opener interface {
	Open(pdf []byte) (Document, error)
}

// Rasterizer turns PDF bytes into ordered page images.
type Rasterizer struct {
	opener  Opener
	scale   float64
	workers int
	log     zerolog.Logger

	// preflight validates the buffer before opening it. Tests replace it
	// when the opener is a fake.
	preflight func(pdf []byte) (int, error)
}

// New returns a Rasterizer backed by go-fitz.
func New(cfg types.RasterConfig, log zerolog.Logger) *Rasterizer {
	return NewWithOpener(FitzOpener{}, cfg, log)
}

// NewWithOpener returns a Rasterizer that renders through opener.
func NewWithOpener(opener Opener, cfg types.RasterConfig, log zerolog.Logger) *Rasterizer {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 2
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Rasterizer{
		opener:    opener,
		scale:     scale,
		workers:   workers,
		log:       log.With().Str("component", "rasterize").Logger(),
		preflight: PageCount,
	}
}

// Rasterize renders all pages of pdf. Image i of the result has Index i+1.
func (r *Rasterizer) Rasterize(ctx context.Context, pdf []byte) ([]types.PageImage, error) {
	start := time.Now()

	if _, err := r.preflight(pdf); err != nil {
		return nil, err
	}

	doc, err := r.opener.Open(pdf)
	if err != nil {
		return nil, &DocumentParseError{Err: err}
	}
	defer doc.Close()

	n := doc.NumPage()
	if n == 0 {
		return nil, &DocumentParseError{Err: errors.New("document has no pages")}
	}

	dpi := baseDPI * r.scale
	images := make([]types.PageImage, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, w, h, err := doc.RenderPNG(i, dpi)
			if err != nil {
				return &DocumentParseError{Err: fmt.Errorf("rendering page %d: %w", i+1, err)}
			}
			images[i] = types.PageImage{
				Index:    i + 1,
				Width:    w,
				Height:   h,
				MIMEType: types.MIMETypePNG,
				Data:     data,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.log.Debug().
		Int("pages", n).
		Float64("dpi", dpi).
		Int("workers", r.workers).
		Dur("elapsed", time.Since(start)).
		Msg("rasterized document")
	return images, nil
}

// PageCount checks that pdf is a well-formed PDF and returns its page count.
// Any failure is a *DocumentParseError.
func PageCount(pdf []byte) (int, error) {
	if len(pdf) == 0 {
		return 0, &DocumentParseError{Err: errors.New("empty input")}
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(bytes.NewReader(pdf), conf)
	if err != nil {
		return 0, &DocumentParseError{Err: err}
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return 0, &DocumentParseError{Err: err}
	}
	if pctx.PageCount == 0 {
		return 0, &DocumentParseError{Err: errors.New("document has no pages")}
	}
	return pctx.PageCount, nil
}
