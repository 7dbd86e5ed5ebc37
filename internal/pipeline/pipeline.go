// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the two user actions: turning an uploaded PDF into a
// CvRecord, and turning a (possibly edited) CvRecord back into a PDF.
//
// Only one action runs at a time. A second request while one is in flight
// fails fast with ErrBusy instead of queueing. Nothing is retried; every
// failure ends the action and is returned to the caller, who can turn it
// into a message with Describe.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cvforge/internal/emit"
	"github.com/pdiddy/cvforge/internal/extract"
	"github.com/pdiddy/cvforge/internal/rasterize"
	"github.com/pdiddy/cvforge/internal/record"
	"github.com/pdiddy/cvforge/pkg/types"
)

var (
	// ErrBusy is returned when an action is already running.
	ErrBusy = errors.New("another upload or export is in progress")

	// ErrNoAPIKey is returned by Upload before any work when no key was given.
	ErrNoAPIKey = errors.New("no API key provided")
)

// UploadRequested asks for a PDF to be extracted into a record.
type UploadRequested struct {
	PDF    []byte
	APIKey string
}

// ExportRequested asks for a record to be rendered as a PDF.
type ExportRequested struct {
	Record types.CvRecord
}

// Rasterizer renders PDF pages to images in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([]types.PageImage, error)
}

// Emitter renders a record to PDF bytes.
type Emitter interface {
	Emit(rec types.CvRecord) ([]byte, error)
}

// Pipeline wires the stages together.
type Pipeline struct {
	raster    Rasterizer
	extractor extract.Extractor
	emitter   Emitter
	log       zerolog.Logger

	busy sync.Mutex
}

// New builds a Pipeline from configuration with the production stages.
func New(cfg types.PipelineConfig, log zerolog.Logger) *Pipeline {
	return NewWith(
		rasterize.New(cfg.Raster, log),
		extract.NewClient(cfg.Extraction, log),
		emit.NewDriver(cfg.Render, log),
		log,
	)
}

// NewWith builds a Pipeline from explicit stages.
func NewWith(r Rasterizer, x extract.Extractor, e Emitter, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		raster:    r,
		extractor: x,
		emitter:   e,
		log:       log.With().Str("component", "pipeline").Logger(),
	}
}

// Upload rasterizes the PDF, sends the pages for extraction and parses the
// reply. The returned record is complete: every field is present, possibly
// empty. A re-upload produces a fresh record; nothing is merged.
func (p *Pipeline) Upload(ctx context.Context, req UploadRequested) (types.CvRecord, error) {
	if !p.busy.TryLock() {
		return types.CvRecord{}, ErrBusy
	}
	defer p.busy.Unlock()

	if req.APIKey == "" {
		return types.CvRecord{}, ErrNoAPIKey
	}

	start := time.Now()
	images, err := p.raster.Rasterize(ctx, req.PDF)
	if err != nil {
		return types.CvRecord{}, fmt.Errorf("rasterizing: %w", err)
	}
	p.log.Info().
		Int("bytes", len(req.PDF)).
		Int("pages", len(images)).
		Dur("elapsed", time.Since(start)).
		Msg("pages rendered")

	start = time.Now()
	raw, err := p.extractor.Extract(ctx, images, req.APIKey)
	if err != nil {
		return types.CvRecord{}, fmt.Errorf("extracting: %w", err)
	}
	p.log.Info().
		Int("chars", len(raw)).
		Dur("elapsed", time.Since(start)).
		Msg("extraction complete")

	rec, err := record.Parse(raw)
	if err != nil {
		p.log.Debug().Str("response", raw).Msg("unparseable extraction reply")
		return types.CvRecord{}, fmt.Errorf("parsing: %w", err)
	}
	p.log.Info().
		Int("experience", len(rec.Experience)).
		Int("education", len(rec.Education)).
		Int("skills", len(rec.Skills)).
		Int("certifications", len(rec.Certifications)).
		Msg("record parsed")
	return rec, nil
}

// Export renders the record as a PDF.
func (p *Pipeline) Export(req ExportRequested) ([]byte, error) {
	if !p.busy.TryLock() {
		return nil, ErrBusy
	}
	defer p.busy.Unlock()

	start := time.Now()
	data, err := p.emitter.Emit(record.Normalize(req.Record))
	if err != nil {
		return nil, fmt.Errorf("emitting: %w", err)
	}
	p.log.Info().
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("document generated")
	return data, nil
}
