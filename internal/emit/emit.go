// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package emit renders a CvRecord into PDF bytes.
//
// The Driver owns one fpdf document per call. It measures text with that
// document's font metrics, runs the layout engine and replays the resulting
// instructions onto the document. Nothing is written to disk here.
package emit

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/pdiddy/cvforge/internal/layout"
	"github.com/pdiddy/cvforge/pkg/types"
)

const defaultFamily = "Helvetica"

// Writer is the part of the PDF writer that instructions are replayed on.
// *fpdf.Fpdf satisfies it.
type Writer interface {
	AddPage()
	SetFont(family, style string, size float64)
	Text(x, y float64, txt string)
}

// Driver produces finished documents from records.
type Driver struct {
	cfg    types.LayoutConfig
	family string
	log    zerolog.Logger
}

// NewDriver returns a Driver. An empty font family falls back to Helvetica.
func NewDriver(cfg types.RenderConfig, log zerolog.Logger) *Driver {
	family := cfg.FontFamily
	if family == "" {
		family = defaultFamily
	}
	return &Driver{
		cfg:    cfg.Layout,
		family: family,
		log:    log.With().Str("component", "emit").Logger(),
	}
}

// Emit lays out rec on A4 pages and returns the PDF.
func (d *Driver) Emit(rec types.CvRecord) ([]byte, error) {
	start := time.Now()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreator("cvforge", true)
	if title := strings.ToValidUTF8(rec.PersonalInfo.Name, ""); title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetFont(d.family, layout.StyleNormal, 10)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("selecting font %q: %w", d.family, err)
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	engine := layout.New(d.cfg, &fpdfMeasurer{pdf: pdf, family: d.family, tr: tr})
	res := engine.Layout(rec)

	Replay(pdf, d.family, tr, res.Instructions)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}

	d.log.Debug().
		Int("pages", res.Pages).
		Int("instructions", len(res.Instructions)).
		Int("bytes", buf.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("emitted document")
	return buf.Bytes(), nil
}

// Replay applies instructions to w in order. tr converts each string into
// the writer's encoding; nil leaves text unchanged.
func Replay(w Writer, family string, tr func(string) string, ins []layout.Instruction) {
	if tr == nil {
		tr = func(s string) string { return s }
	}
	for _, in := range ins {
		if in.NewPage {
			w.AddPage()
			continue
		}
		w.SetFont(family, in.FontStyle, in.FontSize)
		w.Text(in.X, in.Y, tr(in.Text))
	}
}

// fpdfMeasurer wraps text using the document's core font metrics. Widths
// are measured on the cp1252 form the writer will draw, while the lines it
// returns stay UTF-8.
type fpdfMeasurer struct {
	pdf    *fpdf.Fpdf
	family string
	tr     func(string) string
}

func (m *fpdfMeasurer) Wrap(text string, width float64, font layout.Font) []string {
	m.pdf.SetFont(m.family, font.Style, font.Size)
	return wrap(text, width, func(s string) float64 {
		return m.pdf.GetStringWidth(m.tr(s))
	})
}

// wrap breaks text greedily at spaces so no line is wider than width.
// Explicit newlines always end a line. A single word wider than width is
// split between characters.
func wrap(text string, width float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			if cur != "" && measure(cur+" "+w) <= width {
				cur += " " + w
				continue
			}
			if cur != "" {
				lines = append(lines, cur)
			}
			cur = w
			for utf8.RuneCountInString(cur) > 1 && measure(cur) > width {
				head, tail := splitWord(cur, width, measure)
				lines = append(lines, head)
				cur = tail
			}
		}
		lines = append(lines, cur)
	}
	return lines
}

// splitWord returns the longest prefix of w (at least one rune) that fits
// width, and the rest.
func splitWord(w string, width float64, measure func(string) float64) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && measure(string(runes[:n+1])) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
