// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout places a CvRecord onto fixed-size pages.
//
// The engine walks the record section by section in a fixed order, keeps a
// vertical cursor, asks a Measurer to wrap long text to the content width and
// emits a flat stream of Instructions: text at a position with a font, or a
// page break. It draws nothing itself; emit replays the stream on a PDF
// writer.
//
// Page breaks are decided only at two kinds of boundary. Before a section
// heading the cursor is compared with the header threshold (the languages
// section uses its own), and before the first line of each experience,
// education or certification entry it is compared with the entry threshold.
// A paragraph, once started, is never split.
package layout

import (
	"strings"

	"github.com/pdiddy/cvforge/pkg/types"
)

// Font styles understood by the writer.
const (
	StyleNormal = ""
	StyleBold   = "B"
	StyleItalic = "I"
)

// Font sizes in points.
const (
	sizeName    = 24
	sizeHeading = 14
	sizeTitle   = 11
	sizeBody    = 10
)

// Placeholders for missing primary fields.
const (
	placeholderName        = "Your Name"
	placeholderPosition    = "Position"
	placeholderCompany     = "Company"
	placeholderStart       = "Start"
	placeholderEnd         = "End"
	placeholderDegree      = "Degree"
	placeholderInstitution = "Institution"
	placeholderYear        = "Year"
	placeholderCert        = "Certification"
)

// Instruction is one primitive for the document writer. When NewPage is set
// the other fields are zero.
type Instruction struct {
	Text      string  `json:"text,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
	FontStyle string  `json:"font_style,omitempty"`
	NewPage   bool    `json:"new_page,omitempty"`
}

// Font identifies the face a piece of text will be measured and drawn in.
type Font struct {
	Size  float64
	Style string
}

// Measurer wraps text into lines no wider than width when set in font.
// It must be deterministic: the same arguments always give the same lines.
type Measurer interface {
	Wrap(text string, width float64, font Font) []string
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(text string, width float64, font Font) []string

// Wrap implements Measurer.
func (f MeasurerFunc) Wrap(text string, width float64, font Font) []string {
	return f(text, width, font)
}

// Cursor is the engine's position on the current page.
type Cursor struct {
	Page int
	Y    float64
}

// Result is the output of one Layout call.
type Result struct {
	Instructions []Instruction

	// Pages is the number of pages the instructions span.
	Pages int

	// Final is the cursor after the last section.
	Final Cursor
}

// Engine lays out records with a fixed geometry. It holds no per-document
// state and may be reused.
type Engine struct {
	cfg     types.LayoutConfig
	measure Measurer
}

// New returns an Engine. Zero fields in cfg take their defaults.
func New(cfg types.LayoutConfig, m Measurer) *Engine {
	def := types.DefaultLayoutConfig()
	if cfg.PageWidth <= 0 {
		cfg.PageWidth = def.PageWidth
	}
	if cfg.Margin <= 0 {
		cfg.Margin = def.Margin
	}
	if cfg.Top <= 0 {
		cfg.Top = def.Top
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = def.LineHeight
	}
	if cfg.HeaderThreshold <= 0 {
		cfg.HeaderThreshold = def.HeaderThreshold
	}
	if cfg.EntryThreshold <= 0 {
		cfg.EntryThreshold = def.EntryThreshold
	}
	if cfg.LanguagesThreshold <= 0 {
		cfg.LanguagesThreshold = def.LanguagesThreshold
	}
	return &Engine{cfg: cfg, measure: m}
}

// Config returns the effective geometry.
func (e *Engine) Config() types.LayoutConfig {
	return e.cfg
}

// ContentWidth is the page width minus both margins.
func (e *Engine) ContentWidth() float64 {
	return e.cfg.PageWidth - 2*e.cfg.Margin
}

// Layout converts rec into placement instructions.
func (e *Engine) Layout(rec types.CvRecord) Result {
	r := &run{Engine: e, cur: Cursor{Page: 1, Y: e.cfg.Top}}

	r.header(rec.PersonalInfo)
	r.summary(rec.Summary)
	r.experience(rec.Experience)
	r.education(rec.Education)
	r.skills(rec.Skills)
	r.certifications(rec.Certifications)
	r.languages(rec.Languages)

	return Result{Instructions: r.out, Pages: r.cur.Page, Final: r.cur}
}

// run is the mutable state of a single Layout call.
type run struct {
	*Engine
	cur Cursor
	out []Instruction
}

func (r *run) text(s string, size float64, style string) {
	r.out = append(r.out, Instruction{
		Text:      s,
		X:         r.cfg.Margin,
		Y:         r.cur.Y,
		FontSize:  size,
		FontStyle: style,
	})
}

// breakIfPast starts a new page when the cursor is strictly below limit.
func (r *run) breakIfPast(limit float64) {
	if r.cur.Y > limit {
		r.out = append(r.out, Instruction{NewPage: true})
		r.cur.Page++
		r.cur.Y = r.cfg.Top
	}
}

// paragraph wraps s in body text and emits one instruction per line. It
// returns the number of lines; the cursor is left unchanged.
func (r *run) paragraph(s string) int {
	font := Font{Size: sizeBody, Style: StyleNormal}
	lines := r.measure.Wrap(s, r.ContentWidth(), font)
	for i, line := range lines {
		r.out = append(r.out, Instruction{
			Text:      line,
			X:         r.cfg.Margin,
			Y:         r.cur.Y + float64(i)*r.cfg.LineHeight,
			FontSize:  font.Size,
			FontStyle: font.Style,
		})
	}
	return len(lines)
}

func (r *run) heading(title string, advance float64) {
	r.text(title, sizeHeading, StyleBold)
	r.cur.Y += advance
}

func (r *run) header(p types.PersonalInfo) {
	r.text(orDefault(p.Name, placeholderName), sizeName, StyleBold)
	r.cur.Y += 10

	contact := joinNonEmpty(" | ", p.Email, p.Phone, p.LinkedIn, p.Location)
	if contact != "" {
		r.text(contact, sizeBody, StyleNormal)
	}
	r.cur.Y += 15
}

func (r *run) summary(s string) {
	if s == "" {
		return
	}
	r.breakIfPast(r.cfg.HeaderThreshold)
	r.heading("PROFESSIONAL SUMMARY", 7)
	n := r.paragraph(s)
	r.cur.Y += float64(n)*r.cfg.LineHeight + 5
}

func (r *run) experience(entries []types.Experience) {
	if len(entries) == 0 {
		return
	}
	r.breakIfPast(r.cfg.HeaderThreshold)
	r.heading("WORK EXPERIENCE", 10)

	for _, x := range entries {
		r.breakIfPast(r.cfg.EntryThreshold)

		r.text(orDefault(x.Position, placeholderPosition), sizeTitle, StyleBold)
		r.cur.Y += 6

		r.text(orDefault(x.Company, placeholderCompany)+" | "+
			orDefault(x.StartDate, placeholderStart)+" - "+
			orDefault(x.EndDate, placeholderEnd), sizeBody, StyleItalic)
		r.cur.Y += 6

		if x.Responsibilities != "" {
			n := r.paragraph(x.Responsibilities)
			r.cur.Y += float64(n) * r.cfg.LineHeight
		}
		r.cur.Y += 5
	}
}

func (r *run) education(entries []types.Education) {
	if len(entries) == 0 {
		return
	}
	r.breakIfPast(r.cfg.HeaderThreshold)
	r.heading("EDUCATION", 10)

	for _, ed := range entries {
		r.breakIfPast(r.cfg.EntryThreshold)

		r.text(orDefault(ed.Degree, placeholderDegree), sizeTitle, StyleBold)
		r.cur.Y += 6

		line := orDefault(ed.Institution, placeholderInstitution) + " | " + orDefault(ed.Year, placeholderYear)
		if ed.GPA != "" {
			line += " | GPA: " + ed.GPA
		}
		r.text(line, sizeBody, StyleItalic)
		r.cur.Y += 8
	}
}

func (r *run) skills(skills []string) {
	if len(skills) == 0 {
		return
	}
	r.breakIfPast(r.cfg.HeaderThreshold)
	r.heading("SKILLS", 8)
	n := r.paragraph(strings.Join(skills, ", "))
	r.cur.Y += float64(n)*r.cfg.LineHeight + 5
}

func (r *run) certifications(certs []types.Certification) {
	if len(certs) == 0 {
		return
	}
	r.breakIfPast(r.cfg.HeaderThreshold)
	r.heading("CERTIFICATIONS", 10)

	for _, c := range certs {
		r.breakIfPast(r.cfg.EntryThreshold)
		r.text("• "+orDefault(c.Name, placeholderCert)+" ("+orDefault(c.Year, placeholderYear)+")", sizeBody, StyleNormal)
		r.cur.Y += 6
	}
	r.cur.Y += 3
}

func (r *run) languages(s string) {
	if s == "" {
		return
	}
	r.breakIfPast(r.cfg.LanguagesThreshold)
	r.heading("LANGUAGES", 8)
	n := r.paragraph(s)
	r.cur.Y += float64(n) * r.cfg.LineHeight
}

func orDefault(s, placeholder string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
