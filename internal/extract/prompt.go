// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/base64"

	"github.com/pdiddy/cvforge/pkg/types"
)

// Prompt is the instruction sent ahead of the page images. It fixes the JSON
// schema that record.Parse projects the reply onto; the two must change
// together.
const Prompt = `Extract all data from this CV/resume. Return ONLY a valid JSON object with this structure:
{
  "personalInfo": { "name": "", "email": "", "phone": "", "linkedin": "", "location": "" },
  "summary": "",
  "experience": [{ "company": "", "position": "", "startDate": "", "endDate": "", "responsibilities": "" }],
  "education": [{ "institution": "", "degree": "", "year": "", "gpa": "" }],
  "skills": ["skill1", "skill2"],
  "certifications": [{ "name": "", "year": "" }],
  "languages": ""
}
Do not include markdown formatting or explanations.`

// generateRequest is the request body for the generateContent API.
type generateRequest struct {
	Contents []content `json:"contents"`
}

// content is one turn of the conversation.
type content struct {
	Parts []part `json:"parts"`
}

// part is either a text part or an inline image part.
type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

// inlineData carries a base64 encoded blob.
type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

// generateResponse is the subset of the generateContent reply we read.
// Pointers distinguish a missing content block from an empty one.
type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewRequest pairs Prompt with the page images in the order given.
func NewRequest(images []types.PageImage) types.ExtractionRequest {
	ordered := make([]types.PageImage, len(images))
	copy(ordered, images)
	return types.ExtractionRequest{Prompt: Prompt, Images: ordered}
}

// buildBody renders an ExtractionRequest as a single-turn request: the prompt
// part first, then one inline image part per page.
func buildBody(req types.ExtractionRequest) generateRequest {
	parts := make([]part, 0, len(req.Images)+1)
	parts = append(parts, part{Text: req.Prompt})
	for _, img := range req.Images {
		mime := img.MIMEType
		if mime == "" {
			mime = types.MIMETypePNG
		}
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: mime,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}
	return generateRequest{Contents: []content{{Parts: parts}}}
}

// firstText returns candidates[0].content.parts[0].text.
func (r *generateResponse) firstText() (string, bool) {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return "", false
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == nil {
		return "", false
	}
	return *parts[0].Text, true
}
