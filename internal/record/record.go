// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package record turns the extraction service's free-form reply into a
// schema-complete CvRecord.
//
// Parsing is all-or-nothing: either the text decodes to a JSON object and a
// fully defaulted record comes back, or a *MalformedExtractionError does.
// Fields the model left out, set to null, or filled with the wrong JSON type
// become "" (scalars) or empty slices (arrays). Unknown keys are ignored.
package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/cvforge/pkg/types"
)

// fenceMarkers are stripped anywhere in the reply, longest first so that
// "```json" is not left behind as "json".
var fenceMarkers = []string{"```json", "```"}

// MalformedExtractionError reports a reply that is not a JSON object once
// fences are removed. It is terminal for the current upload.
type MalformedExtractionError struct {
	Err error
}

func (e *MalformedExtractionError) Error() string {
	return fmt.Sprintf("malformed extraction response: %v", e.Err)
}

func (e *MalformedExtractionError) Unwrap() error {
	return e.Err
}

// Sanitize removes code-fence markers and surrounding whitespace.
func Sanitize(raw string) string {
	s := raw
	for _, m := range fenceMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.TrimSpace(s)
}

// Parse sanitizes raw, decodes it and projects the result onto CvRecord.
func Parse(raw string) (types.CvRecord, error) {
	var doc any
	if err := json.Unmarshal([]byte(Sanitize(raw)), &doc); err != nil {
		return types.CvRecord{}, &MalformedExtractionError{Err: err}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return types.CvRecord{}, &MalformedExtractionError{
			Err: fmt.Errorf("top-level value is %s, want object", jsonKind(doc)),
		}
	}
	return Project(obj), nil
}

// Project maps a decoded JSON object onto CvRecord with per-field defaults.
func Project(obj map[string]any) types.CvRecord {
	info := object(obj["personalInfo"])
	rec := types.CvRecord{
		PersonalInfo: types.PersonalInfo{
			Name:     str(info["name"]),
			Email:    str(info["email"]),
			Phone:    str(info["phone"]),
			LinkedIn: str(info["linkedin"]),
			Location: str(info["location"]),
		},
		Summary:        str(obj["summary"]),
		Languages:      str(obj["languages"]),
		Experience:     []types.Experience{},
		Education:      []types.Education{},
		Skills:         []string{},
		Certifications: []types.Certification{},
	}

	for _, v := range array(obj["experience"]) {
		e := object(v)
		rec.Experience = append(rec.Experience, types.Experience{
			Company:          str(e["company"]),
			Position:         str(e["position"]),
			StartDate:        str(e["startDate"]),
			EndDate:          str(e["endDate"]),
			Responsibilities: str(e["responsibilities"]),
		})
	}

	for _, v := range array(obj["education"]) {
		e := object(v)
		rec.Education = append(rec.Education, types.Education{
			Institution: str(e["institution"]),
			Degree:      str(e["degree"]),
			Year:        str(e["year"]),
			GPA:         str(e["gpa"]),
		})
	}

	for _, v := range array(obj["skills"]) {
		rec.Skills = append(rec.Skills, str(v))
	}

	for _, v := range array(obj["certifications"]) {
		c := object(v)
		rec.Certifications = append(rec.Certifications, types.Certification{
			Name: str(c["name"]),
			Year: str(c["year"]),
		})
	}

	return rec
}

// Normalize replaces nil slices with empty ones so a record decoded from
// another source satisfies the same invariants as one returned by Parse.
func Normalize(rec types.CvRecord) types.CvRecord {
	if rec.Experience == nil {
		rec.Experience = []types.Experience{}
	}
	if rec.Education == nil {
		rec.Education = []types.Education{}
	}
	if rec.Skills == nil {
		rec.Skills = []string{}
	}
	if rec.Certifications == nil {
		rec.Certifications = []types.Certification{}
	}
	return rec
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func array(v any) []any {
	a, _ := v.([]any)
	return a
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
