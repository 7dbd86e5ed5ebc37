// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package form stores a CvRecord as an editable file.
//
// The form file is where the user reviews and corrects what extraction
// produced before rendering. Loading always yields a complete record: fields
// the user deleted come back empty rather than missing.
package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cvforge/internal/record"
	"github.com/pdiddy/cvforge/pkg/types"
)

// Format is a form file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrExists is returned by WriteFile when the target exists and overwriting
// was not requested.
var ErrExists = errors.New("form file already exists")

// ParseFormat accepts "yaml", "yml" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown form format %q (want yaml or json)", s)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("form file %q has no extension", path)
	}
	return ParseFormat(ext)
}

// Save writes rec to w.
func Save(w io.Writer, rec types.CvRecord, f Format) error {
	rec = record.Normalize(rec)
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&rec); err != nil {
			return fmt.Errorf("encoding form: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(&rec); err != nil {
			return fmt.Errorf("encoding form: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown form format %q", f)
}

// Load reads a record from r. YAML scalars of any type are read as strings;
// JSON follows the same defaulting as an extraction reply.
func Load(r io.Reader, f Format) (types.CvRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return types.CvRecord{}, fmt.Errorf("reading form: %w", err)
	}

	switch f {
	case FormatYAML:
		var rec types.CvRecord
		if err := yaml.Unmarshal(data, &rec); err != nil {
			return types.CvRecord{}, fmt.Errorf("parsing form: %w", err)
		}
		return record.Normalize(rec), nil
	case FormatJSON:
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return types.CvRecord{}, fmt.Errorf("parsing form: %w", err)
		}
		return record.Project(obj), nil
	}
	return types.CvRecord{}, fmt.Errorf("unknown form format %q", f)
}

// WriteFile saves rec to path in the format implied by its extension. An
// existing file is only replaced when force is set.
func WriteFile(path string, rec types.CvRecord, force bool) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}

	var buf bytes.Buffer
	if err := Save(&buf, rec, f); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing form file: %w", err)
	}
	return nil
}

// ReadFile loads a form file saved by WriteFile or edited by hand.
func ReadFile(path string) (types.CvRecord, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return types.CvRecord{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return types.CvRecord{}, fmt.Errorf("reading form file: %w", err)
	}
	defer file.Close()
	return Load(file, f)
}
