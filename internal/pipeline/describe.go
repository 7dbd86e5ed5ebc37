// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"errors"
	"strings"

	"github.com/pdiddy/cvforge/internal/rasterize"
	"github.com/pdiddy/cvforge/internal/record"
)

// User-facing messages.
const (
	MsgNoAPIKey   = "Please enter your Gemini API key first!"
	MsgInvalidKey = "Invalid Gemini API key. Please check your API key and try again.\n\nGet your API key from: https://aistudio.google.com/apikey"
	MsgQuota      = "API quota exceeded. Please check your Gemini API usage limits."
	MsgBadPDF     = "Could not read the PDF. Please upload a different file."
	MsgMalformed  = "Failed to parse CV data. Please try again."
	MsgBusy       = "An upload is already in progress. Please wait for it to finish."
)

// Describe turns an Upload or Export error into a message for the user.
// Credential and quota problems are recognized by the message text the
// extraction service returns.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()

	switch {
	case errors.Is(err, ErrBusy):
		return MsgBusy
	case errors.Is(err, ErrNoAPIKey):
		return MsgNoAPIKey
	case strings.Contains(msg, "API key"):
		return MsgInvalidKey
	case strings.Contains(msg, "quota"):
		return MsgQuota
	}

	var parseErr *rasterize.DocumentParseError
	if errors.As(err, &parseErr) {
		return MsgBadPDF
	}
	var malformed *record.MalformedExtractionError
	if errors.As(err, &malformed) {
		return MsgMalformed
	}
	return "Error processing PDF: " + msg
}
