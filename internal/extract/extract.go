// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract sends rendered CV pages to a multimodal model and returns
// the model's raw text reply.
//
// One upload is one request: the fixed Prompt followed by every page image in
// page order. The call is made exactly once. Any failure comes back as a
// *ServiceError whose Message is suitable for showing to the user.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/cvforge/internal/httputil"
	"github.com/pdiddy/cvforge/pkg/types"
)

// defaultEndpoint is the generateContent base URL. Package-level var for
// test substitution.
var defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/"

const defaultModel = "gemini-2.5-flash"

// msgInvalidResponse is reported when a 2xx reply has no usable text.
const msgInvalidResponse = "Invalid response from service"

// ServiceError reports a failed or unusable extraction call. It is terminal
// for the current attempt; the caller decides whether to try again.
type ServiceError struct {
	Message string

	// StatusCode is the HTTP status when the service answered, 0 otherwise.
	StatusCode int

	Err error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Extractor is what the pipeline needs from an extraction backend.
type Extractor interface {
	Extract(ctx context.Context, images []types.PageImage, apiKey string) (string, error)
}

// Client calls the Gemini generateContent REST API.
type Client struct {
	Endpoint   string
	Model      string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client

	log zerolog.Logger
}

// NewClient builds a Client from cfg. Zero values fall back to the public
// endpoint and default model. The API key in cfg is ignored; keys are passed
// per call.
func NewClient(cfg types.ExtractionConfig, log zerolog.Logger) *Client {
	c := &Client{
		Endpoint:   cfg.Endpoint,
		Model:      cfg.Model,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
		HTTPClient: &http.Client{},
		log:        log.With().Str("component", "extract").Logger(),
	}
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	return c
}

// Extract sends the prompt and images and returns
// candidates[0].content.parts[0].text verbatim.
func (c *Client) Extract(ctx context.Context, images []types.PageImage, apiKey string) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", &ServiceError{Message: "Extraction service error: API key is required"}
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req := NewRequest(images)
	header := http.Header{}
	if c.UserAgent != "" {
		header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	c.log.Debug().Int("pages", len(req.Images)).Str("model", c.Model).Msg("sending extraction request")

	var resp generateResponse
	err := httputil.PostJSON(ctx, c.HTTPClient, c.url(apiKey), header, buildBody(req), &resp)
	if err != nil {
		return "", c.mapError(err)
	}

	text, ok := resp.firstText()
	if !ok {
		return "", &ServiceError{Message: msgInvalidResponse, StatusCode: http.StatusOK}
	}

	c.log.Debug().Dur("elapsed", time.Since(start)).Int("chars", len(text)).Msg("extraction reply received")
	return text, nil
}

// url builds <endpoint><model>:generateContent?key=<apiKey>.
func (c *Client) url(apiKey string) string {
	base := c.Endpoint
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(c.Model) + ":generateContent?key=" + url.QueryEscape(apiKey)
}

// mapError turns a PostJSON failure into a *ServiceError. The API key is part
// of the request URL, so transport errors are reported without it.
func (c *Client) mapError(err error) *ServiceError {
	var se *httputil.StatusError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = se.StatusText()
		}
		return &ServiceError{
			Message:    "Extraction service error: " + msg,
			StatusCode: se.StatusCode,
			Err:        err,
		}
	}

	var de *httputil.DecodeError
	if errors.As(err, &de) {
		return &ServiceError{Message: msgInvalidResponse, StatusCode: de.StatusCode, Err: err}
	}

	cause := err
	var uerr *url.Error
	if errors.As(err, &uerr) {
		cause = uerr.Err
	}
	return &ServiceError{
		Message: fmt.Sprintf("Failed to process with extraction service: %v", cause),
		Err:     err,
	}
}
