// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/cvforge/pkg/types"
)

func testImages() []types.PageImage {
	return []types.PageImage{
		{Index: 1, Width: 10, Height: 20, MIMEType: types.MIMETypePNG, Data: []byte("page-one")},
		{Index: 2, Width: 10, Height: 20, MIMEType: types.MIMETypePNG, Data: []byte("page-two")},
		{Index: 3, Width: 10, Height: 20, Data: []byte("page-three")},
	}
}

func newTestClient(url string) *Client {
	return NewClient(types.ExtractionConfig{
		AIConfig: types.AIConfig{Model: "test-model"},
		Endpoint: url + "/v1beta/models/",
	}, zerolog.Nop())
}

const okReply = `{"candidates":[{"content":{"parts":[{"text":"{\"summary\":\"Hi\"}"}]}}]}`

func TestExtract_RequestShape(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret-key", r.URL.Query().Get("key"))

		var body generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		parts := body.Contents[0].Parts
		require.Len(t, parts, 4)

		assert.Equal(t, Prompt, parts[0].Text)
		assert.Nil(t, parts[0].InlineData)

		for i, want := range []string{"page-one", "page-two", "page-three"} {
			p := parts[i+1]
			require.NotNil(t, p.InlineData)
			assert.Empty(t, p.Text)
			assert.Equal(t, "image/png", p.InlineData.MIMEType)
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			require.NoError(t, err)
			assert.Equal(t, want, string(data), "part %d out of page order", i+1)
		}

		_, _ = w.Write([]byte(okReply))
	}))
	defer ts.Close()

	text, err := newTestClient(ts.URL).Extract(context.Background(), testImages(), "secret-key")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"Hi"}`, text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExtract_FencedTextReturnedVerbatim(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"` + "```json\\n{}\\n```" + `"}]}}]}`))
	}))
	defer ts.Close()

	text, err := newTestClient(ts.URL).Extract(context.Background(), testImages(), "k")
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", text)
}

func TestExtract_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantStatus int
	}{
		{
			name:       "quota with service message",
			status:     http.StatusTooManyRequests,
			body:       `{"error":{"message":"quota exceeded"}}`,
			wantMsg:    "Extraction service error: quota exceeded",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "bad key",
			status:     http.StatusBadRequest,
			body:       `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			wantMsg:    "Extraction service error: API key not valid. Please pass a valid API key.",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no message falls back to status text",
			status:     http.StatusServiceUnavailable,
			body:       `upstream down`,
			wantMsg:    "Extraction service error: Service Unavailable",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "missing candidates",
			status:     http.StatusOK,
			body:       `{"candidates":[]}`,
			wantMsg:    msgInvalidResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing content",
			status:     http.StatusOK,
			body:       `{"candidates":[{"finishReason":"SAFETY"}]}`,
			wantMsg:    msgInvalidResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "content without parts",
			status:     http.StatusOK,
			body:       `{"candidates":[{"content":{"parts":[]}}]}`,
			wantMsg:    msgInvalidResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "part without text",
			status:     http.StatusOK,
			body:       `{"candidates":[{"content":{"parts":[{"inline_data":{}}]}}]}`,
			wantMsg:    msgInvalidResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "content is a string",
			status:     http.StatusOK,
			body:       `{"candidates":[{"content":"oops"}]}`,
			wantMsg:    msgInvalidResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "text is a number",
			status:     http.StatusOK,
			body:       `{"candidates":[{"content":{"parts":[{"text":5}]}}]}`,
			wantMsg:    msgInvalidResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "candidates is an object",
			status:     http.StatusOK,
			body:       `{"candidates":{}}`,
			wantMsg:    msgInvalidResponse,
			wantStatus: http.StatusOK,
		},
		{
			name:       "body is not json",
			status:     http.StatusOK,
			body:       `<html>ok</html>`,
			wantMsg:    msgInvalidResponse,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := newTestClient(ts.URL).Extract(context.Background(), testImages(), "k")

			var se *ServiceError
			require.True(t, errors.As(err, &se), "got %T: %v", err, err)
			assert.Equal(t, tt.wantMsg, se.Message)
			assert.Equal(t, tt.wantStatus, se.StatusCode)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "no retries")
		})
	}
}

func TestExtract_QuotaMessageSurfaced(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Extract(context.Background(), testImages(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestExtract_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := newTestClient(url).Extract(context.Background(), testImages(), "very-secret")

	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.True(t, strings.HasPrefix(se.Message, "Failed to process with extraction service: "), se.Message)
	assert.NotContains(t, se.Message, "very-secret")
	assert.Zero(t, se.StatusCode)
}

func TestExtract_MissingAPIKey(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Extract(context.Background(), testImages(), "  ")

	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Message, "API key")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestExtract_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	c.Timeout = 50 * time.Millisecond

	_, err := c.Extract(context.Background(), testImages(), "k")

	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(types.ExtractionConfig{}, zerolog.Nop())
	assert.Equal(t, defaultEndpoint, c.Endpoint)
	assert.Equal(t, defaultModel, c.Model)
	assert.Equal(t,
		"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key=a%2Bb",
		c.url("a+b"))
}

func TestNewRequest_CopiesImages(t *testing.T) {
	images := testImages()
	req := NewRequest(images)
	images[0].Index = 99

	assert.Equal(t, Prompt, req.Prompt)
	assert.Equal(t, 1, req.Images[0].Index)
	assert.Len(t, req.Images, 3)
}

func TestPrompt_NamesEverySchemaKey(t *testing.T) {
	for _, key := range []string{
		"personalInfo", "name", "email", "phone", "linkedin", "location",
		"summary", "experience", "company", "position", "startDate", "endDate",
		"responsibilities", "education", "institution", "degree", "year", "gpa",
		"skills", "certifications", "languages",
	} {
		assert.Contains(t, Prompt, `"`+key+`"`)
	}
}
