// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct {
	Value string `json:"value"`
}

func TestPostJSON_Success(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "cvforge-test", r.Header.Get("User-Agent"))

		var in echo
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(echo{Value: in.Value + "!"})
	}))
	defer ts.Close()

	header := http.Header{}
	header.Set("User-Agent", "cvforge-test")

	var out echo
	err := PostJSON(context.Background(), ts.Client(), ts.URL, header, echo{Value: "hi"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "hi!", out.Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostJSON_StatusErrorWithMessage(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer ts.Close()

	var out echo
	err := PostJSON(context.Background(), ts.Client(), ts.URL, nil, echo{}, &out)

	var se *StatusError
	require.True(t, errors.As(err, &se), "got %T", err)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "quota exceeded", se.Message)
	assert.Equal(t, "quota exceeded", se.Error())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "429 is not retried")
}

func TestPostJSON_StatusErrorWithoutMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer ts.Close()

	var out echo
	err := PostJSON(context.Background(), ts.Client(), ts.URL, nil, echo{}, &out)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Empty(t, se.Message)
	assert.Equal(t, "Internal Server Error", se.Error())
}

func TestPostJSON_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer ts.Close()

	var out echo
	err := PostJSON(context.Background(), ts.Client(), ts.URL, nil, echo{}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")

	var de *DecodeError
	require.True(t, errors.As(err, &de), "got %T", err)
	assert.Equal(t, http.StatusOK, de.StatusCode)
}

func TestPostJSON_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out echo
	err := PostJSON(ctx, ts.Client(), ts.URL, nil, echo{}, &out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusError_StatusText(t *testing.T) {
	assert.Equal(t, "Too Many Requests", (&StatusError{StatusCode: 429}).StatusText())
	assert.Equal(t, "Custom Reason", (&StatusError{StatusCode: 599, Status: "599 Custom Reason"}).StatusText())
	assert.Equal(t, "HTTP 599", (&StatusError{StatusCode: 599}).StatusText())
}
