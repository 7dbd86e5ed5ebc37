// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: gemini-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// GeminiAPIKey is the key file holding the extraction service credential.
const GeminiAPIKey = "gemini-api-key"

// Environment variables consulted for the API key, in order.
var apiKeyEnv = []string{"CVFORGE_API_KEY", "GEMINI_API_KEY"}

// Source names where a resolved key came from.
type Source string

const (
	SourceNone Source = ""
	SourceFlag Source = "flag"
	SourceEnv  Source = "env"
	SourceFile Source = "secrets"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log zerolog.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ResolveAPIKey picks the extraction API key. An explicit flag wins, then
// the environment, then the secrets directory.
func ResolveAPIKey(flag string, getenv func(string) string, store map[string]string) (string, Source) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, SourceFlag
	}
	if getenv != nil {
		for _, name := range apiKeyEnv {
			if v := strings.TrimSpace(getenv(name)); v != "" {
				return v, SourceEnv
			}
		}
	}
	if v := store[GeminiAPIKey]; v != "" {
		return v, SourceFile
	}
	return "", SourceNone
}
