// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API keys for the provider adapters. Keys live as
// plain-text files in a secrets directory (filename is the key name, trimmed
// contents are the value) with the process environment as a fallback.
//
// Key files used by the CLI: tavily-api-key, serper-api-key, openai-api-key,
// anthropic-api-key.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store holds the secrets loaded from one directory.
type Store map[string]string

// Load reads every regular, non-hidden file in dir into a Store. A missing
// directory is not an error and yields an empty Store. Files that cannot be
// read are skipped with a warning on w; empty files are ignored.
func Load(dir string, w io.Writer) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Store, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(w, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Keys returns the loaded key names, unsorted.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}

// Lookup resolves a key: the Store first, then the environment variable
// derived from the key name ("openai-api-key" → "OPENAI_API_KEY"). It
// returns "" when neither is set.
func (s Store) Lookup(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return os.Getenv(EnvName(key))
}

// EnvName converts a secret file name to its environment-variable form.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}
