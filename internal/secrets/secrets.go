// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads the uploader's credentials from .secrets/, one
// file per value, so the bearer token never has to appear in
// template-uploader.yaml, .env or a shell command line.
//
//	.secrets/api-token     bearer token sent with every upload
//	.secrets/api-endpoint  optional templates API URL
//
// Values from .secrets/ are the last resort: a flag, environment variable
// or config file setting always wins.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	KeyAPIToken    = "api-token"
	KeyAPIEndpoint = "api-endpoint"
)

// Load returns the trimmed contents of every non-hidden file in
// dir, keyed by file name. Empty files are left out. A dir that does not
// exist yields an empty map, since most setups keep the token elsewhere.
// A file that cannot be read is reported on stderr and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	switch {
	case os.IsNotExist(err):
		return map[string]string{}, nil
	case err != nil:
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	values := make(map[string]string, len(entries))
	for _, entry := range entries {
		key := entry.Name()
		if entry.IsDir() || strings.HasPrefix(key, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, key))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping secret %s: %v\n", key, err)
			continue
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			values[key] = v
		}
	}
	return values, nil
}

// Default picks explicit when set and falls back to the secret under key.
func Default(s map[string]string, key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s[key]
}
