// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/template-uploader/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// Markitdown extracts text by piping documents through the markitdown
// container image. It depends on a container.Runtime (docker or podman)
// injected at construction time.
type Markitdown struct {
	runtime container.Runtime
}

// NewMarkitdown creates an extractor that uses the given container runtime
// to run the markitdown image. It verifies that the image exists locally
// before returning.
func NewMarkitdown(rt container.Runtime) (*Markitdown, error) {
	if err := rt.ImageExists(imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &Markitdown{runtime: rt}, nil
}

// Extract implements Extractor. The markitdown output is split into lines
// and normalized like native paragraphs.
func (m *Markitdown) Extract(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	// markitdown needs the extension hint when reading from stdin.
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	var out bytes.Buffer
	if err := m.runtime.Run(imageMarkitdown, []string{"-x", ext}, f, &out); err != nil {
		return "", fmt.Errorf("extracting %s with markitdown: %w", path, err)
	}

	return JoinParagraphs(strings.Split(out.String(), "\n")), nil
}
