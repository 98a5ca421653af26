// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx extracts paragraph text from Word documents with pluggable
// backends. Every backend returns the document's non-empty paragraphs,
// trimmed, in document order, joined with a single newline.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Extractor returns the plain-text content of a document.
type Extractor interface {
	// Extract reads the document at path and returns its paragraph text.
	Extract(path string) (string, error)
}

const (
	mainPart = "word/document.xml"

	// wordNS is the WordprocessingML main namespace.
	wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// ErrNoDocumentPart is returned for zip archives without word/document.xml.
var ErrNoDocumentPart = errors.New("missing " + mainPart)

// Native reads .docx files directly: an OOXML package is a zip archive whose
// main part, word/document.xml, holds the body paragraphs.
type Native struct{}

// NewNative returns the built-in extractor.
func NewNative() *Native { return &Native{} }

// Extract implements Extractor.
func (n *Native) Extract(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == mainPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("reading %s: %w", path, ErrNoDocumentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("opening %s in %s: %w", mainPart, path, err)
	}
	defer rc.Close()

	paragraphs, err := bodyParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("parsing %s in %s: %w", mainPart, path, err)
	}
	return JoinParagraphs(paragraphs), nil
}

// bodyParagraphs streams document.xml and returns the raw text of each
// paragraph that is a direct child of w:body. Paragraphs nested in tables,
// text boxes or content controls are not part of the sequence. Only runs
// directly under the paragraph, or under a w:hyperlink in it, contribute
// text; drawings, VML shapes and mc:AlternateContent are skipped whole.
func bodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		stack      []string
		inBody     bool
		inPara     bool
		paraDepth  int
		inText     bool
		buf        strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := localName(t.Name)
			stack = append(stack, name)
			switch {
			case name == "body" && len(stack) == 2:
				inBody = true
			case name == "p" && inBody && !inPara && len(stack) == 3:
				inPara = true
				paraDepth = len(stack)
				buf.Reset()
			case !inPara || !inRun(stack, paraDepth):
			case name == "t":
				inText = true
			case name == "tab":
				buf.WriteByte('\t')
			case name == "br" || name == "cr":
				buf.WriteByte('\n')
			}
		case xml.EndElement:
			name := localName(t.Name)
			switch {
			case inPara && name == "t":
				inText = false
			case inPara && name == "p" && len(stack) == paraDepth:
				paragraphs = append(paragraphs, buf.String())
				inPara = false
			case name == "body" && len(stack) == 2:
				inBody = false
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return paragraphs, nil
}

// inRun reports whether the element on top of stack sits directly inside a
// run that belongs to the paragraph opened at paraDepth: p/r/x or
// p/hyperlink/r/x. Runs inside drawings, shapes, text boxes or
// mc:AlternateContent branches are deeper and never match.
func inRun(stack []string, paraDepth int) bool {
	if len(stack) <= paraDepth {
		return false
	}
	between := stack[paraDepth : len(stack)-1]
	switch len(between) {
	case 1:
		return between[0] == "r"
	case 2:
		return between[0] == "hyperlink" && between[1] == "r"
	default:
		return false
	}
}

// localName returns the element name for WordprocessingML elements and a
// prefixed name for anything else so it never matches a w: element.
func localName(n xml.Name) string {
	if n.Space == "" || n.Space == wordNS {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// JoinParagraphs trims each paragraph, drops empty ones and joins the rest
// with a single newline.
func JoinParagraphs(paragraphs []string) string {
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, "\n")
}
