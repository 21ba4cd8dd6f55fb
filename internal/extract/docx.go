package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DocxExtractor reads the paragraphs of word/document.xml, one per line.
type DocxExtractor struct{}

// Extract implements Extractor.
func (DocxExtractor) Extract(_ context.Context, path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return docxParagraphs(rc)
	}
	return "", errors.New("word/document.xml not found")
}

// docxParagraphs collects the text runs of every <w:p>, joining paragraphs
// with newlines. A paragraph nested in another (text boxes, for instance) is
// emitted on its own when it closes and the outer text is kept.
func docxParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		open       []*strings.Builder // innermost last
		inText     bool
	)
	write := func(s string) {
		if len(open) > 0 {
			open[len(open)-1].WriteString(s)
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				write("\t")
			case "br", "cr":
				write("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if n := len(open); n > 0 {
					paragraphs = append(paragraphs, open[n-1].String())
					open = open[:n-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				write(string(t))
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
