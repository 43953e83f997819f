// Package document converts attachment bytes into plain text for
// content-sniffing. PDF extraction goes through MuPDF; DOCX is unpacked
// directly; legacy DOC falls back to a printable-run scan.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Decoder turns attachment bytes into plain text.
type Decoder interface {
	DecodeToText(filename string, data []byte) (string, error)
}

// FileDecoder is the default Decoder implementation.
type FileDecoder struct{}

func NewDecoder() *FileDecoder { return &FileDecoder{} }

// DecodeToText dispatches on the filename extension. Unknown extensions are
// treated as plain text.
func (d *FileDecoder) DecodeToText(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return decodePDF(data)
	case ".docx":
		return decodeDOCX(data)
	case ".doc":
		return decodeDOC(data), nil
	default:
		return string(data), nil
	}
}

func decodePDF(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var text strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		page, err := doc.Text(n)
		if err != nil {
			continue
		}
		if page = strings.TrimSpace(page); page != "" {
			if text.Len() > 0 {
				text.WriteString("\n\n")
			}
			text.WriteString(page)
		}
	}

	return text.String(), nil
}

// decodeDOCX reads word/document.xml from the DOCX zip container and strips
// the markup, keeping character data.
func decodeDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx container: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()

		return stripXML(rc)
	}

	return "", fmt.Errorf("docx container has no word/document.xml")
}

func stripXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var text strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			// Paragraph ends become line breaks.
			if t.Name.Local == "p" {
				text.WriteString("\n")
			}
		}
	}

	return strings.TrimSpace(text.String()), nil
}

// decodeDOC scans a legacy binary DOC for runs of printable characters, a
// lossy but serviceable heuristic for keyword counting.
func decodeDOC(data []byte) string {
	var text strings.Builder
	var run []byte

	flush := func() {
		if len(run) >= 4 {
			if text.Len() > 0 {
				text.WriteByte(' ')
			}
			text.Write(run)
		}
		run = run[:0]
	}

	for _, b := range data {
		if b == '\n' || b == '\r' || b == '\t' || (b >= 0x20 && b < 0x7f) {
			run = append(run, b)
			continue
		}
		flush()
	}
	flush()

	return strings.TrimSpace(text.String())
}
