// Package extract turns uploaded resume documents into plain text.
// Libraries used: github.com/ledongthuc/pdf (PDF) and
// github.com/nguyenthenguyen/docx (DOCX).
package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extractor reads text from resume documents.
type Extractor struct{}

// ExtractPDF returns the text of a PDF, one line per visual row.
func (Extractor) ExtractPDF(ctx context.Context, data []byte) (string, error) {
	return PDF(ctx, data)
}

// ExtractFile reads a PDF or DOCX from disk, picking the decoder by extension.
func (Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return FromBytes(ctx, data, "", filepath.Base(path))
}

// FromBytes extracts text from an in-memory payload. The MIME type wins when
// given; otherwise the file extension decides.
func FromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	switch normalizeMimeType(mimeType, fileName) {
	case MimePDF:
		return PDF(ctx, data)
	case MimeDOCX:
		return DOCX(ctx, data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, fileName)
	}
}

// PDF extracts text from PDF bytes. Panics inside the PDF library are
// reported as ErrExtraction.
func PDF(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: pdf: %v", ErrExtraction, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrExtraction, err)
	}

	var lines []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return plainText(reader)
		}
		for _, row := range rows {
			lines = append(lines, joinRow(row.Content))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func plainText(reader *pdf.Reader) (string, error) {
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrExtraction, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrExtraction, err)
	}
	return buf.String(), nil
}

// joinRow concatenates the text runs of one row, inserting a space where the
// horizontal gap between runs is wider than a fraction of the font size.
func joinRow(runs pdf.TextHorizontal) string {
	var b strings.Builder
	var prevEnd float64
	for i, run := range runs {
		if i > 0 {
			gap := run.X - prevEnd
			if gap > math.Max(run.FontSize*0.15, 0.5) && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(run.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(run.S)
		prevEnd = run.X + run.W
	}
	return b.String()
}

// DOCX extracts paragraph text from a Word document.
func DOCX(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: docx: empty document", ErrExtraction)
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrExtraction, err)
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func normalizeMimeType(mimeType string, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePDF, MimeDOCX:
		return clean
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	default:
		return clean
	}
}
