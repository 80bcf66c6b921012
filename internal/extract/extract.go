// Package extract converts raw uploaded file bytes into text, a page count,
// or inline image data, depending on the declared media type. Extraction
// never fails: any parsing problem degrades to an empty Result so the file
// can still be stored and referenced downstream.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Media types with dedicated extraction policies.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// InlineImage is a base64 payload tagged with its original media type, ready
// for inline delivery to a multimodal generation call.
type InlineImage struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType"`
}

// Result is the outcome of an extraction. At most one of Text and Image is
// populated; Pages is set only when the format exposes a page count.
type Result struct {
	Text  string       `json:"text"`
	Pages *int32       `json:"pages"`
	Image *InlineImage `json:"imageData"`
}

// Extract applies the per-type extraction policy to raw file bytes.
//
//   - PDF: text plus page count.
//   - DOCX: raw text only.
//   - image/*: pages=1, empty text, whole-file base64 payload.
//   - anything else: empty Result, no error.
func Extract(data []byte, mediaType string) Result {
	switch {
	case mediaType == MediaTypePDF:
		return extractPDF(data)
	case mediaType == MediaTypeDocx:
		return Result{Text: extractDocxText(data)}
	case strings.HasPrefix(mediaType, "image/"):
		pages := int32(1)
		return Result{
			Pages: &pages,
			Image: &InlineImage{
				Base64:   base64.StdEncoding.EncodeToString(data),
				MimeType: mediaType,
			},
		}
	default:
		return Result{}
	}
}

// extractPDF pulls plain text and the page count out of a PDF. The pdf
// library panics on some malformed inputs, so the whole call is fenced and
// degrades to an empty Result.
func extractPDF(data []byte) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARN: PDF extraction panicked, degrading to empty result: %v", r)
			res = Result{}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Printf("WARN: PDF extraction failed, degrading to empty result: %v", err)
		return Result{}
	}

	pages := int32(reader.NumPage())

	textReader, err := reader.GetPlainText()
	if err != nil {
		log.Printf("WARN: PDF text extraction failed, degrading to empty result: %v", err)
		return Result{}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		log.Printf("WARN: PDF text read failed, degrading to empty result: %v", err)
		return Result{}
	}

	return Result{Text: buf.String(), Pages: &pages}
}

// extractDocxText reads word/document.xml out of the DOCX zip container and
// concatenates the run text, one line per paragraph. Any structural problem
// yields an empty string.
func extractDocxText(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Printf("WARN: DOCX extraction failed, degrading to empty result: %v", err)
		return ""
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		log.Printf("WARN: DOCX missing word/document.xml, degrading to empty result")
		return ""
	}

	rc, err := doc.Open()
	if err != nil {
		log.Printf("WARN: DOCX document open failed, degrading to empty result: %v", err)
		return ""
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("WARN: DOCX XML decode failed, returning partial text: %v", err)
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
			if t.Name.Local == "p" {
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
