package service

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/http"
	"net/mail"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/text/encoding/htmlindex"

	"freightdesk/internal/domain"
)

// detectMIME resolves the MIME type of an upload from its extension and
// magic bytes. Binary formats must match their declared type; text formats
// only need to sniff as text.
func detectMIME(filename, declared string, content []byte) (string, error) {
	want := ""
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if t, ok := domain.AllowedExtensions[ext]; ok {
		want = t
	} else if declared != "" {
		if t, _, err := mime.ParseMediaType(declared); err == nil {
			want = t
		}
	}
	if _, ok := domain.AllowedContentTypes[want]; !ok {
		return "", domain.ErrUnsupportedFileType
	}

	sniffed := http.DetectContentType(content)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	switch {
	case strings.HasPrefix(want, "text/") || want == "message/rfc822":
		if !strings.HasPrefix(sniffed, "text/") {
			return "", domain.ErrUnsupportedFileType
		}
	case sniffed != want:
		return "", domain.ErrUnsupportedFileType
	}
	return want, nil
}

// textLayer returns the decoded text of text-based uploads. Binary uploads
// have no text layer here.
func textLayer(mimeType string, content []byte) string {
	switch mimeType {
	case "message/rfc822":
		return emailText(content)
	case "text/plain", "text/html":
		return string(content)
	default:
		return ""
	}
}

// emailText keeps the headers relevant to a quote request followed by the
// decoded body. Unparseable messages are returned as-is.
func emailText(content []byte) string {
	msg, err := mail.ReadMessage(bytes.NewReader(content))
	if err != nil {
		return string(content)
	}
	body, _, err := partText(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, 0)
	if err != nil {
		log.Printf("extractionService.Submit: decoding e-mail body: %v", err)
		return string(content)
	}
	var b strings.Builder
	dec := new(mime.WordDecoder)
	for _, h := range []string{"From", "Reply-To", "Subject"} {
		v := msg.Header.Get(h)
		if v == "" {
			continue
		}
		if decoded, err := dec.DecodeHeader(v); err == nil {
			v = decoded
		}
		fmt.Fprintf(&b, "%s: %s\n", h, v)
	}
	b.WriteString("\n")
	b.WriteString(body)
	return b.String()
}

// maxMIMEDepth bounds nested multipart bodies.
const maxMIMEDepth = 5

var htmlTagRe = regexp.MustCompile(`(?s)<(?:style|script)[^>]*>.*?</(?:style|script)>|<[^>]+>`)

// partText decodes one MIME entity to text and reports its media type.
// Multipart entities yield their first text/plain part, falling back to the
// first text/html part with tags removed. Attachments are skipped.
func partText(contentType, encoding string, r io.Reader, depth int) (string, string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || contentType == "" {
		mediaType, params = "text/plain", map[string]string{}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxMIMEDepth || params["boundary"] == "" {
			return "", mediaType, nil
		}
		mr := multipart.NewReader(r, params["boundary"])
		var htmlText string
		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return "", mediaType, fmt.Errorf("reading multipart: %w", err)
			}
			if part.FileName() != "" {
				continue
			}
			text, partType, err := partText(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part, depth+1)
			if err != nil {
				return "", mediaType, err
			}
			switch {
			case partType == "text/plain" && strings.TrimSpace(text) != "":
				return text, partType, nil
			case partType == "text/html" && htmlText == "":
				htmlText = text
			}
		}
		return htmlText, "text/html", nil
	}

	if !strings.HasPrefix(mediaType, "text/") {
		return "", mediaType, nil
	}

	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	}
	if cs := params["charset"]; cs != "" && !strings.EqualFold(cs, "utf-8") && !strings.EqualFold(cs, "us-ascii") {
		if enc, err := htmlindex.Get(cs); err == nil {
			r = enc.NewDecoder().Reader(r)
		}
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", mediaType, fmt.Errorf("decoding %s body: %w", mediaType, err)
	}
	text := string(raw)
	if mediaType == "text/html" {
		text = html.UnescapeString(htmlTagRe.ReplaceAllString(text, " "))
	}
	return text, mediaType, nil
}

// pdfPageCount returns the page count of a PDF, or nil when it cannot be
// read.
func pdfPageCount(content []byte) *int {
	n, err := api.PageCount(bytes.NewReader(content), nil)
	if err != nil {
		log.Printf("extractionService.Submit: reading PDF page count: %v", err)
		return nil
	}
	return &n
}
