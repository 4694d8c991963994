package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// Document is an in-memory captured file: an upload, or a re-fetch of a
// previously stored URL. Content is kept in memory because the inline
// data-URL fallback and the classifier both need the full bytes.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the content length in bytes
func (d Document) Size() int64 {
	return int64(len(d.Data))
}

// Reader returns a fresh reader over the content
func (d Document) Reader() io.Reader {
	return bytes.NewReader(d.Data)
}

// DataURL encodes the document as an inline data URL. Used as the
// local-only fallback when the blob store is unavailable.
func (d Document) DataURL() string {
	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(d.Data))
}

// NewDocument reads the full content from r into a Document
func NewDocument(name, contentType string, r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document content: %w", err)
	}
	return Document{Name: name, ContentType: contentType, Data: data}, nil
}

// DocumentFromMultipart builds a Document from an uploaded form file
func DocumentFromMultipart(fileHeader *multipart.FileHeader) (Document, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return Document{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	return NewDocument(fileHeader.Filename, contentType, src)
}

// FetchDocument reconstructs a Document from a stored URL. The original
// upload is not retained, so promotion retries re-fetch their own URL.
// Supports inline data URLs, http(s) URLs and local upload paths.
func FetchDocument(ctx context.Context, url, name string) (Document, error) {
	switch {
	case strings.HasPrefix(url, "data:"):
		return decodeDataURL(url, name)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return fetchHTTP(ctx, url, name)
	default:
		// Local upload path like /static/uploads/...
		data, err := os.ReadFile(strings.TrimPrefix(url, "/"))
		if err != nil {
			return Document{}, fmt.Errorf("failed to read local document: %w", err)
		}
		return Document{Name: name, Data: data}, nil
	}
}

func decodeDataURL(url, name string) (Document, error) {
	rest := strings.TrimPrefix(url, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return Document{}, fmt.Errorf("malformed data URL")
	}

	contentType := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Document{}, fmt.Errorf("failed to decode data URL: %w", err)
	}
	return Document{Name: name, ContentType: contentType, Data: data}, nil
}

func fetchHTTP(ctx context.Context, url, name string) (Document, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("failed to fetch document: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document body: %w", err)
	}

	return Document{Name: name, ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}
