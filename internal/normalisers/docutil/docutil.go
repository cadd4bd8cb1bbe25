// Package docutil holds helpers shared by the normalisers.
package docutil

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// PageBreak separates pages in Document.Content.
const PageBreak = "\f"

// NewDocument builds a document from its page texts.
// Content is the pages joined by form feeds so the page boundaries survive
// a round trip through storage.
func NewDocument(raw *domain.RawDocument, title string, pages []string) domain.Document {
	now := time.Now()
	doc := domain.Document{
		ID:        uuid.New().String(),
		Source:    raw.Source,
		Title:     title,
		Content:   strings.Join(pages, PageBreak),
		Pages:     pages,
		Metadata:  CopyMetadata(raw.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["pages"] = len(pages)
	return doc
}

// SplitPages splits text on form feeds. Text without page breaks is one page.
func SplitPages(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, PageBreak)
}

// Title returns metadata["title"] when set, otherwise a title derived from
// the file name.
func Title(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	return TitleFromPath(raw.Source)
}

// TitleFromPath turns "refund_policy-v2.md" into "refund policy v2".
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
