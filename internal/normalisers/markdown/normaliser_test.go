package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		Source:   "returns.md",
		MIMEType: "text/markdown",
		Content: []byte("# Return Policy\n\nItems can be returned within **30 days**.\n\n" +
			"- Keep the receipt\n- Use the [portal](https://example.com/returns)\n"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "returns.md", doc.Source)
	assert.Equal(t, "Return Policy", doc.Title)
	assert.Contains(t, doc.Content, "Items can be returned within 30 days.")
	assert.Contains(t, doc.Content, "Keep the receipt")
	assert.Contains(t, doc.Content, "Use the portal")
	assert.NotContains(t, doc.Content, "https://")
	assert.Equal(t, "markdown", doc.Metadata["format"])
	assert.Equal(t, "text/markdown", doc.Metadata["mime_type"])
}

func TestNormalise_TitleFallsBackToFileName(t *testing.T) {
	raw := &domain.RawDocument{
		Source:  "warranty-terms.md",
		Content: []byte("## Coverage\n\nTwo years."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "warranty terms", result.Document.Title)
}

func TestNormalise_Pages(t *testing.T) {
	raw := &domain.RawDocument{
		Source:  "guide.md",
		Content: []byte("# One\nfirst\f# Two\nsecond"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"One\nfirst", "Two\nsecond"}, result.Document.Pages)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"heading", "## Shipping", "Shipping"},
		{"bold", "**important**", "important"},
		{"italic", "*note*", "note"},
		{"inline code keeps text", "use `order_id`", "use order_id"},
		{"code fence keeps body", "```sql\nSELECT 1;\n```", "SELECT 1;"},
		{"link", "[help](http://x)", "help"},
		{"image", "![logo](logo.png) text", "text"},
		{"blockquote", "> quoted", "quoted"},
		{"bullets", "- a\n- b", "a\nb"},
		{"horizontal rule", "above\n\n---\n\nbelow", "above\n\nbelow"},
		{"underscores in words survive", "created_at", "created_at"},
		{"collapse newlines", "a\n\n\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripMarkdown(tt.input))
		})
	}
}
