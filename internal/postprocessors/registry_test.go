package postprocessors

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

func TestRegistry_Build(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has("custom"))

	r.Register("custom", func(cfg map[string]any) (driven.PostProcessor, error) {
		name, _ := cfg["name"].(string)
		return &stageProcessor{name: name}, nil
	})
	require.True(t, r.Has("custom"))

	proc, err := r.Build("custom", map[string]any{"name": "renamed"})
	require.NoError(t, err)
	assert.Equal(t, "renamed", proc.Name())

	_, err = r.Build("missing", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "custom")
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	proc, err := r.Build("chunker", nil)
	require.NoError(t, err)
	assert.Equal(t, "chunker", proc.Name())
}

func TestDefaultPipeline(t *testing.T) {
	p, err := DefaultPipeline(domain.RetrievalSettings{ChunkSize: 40, ChunkOverlap: 0})
	require.NoError(t, err)

	doc := &domain.Document{
		ID:     "d",
		Source: "policy.txt",
		Pages:  []string{strings.Repeat("word ", 30), "second page"},
	}
	chunks, err := p.Process(context.Background(), doc)
	require.NoError(t, err)

	require.Greater(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 40)
		assert.Equal(t, "policy.txt", c.Source)
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, 2, last.Page)
	assert.Equal(t, "second page", last.Content)
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		expected int
	}{
		{"int", map[string]any{"size": 100}, 100},
		{"int64", map[string]any{"size": int64(200)}, 200},
		{"float64 from JSON", map[string]any{"size": float64(300)}, 300},
		{"string ignored", map[string]any{"size": "400"}, 0},
		{"missing", map[string]any{}, 0},
		{"nil config", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getIntFromConfig(tt.cfg, "size"))
		})
	}
}
