package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

type mapPromptStore map[string]string

func (m mapPromptStore) Load(name string) (string, error) {
	p, ok := m[name]
	if !ok {
		return "", errors.New("prompt file missing")
	}
	return p, nil
}

func (m mapPromptStore) Reload() {}

func TestDefaultPrompts_CoverEveryName(t *testing.T) {
	defaults := DefaultPrompts()
	for _, name := range driven.PromptNames() {
		assert.NotEmpty(t, defaults[name], name)
	}
}

func TestDefaultPrompts_Placeholders(t *testing.T) {
	defaults := DefaultPrompts()

	sql := fmt.Sprintf(defaults[driven.PromptSQLAgent], "Table customers (...)")
	assert.Contains(t, sql, "Table customers (...)")
	assert.Contains(t, sql, "'%Ema%'")
	assert.NotContains(t, sql, "%!")

	rag := fmt.Sprintf(defaults[driven.PromptRAGAgent], 2)
	assert.Contains(t, rag, "at most 2 times")

	rerank := fmt.Sprintf(defaults[driven.PromptRerank], "refunds", "30 days")
	assert.True(t, strings.HasSuffix(rerank, "Score:"))
}

func TestLoadPrompt(t *testing.T) {
	store := mapPromptStore{driven.PromptRouter: "custom router"}

	assert.Equal(t, "custom router", loadPrompt(store, driven.PromptRouter))
	assert.Equal(t, DefaultPrompts()[driven.PromptGeneralAgent], loadPrompt(store, driven.PromptGeneralAgent))
	assert.Equal(t, DefaultPrompts()[driven.PromptRouter], loadPrompt(nil, driven.PromptRouter))
	assert.Equal(t, DefaultPrompts()[driven.PromptRouter], loadPrompt(mapPromptStore{driven.PromptRouter: ""}, driven.PromptRouter))
}
