// Package plaintext normalises plain text policy files.
package plaintext

import (
	"context"
	"strings"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/normalisers/docutil"
)

var _ driven.Normaliser = (*Normaliser)(nil)

const bom = "\uFEFF"

// Normaliser is the lowest-priority text handler. It strips a leading byte
// order mark and replaces invalid UTF-8; form feeds separate pages.
type Normaliser struct{}

func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

func (n *Normaliser) Priority() int {
	return 5
}

func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := strings.ToValidUTF8(string(raw.Content), "\uFFFD")
	text = strings.TrimPrefix(text, bom)

	doc := docutil.NewDocument(raw, docutil.Title(raw), docutil.SplitPages(text))
	return &driven.NormaliseResult{Document: doc}, nil
}
