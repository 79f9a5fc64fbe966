// SPDX-License-Identifier: Apache-2.0

package provenance

import (
	"context"
	"errors"
	"fmt"

	"github.com/aletheiaproj/aletheia/internal/engine"
	"github.com/aletheiaproj/aletheia/internal/tree"
)

// MediaSource describes the raw input to the verification pipeline.
type MediaSource struct {
	// Content is the raw media bytes.
	Content   []byte
	MediaType string
	ID        string
}

// Pipeline runs a trust verification engine and reshapes its output.
type Pipeline struct {
	engine engine.Engine
}

// NewPipeline creates a Pipeline over the given engine.
func NewPipeline(e engine.Engine) *Pipeline {
	return &Pipeline{engine: e}
}

// EngineName returns the name of the underlying engine.
func (p *Pipeline) EngineName() string {
	return p.engine.Name()
}

// Run verifies one piece of media. It never fails: every outcome, including
// an engine panic, is expressed as a VerificationResult.
func (p *Pipeline) Run(ctx context.Context, source MediaSource) (result VerificationResult) {
	defer func() {
		if r := recover(); r != nil {
			result = FromEngine("", fmt.Errorf("engine %q panicked: %v", p.engine.Name(), r))
		}
	}()

	text, err := p.engine.Extract(ctx, source.Content, source.MediaType)
	return FromEngine(text, err)
}

// FromEngine maps an engine outcome to a result.
func FromEngine(text string, err error) VerificationResult {
	switch {
	case err == nil:
		return Normalize(text)
	case errors.Is(err, engine.ErrNoProvenance):
		return NoProvenanceResult()
	default:
		return ErrorResult("Manifest extraction error: " + err.Error())
	}
}

// Normalize reshapes manifest store JSON text into a VerificationResult.
// Text that does not parse yields an error result carrying the text itself.
func Normalize(text string) VerificationResult {
	store, err := tree.Parse([]byte(text))
	if err != nil {
		return ErrorResult(text)
	}

	node := Locate(store)
	return VerificationResult{
		Status:      Classify(node),
		Claims:      ExtractClaims(node),
		History:     ExtractHistory(node),
		Thumbnail:   ExtractThumbnail(node),
		RawManifest: &text,
	}
}
