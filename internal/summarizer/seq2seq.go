package summarizer

import (
	"context"

	"ReviewPulse/internal/ports"
)

// Generator is the text-to-text endpoint used by Seq2Seq.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxLength int) (string, error)
}

// Seq2Seq prompts a generation model with the template context.
type Seq2Seq struct {
	gen       Generator
	maxLength int
}

var _ Strategy = (*Seq2Seq)(nil)

// NewSeq2Seq defaults maxLength to 200.
func NewSeq2Seq(gen Generator, maxLength int) *Seq2Seq {
	if maxLength <= 0 {
		maxLength = 200
	}
	return &Seq2Seq{gen: gen, maxLength: maxLength}
}

func (s *Seq2Seq) Name() string { return "seq2seq" }

func (s *Seq2Seq) Summarize(ctx context.Context, req ports.SummaryRequest) (string, error) {
	return s.gen.Generate(ctx, "خلاصه کن: "+BuildContext(req), s.maxLength)
}
