package summarizer

import (
	"context"
	"fmt"
	"strings"

	"ReviewPulse/internal/ports"
)

// Completer is a single-turn chat completion endpoint.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Chat asks a chat model for a short Persian summary of sample comments.
type Chat struct {
	llm         Completer
	maxComments int
}

var _ Strategy = (*Chat)(nil)

// NewChat defaults maxComments to 15.
func NewChat(llm Completer, maxComments int) *Chat {
	if maxComments <= 0 {
		maxComments = 15
	}
	return &Chat{llm: llm, maxComments: maxComments}
}

func (c *Chat) Name() string { return "chat" }

func (c *Chat) Summarize(ctx context.Context, req ports.SummaryRequest) (string, error) {
	out, err := c.llm.Complete(ctx, c.prompt(req))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *Chat) prompt(req ports.SummaryRequest) string {
	comments := req.Comments
	if len(comments) > c.maxComments {
		comments = comments[:c.maxComments]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "خلاصه زیر را برای رستوران %q در 2-3 جمله کوتاه و جذاب به فارسی بنویس:\n", req.RestaurantName)
	b.WriteString("تمرکز روی احساس کلی مشتریان، نقاط قوت و ضعف اصلی باشد.\n\nنظرات:\n")
	for _, comment := range comments {
		fmt.Fprintf(&b, "- %s\n", comment)
	}
	return b.String()
}
