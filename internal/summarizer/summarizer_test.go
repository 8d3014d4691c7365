package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

type stubGenerator struct {
	prompt    string
	maxLength int
	out       string
	err       error
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, maxLength int) (string, error) {
	s.prompt, s.maxLength = prompt, maxLength
	return s.out, s.err
}

type stubCompleter struct {
	prompt string
	out    string
	err    error
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.out, s.err
}

type stubStrategy struct {
	out string
	err error
}

func (s stubStrategy) Name() string { return "stub" }

func (s stubStrategy) Summarize(context.Context, ports.SummaryRequest) (string, error) {
	return s.out, s.err
}

func sampleRequest() ports.SummaryRequest {
	return ports.SummaryRequest{
		RestaurantName: "پیتزا نمونه",
		PositiveTopics: []string{"خوشمزه", "گرم"},
		NegativeTopics: []string{"دیر"},
		Alerts: []domain.Alert{
			domain.NegativeSpikeAlert("2024-05-02", 7),
			domain.RepeatedIssueAlert("سرد", 4),
			domain.RepeatedIssueAlert("دیر", 3),
		},
		Trend: []domain.TrendPoint{
			{Date: "2024-05-01", Positive: 1, Negative: 0},
			{Date: "2024-05-02", Positive: 2, Negative: 7},
		},
		Comments: []string{"عالی بود", "سرد رسید"},
	}
}

func TestBuildContext(t *testing.T) {
	t.Parallel()

	got := BuildContext(sampleRequest())
	lines := strings.Split(strings.TrimSpace(got), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "خلاصه تحلیل نظرات مشتریان:", lines[0])
	assert.Equal(t, "- نکات مثبت اصلی: خوشمزه, گرم", lines[1])
	assert.Equal(t, "- نکات منفی اصلی: دیر", lines[2])
	assert.Equal(t, "- هشدارهای مهم: Negative reviews on 2024-05-02 are unusually high (7).; The issue 'سرد' appeared 4 times in negative reviews.", lines[3])
	assert.Equal(t, "- روند اخیر (2024-05-02): 2 نظر مثبت در مقابل 7 نظر منفی.", lines[4])
}

func TestBuildContextEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "خلاصه تحلیل نظرات مشتریان:\n", BuildContext(ports.SummaryRequest{}))
}

func TestSeq2SeqPrompt(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{out: "خلاصه"}
	s := NewSeq2Seq(gen, 0)
	out, err := s.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "خلاصه", out)
	assert.Equal(t, 200, gen.maxLength)
	assert.True(t, strings.HasPrefix(gen.prompt, "خلاصه کن: خلاصه تحلیل نظرات مشتریان:"))
}

func TestChatPromptLimitsComments(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Comments = nil
	for i := 0; i < 20; i++ {
		req.Comments = append(req.Comments, fmt.Sprintf("نظر %d", i))
	}

	llm := &stubCompleter{out: "  رستوران خوبی است.  "}
	out, err := NewChat(llm, 0).Summarize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "رستوران خوبی است.", out)
	assert.Contains(t, llm.prompt, `"پیتزا نمونه"`)
	assert.Contains(t, llm.prompt, "- نظر 14\n")
	assert.NotContains(t, llm.prompt, "نظر 15")
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry(Template{}, NewChat(&stubCompleter{}, 1))
	s, err := r.Resolve("template")
	require.NoError(t, err)
	assert.Equal(t, "template", s.Name())
	assert.Equal(t, []string{"chat", "template"}, r.Names())

	_, err = r.Resolve("missing")
	assert.EqualError(t, err, "summarizer missing is not registered")
}

func TestResilientFallsBackToTemplate(t *testing.T) {
	t.Parallel()

	var seen []error
	cause := ports.NewCollaboratorError("chatgpt", ports.FailureQuota, errors.New("429"))
	r := NewResilient(stubStrategy{err: cause}, true, nil, func(err error) { seen = append(seen, err) })

	out, err := r.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "خلاصه تحلیل نظرات مشتریان:"))
	require.Len(t, seen, 1)
	assert.ErrorIs(t, seen[0], cause)
}

func TestResilientWithoutFallback(t *testing.T) {
	t.Parallel()

	r := NewResilient(stubStrategy{err: errors.New("boom")}, false, nil, nil)
	out, err := r.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "خلاصه تولید نشد: boom", out)

	r = NewResilient(stubStrategy{}, false, nil, nil)
	out, err = r.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, FailurePrefix))

	r = NewResilient(stubStrategy{out: "ok"}, false, nil, nil)
	out, err = r.Summarize(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
