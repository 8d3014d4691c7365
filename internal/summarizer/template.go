package summarizer

import (
	"context"
	"fmt"
	"strings"

	"ReviewPulse/internal/ports"
)

const maxContextAlerts = 2

// Template renders a fixed summary from topics, alerts and the latest trend point.
type Template struct{}

var _ Strategy = Template{}

func (Template) Name() string { return "template" }

func (Template) Summarize(_ context.Context, req ports.SummaryRequest) (string, error) {
	return strings.TrimSpace(BuildContext(req)), nil
}

// BuildContext is also the prompt body for generative strategies.
func BuildContext(req ports.SummaryRequest) string {
	var b strings.Builder
	b.WriteString("خلاصه تحلیل نظرات مشتریان:\n")
	if len(req.PositiveTopics) > 0 {
		fmt.Fprintf(&b, "- نکات مثبت اصلی: %s\n", strings.Join(req.PositiveTopics, ", "))
	}
	if len(req.NegativeTopics) > 0 {
		fmt.Fprintf(&b, "- نکات منفی اصلی: %s\n", strings.Join(req.NegativeTopics, ", "))
	}
	if len(req.Alerts) > 0 {
		alerts := req.Alerts
		if len(alerts) > maxContextAlerts {
			alerts = alerts[:maxContextAlerts]
		}
		messages := make([]string, len(alerts))
		for i, a := range alerts {
			messages[i] = a.Message
		}
		fmt.Fprintf(&b, "- هشدارهای مهم: %s\n", strings.Join(messages, "; "))
	}
	if n := len(req.Trend); n > 0 {
		last := req.Trend[n-1]
		fmt.Fprintf(&b, "- روند اخیر (%s): %d نظر مثبت در مقابل %d نظر منفی.\n", last.Date, last.Positive, last.Negative)
	}
	return b.String()
}
