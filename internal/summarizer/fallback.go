package summarizer

import (
	"context"
	"errors"
	"log/slog"

	"ReviewPulse/internal/ports"
)

// FailurePrefix starts the summary value when no strategy produced text.
const FailurePrefix = "خلاصه تولید نشد: "

var errEmptySummary = errors.New("empty summary")

// Resilient never returns an error: a failed primary falls back to the
// template, or to an explicit failure string when fallback is disabled.
type Resilient struct {
	primary  Strategy
	fallback bool
	logger   *slog.Logger
	onError  func(error)
}

var _ ports.Summarizer = (*Resilient)(nil)

// NewResilient wraps primary. onError may be nil.
func NewResilient(primary Strategy, fallback bool, logger *slog.Logger, onError func(error)) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resilient{primary: primary, fallback: fallback, logger: logger, onError: onError}
}

func (r *Resilient) Summarize(ctx context.Context, req ports.SummaryRequest) (string, error) {
	out, err := r.primary.Summarize(ctx, req)
	if err == nil && out != "" {
		return out, nil
	}
	if err == nil {
		err = ports.NewCollaboratorError(r.primary.Name(), ports.FailureMalformed, errEmptySummary)
	}
	if r.onError != nil {
		r.onError(err)
	}

	r.logger.Warn("summary strategy failed", "strategy", r.primary.Name(), "restaurant", req.RestaurantName, "error", err)
	if !r.fallback {
		return FailurePrefix + err.Error(), nil
	}
	return Template{}.Summarize(ctx, req)
}
